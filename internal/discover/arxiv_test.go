// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const arxivFeedXML = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2401.11111v2</id>
    <title>  Graph Neural Networks: A Survey  </title>
    <summary>
      A comprehensive survey of GNN architectures.
    </summary>
    <author><name>Ada Lovelace</name></author>
    <author><name>Alan Turing</name></author>
  </entry>
  <entry>
    <id>http://arxiv.org/abs/2401.22222v1</id>
    <title>Message Passing Revisited</title>
    <summary>Revisiting message passing.</summary>
    <author><name>Grace Hopper</name></author>
  </entry>
  <entry>
    <id></id>
    <title>Entry without an identifier</title>
    <summary>Dropped.</summary>
  </entry>
</feed>`

func TestArxivProviderSearch(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(arxivFeedXML))
	}))
	defer srv.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = srv.URL
	defer func() { arxivAPIBase = oldBase }()

	p := &ArxivProvider{Client: srv.Client()}
	refs, err := p.Search(context.Background(), "graph neural networks", 5)
	if err != nil {
		t.Fatal(err)
	}

	if len(refs) != 2 {
		t.Fatalf("refs = %d, want 2 (linkless entry dropped)", len(refs))
	}
	first := refs[0]
	if first.Rank != 1 {
		t.Errorf("Rank = %d", first.Rank)
	}
	if first.Title != "Graph Neural Networks: A Survey" {
		t.Errorf("Title = %q, want trimmed", first.Title)
	}
	if first.Authors != "Ada Lovelace, Alan Turing" {
		t.Errorf("Authors = %q", first.Authors)
	}
	if first.Link != "http://arxiv.org/abs/2401.11111v2" {
		t.Errorf("Link = %q", first.Link)
	}
	if refs[1].Rank != 2 {
		t.Errorf("second Rank = %d", refs[1].Rank)
	}

	if !strings.Contains(gotQuery, "max_results=5") {
		t.Errorf("query = %q, missing limit", gotQuery)
	}
	if !strings.Contains(gotQuery, "sortBy=relevance") {
		t.Errorf("query = %q, missing sort", gotQuery)
	}
}

func TestArxivProviderEmptyQuery(t *testing.T) {
	p := NewArxivProvider()
	if _, err := p.Search(context.Background(), "   ", 5); err == nil {
		t.Error("expected error for empty query")
	}
}

func TestArxivProviderHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	oldBase := arxivAPIBase
	arxivAPIBase = srv.URL
	defer func() { arxivAPIBase = oldBase }()

	p := &ArxivProvider{Client: srv.Client()}
	if _, err := p.Search(context.Background(), "q", 5); err == nil || !strings.Contains(err.Error(), "HTTP 503") {
		t.Errorf("err = %v, want HTTP 503", err)
	}
}
