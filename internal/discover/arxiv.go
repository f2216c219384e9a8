// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/research-agent/internal/httputil"
	"github.com/pdiddy/research-agent/pkg/types"
)

// arxivAPIBase is the arXiv search endpoint. Declared as a var so tests
// can substitute an httptest server.
var arxivAPIBase = "https://export.arxiv.org/api/query"

// ArxivProvider queries the arXiv API directly, with no companion crawler
// script involved. Results are ordered by relevance; the link is the
// canonical abstract URL the rest of the pipeline keys on (R1.2).
type ArxivProvider struct {
	Client *http.Client
}

// NewArxivProvider returns a provider with a 30 second request timeout.
func NewArxivProvider() *ArxivProvider {
	return &ArxivProvider{Client: &http.Client{Timeout: 30 * time.Second}}
}

// Name returns the provider identifier.
func (p *ArxivProvider) Name() string { return "arxiv-api" }

// Search queries the arXiv API for one query and returns up to limit
// references.
func (p *ArxivProvider) Search(ctx context.Context, query string, limit int) ([]types.PaperReference, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	terms := strings.Fields(query)
	searchQuery := "all:" + strings.Join(terms, "+")
	reqURL := fmt.Sprintf("%s?search_query=%s&start=0&max_results=%d&sortBy=relevance&sortOrder=descending",
		arxivAPIBase, url.QueryEscape(searchQuery), limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := httputil.DoWithRetry(ctx, p.Client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var feed arxivFeed
	if err := xml.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}

	var refs []types.PaperReference
	for i, entry := range feed.Entries {
		link := strings.TrimSpace(entry.ID)
		if link == "" {
			continue
		}

		var authors []string
		for _, a := range entry.Authors {
			authors = append(authors, strings.TrimSpace(a.Name))
		}

		refs = append(refs, types.PaperReference{
			Rank:    i + 1,
			Title:   strings.TrimSpace(entry.Title),
			Authors: strings.Join(authors, ", "),
			Summary: strings.TrimSpace(entry.Summary),
			Link:    link,
		})
	}
	return refs, nil
}

// arXiv Atom feed XML structures.
type arxivFeed struct {
	Entries []arxivEntry `xml:"entry"`
}

type arxivEntry struct {
	ID      string        `xml:"id"`
	Title   string        `xml:"title"`
	Summary string        `xml:"summary"`
	Authors []arxivAuthor `xml:"author"`
}

type arxivAuthor struct {
	Name string `xml:"name"`
}
