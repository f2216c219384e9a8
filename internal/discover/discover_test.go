package discover

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/pdiddy/research-agent/pkg/types"
)

// --- mock provider ---

type mockProvider struct {
	name    string
	results map[string][]types.PaperReference
	errs    map[string]error
	calls   []string
}

func (m *mockProvider) Name() string {
	if m.name == "" {
		return "mock"
	}
	return m.name
}

func (m *mockProvider) Search(_ context.Context, query string, _ int) ([]types.PaperReference, error) {
	m.calls = append(m.calls, query)
	if err, ok := m.errs[query]; ok {
		return nil, err
	}
	return m.results[query], nil
}

func ref(rank int, title, link string) types.PaperReference {
	return types.PaperReference{Rank: rank, Title: title, Link: link}
}

// --- Aggregate ---

func TestAggregateDeduplicatesByLink(t *testing.T) {
	p := &mockProvider{results: map[string][]types.PaperReference{
		"q1": {
			ref(1, "Paper A", "https://arxiv.org/abs/2301.00001"),
			ref(2, "Paper B", "https://arxiv.org/abs/2301.00002"),
		},
		"q2": {
			ref(1, "Paper B again", "https://arxiv.org/abs/2301.00002"),
			ref(2, "Paper C", "https://arxiv.org/abs/2301.00003"),
		},
	}}

	var buf bytes.Buffer
	out, err := Aggregate(context.Background(), p, []string{"q1", "q2"}, 5, t.TempDir(), &buf)
	if err != nil {
		t.Fatal(err)
	}

	if len(out.Papers) != 3 {
		t.Fatalf("got %d papers, want 3", len(out.Papers))
	}
	if out.DupsRemoved != 1 {
		t.Errorf("DupsRemoved = %d, want 1", out.DupsRemoved)
	}

	// First-seen order across queries is preserved.
	wantLinks := []string{
		"https://arxiv.org/abs/2301.00001",
		"https://arxiv.org/abs/2301.00002",
		"https://arxiv.org/abs/2301.00003",
	}
	for i, want := range wantLinks {
		if out.Papers[i].Link != want {
			t.Errorf("papers[%d].Link = %q, want %q", i, out.Papers[i].Link, want)
		}
	}
	// The first-seen record wins: "Paper B", not "Paper B again".
	if out.Papers[1].Title != "Paper B" {
		t.Errorf("papers[1].Title = %q, want the first-seen record", out.Papers[1].Title)
	}
}

func TestAggregateEachLinkExactlyOnceUnderPermutation(t *testing.T) {
	batches := map[string][]types.PaperReference{
		"a": {ref(1, "A", "https://arxiv.org/abs/1"), ref(2, "B", "https://arxiv.org/abs/2")},
		"b": {ref(1, "B", "https://arxiv.org/abs/2"), ref(2, "C", "https://arxiv.org/abs/3")},
		"c": {ref(1, "A", "https://arxiv.org/abs/1"), ref(2, "C", "https://arxiv.org/abs/3")},
	}

	perms := [][]string{
		{"a", "b", "c"}, {"c", "b", "a"}, {"b", "a", "c"},
	}
	for _, queries := range perms {
		p := &mockProvider{results: batches}
		out, err := Aggregate(context.Background(), p, queries, 5, t.TempDir(), &bytes.Buffer{})
		if err != nil {
			t.Fatal(err)
		}
		seen := make(map[string]int)
		for _, paper := range out.Papers {
			seen[paper.Link]++
		}
		if len(seen) != 3 {
			t.Errorf("permutation %v: got %d distinct links, want 3", queries, len(seen))
		}
		for link, n := range seen {
			if n != 1 {
				t.Errorf("permutation %v: link %s appears %d times", queries, link, n)
			}
		}
	}
}

func TestAggregateDropsLinklessReferences(t *testing.T) {
	p := &mockProvider{results: map[string][]types.PaperReference{
		"q": {
			ref(1, "Has link", "https://arxiv.org/abs/1"),
			{Rank: 2, Title: "No link"},
		},
	}}

	out, err := Aggregate(context.Background(), p, []string{"q"}, 5, t.TempDir(), &bytes.Buffer{})
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Papers) != 1 {
		t.Fatalf("got %d papers, want 1", len(out.Papers))
	}
	if out.Dropped != 1 {
		t.Errorf("Dropped = %d, want 1", out.Dropped)
	}
}

func TestAggregateContinuesPastFailedQuery(t *testing.T) {
	p := &mockProvider{
		results: map[string][]types.PaperReference{
			"good": {ref(1, "A", "https://arxiv.org/abs/1")},
		},
		errs: map[string]error{"bad": fmt.Errorf("crawler timed out")},
	}

	var buf bytes.Buffer
	out, err := Aggregate(context.Background(), p, []string{"bad", "good"}, 5, t.TempDir(), &buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(out.Papers) != 1 {
		t.Fatalf("got %d papers, want 1", len(out.Papers))
	}
	if len(out.QueryErrors) != 1 {
		t.Errorf("QueryErrors = %v, want one entry", out.QueryErrors)
	}
	if want := []string{"bad", "good"}; len(p.calls) != 2 || p.calls[0] != want[0] || p.calls[1] != want[1] {
		t.Errorf("provider calls = %v, want %v", p.calls, want)
	}
	if !bytes.Contains(buf.Bytes(), []byte("warning")) {
		t.Error("expected a warning notice for the failed query")
	}
}

func TestAggregateNoQueries(t *testing.T) {
	p := &mockProvider{}
	if _, err := Aggregate(context.Background(), p, nil, 5, t.TempDir(), &bytes.Buffer{}); err == nil {
		t.Error("expected error for empty query list")
	}
}

// --- batch persistence ---

func TestAggregateOverwritesBatchFile(t *testing.T) {
	dataDir := t.TempDir()

	first := &mockProvider{results: map[string][]types.PaperReference{
		"q": {ref(1, "Old", "https://arxiv.org/abs/old")},
	}}
	if _, err := Aggregate(context.Background(), first, []string{"q"}, 5, dataDir, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	second := &mockProvider{results: map[string][]types.PaperReference{
		"q": {ref(1, "New", "https://arxiv.org/abs/new")},
	}}
	if _, err := Aggregate(context.Background(), second, []string{"q"}, 5, dataDir, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	papers, err := ReadBatch(dataDir)
	if err != nil {
		t.Fatal(err)
	}
	if len(papers) != 1 || papers[0].Link != "https://arxiv.org/abs/new" {
		t.Errorf("batch = %+v, want only the second run's paper", papers)
	}
}

func TestReadBatchMissingFile(t *testing.T) {
	if _, err := ReadBatch(t.TempDir()); err == nil {
		t.Error("expected error for missing batch file")
	}
}

func TestRunFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "run.yaml")
	out := AggregateOutput{
		Papers:      []types.PaperReference{ref(1, "A", "https://arxiv.org/abs/1")},
		DupsRemoved: 2,
		QueryErrors: []string{"q3: timeout"},
	}
	if err := WriteRunFile(path, "graph neural networks", []string{"q1", "q2", "q3"}, out); err != nil {
		t.Fatal(err)
	}

	rf, err := ReadRunFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if rf.Topic != "graph neural networks" {
		t.Errorf("Topic = %q", rf.Topic)
	}
	if len(rf.Queries) != 3 {
		t.Errorf("Queries = %v, want 3", rf.Queries)
	}
	if rf.Summary.UniquePapers != 1 || rf.Summary.DuplicatesRemoved != 2 {
		t.Errorf("Summary = %+v", rf.Summary)
	}
}
