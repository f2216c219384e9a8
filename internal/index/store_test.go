// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package index

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/pdiddy/research-agent/pkg/types"
)

// mockEmbedder maps known texts to fixed vectors so nearest-neighbor order
// is predictable without a live embedding model.
type mockEmbedder struct {
	vectors map[string][]float32
	failOn  string
	calls   int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	m.calls++
	if m.failOn != "" && strings.Contains(text, m.failOn) {
		return nil, errors.New("embedding service unavailable")
	}
	if v, ok := m.vectors[text]; ok {
		return v, nil
	}
	return []float32{0, 0, 1}, nil
}

func (m *mockEmbedder) Model() string { return "mock-embed" }

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(types.IndexConfig{IndexDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRebuildAndSearch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	chunks := []string{"about graphs", "about transformers", "about databases"}
	embedder := &mockEmbedder{vectors: map[string][]float32{
		"about graphs":       {1, 0, 0},
		"about transformers": {0, 1, 0},
		"about databases":    {0, 0, 1},
		"graph question":     {0.9, 0.1, 0},
	}}

	var buf bytes.Buffer
	if err := store.Rebuild(ctx, embedder, chunks, &buf); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "indexed 3 chunks") {
		t.Errorf("output = %q", buf.String())
	}

	got, err := store.Search(ctx, embedder, "graph question", 2)
	if err != nil {
		t.Fatal(err)
	}
	parts := strings.Split(got, "\n\n---\n\n")
	if len(parts) != 2 {
		t.Fatalf("parts = %v, want 2", parts)
	}
	if parts[0] != "about graphs" {
		t.Errorf("nearest = %q, want about graphs", parts[0])
	}
}

func TestSearchWithoutIndexReturnsEmpty(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Search(context.Background(), &mockEmbedder{}, "anything", 5)
	if err != nil {
		t.Fatal(err)
	}
	if got != "" {
		t.Errorf("got = %q, want empty", got)
	}

	ready, err := store.Ready(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ready {
		t.Error("Ready = true on fresh store")
	}
}

func TestRebuildEmptyChunksLeavesIndexIntact(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	embedder := &mockEmbedder{}

	if err := store.Rebuild(ctx, embedder, []string{"existing chunk"}, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	err := store.Rebuild(ctx, embedder, nil, &bytes.Buffer{})
	if !errors.Is(err, ErrNoChunks) {
		t.Fatalf("err = %v, want ErrNoChunks", err)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want previous index preserved", n)
	}
}

func TestRebuildEmbedFailureLeavesIndexIntact(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Rebuild(ctx, &mockEmbedder{}, []string{"old one", "old two"}, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	failing := &mockEmbedder{failOn: "poison"}
	err := store.Rebuild(ctx, failing, []string{"new one", "poison pill", "new three"}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "embedding chunk 2/3") {
		t.Fatalf("err = %v", err)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Errorf("Count = %d, want previous index preserved", n)
	}
}

func TestRebuildReplacesWholesale(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	embedder := &mockEmbedder{}

	if err := store.Rebuild(ctx, embedder, []string{"a", "b", "c"}, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}
	if err := store.Rebuild(ctx, embedder, []string{"only"}, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	n, err := store.Count(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("Count = %d, want 1 after rebuild", n)
	}
}

func TestSearchDefaultLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	var chunks []string
	vectors := map[string][]float32{}
	for i := 0; i < DefaultMaxResults+5; i++ {
		c := fmt.Sprintf("chunk number %d", i)
		chunks = append(chunks, c)
		vectors[c] = []float32{float32(i), 1, 0}
	}
	embedder := &mockEmbedder{vectors: vectors}

	if err := store.Rebuild(ctx, embedder, chunks, &bytes.Buffer{}); err != nil {
		t.Fatal(err)
	}

	got, err := store.Search(ctx, embedder, "chunk number 0", 0)
	if err != nil {
		t.Fatal(err)
	}
	parts := strings.Split(got, "\n\n---\n\n")
	if len(parts) != DefaultMaxResults {
		t.Errorf("results = %d, want default limit %d", len(parts), DefaultMaxResults)
	}
}
