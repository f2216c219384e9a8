// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"

	"github.com/pdiddy/research-agent/internal/index"
	"github.com/pdiddy/research-agent/internal/llm"
)

// IndexRetriever adapts the embedding index to the Retriever interface by
// binding it to the embedder that built it.
type IndexRetriever struct {
	Store    *index.Store
	Embedder llm.Embedder
}

func (r *IndexRetriever) Search(ctx context.Context, query string, limit int) (string, error) {
	return r.Store.Search(ctx, r.Embedder, query, limit)
}
