// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package agent

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/pdiddy/research-agent/internal/discover"
	"github.com/pdiddy/research-agent/internal/extract"
	"github.com/pdiddy/research-agent/internal/index"
	"github.com/pdiddy/research-agent/internal/llm"
	"github.com/pdiddy/research-agent/internal/plan"
	"github.com/pdiddy/research-agent/internal/validate"
	"github.com/pdiddy/research-agent/pkg/types"
)

// Indexer rebuilds the knowledge base from validated chunks.
// *index.Store implements it.
type Indexer interface {
	Rebuild(ctx context.Context, embedder llm.Embedder, chunks []string, w io.Writer) error
}

// Pipeline runs the end-to-end research flow: plan search queries, discover
// papers, extract and validate their sections, and rebuild the embedding
// index. A successful run flips the session's knowledge-base flag.
type Pipeline struct {
	LLM      llm.Client
	Provider discover.Provider
	HTTP     *http.Client
	Index    Indexer
	Embedder llm.Embedder
	Sessions *SessionStore
	Cfg      types.PipelineConfig
}

// ResearchSummary aggregates the per-stage counts of one research run.
type ResearchSummary struct {
	Queries      int
	UniquePapers int
	Extraction   extract.BatchSummary
	Validation   validate.Summary
	KBReady      bool
}

// Research builds the knowledge base for a topic. Stages degrade rather
// than abort where the data allows it: a run that discovers papers but
// validates no usable content completes with KBReady false and the previous
// index untouched (R4.2).
func (p *Pipeline) Research(ctx context.Context, topic string, w io.Writer) (*ResearchSummary, error) {
	queries := plan.SearchQueries(ctx, p.LLM, topic)
	fmt.Fprintf(w, "planned %d queries:\n", len(queries))
	for _, q := range queries {
		fmt.Fprintf(w, "  - %s\n", q)
	}

	agg, err := discover.Aggregate(ctx, p.Provider, queries, p.Cfg.Discovery.Limit, p.Cfg.DataDir, w)
	if err != nil {
		return nil, fmt.Errorf("discovering papers: %w", err)
	}

	runPath := filepath.Join(p.Cfg.DataDir, "last_run.yaml")
	if err := discover.WriteRunFile(runPath, topic, queries, agg); err != nil {
		fmt.Fprintf(w, "warning: writing run record: %v\n", err)
	}

	summary := &ResearchSummary{Queries: len(queries), UniquePapers: len(agg.Papers)}
	if len(agg.Papers) == 0 {
		fmt.Fprintln(w, "no papers discovered; knowledge base unchanged")
		return summary, nil
	}

	summary.Extraction, err = extract.ProcessBatch(ctx, p.HTTP, agg.Papers, p.Cfg.Extraction, w)
	if err != nil {
		return nil, fmt.Errorf("extracting papers: %w", err)
	}

	papers, err := validate.LoadExtracted(p.Cfg.Extraction.PapersDir, w)
	if err != nil {
		return nil, fmt.Errorf("loading extracted papers: %w", err)
	}

	var chunks []string
	chunks, summary.Validation = validate.Chunks(papers)
	fmt.Fprintf(w, "validated %d chunks (%d sections dropped, %d papers skipped)\n",
		summary.Validation.Chunks, summary.Validation.SectionsDropped, summary.Validation.PapersSkipped)

	err = p.Index.Rebuild(ctx, p.Embedder, chunks, w)
	switch {
	case errors.Is(err, index.ErrNoChunks):
		fmt.Fprintln(w, "research was done, but no valid content could be loaded")
		return summary, nil
	case err != nil:
		return nil, fmt.Errorf("rebuilding index: %w", err)
	}

	summary.KBReady = true
	if err := p.markKBReady(); err != nil {
		return nil, err
	}

	fmt.Fprintf(w, "\nresearch completed using %d queries, finding a total of %d unique papers\n",
		summary.Queries, summary.UniquePapers)
	fmt.Fprintln(w, "knowledge base updated")
	return summary, nil
}

func (p *Pipeline) markKBReady() error {
	sess, err := p.Sessions.Load()
	if err != nil {
		return fmt.Errorf("loading session: %w", err)
	}
	sess.KBReady = true
	if err := p.Sessions.Save(sess); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}
	return nil
}
