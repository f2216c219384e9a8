// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package discover invokes the paper-discovery provider per query and merges
// the results into one deduplicated batch.
// Implements: prd001-discovery (R1-R4);
//
//	docs/ARCHITECTURE § Discovery.
package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pdiddy/research-agent/pkg/types"
)

// batchFile is the well-known name of the merged discovery batch inside the
// data directory.
const batchFile = "results.json"

// DefaultLimit is the per-query reference limit when none is configured.
const DefaultLimit = 5

// Provider searches a single discovery source for candidate papers. The
// browser-automation crawler implements this interface per the Strategy
// pattern (R2.5); tests supply a mock.
type Provider interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]types.PaperReference, error)
}

// AggregateOutput holds the merged references and run statistics.
type AggregateOutput struct {
	Papers      []types.PaperReference
	DupsRemoved int
	Dropped     int
	QueryErrors []string
}

// Aggregate runs the provider once per query in order, merges all returned
// references keyed by canonical link preserving first-seen order, and
// persists the merged set to dataDir/results.json (R1.1-R1.4).
//
// A failed query contributes zero references and a warning; it is never
// retried and does not abort the run (R2.3). References without a link are
// dropped silently: they cannot be deduplicated or fetched (R1.3).
//
// The batch file is overwritten wholesale on every run: one discovery run is
// one corpus, and prior runs do not accumulate unless reloaded first. This
// mirrors the provider's own combine-then-overwrite behavior and is a
// deliberate design choice, not an oversight.
func Aggregate(ctx context.Context, p Provider, queries []string, limit int, dataDir string, w io.Writer) (AggregateOutput, error) {
	if len(queries) == 0 {
		return AggregateOutput{}, fmt.Errorf("no discovery queries provided")
	}

	seen := make(map[string]bool)
	var out AggregateOutput

	for _, query := range queries {
		select {
		case <-ctx.Done():
			return out, ctx.Err()
		default:
		}

		fmt.Fprintf(w, "searching %s for %q\n", p.Name(), query)

		refs, err := p.Search(ctx, query, limit)
		if err != nil {
			msg := fmt.Sprintf("%s: %v", query, err)
			out.QueryErrors = append(out.QueryErrors, msg)
			fmt.Fprintf(w, "warning: query %q failed: %v\n", query, err)
			continue
		}

		for _, ref := range refs {
			if ref.Link == "" {
				out.Dropped++
				continue
			}
			if seen[ref.Link] {
				out.DupsRemoved++
				continue
			}
			seen[ref.Link] = true
			out.Papers = append(out.Papers, ref)
		}
	}

	if err := WriteBatch(dataDir, out.Papers); err != nil {
		return out, err
	}

	fmt.Fprintf(w, "\n%d unique papers", len(out.Papers))
	if out.DupsRemoved > 0 {
		fmt.Fprintf(w, " (%d duplicates removed)", out.DupsRemoved)
	}
	fmt.Fprintln(w)

	return out, nil
}

// WriteBatch persists the merged reference set to dataDir/results.json,
// replacing any previous batch (R4.1).
func WriteBatch(dataDir string, papers []types.PaperReference) error {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	data, err := json.MarshalIndent(papers, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling batch: %w", err)
	}
	return os.WriteFile(BatchPath(dataDir), data, 0o644)
}

// ReadBatch loads the persisted discovery batch. A missing file is reported
// as an error so callers can tell the user to run discovery first (R4.2).
func ReadBatch(dataDir string) ([]types.PaperReference, error) {
	data, err := os.ReadFile(BatchPath(dataDir))
	if err != nil {
		return nil, fmt.Errorf("reading discovery batch: %w", err)
	}
	var papers []types.PaperReference
	if err := json.Unmarshal(data, &papers); err != nil {
		return nil, fmt.Errorf("parsing discovery batch: %w", err)
	}
	return papers, nil
}

// BatchPath returns the batch file location inside dataDir.
func BatchPath(dataDir string) string {
	return filepath.Join(dataDir, batchFile)
}
