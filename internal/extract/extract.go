// Package extract turns discovered papers into ordered, titled text sections.
// It fetches each paper's HTML rendering, parses the structural sections, and
// persists one JSON document per paper.
// Implements: prd002-extraction (R1-R4);
//
//	docs/ARCHITECTURE § Extraction.
package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pdiddy/research-agent/pkg/types"
)

// BatchSummary holds counts from a batch extraction run (R1.4).
type BatchSummary struct {
	Extracted int
	Failed    int
}

// Total returns the number of papers processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Failed
}

// ProcessBatch extracts every paper in the discovery batch. Extraction
// failure is per paper and never aborts the batch: a paper whose link has an
// unrecognized shape or whose fetch fails is counted as failed and skipped
// (R1.2, R1.3). A batch may legitimately produce zero extracted papers.
func ProcessBatch(ctx context.Context, client *http.Client, papers []types.PaperReference, cfg types.ExtractionConfig, w io.Writer) (BatchSummary, error) {
	if err := os.MkdirAll(cfg.PapersDir, 0o755); err != nil {
		return BatchSummary{}, fmt.Errorf("creating papers directory: %w", err)
	}

	var summary BatchSummary
	for _, ref := range papers {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		paper, err := ProcessPaper(ctx, client, ref, cfg)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", PaperID(ref.Link), err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "extracted %s (%d sections)\n", paper.PaperID, len(paper.Sections))
		summary.Extracted++
	}

	fmt.Fprintf(w, "\nextracted: %d, failed: %d\n", summary.Extracted, summary.Failed)
	return summary, nil
}

// ProcessPaper fetches one paper's HTML rendering, parses its sections, and
// writes the ExtractedPaper JSON. Re-extraction supersedes the previous file
// wholesale; files are never merged (R4.3).
func ProcessPaper(ctx context.Context, client *http.Client, ref types.PaperReference, cfg types.ExtractionConfig) (*types.ExtractedPaper, error) {
	htmlURL, err := Ar5ivURL(ref.Link)
	if err != nil {
		return nil, err
	}

	markup, err := FetchHTML(ctx, client, htmlURL, cfg)
	if err != nil {
		return nil, err
	}

	sections, err := ParseSections(markup)
	if err != nil {
		return nil, err
	}

	paper := &types.ExtractedPaper{
		PaperID:  PaperID(ref.Link),
		Link:     ref.Link,
		HTMLURL:  htmlURL,
		Sections: sections,
	}

	if err := writePaper(cfg.PapersDir, paper); err != nil {
		return nil, err
	}
	return paper, nil
}

func writePaper(dir string, paper *types.ExtractedPaper) error {
	data, err := json.MarshalIndent(paper, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling paper %s: %w", paper.PaperID, err)
	}
	path := filepath.Join(dir, paper.PaperID+".json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
