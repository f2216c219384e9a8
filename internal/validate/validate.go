// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package validate filters extracted paper sections into indexable chunks.
// It drops boilerplate sections, rejects corrupted extractions, and stamps
// every surviving chunk with its source paper and section.
// Implements: prd003-validation (R1-R3);
//
//	docs/ARCHITECTURE § Validation.
package validate

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pdiddy/research-agent/pkg/types"
)

// MinContentLength is the shortest section content that carries enough
// substance to index. Shorter sections are navigation stubs, empty headings,
// or figure captions (R1.1).
const MinContentLength = 300

// forbiddenTitles marks sections dropped regardless of length: reference
// lists and site chrome that survive extraction on some renderings (R1.2).
// Matching is case-insensitive on the full normalized title.
var forbiddenTitles = map[string]bool{
	"references":   true,
	"citations":    true,
	"quick links":  true,
	"arxivlabs":    true,
	"access paper": true,
}

// corruptionMarkers are substrings that indicate a truncated or failed
// rendering. A section containing one is dropped; the paper's other
// sections still qualify on their own merits (R2.1).
var corruptionMarkers = []string{"fatal error", "abruptly"}

// Summary holds the counts from one validation pass (R3.2).
type Summary struct {
	Chunks          int
	SectionsDropped int
	PapersSkipped   int
}

// LoadExtracted reads every extracted-paper JSON file in dir. A file that
// fails to parse is warned about and skipped; it never aborts the load.
func LoadExtracted(dir string, w io.Writer) ([]types.ExtractedPaper, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading papers directory: %w", err)
	}

	var papers []types.ExtractedPaper
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(w, "warning: reading %s: %v\n", path, err)
			continue
		}
		var paper types.ExtractedPaper
		if err := json.Unmarshal(data, &paper); err != nil {
			fmt.Fprintf(w, "warning: parsing %s: %v\n", path, err)
			continue
		}
		papers = append(papers, paper)
	}
	return papers, nil
}

// Chunks validates every paper and returns the annotated text chunks that
// survive, in paper order then section order. Each chunk records its source
// paper and section so retrieval output stays attributable (R3.1).
func Chunks(papers []types.ExtractedPaper) ([]string, Summary) {
	var (
		chunks  []string
		summary Summary
	)

	for _, paper := range papers {
		kept := 0
		for _, section := range paper.Sections {
			if !usable(section) {
				summary.SectionsDropped++
				continue
			}
			chunks = append(chunks, Annotate(paper, section))
			summary.Chunks++
			kept++
		}
		// A paper with no surviving sections contributes nothing to the
		// index and is reported as skipped (R2.2).
		if kept == 0 {
			summary.PapersSkipped++
		}
	}
	return chunks, summary
}

// Annotate stamps a section with its provenance header. The format is load
// bearing: retrieval surfaces these chunks verbatim, and the agents cite the
// Source and Link lines in their answers.
func Annotate(paper types.ExtractedPaper, section types.Section) string {
	return fmt.Sprintf("Source: %s (Link: %s)\nSection: %s\n\n%s",
		paper.PaperID, paper.Link, section.Title, section.Content)
}

func usable(section types.Section) bool {
	if forbiddenTitles[strings.ToLower(strings.TrimSpace(section.Title))] {
		return false
	}
	if corrupted(section) {
		return false
	}
	return len(section.Content) >= MinContentLength
}

func corrupted(section types.Section) bool {
	lower := strings.ToLower(section.Content)
	for _, marker := range corruptionMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
