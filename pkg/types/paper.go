// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PaperReference is a candidate paper returned by the discovery provider.
// Per prd001-discovery R1.2: rank, title, authors, summary, and the canonical
// full-text link. The link is the deduplication identity; a reference without
// one cannot be deduplicated or fetched and is dropped by the aggregator.
// References are never mutated after creation.
type PaperReference struct {
	// Rank is the 1-based position in the provider's result list.
	Rank int `json:"rank"`

	// Title is the paper title as reported by the provider.
	Title string `json:"title"`

	// Authors is the provider's author line, unparsed.
	Authors string `json:"authors"`

	// Summary is the provider's abstract snippet.
	Summary string `json:"summary"`

	// Link is the canonical arXiv abstract URL used as the dedup key.
	Link string `json:"link"`
}

// Section is one titled block of extracted article text. Section order
// matches document order; content is whitespace-normalized before storage.
type Section struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ExtractedPaper is the persisted unit of extraction: one JSON document per
// discovered paper, immutable once written and superseded wholesale by
// re-extraction (never merged). Per prd002-extraction R4.1-R4.3.
type ExtractedPaper struct {
	// PaperID is a filesystem-safe slug derived from the link's path segment.
	PaperID string `json:"paper_id"`

	// Link is the source abstract URL from discovery.
	Link string `json:"link"`

	// HTMLURL is the ar5iv HTML rendering the sections were parsed from.
	HTMLURL string `json:"html_url"`

	// Sections holds the extracted sections in document order.
	Sections []Section `json:"sections"`
}
