// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "research-agent/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// LLMConfig holds connection settings for the Ollama inference service.
// The same host serves chat completion and embeddings; the embedding model
// identity must match between indexing and retrieval or similarity is
// meaningless. Per prd004-index R2.2.
type LLMConfig struct {
	// Host is the Ollama base URL (default "http://localhost:11434").
	Host string `json:"host" yaml:"host"`

	// Model is the chat model identifier (e.g. "phi3:3.8b").
	Model string `json:"model" yaml:"model"`

	// EmbedModel is the embedding model identifier (e.g. "embeddinggemma:latest").
	EmbedModel string `json:"embed_model" yaml:"embed_model"`

	// APIKey is an optional bearer token for remote Ollama servers.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Timeout bounds each completion or embedding round trip.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// DiscoveryConfig holds settings for the discovery stage.
// Per prd001-discovery R2.1-R2.4.
type DiscoveryConfig struct {
	// Script is the path to the companion crawler script invoked per query.
	Script string `json:"script" yaml:"script"`

	// Interpreter runs the script (default "python").
	Interpreter string `json:"interpreter" yaml:"interpreter"`

	// ScriptResults is the JSON file the crawler writes its results to.
	ScriptResults string `json:"script_results" yaml:"script_results"`

	// Limit is the maximum references requested per query (default 5).
	Limit int `json:"limit" yaml:"limit"`

	// QueryTimeout bounds one crawler invocation (default 5m).
	QueryTimeout time.Duration `json:"query_timeout" yaml:"query_timeout"`
}

// ExtractionConfig holds settings for the section extraction stage.
// Per prd002-extraction R1.1, R4.1.
type ExtractionConfig struct {
	HTTPConfig `yaml:",inline"`

	// PapersDir is the directory extracted papers are written to.
	PapersDir string `json:"papers_dir" yaml:"papers_dir"`
}

// IndexConfig holds settings for the embedding index.
// Per prd004-index R1.1, R3.2.
type IndexConfig struct {
	// IndexDir is the directory holding the SQLite index database.
	IndexDir string `json:"index_dir" yaml:"index_dir"`

	// MaxResults is the default retrieval limit (default 10).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// WebSearchConfig holds settings for the live web-search provider.
type WebSearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// MaxResults is the number of results fetched per web query (default 3).
	MaxResults int `json:"max_results" yaml:"max_results"`
}

// AgentConfig holds settings for the multi-agent analysis pipeline.
// Per prd005-agents R2.2, R3.1.
type AgentConfig struct {
	// RetrievalLimit is the Librarian's knowledge base result limit (default 10).
	RetrievalLimit int `json:"retrieval_limit" yaml:"retrieval_limit"`

	// MaxWebQueries caps the Web Researcher's gap-filling queries (default 3).
	MaxWebQueries int `json:"max_web_queries" yaml:"max_web_queries"`

	// LocalContextLimit is how many characters of the Librarian's findings
	// are shown to the web query planner (default 1000).
	LocalContextLimit int `json:"local_context_limit" yaml:"local_context_limit"`
}

// PipelineConfig groups all stage configurations for the research pipeline.
type PipelineConfig struct {
	// DataDir is the artifacts root (contains results.json, papers/, index/,
	// session.yaml). Reset removes it wholesale.
	DataDir string `json:"data_dir" yaml:"data_dir"`

	LLM        LLMConfig        `json:"llm" yaml:"llm"`
	Discovery  DiscoveryConfig  `json:"discovery" yaml:"discovery"`
	Extraction ExtractionConfig `json:"extraction" yaml:"extraction"`
	Index      IndexConfig      `json:"index" yaml:"index"`
	WebSearch  WebSearchConfig  `json:"web_search" yaml:"web_search"`
	Agent      AgentConfig      `json:"agent" yaml:"agent"`
}
