// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-agent/internal/agent"
	"github.com/pdiddy/research-agent/internal/index"
	"github.com/pdiddy/research-agent/internal/llm"
	"github.com/pdiddy/research-agent/internal/websearch"
	"github.com/pdiddy/research-agent/pkg/types"
)

// pipelineConfig assembles the stage configurations from viper (config file
// and RESEARCH_AGENT_* environment) plus per-command flags. Flag values win
// over config values; both win over the defaults.
func pipelineConfig(cmd *cobra.Command) types.PipelineConfig {
	dataDir, _ := cmd.Flags().GetString("data-dir")
	if dataDir == "" {
		dataDir = stringDefault("data_dir", "data")
	}

	cfg := types.PipelineConfig{
		DataDir: dataDir,
		LLM: types.LLMConfig{
			Host:       stringDefault("llm.host", "http://localhost:11434"),
			Model:      stringDefault("llm.model", "phi3:3.8b"),
			EmbedModel: stringDefault("llm.embed_model", "embeddinggemma:latest"),
			APIKey:     secretDefault("ollama-api-key", viper.GetString("llm.api_key")),
			Timeout:    durationDefault("llm.timeout", 5*time.Minute),
		},
		Discovery: types.DiscoveryConfig{
			Script:        stringDefault("discovery.script", "search_arxiv.py"),
			Interpreter:   stringDefault("discovery.interpreter", "python"),
			ScriptResults: stringDefault("discovery.script_results", "arastirma_sonuclari.json"),
			Limit:         intDefault("discovery.limit", 5),
			QueryTimeout:  durationDefault("discovery.query_timeout", 5*time.Minute),
		},
		Extraction: types.ExtractionConfig{
			PapersDir: filepath.Join(dataDir, "papers"),
		},
		Index: types.IndexConfig{
			IndexDir:   filepath.Join(dataDir, "index"),
			MaxResults: intDefault("index.max_results", index.DefaultMaxResults),
		},
		WebSearch: types.WebSearchConfig{
			MaxResults: intDefault("web_search.max_results", 3),
		},
		Agent: types.AgentConfig{
			RetrievalLimit:    intDefault("agent.retrieval_limit", 10),
			MaxWebQueries:     intDefault("agent.max_web_queries", 3),
			LocalContextLimit: intDefault("agent.local_context_limit", 1000),
		},
	}
	cfg.Extraction.Timeout = durationDefault("extraction.timeout", 60*time.Second)
	cfg.Extraction.UserAgent = viper.GetString("extraction.user_agent")
	cfg.WebSearch.Timeout = durationDefault("web_search.timeout", 30*time.Second)
	cfg.WebSearch.UserAgent = viper.GetString("web_search.user_agent")
	return cfg
}

func stringDefault(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}

func intDefault(key string, fallback int) int {
	if v := viper.GetInt(key); v > 0 {
		return v
	}
	return fallback
}

func durationDefault(key string, fallback time.Duration) time.Duration {
	if v := viper.GetDuration(key); v > 0 {
		return v
	}
	return fallback
}

// newOllama builds the shared chat and embedding client.
func newOllama(cfg types.PipelineConfig) (*llm.Ollama, error) {
	return llm.NewOllama(cfg.LLM)
}

// newTeam wires the analysis team against the local index and web search.
// The caller owns the returned store and must close it.
func newTeam(cfg types.PipelineConfig) (*agent.Team, *index.Store, error) {
	client, err := newOllama(cfg)
	if err != nil {
		return nil, nil, err
	}
	store, err := index.Open(cfg.Index)
	if err != nil {
		return nil, nil, err
	}

	team := &agent.Team{
		LLM:       client,
		Retriever: &agent.IndexRetriever{Store: store, Embedder: client},
		Searcher:  websearch.New(cfg.WebSearch),
		Cfg:       cfg.Agent,
		Out:       os.Stderr,
	}
	return team, store, nil
}

// extractionHTTPClient is the client used for paper fetches.
func extractionHTTPClient(cfg types.ExtractionConfig) *http.Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return &http.Client{Timeout: timeout}
}
