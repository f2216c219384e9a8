// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-agent/internal/agent"
	"github.com/pdiddy/research-agent/internal/discover"
	"github.com/pdiddy/research-agent/internal/index"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [topic]",
	Short: "Research a topic and build the knowledge base",
	Long: `Discover runs the full research pipeline for a topic: the planner turns the
topic into 2-3 arXiv search queries, the crawler collects candidate papers,
and their sections are extracted, validated, and indexed with embeddings.

A successful run replaces the previous knowledge base and marks it ready for
the analyze command. Failed papers are skipped individually; the run only
fails outright when discovery or indexing itself fails.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runDiscover,
}

func init() {
	discoverCmd.Flags().Int("limit", 0, "maximum papers requested per query (default 5)")
	discoverCmd.Flags().String("script", "", "path to the crawler script (default search_arxiv.py)")
	discoverCmd.Flags().String("provider", "script", "discovery provider: script or api")

	rootCmd.AddCommand(discoverCmd)
}

func runDiscover(cmd *cobra.Command, args []string) error {
	topic := strings.Join(args, " ")
	cfg := pipelineConfig(cmd)

	if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 {
		cfg.Discovery.Limit = limit
	}
	if script, _ := cmd.Flags().GetString("script"); script != "" {
		cfg.Discovery.Script = script
	}

	var provider discover.Provider = discover.NewScriptProvider(cfg.Discovery)
	if name, _ := cmd.Flags().GetString("provider"); name == "api" {
		provider = discover.NewArxivProvider()
	}

	client, err := newOllama(cfg)
	if err != nil {
		return err
	}
	store, err := index.Open(cfg.Index)
	if err != nil {
		return err
	}
	defer store.Close()

	pipeline := &agent.Pipeline{
		LLM:      client,
		Provider: provider,
		HTTP:     extractionHTTPClient(cfg.Extraction),
		Index:    store,
		Embedder: client,
		Sessions: agent.NewSessionStore(cfg.DataDir),
		Cfg:      cfg,
	}

	summary, err := pipeline.Research(context.Background(), topic, os.Stdout)
	if err != nil {
		return err
	}
	if !summary.KBReady {
		fmt.Fprintln(os.Stderr, "knowledge base not updated; fix the issues above and re-run")
	}
	return nil
}
