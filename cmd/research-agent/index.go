// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-agent/internal/agent"
	"github.com/pdiddy/research-agent/internal/index"
	"github.com/pdiddy/research-agent/internal/validate"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the embedding index from extracted papers",
	Long: `Index revalidates the extracted papers on disk and rebuilds the embedding
index from scratch. Use it to refresh the knowledge base after changing the
embedding model, without re-running discovery.

The previous index is kept when validation yields no usable content.`,
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)

	papers, err := validate.LoadExtracted(cfg.Extraction.PapersDir, os.Stderr)
	if err != nil {
		return fmt.Errorf("loading extracted papers: %w", err)
	}

	chunks, summary := validate.Chunks(papers)
	fmt.Fprintf(os.Stdout, "validated %d chunks (%d sections dropped, %d papers skipped)\n",
		summary.Chunks, summary.SectionsDropped, summary.PapersSkipped)

	client, err := newOllama(cfg)
	if err != nil {
		return err
	}
	store, err := index.Open(cfg.Index)
	if err != nil {
		return err
	}
	defer store.Close()

	err = store.Rebuild(context.Background(), client, chunks, os.Stdout)
	if errors.Is(err, index.ErrNoChunks) {
		return fmt.Errorf("no valid content to index: run 'research-agent discover' first")
	}
	if err != nil {
		return err
	}

	sessions := agent.NewSessionStore(cfg.DataDir)
	sess, err := sessions.Load()
	if err != nil {
		return err
	}
	sess.KBReady = true
	return sessions.Save(sess)
}
