// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-agent/internal/index"
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the knowledge base directly",
	Long: `Retrieve embeds the query and prints the nearest chunks from the knowledge
base, provenance headers included. It is the Librarian's retrieval step
exposed directly, useful for inspecting what an analysis would see.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().Int("limit", 0, "maximum chunks to return (default 10)")

	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	cfg := pipelineConfig(cmd)
	limit, _ := cmd.Flags().GetInt("limit")

	client, err := newOllama(cfg)
	if err != nil {
		return err
	}
	store, err := index.Open(cfg.Index)
	if err != nil {
		return err
	}
	defer store.Close()

	result, err := store.Search(context.Background(), client, query, limit)
	if err != nil {
		return err
	}
	if result == "" {
		fmt.Println("no matching chunks; the knowledge base may be empty")
		return nil
	}

	fmt.Println(result)
	return nil
}
