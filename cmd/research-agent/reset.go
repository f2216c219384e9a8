// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-agent/internal/agent"
)

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all research artifacts and the session",
	Long: `Reset removes the data directory wholesale: discovery results, extracted
papers, the embedding index, and the session state. The next discover run
starts from nothing.`,
	RunE: runReset,
}

func init() {
	rootCmd.AddCommand(resetCmd)
}

func runReset(cmd *cobra.Command, args []string) error {
	cfg := pipelineConfig(cmd)
	if err := agent.Reset(cfg.DataDir); err != nil {
		return err
	}
	fmt.Printf("removed %s\n", cfg.DataDir)
	return nil
}
