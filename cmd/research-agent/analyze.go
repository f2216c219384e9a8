// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-agent/internal/agent"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [question]",
	Short: "Run the three-agent analysis over the knowledge base",
	Long: `Analyze answers a research question with the full agent team. The Librarian
retrieves relevant chunks from the local knowledge base, the Web Researcher
plans targeted web searches around the gaps, and the Lead Analyst synthesizes
both into a structured Markdown analysis.

The knowledge base must have been built with the discover command first.
Use --save to also write the analysis under output/analyses/.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().Bool("save", false, "write the analysis to output/analyses/")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	question := strings.Join(args, " ")
	cfg := pipelineConfig(cmd)

	sessions := agent.NewSessionStore(cfg.DataDir)
	sess, err := sessions.Load()
	if err != nil {
		return err
	}
	if !sess.KBReady {
		return fmt.Errorf("knowledge base is empty: run 'research-agent discover' first")
	}

	team, store, err := newTeam(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	analysis, err := team.Analyze(context.Background(), question)
	if err != nil {
		return err
	}

	fmt.Println(analysis)

	sess.Append("user", question)
	sess.Append("assistant", analysis)
	if err := sessions.Save(sess); err != nil {
		return err
	}

	if save, _ := cmd.Flags().GetBool("save"); save {
		path, err := saveAnalysis(question, analysis)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "analysis saved to %s\n", path)
	}
	return nil
}

// saveAnalysis writes the analysis as a timestamped Markdown file with the
// question as its title.
func saveAnalysis(question, analysis string) (string, error) {
	dir := filepath.Join("output", "analyses")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating analyses directory: %w", err)
	}

	name := time.Now().Format("2006-01-02-150405") + ".md"
	path := filepath.Join(dir, name)
	content := fmt.Sprintf("# %s\n\n%s\n", question, analysis)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return "", fmt.Errorf("writing analysis: %w", err)
	}
	return path, nil
}
