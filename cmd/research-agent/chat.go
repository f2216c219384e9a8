// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/research-agent/internal/agent"
)

var chatCmd = &cobra.Command{
	Use:   "chat [input]",
	Short: "Ask a general question grounded in a quick web search",
	Long: `Chat answers a conversational input without touching the knowledge base.
The input is turned into 2-3 web search queries, the results are summarized,
and the exchange is recorded in the session history.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	input := strings.Join(args, " ")
	cfg := pipelineConfig(cmd)

	team, store, err := newTeam(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	answer, err := team.Chat(context.Background(), input)
	if err != nil {
		return err
	}

	fmt.Println(answer)

	sessions := agent.NewSessionStore(cfg.DataDir)
	sess, err := sessions.Load()
	if err != nil {
		return err
	}
	sess.Append("user", input)
	sess.Append("assistant", answer)
	return sessions.Save(sess)
}
