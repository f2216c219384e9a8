// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package plan generates the search queries that drive discovery, web
// research, and chat grounding. Every planner degrades gracefully: a
// malformed model response falls back to the user's own words, so planning
// can never block the pipeline.
// Implements: prd005-agents (R2);
//
//	docs/ARCHITECTURE § Planning.
package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/pdiddy/research-agent/internal/llm"
)

const (
	searchPlannerRole = "You are an expert at creating concise, diverse search queries for academic databases."
	webPlannerRole    = "You are a Research Planner that generates effective web search queries."
	chatPlannerRole   = "You are an expert at generating helpful, relevant search queries."
	keywordRole       = "You are a keyword extraction specialist."
)

// queriesPayload is the structured planner response shape: a single
// "queries" key holding a list of strings.
type queriesPayload struct {
	Queries []string `json:"queries"`
}

// SearchQueries plans 2-3 short arXiv queries for a research topic. On any
// model or decode failure the topic itself becomes the single query (R2.3).
func SearchQueries(ctx context.Context, client llm.Client, topic string) []string {
	prompt := fmt.Sprintf(`Based on the user's research request, generate 2-3 diverse and effective search queries (maximum 6 words) for the Arxiv database. Respond in JSON format with a single key "queries" which is a list of strings. User Request: %q`, topic)

	queries, err := structuredQueries(ctx, client, searchPlannerRole, prompt)
	if err != nil || len(queries) == 0 {
		return []string{topic}
	}
	return queries
}

// WebQueries plans up to max targeted web queries to fill the gaps the local
// context leaves open. The local context shown to the planner is truncated
// to contextLimit characters. An empty or failed plan returns nil; the
// caller falls back to searching the question directly (R2.4).
func WebQueries(ctx context.Context, client llm.Client, question, localContext string, max, contextLimit int) []string {
	localContext = truncate(localContext, contextLimit)
	prompt := fmt.Sprintf(`Based on the user's question and the information already found in our local papers, what specific, targeted questions should we ask a web search engine to fill in the gaps? Generate up to %d concise search queries. Respond in JSON with a single key "queries". User Question: %q Found Local Context: %q`, max, question, localContext)

	queries, err := structuredQueries(ctx, client, webPlannerRole, prompt)
	if err != nil {
		return nil
	}
	if max > 0 && len(queries) > max {
		queries = queries[:max]
	}
	return queries
}

// ChatQueries plans 2-3 web queries for a conversational input. Nil means
// the caller searches the input directly.
func ChatQueries(ctx context.Context, client llm.Client, input string) []string {
	prompt := fmt.Sprintf(`The user is asking a general question or starting a conversation. Analyze their input and generate 2-3 web search queries to find helpful information for a thoughtful response. Respond in JSON format with a single key "queries". User Input: %q`, input)

	queries, err := structuredQueries(ctx, client, chatPlannerRole, prompt)
	if err != nil {
		return nil
	}
	return queries
}

// Keywords condenses a question into the terms worth embedding for a vector
// search. A model failure falls back to the raw question (R2.2).
func Keywords(ctx context.Context, client llm.Client, question string) string {
	prompt := fmt.Sprintf(`From the user's question, extract the core keywords to search in a vector database. Question: %q`, question)

	out, err := client.Complete(ctx, keywordRole, prompt, false)
	if err != nil || strings.TrimSpace(out) == "" {
		return question
	}
	return strings.TrimSpace(out)
}

func structuredQueries(ctx context.Context, client llm.Client, role, prompt string) ([]string, error) {
	raw, err := client.Complete(ctx, role, prompt, true)
	if err != nil {
		return nil, err
	}

	var payload queriesPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("decoding planner response: %w", err)
	}

	var queries []string
	for _, q := range payload.Queries {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	return queries, nil
}

// truncate cuts s to at most limit characters on a rune boundary, so a
// multi-byte character is never split mid-sequence inside a prompt.
func truncate(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	runes := 0
	for i := range s {
		if runes == limit {
			return s[:i]
		}
		runes++
	}
	return s
}
