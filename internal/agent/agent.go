// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package agent orchestrates the research team: the Librarian searches the
// local knowledge base, the Web Researcher fills the gaps from the live web,
// and the Lead Analyst synthesizes both into the final answer. The package
// also owns the conversational chat flow and the end-to-end research
// pipeline that builds the knowledge base.
// Implements: prd005-agents (R1-R4);
//
//	docs/ARCHITECTURE § Agents.
package agent

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pdiddy/research-agent/internal/llm"
	"github.com/pdiddy/research-agent/internal/plan"
	"github.com/pdiddy/research-agent/internal/websearch"
	"github.com/pdiddy/research-agent/pkg/types"
)

// Placeholder context handed to the Lead Analyst when a researcher comes
// back empty. The analyst prompt depends on these exact sentences to reason
// about missing evidence instead of hallucinating it.
const (
	noLocalFindings = "The Librarian found no relevant information in the local knowledge base."
	noWebFindings   = "The Web Researcher found no relevant information."
)

const leadAnalystRole = `You are a brilliant, insightful academic research analyst. Your job is to combine evidence, reason logically, and write in clear, structured Markdown.

**Additional Rules:**
- Write in academic yet natural tone (not robotic).
- Add short subtitles for each theme.
- If data is contradictory, mention it explicitly.
- When no citations available, infer cautiously and note uncertainty.
- Use bullet points when comparing ideas.`

const chatAssistantRole = `You are a News Aggregator and Factual Assistant.
Your SOLE PURPOSE is to answer the user's question by summarizing the information found in the ` + "`Web Search Results`" + `.
- **DO NOT refuse to answer.**
- **DO NOT apologize or say you cannot provide real-time information.**
- **DO NOT recommend other websites.**
- Directly synthesize the information from the ` + "`Web Search Results`" + ` into a helpful, coherent answer.
- If the user is just saying "Hello," respond naturally as a friendly assistant.`

// Retriever answers semantic queries against the local knowledge base. An
// empty string means no relevant chunks, which is a normal outcome.
type Retriever interface {
	Search(ctx context.Context, query string, limit int) (string, error)
}

// Team wires the three analysis agents together. Out receives progress
// lines; the returned strings are the agents' work products.
type Team struct {
	LLM       llm.Client
	Retriever Retriever
	Searcher  websearch.Searcher
	Cfg       types.AgentConfig
	Out       io.Writer
}

// Analyze runs the full three-agent flow in its fixed order: Librarian,
// then Web Researcher (shown the Librarian's findings), then Lead Analyst.
// The ordering is load bearing: web queries are planned around what the
// local knowledge base already covers (R3.1).
func (t *Team) Analyze(ctx context.Context, question string) (string, error) {
	local, err := t.librarian(ctx, question)
	if err != nil {
		fmt.Fprintf(t.Out, "warning: librarian retrieval: %v\n", err)
		local = ""
	}

	web := t.webResearcher(ctx, question, local)

	return t.leadAnalyst(ctx, question, local, web)
}

// librarian condenses the question into keywords and searches the local
// knowledge base. Both a retrieval failure and an empty result leave the
// flow running with no local findings; the Lead Analyst is told so via the
// placeholder text.
func (t *Team) librarian(ctx context.Context, question string) (string, error) {
	fmt.Fprintln(t.Out, "Librarian: searching the local knowledge base...")

	keywords := plan.Keywords(ctx, t.LLM, question)
	local, err := t.Retriever.Search(ctx, keywords, t.retrievalLimit())
	if err != nil {
		return "", err
	}
	if local == "" {
		fmt.Fprintln(t.Out, "Librarian: found no relevant information in the local papers")
	}
	return local, nil
}

// webResearcher plans targeted gap-filling queries and runs them. When the
// planner produces nothing usable, the question itself is searched directly.
// Individual query failures degrade the report instead of failing the flow:
// the Lead Analyst can work with partial or empty web context (R3.3).
func (t *Team) webResearcher(ctx context.Context, question, local string) string {
	fmt.Fprintln(t.Out, "Web Researcher: planning and executing web search...")

	queries := plan.WebQueries(ctx, t.LLM, question, local, t.maxWebQueries(), t.localContextLimit())
	if len(queries) == 0 {
		fmt.Fprintln(t.Out, "Web Researcher: no targeted queries, falling back to a direct search")
		queries = []string{question}
	}

	var parts []string
	for _, q := range queries {
		result, err := t.Searcher.Search(ctx, q)
		if err != nil {
			fmt.Fprintf(t.Out, "warning: web search %q: %v\n", q, err)
			continue
		}
		if result != "" {
			parts = append(parts, result)
		}
	}

	report := strings.Join(parts, "\n\n")
	if report == "" {
		fmt.Fprintln(t.Out, "Web Researcher: found no relevant information on the web")
	}
	return report
}

// leadAnalyst synthesizes both researchers' context into the final analysis.
func (t *Team) leadAnalyst(ctx context.Context, question, local, web string) (string, error) {
	fmt.Fprintln(t.Out, "Lead Analyst: synthesizing all information...")

	if local == "" {
		local = noLocalFindings
	}
	if web == "" {
		web = noWebFindings
	}

	prompt := fmt.Sprintf(`**User's Question/Idea:** %q
---
**Librarian's Findings (from papers):**
%s
---
**Web Researcher's Report:**
%s`, question, local, web)

	out, err := t.LLM.Complete(ctx, leadAnalystRole, prompt, false)
	if err != nil {
		return "", fmt.Errorf("lead analyst: %w", err)
	}
	return out, nil
}

// Chat answers a conversational input grounded in a quick web search. The
// web context may legitimately be empty; the assistant still answers.
func (t *Team) Chat(ctx context.Context, input string) (string, error) {
	queries := plan.ChatQueries(ctx, t.LLM, input)
	if len(queries) == 0 {
		queries = []string{input}
	}

	var parts []string
	for _, q := range queries {
		result, err := t.Searcher.Search(ctx, q)
		if err != nil {
			fmt.Fprintf(t.Out, "warning: web search %q: %v\n", q, err)
			continue
		}
		if result != "" {
			parts = append(parts, result)
		}
	}

	web := strings.Join(parts, "\n\n")
	if web == "" {
		web = "No information was found on the web."
	}

	prompt := fmt.Sprintf("User's Input: %q\n---\nWeb Search Results:\n%s", input, web)
	out, err := t.LLM.Complete(ctx, chatAssistantRole, prompt, false)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	return out, nil
}

func (t *Team) retrievalLimit() int {
	if t.Cfg.RetrievalLimit > 0 {
		return t.Cfg.RetrievalLimit
	}
	return 10
}

func (t *Team) maxWebQueries() int {
	if t.Cfg.MaxWebQueries > 0 {
		return t.Cfg.MaxWebQueries
	}
	return 3
}

func (t *Team) localContextLimit() int {
	if t.Cfg.LocalContextLimit > 0 {
		return t.Cfg.LocalContextLimit
	}
	return 1000
}
