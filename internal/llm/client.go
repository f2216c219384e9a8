// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps the Ollama inference service behind small interfaces the
// pipeline stages depend on: chat completion for the agents and query
// planner, embeddings for the index.
// Implements: prd005-agents (R1);
//
//	docs/ARCHITECTURE § Inference.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"

	"github.com/pdiddy/research-agent/pkg/types"
)

// Client produces one completion per call. When structured is true the
// service is asked for a JSON-constrained response; callers still validate
// the payload because constrained decoding is best effort on small models.
type Client interface {
	Complete(ctx context.Context, system, user string, structured bool) (string, error)
}

// Embedder turns text into a fixed-dimension vector. The model identity is
// part of the index: vectors from different models are not comparable.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// Ollama implements Client and Embedder against one Ollama host.
type Ollama struct {
	api        *api.Client
	model      string
	embedModel string
}

// NewOllama builds a client for cfg.Host. An APIKey, when configured, is
// sent as a bearer token on every request so remote Ollama deployments
// behind an authenticating proxy work unchanged.
func NewOllama(cfg types.LLMConfig) (*Ollama, error) {
	host := cfg.Host
	if host == "" {
		host = "http://localhost:11434"
	}
	base, err := url.Parse(host)
	if err != nil {
		return nil, fmt.Errorf("parsing host %q: %w", host, err)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Minute
	}
	httpClient := &http.Client{Timeout: timeout}
	if cfg.APIKey != "" {
		httpClient.Transport = &authTransport{key: cfg.APIKey, next: http.DefaultTransport}
	}

	return &Ollama{
		api:        api.NewClient(base, httpClient),
		model:      cfg.Model,
		embedModel: cfg.EmbedModel,
	}, nil
}

// Complete runs one chat completion and returns the accumulated response
// text. Streaming is disabled: the pipeline consumes whole responses.
func (o *Ollama) Complete(ctx context.Context, system, user string, structured bool) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: o.model,
		Messages: []api.Message{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		Stream: &stream,
	}
	if structured {
		req.Format = json.RawMessage(`"json"`)
	}

	var out strings.Builder
	err := o.api.Chat(ctx, req, func(resp api.ChatResponse) error {
		out.WriteString(resp.Message.Content)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", hintConnRefused(err))
	}
	return out.String(), nil
}

// Embed returns the embedding vector for text.
func (o *Ollama) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.api.Embeddings(ctx, &api.EmbeddingRequest{
		Model:  o.embedModel,
		Prompt: text,
	})
	if err != nil {
		return nil, fmt.Errorf("embedding: %w", hintConnRefused(err))
	}

	vec := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		vec[i] = float32(v)
	}
	return vec, nil
}

// Model returns the embedding model identifier.
func (o *Ollama) Model() string {
	return o.embedModel
}

// hintConnRefused folds the most common operator mistake into the error: the
// Ollama service simply not running.
func hintConnRefused(err error) error {
	if strings.Contains(err.Error(), "connection refused") {
		return fmt.Errorf("%w (is the Ollama service running?)", err)
	}
	return err
}

type authTransport struct {
	key  string
	next http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("Authorization", "Bearer "+t.key)
	return t.next.RoundTrip(req)
}
