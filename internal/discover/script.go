// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package discover

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/pdiddy/research-agent/pkg/types"
)

// executor abstracts command execution for testing.
type executor interface {
	LookPath(file string) (string, error)
	RunContext(ctx context.Context, name string, args ...string) error
}

// osExecutor is the production executor backed by os/exec.
type osExecutor struct{}

func (o *osExecutor) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (o *osExecutor) RunContext(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	return cmd.Run()
}

// ScriptProvider invokes the browser-automation crawler as a companion
// script. The crawler is an opaque collaborator: it receives a query and a
// limit, scrapes the discovery site, and writes its results JSON to a
// well-known path which the provider then reads back (R2.1, R2.2).
type ScriptProvider struct {
	cfg  types.DiscoveryConfig
	exec executor
}

// NewScriptProvider builds a provider from the discovery configuration,
// applying defaults for unset fields.
func NewScriptProvider(cfg types.DiscoveryConfig) *ScriptProvider {
	if cfg.Interpreter == "" {
		cfg.Interpreter = "python"
	}
	if cfg.Script == "" {
		cfg.Script = "search_arxiv.py"
	}
	if cfg.ScriptResults == "" {
		cfg.ScriptResults = "arastirma_sonuclari.json"
	}
	if cfg.QueryTimeout <= 0 {
		cfg.QueryTimeout = 5 * time.Minute
	}
	return &ScriptProvider{cfg: cfg, exec: &osExecutor{}}
}

// Name returns the provider identifier.
func (p *ScriptProvider) Name() string { return "crawler" }

// Search runs the crawler script for one query and reads back the results
// file it wrote. A missing script or interpreter is a configuration error
// surfaced as a normal error; the aggregator converts it into a warning for
// that query only (R2.3, R2.4).
func (p *ScriptProvider) Search(ctx context.Context, query string, limit int) ([]types.PaperReference, error) {
	if _, err := os.Stat(p.cfg.Script); err != nil {
		return nil, fmt.Errorf("crawler script %s not found", p.cfg.Script)
	}
	if _, err := p.exec.LookPath(p.cfg.Interpreter); err != nil {
		return nil, fmt.Errorf("interpreter %s not found on PATH", p.cfg.Interpreter)
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	runCtx, cancel := context.WithTimeout(ctx, p.cfg.QueryTimeout)
	defer cancel()

	err := p.exec.RunContext(runCtx, p.cfg.Interpreter, p.cfg.Script,
		"--query", query, "--limit", strconv.Itoa(limit))
	if err != nil {
		return nil, fmt.Errorf("running crawler: %w", err)
	}

	data, err := os.ReadFile(p.cfg.ScriptResults)
	if err != nil {
		return nil, fmt.Errorf("reading crawler results: %w", err)
	}

	var records []crawlerRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing crawler results: %w", err)
	}

	refs := make([]types.PaperReference, 0, len(records))
	for _, r := range records {
		refs = append(refs, types.PaperReference{
			Rank:    r.Rank,
			Title:   r.Title,
			Authors: r.Authors,
			Summary: r.Summary,
			Link:    r.Link,
		})
	}
	return refs, nil
}

// crawlerRecord is the wire shape the companion crawler writes. Its field
// names are the script's own (Turkish) keys and are internal to this
// provider; batch persistence uses PaperReference's keys.
type crawlerRecord struct {
	Rank    int    `json:"sira"`
	Title   string `json:"baslik"`
	Authors string `json:"yazarlar"`
	Summary string `json:"ozet"`
	Link    string `json:"tam_metin_linki"`
}
