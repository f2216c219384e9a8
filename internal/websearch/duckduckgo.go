// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package websearch provides the live web-search capability the Web
// Researcher and chat flows use to fill gaps the local knowledge base leaves
// open. Results come from DuckDuckGo's HTML interface, which needs no API
// key.
// Implements: prd006-web-search (R1-R3);
//
//	docs/ARCHITECTURE § Web Search.
package websearch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html"

	"github.com/pdiddy/research-agent/internal/httputil"
	"github.com/pdiddy/research-agent/pkg/types"
)

// searchEndpoint is the DuckDuckGo HTML search interface. Declared as a var
// so tests can substitute an httptest server.
var searchEndpoint = "https://html.duckduckgo.com/html/"

// maxResponseBytes caps how much of a search response page is read.
const maxResponseBytes = 1 << 20

const defaultMaxResults = 3

// Result is one parsed search hit.
type Result struct {
	Title string
	URL   string
	Body  string
}

// Searcher runs one web search and returns the formatted result context.
// The agent flows depend on this interface, not on the HTTP client, so tests
// can substitute canned results.
type Searcher interface {
	Search(ctx context.Context, query string) (string, error)
}

// Client implements Searcher against the DuckDuckGo HTML interface.
type Client struct {
	http *http.Client
	cfg  types.WebSearchConfig
}

// New builds a search client from cfg.
func New(cfg types.WebSearchConfig) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		http: &http.Client{Timeout: timeout},
		cfg:  cfg,
	}
}

// Search runs one query and returns the top results as "- title: body"
// lines, one per result. No results is the empty string, not an error: the
// agents treat an empty report as a normal outcome (R2.2).
func (c *Client) Search(ctx context.Context, query string) (string, error) {
	max := c.cfg.MaxResults
	if max <= 0 {
		max = defaultMaxResults
	}

	results, err := c.fetch(ctx, query, max)
	if err != nil {
		return "", err
	}
	return FormatResults(results), nil
}

// FormatResults renders results as the bulleted context lines the agents
// consume.
func FormatResults(results []Result) string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		lines = append(lines, fmt.Sprintf("- %s: %s", r.Title, r.Body))
	}
	return strings.Join(lines, "\n")
}

func (c *Client) fetch(ctx context.Context, query string, max int) ([]Result, error) {
	searchURL := searchEndpoint + "?q=" + url.QueryEscape(query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	ua := c.cfg.UserAgent
	if ua == "" {
		ua = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"
	}
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return nil, fmt.Errorf("searching %q: %w", query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("searching %q: HTTP %d", query, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("reading search response: %w", err)
	}

	return parseResults(string(body), max)
}

// parseResults extracts search hits from the DuckDuckGo HTML page. Hits are
// anchors with class result__a (title and link) paired with the nearest
// result__snippet element.
func parseResults(markup string, max int) ([]Result, error) {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing search response: %w", err)
	}

	var results []Result
	var current *Result

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if len(results) >= max {
			return
		}
		if n.Type == html.ElementNode {
			class := attrValue(n, "class")
			switch {
			case n.Data == "a" && strings.Contains(class, "result__a"):
				if current != nil && current.Title != "" {
					results = append(results, *current)
				}
				current = &Result{
					Title: textContent(n),
					URL:   resolveRedirect(attrValue(n, "href")),
				}
			case strings.Contains(class, "result__snippet"):
				if current != nil {
					current.Body = textContent(n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	if current != nil && current.Title != "" && len(results) < max {
		results = append(results, *current)
	}
	return results, nil
}

// resolveRedirect unwraps DuckDuckGo's uddg redirect links to the target URL.
func resolveRedirect(href string) string {
	const prefix = "//duckduckgo.com/l/?uddg="
	if !strings.HasPrefix(href, prefix) {
		return href
	}
	decoded, err := url.QueryUnescape(strings.TrimPrefix(href, prefix))
	if err != nil {
		return href
	}
	if idx := strings.Index(decoded, "&"); idx > 0 {
		decoded = decoded[:idx]
	}
	return decoded
}

func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.TrimSpace(b.String())
}
