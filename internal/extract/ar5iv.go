// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/pdiddy/research-agent/internal/httputil"
	"github.com/pdiddy/research-agent/pkg/types"
)

// BaseURL is the HTML-rendering endpoint papers are fetched from.
// Declared as a var so tests can substitute an httptest server.
var BaseURL = "https://ar5iv.org/html/"

// maxDocumentBytes caps how much markup is read for one paper.
const maxDocumentBytes = 16 << 20

var nonFilenameRE = regexp.MustCompile(`[^a-zA-Z0-9._-]`)
var underscoreRunRE = regexp.MustCompile(`_+`)

// Ar5ivURL maps an arXiv abstract or PDF link to its ar5iv HTML rendering.
// A link that is not an arXiv URL is a detectable-format error: the caller
// records a per-paper skip (R1.2).
func Ar5ivURL(link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", fmt.Errorf("parsing link %q: %w", link, err)
	}
	if !strings.Contains(u.Host, "arxiv.org") {
		return "", fmt.Errorf("unrecognized link format: %s", link)
	}

	id := arxivPathID(u.Path)
	if id == "" {
		return "", fmt.Errorf("no arXiv identifier in link: %s", link)
	}
	return BaseURL + id, nil
}

// arxivPathID extracts the arXiv identifier from a URL path: "/abs/<id>",
// "/pdf/<id>.pdf", or, for unexpected shapes, the whole trimmed path.
func arxivPathID(path string) string {
	p := strings.Trim(path, "/")
	switch {
	case strings.HasPrefix(p, "abs/"):
		return strings.TrimPrefix(p, "abs/")
	case strings.HasPrefix(p, "pdf/"):
		return strings.TrimSuffix(strings.TrimPrefix(p, "pdf/"), ".pdf")
	default:
		return p
	}
}

// PaperID derives the filesystem-safe slug for a paper from its link's path
// segment: non-alphanumeric runs become a single underscore and leading or
// trailing separators are trimmed (R4.2).
func PaperID(link string) string {
	id := link
	if u, err := url.Parse(link); err == nil {
		id = arxivPathID(u.Path)
	}
	return secureFilename(id)
}

func secureFilename(name string) string {
	name = nonFilenameRE.ReplaceAllString(name, "_")
	name = underscoreRunRE.ReplaceAllString(name, "_")
	return strings.Trim(name, "._")
}

// FetchHTML retrieves the markup at fetchURL. Non-200 responses and network
// errors are fetch errors, caught per paper by the batch driver (R1.3).
func FetchHTML(ctx context.Context, client *http.Client, fetchURL string, cfg types.ExtractionConfig) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fetchURL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	ua := cfg.UserAgent
	if ua == "" {
		ua = "Mozilla/5.0 (Windows NT 10.0; Win64; x64)"
	}
	req.Header.Set("User-Agent", ua)

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", fetchURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetching %s: HTTP %d", fetchURL, resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentBytes))
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", fetchURL, err)
	}
	return string(data), nil
}
