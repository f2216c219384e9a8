// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/pdiddy/research-agent/pkg/types"
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// stopTitles marks the headings after which nothing is extracted: the
// trailing reference and appendix material of a paper (R2.4). Matching is
// against the normalized lowercase heading text.
var stopTitles = map[string]bool{
	"references":             true,
	"acknowledgments":        true,
	"acknowledgements":       true,
	"appendix":               true,
	"supplementary material": true,
	"bibliography":           true,
}

// abstractSelector matches the structural abstract markers ar5iv and similar
// renderings use.
const abstractSelector = ".ltx_abstract, section.abstract, div.abstract"

// headingTags are the four heading depths that open a new section. Depth is
// not used for hierarchy, only as a section boundary signal (R2.2).
var headingTags = map[string]bool{"h1": true, "h2": true, "h3": true, "h4": true}

// blockSelector lists the block-level nodes walked in document order.
const blockSelector = "h1, h2, h3, h4, p, ul, ol, pre, table, figure"

// ParseSections turns raw article markup into an ordered sequence of titled
// sections (R2.1-R2.6). The abstract, when a structural marker is present,
// is always emitted first as Section{Title: "Abstract"}. Headings open
// sections and flush the previous one; a stop-title heading discards
// everything from that point on and halts the walk. Sections with no
// accumulated text are never emitted. When no heading-bearing section other
// than the abstract was produced, the entire body is emitted as a single
// "Body" section. The result is a pure function of the input markup.
func ParseSections(markup string) ([]types.Section, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("parsing markup: %w", err)
	}

	var sections []types.Section

	if abs := doc.Find(abstractSelector).First(); abs.Length() > 0 {
		if text := cleanText(nodeText(abs)); text != "" {
			sections = append(sections, types.Section{Title: "Abstract", Content: text})
		}
	}

	article := doc.Find("article").First()
	if article.Length() == 0 {
		article = doc.Find("body").First()
	}
	if article.Length() == 0 {
		return sections, nil
	}

	var (
		currentTitle string
		haveTitle    bool
		chunks       []string
	)

	flush := func() {
		if !haveTitle || len(chunks) == 0 {
			return
		}
		content := cleanText(strings.Join(chunks, "\n"))
		if content != "" {
			sections = append(sections, types.Section{Title: currentTitle, Content: content})
		}
	}

	article.Find(blockSelector).EachWithBreak(func(_ int, el *goquery.Selection) bool {
		if headingTags[goquery.NodeName(el)] {
			title := cleanText(nodeText(el))
			if stopTitles[strings.ToLower(title)] {
				flush()
				haveTitle = false
				chunks = nil
				return false
			}
			if haveTitle {
				flush()
				chunks = nil
			}
			currentTitle = title
			haveTitle = true
			return true
		}

		if text := cleanText(nodeText(el)); text != "" && haveTitle {
			chunks = append(chunks, text)
		}
		return true
	})
	flush()

	// Fallback: no heading produced a section, so emit the whole body as one
	// piece. Repeated running headers and page numbers are blanked first in
	// case the markup came from a paged rendering (R2.6).
	hasBody := false
	for _, s := range sections {
		if s.Title != "Abstract" {
			hasBody = true
			break
		}
	}
	if !hasBody {
		lines := StripRepeatedLines(strings.Split(nodeText(article), "\n"))
		if body := cleanText(strings.Join(lines, " ")); body != "" {
			sections = append(sections, types.Section{Title: "Body", Content: body})
		}
	}

	return sections, nil
}

// StripRepeatedLines blanks running headers, footers, and page numbers from
// page-based text: any line whose normalized form occurs at least 3 times
// and is at most 80 characters long, and any line consisting solely of
// digits, is replaced with an empty string everywhere it appears (R3.1-R3.3).
// The slice length is preserved so line positions stay stable.
func StripRepeatedLines(lines []string) []string {
	counts := make(map[string]int)
	for _, l := range lines {
		if t := cleanText(l); t != "" {
			counts[t]++
		}
	}

	digitsOnly := regexp.MustCompile(`^\d+$`)

	cleaned := make([]string, len(lines))
	for i, l := range lines {
		t := cleanText(l)
		switch {
		case t == "":
			cleaned[i] = ""
		case counts[t] >= 3 && len(t) <= 80:
			cleaned[i] = ""
		case digitsOnly.MatchString(t):
			cleaned[i] = ""
		default:
			cleaned[i] = l
		}
	}
	return cleaned
}

// cleanText collapses all whitespace runs to single spaces and trims the
// result. Applied before storage and before every title comparison.
func cleanText(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// nodeText returns the concatenated text of a selection with a space after
// each text node, so text from adjacent inline elements does not run
// together before normalization.
func nodeText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		appendText(&b, n)
	}
	return b.String()
}

func appendText(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		appendText(b, c)
	}
}
