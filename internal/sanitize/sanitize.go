// Package sanitize turns model replies written in Markdown into plain text
// suitable for chat clients that show messages verbatim.
package sanitize

import (
	"bytes"
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
)

var (
	listItemEnd  = regexp.MustCompile(`</li>\s*`)
	listItemTag  = regexp.MustCompile(`\s*<li>\s*(<p>)?`)
	blockTag     = regexp.MustCompile(`<br\s*/?>|</?p>|</?div>|</?pre>|</?h[1-6]>|</?[uo]l>|<hr\s*/?>`)
	blankLines   = regexp.MustCompile(`\n\s*\n+`)
	trailingSpan = regexp.MustCompile(`[ \t]+\n`)
)

// Policy strips Markdown and HTML from text.
type Policy struct {
	policy   *bluemonday.Policy
	markdown goldmark.Markdown
}

// NewPlainTextPolicy creates a Policy that keeps only text, line breaks and
// list bullets.
func NewPlainTextPolicy() *Policy {
	return &Policy{
		policy:   bluemonday.StrictPolicy(),
		markdown: goldmark.New(),
	}
}

// Text renders text as Markdown and returns its plain text. Input that
// fails to render is returned unchanged.
func (p *Policy) Text(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := p.markdown.Convert([]byte(text), &buf); err != nil {
		return text
	}

	out := listItemEnd.ReplaceAllString(buf.String(), "")
	out = listItemTag.ReplaceAllString(out, "\n- ")
	out = blockTag.ReplaceAllString(out, "\n")
	out = p.policy.Sanitize(out)
	out = html.UnescapeString(out)
	out = trailingSpan.ReplaceAllString(out, "\n")
	out = blankLines.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}
