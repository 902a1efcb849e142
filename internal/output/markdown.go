package output

import (
	"fmt"
	"html"
	"regexp"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/styles"
)

var (
	mdRendererMu sync.Mutex
	// Keyed by style and wrap width.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

var (
	htmlBreak = regexp.MustCompile(`(?i)<br\s*/?>|</p>|</div>|</li>`)
	htmlItem  = regexp.MustCompile(`(?i)<li[^>]*>`)
	htmlTag   = regexp.MustCompile(`<[^>]+>`)
	blankRun  = regexp.MustCompile(`\n{3,}`)
)

// PlainDescription turns a stored description, which may be backend HTML,
// into markdown-ish plain text.
func PlainDescription(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	s = htmlItem.ReplaceAllString(s, "- ")
	s = htmlBreak.ReplaceAllString(s, "\n")
	s = htmlTag.ReplaceAllString(s, "")
	s = html.UnescapeString(s)
	s = blankRun.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// RenderMarkdown renders a description for the terminal. Without color the
// text is only wrapped.
func (f *Formatter) RenderMarkdown(md string) string {
	md = PlainDescription(md)
	if md == "" {
		return ""
	}
	width := f.Width() - 4
	if width < 20 {
		width = 20
	}
	style := styles.NoTTYStyle
	if f.IsColorEnabled() {
		style = styles.DarkStyle
	}

	key := fmt.Sprintf("%s:%d", style, width)
	mdRendererMu.Lock()
	r := mdRenderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle(style),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			mdRendererMu.Unlock()
			return md
		}
		mdRenderers[key] = rr
		r = rr
	}
	mdRendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}
