// Package mathpreview turns text containing TeX math delimiters into
// HTML for the content-editor preview pane. Display blocks ($$...$$)
// are substituted before inline expressions ($...$) so a display block
// is never torn apart by the inline pass.
package mathpreview

import (
	"errors"
	"html"
	"regexp"
	"strings"
)

// Renderer converts a single TeX expression into an HTML fragment.
type Renderer interface {
	Render(expr string, display bool) (string, error)
}

var (
	displayPattern = regexp.MustCompile(`(?s)\$\$(.*?)\$\$`)
	inlinePattern  = regexp.MustCompile(`\$([^$\n]+?)\$`)
)

// Previewer renders mixed text and math into preview HTML. Surrounding
// text is HTML-escaped; a failed expression degrades to an error span
// instead of failing the whole preview.
type Previewer struct {
	renderer Renderer
}

// New builds a Previewer. A nil renderer falls back to the structural
// HTMLRenderer.
func New(r Renderer) *Previewer {
	if r == nil {
		r = HTMLRenderer{}
	}
	return &Previewer{renderer: r}
}

// Render produces the preview HTML for the given source text.
func (p *Previewer) Render(input string) string {
	var b strings.Builder
	p.renderMatches(&b, input, displayPattern, true, func(b *strings.Builder, text string) {
		p.renderMatches(b, text, inlinePattern, false, escapeText)
	})
	return b.String()
}

// renderMatches walks the matches of one delimiter pattern, handing the
// text between them to the next stage.
func (p *Previewer) renderMatches(b *strings.Builder, input string, pattern *regexp.Regexp, display bool, renderText func(*strings.Builder, string)) {
	last := 0
	for _, m := range pattern.FindAllStringSubmatchIndex(input, -1) {
		renderText(b, input[last:m[0]])
		p.renderExpr(b, input[m[2]:m[3]], display)
		last = m[1]
	}
	renderText(b, input[last:])
}

func (p *Previewer) renderExpr(b *strings.Builder, expr string, display bool) {
	rendered, err := p.renderer.Render(expr, display)
	if err != nil {
		b.WriteString(`<span class="math-error">`)
		b.WriteString(html.EscapeString(expr))
		b.WriteString(`</span>`)
		return
	}
	b.WriteString(rendered)
}

func escapeText(b *strings.Builder, text string) {
	escaped := html.EscapeString(text)
	b.WriteString(strings.ReplaceAll(escaped, "\n", "<br>"))
}

// HTMLRenderer emits structural markup carrying the TeX source, for a
// client-side typesetter to hydrate. It rejects expressions that could
// never typeset so the error span appears at preview time.
type HTMLRenderer struct{}

// Render implements Renderer.
func (HTMLRenderer) Render(expr string, display bool) (string, error) {
	trimmed := strings.TrimSpace(expr)
	if trimmed == "" {
		return "", errors.New("empty expression")
	}
	if !balancedBraces(trimmed) {
		return "", errors.New("unbalanced braces")
	}

	escaped := html.EscapeString(trimmed)
	if display {
		return `<div class="math math-display" data-tex="` + escaped + `">` + escaped + `</div>`, nil
	}
	return `<span class="math math-inline" data-tex="` + escaped + `">` + escaped + `</span>`, nil
}

func balancedBraces(expr string) bool {
	depth := 0
	escaped := false
	for _, r := range expr {
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case '{':
			depth++
		case '}':
			depth--
			if depth < 0 {
				return false
			}
		}
	}
	return depth == 0
}
