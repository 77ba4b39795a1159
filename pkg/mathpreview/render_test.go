package mathpreview

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderInlineExpressions(t *testing.T) {
	p := New(nil)

	html := p.Render(`Area $a^2$ and $\int_0^1 x\,dx$`)

	assert.Equal(t, 2, strings.Count(html, `class="math math-inline"`))
	assert.Contains(t, html, "a^2")
	assert.Contains(t, html, `\int_0^1`)
	assert.Contains(t, html, "Area ")
	assert.Contains(t, html, " and ")
	assert.NotContains(t, html, "$")
}

func TestRenderDisplayBeforeInline(t *testing.T) {
	p := New(nil)

	// A display block must not be torn into inline fragments.
	html := p.Render(`$$\frac{a}{b}$$ plus $c$`)

	assert.Equal(t, 1, strings.Count(html, `class="math math-display"`))
	assert.Equal(t, 1, strings.Count(html, `class="math math-inline"`))
	assert.Contains(t, html, `\frac{a}{b}`)
}

func TestRenderDisplaySpansLines(t *testing.T) {
	p := New(nil)

	html := p.Render("$$a =\nb$$")
	assert.Contains(t, html, `class="math math-display"`)
	// The newline inside the block belongs to the expression, not the text.
	assert.NotContains(t, html, "<br>")
}

func TestRenderInlineStopsAtNewline(t *testing.T) {
	p := New(nil)

	html := p.Render("price is $5 and\nanother $3 today")
	assert.NotContains(t, html, "math-inline")
	assert.Contains(t, html, "$5")
	assert.Contains(t, html, "<br>")
}

func TestRenderEscapesSurroundingText(t *testing.T) {
	p := New(nil)

	html := p.Render(`<b>1 < 2</b> $x$`)
	assert.Contains(t, html, "&lt;b&gt;")
	assert.Contains(t, html, "1 &lt; 2")
	assert.NotContains(t, html, "<b>")
}

func TestRenderNewlinesBecomeBreaks(t *testing.T) {
	p := New(nil)

	html := p.Render("line one\nline two")
	assert.Equal(t, "line one<br>line two", html)
}

func TestRenderBadExpressionDegradesToErrorSpan(t *testing.T) {
	p := New(nil)

	html := p.Render(`good $a^2$ bad $a^{2$ end`)

	assert.Contains(t, html, `class="math math-inline"`)
	require.Contains(t, html, `class="math-error"`)
	assert.Contains(t, html, "a^{2")
	// The failure stays local; surrounding text still renders.
	assert.Contains(t, html, "good ")
	assert.Contains(t, html, " end")
}

func TestRenderPlainTextPassesThrough(t *testing.T) {
	p := New(nil)

	html := p.Render("no math here")
	assert.Equal(t, "no math here", html)
}

func TestHTMLRendererRejectsEmptyAndUnbalanced(t *testing.T) {
	r := HTMLRenderer{}

	_, err := r.Render("   ", false)
	assert.Error(t, err)

	_, err = r.Render(`\frac{a}{b`, true)
	assert.Error(t, err)

	// Escaped braces do not count toward nesting.
	out, err := r.Render(`\{a\}`, false)
	require.NoError(t, err)
	assert.Contains(t, out, "math-inline")
}
