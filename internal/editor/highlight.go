package editor

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"

	"cipherstudio-cli/internal/model"
)

var (
	renderersMu sync.Mutex
	// Keyed by theme and width. WithAutoStyle is avoided because it queries the
	// terminal, which can block.
	renderers = map[string]*glamour.TermRenderer{}
)

// Highlight renders text as a syntax-highlighted code block for a terminal of
// the given width. On any renderer error the text is returned unchanged.
func Highlight(text, language string, width int, theme model.Theme) string {
	if width < 20 {
		width = 20
	}
	r, err := renderer(theme, width)
	if err != nil {
		return text
	}
	out, err := r.Render(fenced(text, language))
	if err != nil {
		return text
	}
	return strings.TrimRight(out, "\n")
}

func renderer(theme model.Theme, width int) (*glamour.TermRenderer, error) {
	key := fmt.Sprintf("%s:%d", theme, width)

	renderersMu.Lock()
	defer renderersMu.Unlock()
	if r := renderers[key]; r != nil {
		return r, nil
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(styleConfig(theme)),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return nil, err
	}
	renderers[key] = r
	return r, nil
}

func styleConfig(theme model.Theme) ansi.StyleConfig {
	cfg := styles.DarkStyleConfig
	if theme == model.ThemeLight {
		cfg = styles.LightStyleConfig
	}
	zero := uint(0)
	cfg.Document.Margin = &zero
	cfg.CodeBlock.Margin = &zero
	return cfg
}

// fenced wraps text in a markdown code fence longer than any backtick run it
// contains.
func fenced(text, language string) string {
	fence := "```"
	for strings.Contains(text, fence) {
		fence += "`"
	}
	tag := language
	if tag == LangPlainText {
		tag = ""
	}
	var b strings.Builder
	b.WriteString(fence)
	b.WriteString(tag)
	b.WriteByte('\n')
	b.WriteString(text)
	if !strings.HasSuffix(text, "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(fence)
	b.WriteByte('\n')
	return b.String()
}
