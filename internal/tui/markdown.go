package tui

import (
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

type rendererKey struct {
	style string
	width int
}

// markdownRenderers caches glamour renderers; building one per frame is too slow for the
// detail panel. Styles are fixed (no WithAutoStyle) so rendering never queries the terminal.
type markdownRenderers struct {
	mu sync.Mutex
	m  map[rendererKey]*glamour.TermRenderer
}

var panelMarkdown = &markdownRenderers{m: map[rendererKey]*glamour.TermRenderer{}}

func (c *markdownRenderers) get(k rendererKey) (*glamour.TermRenderer, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if r, ok := c.m[k]; ok {
		return r, nil
	}
	cfg := markdownStyleConfig(k.style)
	var noMargin uint
	cfg.Document.Margin = &noMargin
	r, err := glamour.NewTermRenderer(glamour.WithStyles(cfg), glamour.WithWordWrap(k.width))
	if err != nil {
		return nil, err
	}
	c.m[k] = r
	return r, nil
}

// renderMarkdown renders md for the side panel. If glamour fails the source is shown as-is.
func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	r, err := panelMarkdown.get(rendererKey{style: markdownStyle(), width: max(width, 10)})
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}

func markdownStyleConfig(name string) ansi.StyleConfig {
	if name == "light" {
		return styles.LightStyleConfig
	}
	return styles.DarkStyleConfig
}

// markdownStyle follows LEADCONSOLE_TUI_THEME, else the detected background.
func markdownStyle() string {
	if v := strings.ToLower(strings.TrimSpace(os.Getenv("LEADCONSOLE_TUI_THEME"))); v == "light" || v == "dark" {
		return v
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}
