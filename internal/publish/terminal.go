package publish

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
	"github.com/charmbracelet/lipgloss"
)

var (
	rendererMu sync.Mutex
	// Keyed by style + wrap width. glamour.WithAutoStyle can block on terminal queries,
	// so the style is chosen up front and renderers are reused.
	renderers = map[string]*glamour.TermRenderer{}
)

// RenderTerminal renders Markdown for a terminal of the given width. On any renderer
// error the input is returned unchanged.
func RenderTerminal(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 20 {
		width = 20
	}
	style := TerminalStyle()
	key := style + ":" + strconv.Itoa(width)

	rendererMu.Lock()
	r := renderers[key]
	if r == nil {
		rr, err := glamour.NewTermRenderer(
			glamour.WithStyles(styleConfig(style)),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			rendererMu.Unlock()
			return md
		}
		renderers[key] = rr
		r = rr
	}
	rendererMu.Unlock()

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

// TerminalStyle picks "dark" or "light". COURSEKIT_MD_STYLE overrides; COLORFGBG is
// consulted before falling back to lipgloss background detection.
func TerminalStyle() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("COURSEKIT_MD_STYLE"))) {
	case "light":
		return "light"
	case "dark":
		return "dark"
	}
	if v := strings.TrimSpace(os.Getenv("COLORFGBG")); v != "" {
		parts := strings.Split(v, ";")
		if bg, err := strconv.Atoi(strings.TrimSpace(parts[len(parts)-1])); err == nil && bg >= 0 {
			// xterm palette: 0-6 dark, 7-15 light.
			if bg >= 7 {
				return "light"
			}
			return "dark"
		}
	}
	if lipgloss.HasDarkBackground() {
		return "dark"
	}
	return "light"
}

func styleConfig(style string) ansi.StyleConfig {
	cfg := styles.DarkStyleConfig
	if style == "light" {
		cfg = styles.LightStyleConfig
	}
	zero := uint(0)
	cfg.Document.Margin = &zero
	// Headings carry the outline structure; keep them on the text color.
	cfg.H1.Color = cfg.Text.Color
	cfg.H2.Color = cfg.Text.Color
	cfg.Strong.Color = nil
	cfg.Emph.Color = nil
	return cfg
}
