package tui

import (
	"strings"

	"coursekit/internal/autosave"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

func (m editorModel) View() string {
	w := max(20, m.width)
	if m.mode == modePreview {
		hint := styleMuted().Render("p/esc close · j/k scroll")
		return m.header(w) + "\n" + m.preview.View() + "\n" + hint
	}

	bodyH := max(1, m.height-3)
	start := 0
	if m.cursor >= bodyH {
		start = m.cursor - bodyH + 1
	}
	end := min(len(m.rows), start+bodyH)

	var lines []string
	if len(m.rows) == 0 {
		lines = append(lines, styleMuted().Render("Empty outline. Press A to add a section."))
	}
	for i := start; i < end; i++ {
		r := m.rows[i]
		line := xansi.Truncate(rowText(r), w, "…")
		switch {
		case i == m.cursor:
			line = styleSelected().Width(w).Render(line)
		case r.kind == rowBreak:
			line = lipgloss.NewStyle().Foreground(colorBreak).Render(line)
		case r.kind == rowSection:
			line = styleTitle().Render(line)
		}
		lines = append(lines, line)
	}
	for len(lines) < bodyH {
		lines = append(lines, "")
	}
	return m.header(w) + "\n" + strings.Join(lines, "\n") + "\n" + m.footer(w)
}

func (m editorModel) header(w int) string {
	c := m.s.Course()
	name := strings.TrimSpace(c.Name)
	if name == "" {
		name = "Untitled course"
	}
	status := statusText(m.status)
	st := styleMuted()
	switch m.status.State {
	case autosave.StateError:
		st = lipgloss.NewStyle().Foreground(colorError)
	case autosave.StateSaved:
		st = lipgloss.NewStyle().Foreground(colorOK)
	}
	left := styleTitle().Render(name)
	right := st.Render(status)
	gap := max(1, w-xansi.StringWidth(left)-xansi.StringWidth(right))
	return xansi.Truncate(left+strings.Repeat(" ", gap)+right, w, "")
}

func (m editorModel) footer(w int) string {
	switch m.mode {
	case modeEdit:
		label := "title"
		if strings.HasSuffix(m.editKey, ":description") {
			label = "description"
		}
		return renderInputLine(w, styleAccent().Render(label+": ")+m.input.View())
	case modeConfirmDelete:
		return lipgloss.NewStyle().Foreground(colorError).Render("Delete selected item and everything under it? (y/N)")
	}
	if m.flash != "" {
		return styleAccent().Render(m.flash)
	}
	parts := make([]string, 0, len(m.keys.shortHelp()))
	for _, b := range m.keys.shortHelp() {
		h := b.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return xansi.Truncate(styleMuted().Render(strings.Join(parts, " · ")), w, "…")
}

// renderInputLine keeps a text input on one visual line of exactly bodyW cells.
func renderInputLine(bodyW int, inputView string) string {
	if bodyW < 10 {
		bodyW = 10
	}
	inputView = strings.ReplaceAll(inputView, "\n", " ")
	inputView = strings.ReplaceAll(inputView, "\r", " ")

	line := lipgloss.PlaceHorizontal(
		bodyW,
		lipgloss.Left,
		" "+inputView+" ",
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceBackground(colorInputBg),
	)
	if xansi.StringWidth(line) > bodyW {
		// Terminate styling so a cut sequence does not bleed into the next line.
		line = xansi.Cut(line, 0, bodyW) + "\x1b[0m"
	}
	return line
}
