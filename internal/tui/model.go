package tui

import (
	"fmt"
	"strings"

	"coursekit/internal/autosave"
	"coursekit/internal/model"
	"coursekit/internal/mutate"
	"coursekit/internal/publish"
	"coursekit/internal/session"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type editorMode int

const (
	modeBrowse editorMode = iota
	modeEdit
	modeConfirmDelete
	modePreview
)

type statusMsg autosave.Status

func waitForStatus(ch <-chan autosave.Status) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		st, ok := <-ch
		if !ok {
			return nil
		}
		return statusMsg(st)
	}
}

type editorModel struct {
	s        *session.Session
	keys     keyMap
	statusCh <-chan autosave.Status
	status   autosave.Status

	rows   []outlineRow
	cursor int
	mode   editorMode

	input   textinput.Model
	editKey string

	pendingDelete string
	preview       viewport.Model
	flash         string

	width  int
	height int
}

func newModel(s *session.Session, statusCh <-chan autosave.Status) editorModel {
	in := textinput.New()
	in.Prompt = ""
	in.CharLimit = 0
	m := editorModel{
		s:        s,
		keys:     defaultKeyMap(),
		statusCh: statusCh,
		status:   s.SaveStatus(),
		input:    in,
		preview:  viewport.New(80, 20),
		width:    80,
		height:   24,
	}
	m.refresh(s.UI().Selected)
	return m
}

func (m editorModel) Init() tea.Cmd {
	return waitForStatus(m.statusCh)
}

func (m editorModel) selected() (outlineRow, bool) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return outlineRow{}, false
	}
	return m.rows[m.cursor], true
}

// refresh rebuilds the visible rows and keeps selectID selected when it is still visible.
func (m *editorModel) refresh(selectID string) {
	m.rows = flattenCourse(m.s.Course(), m.s.UI())
	if selectID != "" {
		for i, r := range m.rows {
			if r.id == selectID {
				m.cursor = i
				m.s.UI().Selected = selectID
				return
			}
		}
	}
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.s.UI().Selected = ""
	if r, ok := m.selected(); ok {
		m.s.UI().Selected = r.id
	}
}

func (m editorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.preview.Width = msg.Width
		m.preview.Height = max(1, msg.Height-2)
		if m.mode == modePreview {
			m.preview.SetContent(m.renderPreview())
		}
		return m, nil

	case statusMsg:
		m.status = autosave.Status(msg)
		return m, waitForStatus(m.statusCh)

	case tea.KeyMsg:
		switch m.mode {
		case modeEdit:
			return m.updateEdit(msg)
		case modeConfirmDelete:
			return m.updateConfirm(msg)
		case modePreview:
			return m.updatePreview(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m editorModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""
	row, hasRow := m.selected()

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
			m.refresh(m.rows[m.cursor].id)
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
			m.refresh(m.rows[m.cursor].id)
		}

	case key.Matches(msg, m.keys.MoveUp):
		m.moveWithin(-1)
	case key.Matches(msg, m.keys.MoveDown):
		m.moveWithin(1)
	case key.Matches(msg, m.keys.MovePrev):
		m.moveAcross(-1)
	case key.Matches(msg, m.keys.MoveNext):
		m.moveAcross(1)

	case key.Matches(msg, m.keys.AddChild):
		m.addChild()
	case key.Matches(msg, m.keys.AddSection):
		m.refresh(m.s.AddSection())
	case key.Matches(msg, m.keys.AddBreak):
		m.refresh(m.s.AddBreak(mutate.DefaultBreakMinutes))

	case key.Matches(msg, m.keys.EditTitle):
		return m.beginEdit(mutate.FieldTitle)
	case key.Matches(msg, m.keys.EditDescription):
		return m.beginEdit(mutate.FieldDescription)

	case key.Matches(msg, m.keys.Delete):
		if hasRow {
			m.pendingDelete = row.id
			m.mode = modeConfirmDelete
		}

	case key.Matches(msg, m.keys.Undo):
		if !m.s.Undo() {
			m.flash = "nothing to undo"
		}
		m.refresh(row.id)
	case key.Matches(msg, m.keys.Redo):
		if !m.s.Redo() {
			m.flash = "nothing to redo"
		}
		m.refresh(row.id)

	case key.Matches(msg, m.keys.Collapse):
		if hasRow && (row.kind == rowSection || row.kind == rowSubsection) {
			m.s.UI().ToggleCollapsed(row.id)
			m.refresh(row.id)
		}

	case key.Matches(msg, m.keys.Preview):
		m.mode = modePreview
		m.preview.SetContent(m.renderPreview())
		m.preview.GotoTop()
	}
	return m, nil
}

// moveWithin swaps the selected item with its neighbor in the same container.
func (m *editorModel) moveWithin(delta int) {
	row, ok := m.selected()
	if !ok {
		return
	}
	mv := mutate.Move{
		SourceContainerID: row.container,
		SourceIndex:       row.index,
		DestContainerID:   row.container,
		DestIndex:         row.index + delta,
	}
	switch row.kind {
	case rowSection, rowBreak:
		mv.Kind = mutate.MoveSection
	case rowSubsection:
		mv.Kind = mutate.MoveSubsection
	case rowTopic:
		mv.Kind = mutate.MoveTopicBox
	}
	if !m.s.Move(mv) {
		m.flash = "can't move further"
	}
	m.refresh(row.id)
}

// moveAcross moves the selected topic to the end of the previous subsection (dir < 0) or the
// start of the next one (dir > 0), crossing section boundaries.
func (m *editorModel) moveAcross(dir int) {
	row, ok := m.selected()
	if !ok || row.kind != rowTopic {
		return
	}
	c := m.s.Course()
	order, counts := subsectionOrder(c)
	at := -1
	for i, id := range order {
		if id == row.container {
			at = i
			break
		}
	}
	target := at + dir
	if at < 0 || target < 0 || target >= len(order) {
		m.flash = "no subsection there"
		return
	}
	dest := order[target]
	destIndex := 0
	if dir < 0 {
		destIndex = counts[dest]
	}
	if !m.s.Move(mutate.Move{
		Kind:              mutate.MoveTopicBox,
		SourceContainerID: row.container,
		SourceIndex:       row.index,
		DestContainerID:   dest,
		DestIndex:         destIndex,
	}) {
		return
	}
	m.expand(c, dest)
	m.refresh(row.id)
}

// expand uncollapses a subsection and its section.
func (m *editorModel) expand(c *model.Course, subsectionID string) {
	ui := m.s.UI()
	if si, _, ok := c.SubsectionPath(subsectionID); ok && ui.IsCollapsed(c.Sections[si].ID) {
		ui.ToggleCollapsed(c.Sections[si].ID)
	}
	if ui.IsCollapsed(subsectionID) {
		ui.ToggleCollapsed(subsectionID)
	}
}

func (m *editorModel) addChild() {
	row, ok := m.selected()
	if !ok {
		m.refresh(m.s.AddSection())
		return
	}
	var id string
	switch row.kind {
	case rowSection:
		id = m.s.AddSubsection(row.id)
		if m.s.UI().IsCollapsed(row.id) {
			m.s.UI().ToggleCollapsed(row.id)
		}
	case rowSubsection:
		id = m.s.AddTopicBox(row.id)
		m.expand(m.s.Course(), row.id)
	case rowTopic:
		id = m.s.AddTopicBox(row.container)
	case rowBreak:
		m.flash = "breaks have no children"
		return
	}
	m.refresh(id)
}

func (m editorModel) beginEdit(f mutate.Field) (tea.Model, tea.Cmd) {
	row, ok := m.selected()
	if !ok || row.kind == rowBreak {
		return m, nil
	}
	k := session.DraftKey(row.id, f)
	v, ok := m.s.BeginEdit(k)
	if !ok {
		return m, nil
	}
	m.editKey = k
	m.mode = modeEdit
	m.input.SetValue(v)
	m.input.CursorEnd()
	cmd := m.input.Focus()
	return m, cmd
}

func (m editorModel) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.s.CommitDraft(m.editKey)
		return m.endEdit(), nil
	case tea.KeyEsc:
		m.s.DiscardDraft(m.editKey)
		return m.endEdit(), nil
	case tea.KeyCtrlC:
		m.s.CommitDraft(m.editKey)
		return m.endEdit(), tea.Quit
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	m.s.Drafts().Update(m.editKey, m.input.Value())
	return m, cmd
}

func (m editorModel) endEdit() editorModel {
	m.input.Blur()
	m.input.SetValue("")
	id, _, _ := session.ParseDraftKey(m.editKey)
	m.editKey = ""
	m.mode = modeBrowse
	m.refresh(id)
	return m
}

func (m editorModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	id := m.pendingDelete
	m.pendingDelete = ""
	m.mode = modeBrowse
	if msg.String() == "y" {
		if m.s.Delete(id) {
			m.flash = "deleted (u to undo)"
		}
	}
	m.refresh(m.s.UI().Selected)
	return m, nil
}

func (m editorModel) updatePreview(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Preview), msg.Type == tea.KeyEsc, msg.String() == "q":
		m.mode = modeBrowse
		return m, nil
	case msg.Type == tea.KeyCtrlC:
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.preview, cmd = m.preview.Update(msg)
	return m, cmd
}

func (m editorModel) renderPreview() string {
	return publish.RenderTerminal(publish.RenderCourseMarkdown(m.s.Course()), m.width-2)
}

func statusText(st autosave.Status) string {
	var s string
	switch st.State {
	case autosave.StateSaving:
		s = "saving…"
	case autosave.StateSaved:
		s = "saved"
	case autosave.StateError:
		s = "error"
		if st.Err != nil {
			s += ": " + st.Err.Error()
		}
	default:
		s = "idle"
	}
	if st.Pending && st.State != autosave.StateSaving {
		s += " · unsaved changes"
	}
	return s
}

func rowText(r outlineRow) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("  ", r.depth))
	switch {
	case r.kind == rowBreak:
		b.WriteString("⏸ Break")
	case r.hasChildren && r.collapsed:
		b.WriteString("▸ ")
	case r.hasChildren:
		b.WriteString("▾ ")
	case r.kind == rowTopic:
		b.WriteString("• ")
	default:
		b.WriteString("  ")
	}
	if r.kind != rowBreak {
		title := strings.TrimSpace(r.title)
		if title == "" {
			title = "(untitled)"
		}
		b.WriteString(title)
	}
	if r.minutes > 0 {
		fmt.Fprintf(&b, "  %dm", r.minutes)
	}
	if r.resources > 0 {
		fmt.Fprintf(&b, "  [%d]", r.resources)
	}
	return b.String()
}
