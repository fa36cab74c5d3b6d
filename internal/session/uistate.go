package session

// UIState is the editor's process-wide interaction state. It has a single owner (the
// rendering layer) and is passed by pointer; nothing else mutates it.
type UIState struct {
	// EditingField is the draft key of the field being edited, or "".
	EditingField string
	// PromptBubble is the id of the entity whose generation prompt is open, or "".
	PromptBubble string
	Selected     string
	Collapsed    map[string]bool
}

func NewUIState() *UIState {
	return &UIState{Collapsed: map[string]bool{}}
}

// StartEditing makes key the only field being edited and closes any open prompt.
// It returns the previously edited key, which the caller should commit.
func (u *UIState) StartEditing(key string) (prev string) {
	prev = u.EditingField
	u.EditingField = key
	u.PromptBubble = ""
	if prev == key {
		return ""
	}
	return prev
}

func (u *UIState) StopEditing() { u.EditingField = "" }

// OpenPrompt opens the generation prompt for id; only one prompt is open at a time.
func (u *UIState) OpenPrompt(id string) { u.PromptBubble = id }

func (u *UIState) ClosePrompt() { u.PromptBubble = "" }

func (u *UIState) ToggleCollapsed(id string) bool {
	if u.Collapsed == nil {
		u.Collapsed = map[string]bool{}
	}
	if u.Collapsed[id] {
		delete(u.Collapsed, id)
		return false
	}
	u.Collapsed[id] = true
	return true
}

func (u *UIState) IsCollapsed(id string) bool { return u.Collapsed[id] }
