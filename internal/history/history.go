package history

import "coursekit/internal/model"

// DefaultLimit bounds the number of undoable entries.
const DefaultLimit = 100

// Stack is a linear undo log of tree snapshots with a cursor.
//
// snaps[0] is the tree as loaded; it is the state undo returns to but not an entry of its own,
// so hydration never shows up as an undoable step. Snapshots are shared, not copied: the
// mutation operations never modify a tree in place.
//
// Stack is not safe for concurrent use; the owning session serializes access.
type Stack struct {
	snaps  []*model.Course
	cursor int
	limit  int
}

func New(base *model.Course, limit int) *Stack {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &Stack{snaps: []*model.Course{base}, limit: limit}
}

// Reset discards all entries and makes base the loaded state.
func (h *Stack) Reset(base *model.Course) {
	h.snaps = []*model.Course{base}
	h.cursor = 0
}

// Record truncates any entries after the cursor and appends c. Recording the current
// snapshot again is a no-op.
func (h *Stack) Record(c *model.Course) {
	if c == nil || c == h.snaps[h.cursor] {
		return
	}
	h.snaps = append(h.snaps[:h.cursor+1:h.cursor+1], c)
	h.cursor++
	if over := len(h.snaps) - 1 - h.limit; over > 0 {
		h.snaps = append([]*model.Course(nil), h.snaps[over:]...)
		h.cursor -= over
	}
}

// Undo moves the cursor back one entry and returns that snapshot.
func (h *Stack) Undo() (*model.Course, bool) {
	if h.cursor == 0 {
		return h.snaps[0], false
	}
	h.cursor--
	return h.snaps[h.cursor], true
}

// Redo re-applies the entry after the cursor, available until the next Record.
func (h *Stack) Redo() (*model.Course, bool) {
	if h.cursor >= len(h.snaps)-1 {
		return h.snaps[h.cursor], false
	}
	h.cursor++
	return h.snaps[h.cursor], true
}

func (h *Stack) Current() *model.Course { return h.snaps[h.cursor] }

func (h *Stack) CanUndo() bool { return h.cursor > 0 }

func (h *Stack) CanRedo() bool { return h.cursor < len(h.snaps)-1 }

// Len is the number of recorded entries, excluding the loaded state.
func (h *Stack) Len() int { return len(h.snaps) - 1 }

// Position is the number of entries currently applied.
func (h *Stack) Position() int { return h.cursor }
