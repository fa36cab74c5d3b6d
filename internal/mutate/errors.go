package mutate

import (
	"fmt"

	"coursekit/internal/model"
)

// NotFoundError is returned by callers that want to report a stale id before invoking an
// operation (the operations themselves treat unknown ids as no-ops).
type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

// Check returns NotFoundError when id does not name an entity of the given kind in c.
// kind is one of "section", "break", "subsection" or "topic".
func Check(c *model.Course, kind, id string) error {
	ok := false
	switch kind {
	case "section":
		s, found := c.FindSection(id)
		ok = found && !s.IsBreak()
	case "break":
		s, found := c.FindSection(id)
		ok = found && s.IsBreak()
	case "subsection":
		_, _, ok = c.SubsectionPath(id)
	case "topic":
		_, _, _, ok = c.TopicBoxPath(id)
	}
	if !ok {
		return NotFoundError{Kind: kind, ID: id}
	}
	return nil
}
