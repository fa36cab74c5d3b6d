package mutate

import (
	"strings"

	"coursekit/internal/model"
)

type MoveKind string

const (
	MoveSection    MoveKind = "section"
	MoveSubsection MoveKind = "subsection"
	MoveTopicBox   MoveKind = "topic"
)

func ParseMoveKind(s string) (MoveKind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "section", "sections":
		return MoveSection, true
	case "subsection", "subsections":
		return MoveSubsection, true
	case "topic", "topics", "topicbox", "topic-box":
		return MoveTopicBox, true
	default:
		return "", false
	}
}

// Move describes one drag-and-drop gesture in plain indices.
//
// DestIndex is interpreted against the destination list after the source element has been
// removed, so dropping at the end of a list means DestIndex == len(list after removal).
// Container ids are unused for MoveSection; for MoveSubsection they name the section, for
// MoveTopicBox the subsection.
type Move struct {
	Kind              MoveKind `json:"kind"`
	SourceContainerID string   `json:"sourceContainerId"`
	SourceIndex       int      `json:"sourceIndex"`
	DestContainerID   string   `json:"destContainerId"`
	DestIndex         int      `json:"destIndex"`
}

// Reorder applies m. Any move that cannot be resolved (unknown container, index out of range,
// subsection moved across sections) returns c unchanged.
func Reorder(c *model.Course, m Move) *model.Course {
	if c == nil {
		return c
	}
	if m.SourceContainerID == m.DestContainerID && m.SourceIndex == m.DestIndex {
		return c
	}
	switch m.Kind {
	case MoveSection:
		return reorderSections(c, m.SourceIndex, m.DestIndex)
	case MoveSubsection:
		return reorderSubsections(c, m)
	case MoveTopicBox:
		return reorderTopicBoxes(c, m)
	default:
		return c
	}
}

// permute moves in[from] to position to of the post-removal list. ok is false when either
// index is out of range or the permutation is the identity.
func permute[T any](in []T, from, to int) ([]T, bool) {
	if from < 0 || from >= len(in) || to < 0 || to > len(in)-1 || from == to {
		return nil, false
	}
	v := in[from]
	return insertAt(removeAt(in, from), to, v), true
}

func reorderSections(c *model.Course, from, to int) *model.Course {
	next, ok := permute(c.Sections, from, to)
	if !ok {
		return c
	}
	return withSections(c, next)
}

func reorderSubsections(c *model.Course, m Move) *model.Course {
	if m.DestContainerID != "" && m.DestContainerID != m.SourceContainerID {
		return c
	}
	si, ok := c.SectionIndex(m.SourceContainerID)
	if !ok || c.Sections[si].IsBreak() {
		return c
	}
	s := c.Sections[si]
	next, ok := permute(s.Subsections, m.SourceIndex, m.DestIndex)
	if !ok {
		return c
	}
	s.Subsections = next
	return replaceSection(c, si, s)
}

func reorderTopicBoxes(c *model.Course, m Move) *model.Course {
	ssi, sui, ok := c.SubsectionPath(m.SourceContainerID)
	if !ok {
		return c
	}
	src := c.Sections[ssi].Subsections[sui]

	if m.DestContainerID == m.SourceContainerID {
		next, ok := permute(src.TopicBoxes, m.SourceIndex, m.DestIndex)
		if !ok {
			return c
		}
		src.TopicBoxes = next
		return replaceSubsection(c, ssi, sui, src)
	}

	dsi, dui, ok := c.SubsectionPath(m.DestContainerID)
	if !ok {
		return c
	}
	dst := c.Sections[dsi].Subsections[dui]
	if m.SourceIndex < 0 || m.SourceIndex >= len(src.TopicBoxes) || m.DestIndex < 0 || m.DestIndex > len(dst.TopicBoxes) {
		return c
	}

	moved := src.TopicBoxes[m.SourceIndex]
	src.TopicBoxes = removeAt(src.TopicBoxes, m.SourceIndex)
	dst.TopicBoxes = insertAt(emptyIfNil(dst.TopicBoxes), m.DestIndex, moved)

	// Both subsections land in the same returned tree.
	out := replaceSubsection(c, ssi, sui, src)
	return replaceSubsection(out, dsi, dui, dst)
}
