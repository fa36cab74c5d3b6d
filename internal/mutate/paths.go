package mutate

import (
	"slices"

	"coursekit/internal/model"
	"coursekit/internal/store"
)

// Operations never write through a slice they did not allocate: every container on the path
// from the root to the edited entity is copied, everything else is shared with the input.
// Earlier snapshots (history) therefore stay valid without deep copies.

// IDSource issues fresh entity ids. *store.IDAllocator implements it.
type IDSource interface {
	NextID(prefix string) string
	Reserve(id string) bool
}

func idsOrLocal(ids IDSource, c *model.Course) IDSource {
	if ids != nil {
		return ids
	}
	return store.NewIDAllocator(c)
}

func withSections(c *model.Course, sections []model.Section) *model.Course {
	out := *c
	out.Sections = sections
	return &out
}

func replaceSection(c *model.Course, si int, s model.Section) *model.Course {
	sections := slices.Clone(c.Sections)
	sections[si] = s
	return withSections(c, sections)
}

func replaceSubsection(c *model.Course, si, ui int, sub model.Subsection) *model.Course {
	s := c.Sections[si]
	s.Subsections = slices.Clone(s.Subsections)
	s.Subsections[ui] = sub
	return replaceSection(c, si, s)
}

func replaceTopicBox(c *model.Course, si, ui, ti int, tb model.TopicBox) *model.Course {
	sub := c.Sections[si].Subsections[ui]
	sub.TopicBoxes = slices.Clone(sub.TopicBoxes)
	sub.TopicBoxes[ti] = tb
	return replaceSubsection(c, si, ui, sub)
}

// appendCopy appends to a fresh backing array.
func appendCopy[T any](in []T, items ...T) []T {
	out := make([]T, 0, len(in)+len(items))
	out = append(out, in...)
	return append(out, items...)
}

// removeAt returns a fresh slice without element i.
func removeAt[T any](in []T, i int) []T {
	out := make([]T, 0, len(in)-1)
	out = append(out, in[:i]...)
	return append(out, in[i+1:]...)
}

// insertAt returns a fresh slice with v at position i (0 <= i <= len(in)).
func insertAt[T any](in []T, i int, v T) []T {
	out := make([]T, 0, len(in)+1)
	out = append(out, in[:i]...)
	out = append(out, v)
	return append(out, in[i:]...)
}

func emptyIfNil[T any](in []T) []T {
	if in == nil {
		return []T{}
	}
	return in
}
