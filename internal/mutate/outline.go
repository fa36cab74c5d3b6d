package mutate

import (
	"fmt"
	"strings"

	"coursekit/internal/model"
	"coursekit/internal/store"
)

// DefaultBreakMinutes is the duration of a newly added break.
const DefaultBreakMinutes = 10

// Field names an editable text field.
type Field string

const (
	FieldTitle       Field = "title"
	FieldDescription Field = "description"
)

func ParseField(s string) (Field, bool) {
	switch Field(strings.ToLower(strings.TrimSpace(s))) {
	case FieldTitle:
		return FieldTitle, true
	case FieldDescription:
		return FieldDescription, true
	default:
		return "", false
	}
}

// ListField names one of a topic box's string lists.
type ListField string

const (
	ListPLAPillars         ListField = "pla_pillars"
	ListLearningObjectives ListField = "learning_objectives"
	ListContentKeywords    ListField = "content_keywords"
)

func newTopicBox(id, title string) model.TopicBox {
	return model.TopicBox{
		ID:                 id,
		Title:              title,
		PLAPillars:         []string{},
		LearningObjectives: []string{},
		ContentKeywords:    []string{},
		VideoResources:     []model.Resource{},
		Worksheets:         []model.Resource{},
		Activities:         []model.Resource{},
	}
}

// AddSection appends "Section N", N counting regular sections only. It returns the new id.
func AddSection(c *model.Course, ids IDSource) (*model.Course, string) {
	if c == nil {
		return c, ""
	}
	ids = idsOrLocal(ids, c)
	n := 1
	for _, s := range c.Sections {
		if !s.IsBreak() {
			n++
		}
	}
	s := model.Section{
		ID:          ids.NextID(store.PrefixSection),
		Title:       fmt.Sprintf("Section %d", n),
		Subsections: []model.Subsection{},
	}
	return withSections(c, appendCopy(c.Sections, s)), s.ID
}

// AddBreak appends a break marker. minutes <= 0 uses DefaultBreakMinutes.
func AddBreak(c *model.Course, ids IDSource, minutes int) (*model.Course, string) {
	if c == nil {
		return c, ""
	}
	ids = idsOrLocal(ids, c)
	if minutes <= 0 {
		minutes = DefaultBreakMinutes
	}
	b := model.Section{ID: ids.NextID(store.PrefixBreak), Type: model.SectionTypeBreak, Duration: minutes}
	return withSections(c, appendCopy(c.Sections, b)), b.ID
}

// AddSubsection appends "Subsection N" to a regular section.
func AddSubsection(c *model.Course, ids IDSource, sectionID string) (*model.Course, string) {
	si, ok := c.SectionIndex(sectionID)
	if !ok || c.Sections[si].IsBreak() {
		return c, ""
	}
	ids = idsOrLocal(ids, c)
	s := c.Sections[si]
	sub := model.Subsection{
		ID:         ids.NextID(store.PrefixSubsection),
		Title:      fmt.Sprintf("Subsection %d", len(s.Subsections)+1),
		TopicBoxes: []model.TopicBox{},
	}
	s.Subsections = appendCopy(s.Subsections, sub)
	return replaceSection(c, si, s), sub.ID
}

// AddTopicBox appends "Topic N" to a subsection.
func AddTopicBox(c *model.Course, ids IDSource, subsectionID string) (*model.Course, string) {
	si, ui, ok := c.SubsectionPath(subsectionID)
	if !ok {
		return c, ""
	}
	ids = idsOrLocal(ids, c)
	sub := c.Sections[si].Subsections[ui]
	tb := newTopicBox(ids.NextID(store.PrefixTopic), fmt.Sprintf("Topic %d", len(sub.TopicBoxes)+1))
	sub.TopicBoxes = appendCopy(sub.TopicBoxes, tb)
	return replaceSubsection(c, si, ui, sub), tb.ID
}

func setText(title, description *string, f Field, value string) bool {
	var dst *string
	switch f {
	case FieldTitle:
		dst = title
	case FieldDescription:
		dst = description
	default:
		return false
	}
	if *dst == value {
		return false
	}
	*dst = value
	return true
}

// RenameSection replaces a regular section's title or description.
func RenameSection(c *model.Course, id string, f Field, value string) *model.Course {
	si, ok := c.SectionIndex(id)
	if !ok || c.Sections[si].IsBreak() {
		return c
	}
	s := c.Sections[si]
	if !setText(&s.Title, &s.Description, f, value) {
		return c
	}
	return replaceSection(c, si, s)
}

func RenameSubsection(c *model.Course, id string, f Field, value string) *model.Course {
	si, ui, ok := c.SubsectionPath(id)
	if !ok {
		return c
	}
	sub := c.Sections[si].Subsections[ui]
	if !setText(&sub.Title, &sub.Description, f, value) {
		return c
	}
	return replaceSubsection(c, si, ui, sub)
}

func RenameTopicBox(c *model.Course, id string, f Field, value string) *model.Course {
	si, ui, ti, ok := c.TopicBoxPath(id)
	if !ok {
		return c
	}
	tb := c.Sections[si].Subsections[ui].TopicBoxes[ti]
	if !setText(&tb.Title, &tb.Description, f, value) {
		return c
	}
	return replaceTopicBox(c, si, ui, ti, tb)
}

// SetField renames whichever entity id names, at any level.
func SetField(c *model.Course, id string, f Field, value string) *model.Course {
	if _, ok := c.SectionIndex(id); ok {
		return RenameSection(c, id, f, value)
	}
	if _, _, ok := c.SubsectionPath(id); ok {
		return RenameSubsection(c, id, f, value)
	}
	return RenameTopicBox(c, id, f, value)
}

// FieldValue reads the current value of a text field by entity id.
func FieldValue(c *model.Course, id string, f Field) (string, bool) {
	pick := func(title, description string) (string, bool) {
		switch f {
		case FieldTitle:
			return title, true
		case FieldDescription:
			return description, true
		}
		return "", false
	}
	if s, ok := c.FindSection(id); ok && !s.IsBreak() {
		return pick(s.Title, s.Description)
	}
	if sub, ok := c.FindSubsection(id); ok {
		return pick(sub.Title, sub.Description)
	}
	if tb, ok := c.FindTopicBox(id); ok {
		return pick(tb.Title, tb.Description)
	}
	return "", false
}

func SetTopicDuration(c *model.Course, id string, minutes int) *model.Course {
	si, ui, ti, ok := c.TopicBoxPath(id)
	if !ok || minutes < 0 {
		return c
	}
	tb := c.Sections[si].Subsections[ui].TopicBoxes[ti]
	if tb.DurationMinutes == minutes {
		return c
	}
	tb.DurationMinutes = minutes
	return replaceTopicBox(c, si, ui, ti, tb)
}

func SetBreakDuration(c *model.Course, id string, minutes int) *model.Course {
	si, ok := c.SectionIndex(id)
	if !ok || !c.Sections[si].IsBreak() || minutes < 0 {
		return c
	}
	s := c.Sections[si]
	if s.Duration == minutes {
		return c
	}
	s.Duration = minutes
	return replaceSection(c, si, s)
}

// SetTopicList replaces one of a topic box's string lists.
func SetTopicList(c *model.Course, id string, f ListField, values []string) *model.Course {
	si, ui, ti, ok := c.TopicBoxPath(id)
	if !ok {
		return c
	}
	tb := c.Sections[si].Subsections[ui].TopicBoxes[ti]
	var dst *[]string
	switch f {
	case ListPLAPillars:
		dst = &tb.PLAPillars
	case ListLearningObjectives:
		dst = &tb.LearningObjectives
	case ListContentKeywords:
		dst = &tb.ContentKeywords
	default:
		return c
	}
	next := appendCopy([]string{}, values...)
	if equalStrings(*dst, next) {
		return c
	}
	*dst = next
	return replaceTopicBox(c, si, ui, ti, tb)
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// DeleteSection removes a section (or break) with its whole subtree.
func DeleteSection(c *model.Course, id string) *model.Course {
	si, ok := c.SectionIndex(id)
	if !ok {
		return c
	}
	return withSections(c, removeAt(c.Sections, si))
}

func DeleteSubsection(c *model.Course, id string) *model.Course {
	si, ui, ok := c.SubsectionPath(id)
	if !ok {
		return c
	}
	s := c.Sections[si]
	s.Subsections = removeAt(s.Subsections, ui)
	return replaceSection(c, si, s)
}

func DeleteTopicBox(c *model.Course, id string) *model.Course {
	si, ui, ti, ok := c.TopicBoxPath(id)
	if !ok {
		return c
	}
	sub := c.Sections[si].Subsections[ui]
	sub.TopicBoxes = removeAt(sub.TopicBoxes, ti)
	return replaceSubsection(c, si, ui, sub)
}

// Delete removes whichever entity id names.
func Delete(c *model.Course, id string) *model.Course {
	if _, ok := c.SectionIndex(id); ok {
		return DeleteSection(c, id)
	}
	if _, _, ok := c.SubsectionPath(id); ok {
		return DeleteSubsection(c, id)
	}
	return DeleteTopicBox(c, id)
}
