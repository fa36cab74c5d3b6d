package model

import "slices"

// Clone returns a deep copy. nil and empty child lists are preserved as-is so that the legacy
// "no topicBoxes" shape survives a copy.
func (c *Course) Clone() *Course {
	if c == nil {
		return nil
	}
	out := *c
	out.Sections = cloneSlice(c.Sections, Section.Clone)
	return &out
}

func (s Section) Clone() Section {
	s.Subsections = cloneSlice(s.Subsections, Subsection.Clone)
	return s
}

func (s Subsection) Clone() Subsection {
	s.TopicBoxes = cloneSlice(s.TopicBoxes, TopicBox.Clone)
	s.LegacyVideoResources = slices.Clone(s.LegacyVideoResources)
	s.LegacyWorksheets = slices.Clone(s.LegacyWorksheets)
	s.LegacyActivities = slices.Clone(s.LegacyActivities)
	s.LegacyLearningObjectives = slices.Clone(s.LegacyLearningObjectives)
	return s
}

func (t TopicBox) Clone() TopicBox {
	t.PLAPillars = slices.Clone(t.PLAPillars)
	t.LearningObjectives = slices.Clone(t.LearningObjectives)
	t.ContentKeywords = slices.Clone(t.ContentKeywords)
	t.VideoResources = slices.Clone(t.VideoResources)
	t.Worksheets = slices.Clone(t.Worksheets)
	t.Activities = slices.Clone(t.Activities)
	return t
}

func cloneSlice[T any](in []T, clone func(T) T) []T {
	if in == nil {
		return nil
	}
	out := make([]T, len(in))
	for i := range in {
		out[i] = clone(in[i])
	}
	return out
}

// SectionIndex returns the position of a section (breaks included) by id.
func (c *Course) SectionIndex(id string) (int, bool) {
	if c == nil || id == "" {
		return -1, false
	}
	for i := range c.Sections {
		if c.Sections[i].ID == id {
			return i, true
		}
	}
	return -1, false
}

// SubsectionPath locates a subsection by id. Break sections are skipped.
func (c *Course) SubsectionPath(id string) (si, ui int, ok bool) {
	if c == nil || id == "" {
		return -1, -1, false
	}
	for i := range c.Sections {
		if c.Sections[i].IsBreak() {
			continue
		}
		for j := range c.Sections[i].Subsections {
			if c.Sections[i].Subsections[j].ID == id {
				return i, j, true
			}
		}
	}
	return -1, -1, false
}

// TopicBoxPath locates a topic box by id.
func (c *Course) TopicBoxPath(id string) (si, ui, ti int, ok bool) {
	if c == nil || id == "" {
		return -1, -1, -1, false
	}
	for i := range c.Sections {
		if c.Sections[i].IsBreak() {
			continue
		}
		for j := range c.Sections[i].Subsections {
			for k := range c.Sections[i].Subsections[j].TopicBoxes {
				if c.Sections[i].Subsections[j].TopicBoxes[k].ID == id {
					return i, j, k, true
				}
			}
		}
	}
	return -1, -1, -1, false
}

func (c *Course) FindSection(id string) (*Section, bool) {
	i, ok := c.SectionIndex(id)
	if !ok {
		return nil, false
	}
	return &c.Sections[i], true
}

func (c *Course) FindSubsection(id string) (*Subsection, bool) {
	si, ui, ok := c.SubsectionPath(id)
	if !ok {
		return nil, false
	}
	return &c.Sections[si].Subsections[ui], true
}

func (c *Course) FindTopicBox(id string) (*TopicBox, bool) {
	si, ui, ti, ok := c.TopicBoxPath(id)
	if !ok {
		return nil, false
	}
	return &c.Sections[si].Subsections[ui].TopicBoxes[ti], true
}

// EachID calls fn for every entity id in the tree (sections, subsections, topic boxes).
func (c *Course) EachID(fn func(id string)) {
	if c == nil {
		return
	}
	for _, s := range c.Sections {
		fn(s.ID)
		for _, sub := range s.Subsections {
			fn(sub.ID)
			for _, tb := range sub.TopicBoxes {
				fn(tb.ID)
			}
		}
	}
}

// HasID reports whether id names any entity in the tree.
func (c *Course) HasID(id string) bool {
	found := false
	c.EachID(func(x string) {
		if x == id {
			found = true
		}
	})
	return found
}
