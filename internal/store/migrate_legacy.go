package store

import "coursekit/internal/model"

// MigratedSuffix is appended to a legacy subsection id to form its synthesized topic-box id.
const MigratedSuffix = "-migrated"

// MigrateLegacy brings subsections that predate topic boxes into the current shape.
//
// Per subsection:
//   - topicBoxes present (non-nil): left untouched.
//   - legacy resource fields present: exactly one topic box "<subsection id>-migrated" carrying
//     them, with the subsection's title and description. If that id is already used in the
//     course, a -2, -3, ... suffix is added.
//   - neither: an empty topicBoxes list.
//
// Returns the input pointer and false when nothing needed migrating, so migrating an already
// migrated course is a no-op.
func MigrateLegacy(c *model.Course) (*model.Course, bool) {
	if c == nil {
		return &model.Course{Sections: []model.Section{}}, true
	}
	if !needsLegacyMigration(c) {
		return c, false
	}

	out := c.Clone()
	taken := takenIDs(out)
	if out.Sections == nil {
		out.Sections = []model.Section{}
	}
	for i := range out.Sections {
		s := &out.Sections[i]
		if s.IsBreak() {
			s.Subsections = nil
			continue
		}
		if s.Subsections == nil {
			s.Subsections = []model.Subsection{}
		}
		for j := range s.Subsections {
			sub := &s.Subsections[j]
			if sub.TopicBoxes != nil {
				continue
			}
			if !sub.HasLegacyFields() {
				sub.TopicBoxes = []model.TopicBox{}
				continue
			}
			tb := migratedTopicBox(*sub)
			tb.ID = uniqueID(taken, tb.ID)
			sub.TopicBoxes = []model.TopicBox{tb}
			sub.LegacyVideoResources = nil
			sub.LegacyWorksheets = nil
			sub.LegacyActivities = nil
			sub.LegacyLearningObjectives = nil
		}
	}
	return out, true
}

func needsLegacyMigration(c *model.Course) bool {
	if c.Sections == nil {
		return true
	}
	for _, s := range c.Sections {
		if s.IsBreak() {
			if s.Subsections != nil {
				return true
			}
			continue
		}
		if s.Subsections == nil {
			return true
		}
		for _, sub := range s.Subsections {
			if sub.TopicBoxes == nil {
				return true
			}
		}
	}
	return false
}

func migratedTopicBox(sub model.Subsection) model.TopicBox {
	tb := model.TopicBox{
		ID:                 sub.ID + MigratedSuffix,
		Title:              sub.Title,
		Description:        sub.Description,
		PLAPillars:         []string{},
		LearningObjectives: append([]string{}, sub.LegacyLearningObjectives...),
		ContentKeywords:    []string{},
		VideoResources:     append([]model.Resource{}, sub.LegacyVideoResources...),
		Worksheets:         append([]model.Resource{}, sub.LegacyWorksheets...),
		Activities:         append([]model.Resource{}, sub.LegacyActivities...),
	}
	return tb
}
