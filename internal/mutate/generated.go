package mutate

import (
	"strings"

	"coursekit/internal/model"
	"coursekit/internal/store"
)

// InsertGenerated appends generated items at the end of the container named by parentID
// (ignored for LevelSections), preserving their order. It returns the ids actually used.
//
// A collaborator-issued id is kept unless it is empty or already taken (in the tree, earlier in
// the batch, or issued before in this session); those items get a fresh id.
func InsertGenerated(c *model.Course, ids IDSource, level model.Level, parentID string, items []model.GeneratedItem) (*model.Course, []string) {
	if c == nil || len(items) == 0 {
		return c, nil
	}

	switch level {
	case model.LevelSections:
		ids = idsOrLocal(ids, c)
		added := make([]model.Section, 0, len(items))
		used := make([]string, 0, len(items))
		for _, it := range items {
			s := model.Section{
				ID:          claimID(ids, it.ID, store.PrefixSection),
				Title:       strings.TrimSpace(it.Title),
				Description: strings.TrimSpace(it.Description),
				Subsections: []model.Subsection{},
			}
			added = append(added, s)
			used = append(used, s.ID)
		}
		return withSections(c, appendCopy(c.Sections, added...)), used

	case model.LevelSubsections:
		si, ok := c.SectionIndex(parentID)
		if !ok || c.Sections[si].IsBreak() {
			return c, nil
		}
		ids = idsOrLocal(ids, c)
		s := c.Sections[si]
		added := make([]model.Subsection, 0, len(items))
		used := make([]string, 0, len(items))
		for _, it := range items {
			sub := model.Subsection{
				ID:          claimID(ids, it.ID, store.PrefixSubsection),
				Title:       strings.TrimSpace(it.Title),
				Description: strings.TrimSpace(it.Description),
				TopicBoxes:  []model.TopicBox{},
			}
			added = append(added, sub)
			used = append(used, sub.ID)
		}
		s.Subsections = appendCopy(s.Subsections, added...)
		return replaceSection(c, si, s), used

	case model.LevelTopics:
		si, ui, ok := c.SubsectionPath(parentID)
		if !ok {
			return c, nil
		}
		ids = idsOrLocal(ids, c)
		sub := c.Sections[si].Subsections[ui]
		added := make([]model.TopicBox, 0, len(items))
		used := make([]string, 0, len(items))
		for _, it := range items {
			tb := newTopicBox(claimID(ids, it.ID, store.PrefixTopic), strings.TrimSpace(it.Title))
			tb.Description = strings.TrimSpace(it.Description)
			if it.DurationMinutes > 0 {
				tb.DurationMinutes = it.DurationMinutes
			}
			tb.PLAPillars = appendCopy(tb.PLAPillars, it.PLAPillars...)
			tb.LearningObjectives = appendCopy(tb.LearningObjectives, it.LearningObjectives...)
			tb.ContentKeywords = appendCopy(tb.ContentKeywords, it.ContentKeywords...)
			added = append(added, tb)
			used = append(used, tb.ID)
		}
		sub.TopicBoxes = appendCopy(sub.TopicBoxes, added...)
		return replaceSubsection(c, si, ui, sub), used
	}
	return c, nil
}

func claimID(ids IDSource, proposed, prefix string) string {
	proposed = strings.TrimSpace(proposed)
	if proposed != "" && ids.Reserve(proposed) {
		return proposed
	}
	return ids.NextID(prefix)
}
