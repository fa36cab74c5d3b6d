package tui

import (
	"coursekit/internal/model"
	"coursekit/internal/session"
)

type rowKind int

const (
	rowSection rowKind = iota
	rowBreak
	rowSubsection
	rowTopic
)

// outlineRow is one visible line of the flattened outline. container and index locate the
// entity for reorder moves: the section id for subsections, the subsection id for topics,
// "" for sections and breaks.
type outlineRow struct {
	kind        rowKind
	id          string
	title       string
	depth       int
	container   string
	index       int
	minutes     int
	resources   int
	hasChildren bool
	collapsed   bool
}

func flattenCourse(c *model.Course, ui *session.UIState) []outlineRow {
	if c == nil {
		return nil
	}
	stats := model.ComputeStats(c)
	var out []outlineRow
	for si, s := range c.Sections {
		if s.IsBreak() {
			out = append(out, outlineRow{kind: rowBreak, id: s.ID, index: si, minutes: s.Duration})
			continue
		}
		collapsed := ui.IsCollapsed(s.ID)
		out = append(out, outlineRow{
			kind:        rowSection,
			id:          s.ID,
			title:       s.Title,
			index:       si,
			minutes:     stats.Sections[si].Minutes,
			hasChildren: len(s.Subsections) > 0,
			collapsed:   collapsed,
		})
		if collapsed {
			continue
		}
		for ui2, sub := range s.Subsections {
			subCollapsed := ui.IsCollapsed(sub.ID)
			out = append(out, outlineRow{
				kind:        rowSubsection,
				id:          sub.ID,
				title:       sub.Title,
				depth:       1,
				container:   s.ID,
				index:       ui2,
				hasChildren: len(sub.TopicBoxes) > 0,
				collapsed:   subCollapsed,
			})
			if subCollapsed {
				continue
			}
			for ti, tb := range sub.TopicBoxes {
				out = append(out, outlineRow{
					kind:      rowTopic,
					id:        tb.ID,
					title:     tb.Title,
					depth:     2,
					container: sub.ID,
					index:     ti,
					minutes:   tb.DurationMinutes,
					resources: len(tb.VideoResources) + len(tb.Worksheets) + len(tb.Activities),
				})
			}
		}
	}
	return out
}

// subsectionOrder lists every subsection id in outline order with its topic count.
func subsectionOrder(c *model.Course) (ids []string, counts map[string]int) {
	counts = map[string]int{}
	for _, s := range c.Sections {
		if s.IsBreak() {
			continue
		}
		for _, sub := range s.Subsections {
			ids = append(ids, sub.ID)
			counts[sub.ID] = len(sub.TopicBoxes)
		}
	}
	return ids, counts
}
