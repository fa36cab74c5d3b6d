package mutate

import (
	"fmt"

	"coursekit/internal/model"
)

func topic(id string) model.TopicBox {
	tb := newTopicBox(id, "T "+id)
	tb.DurationMinutes = 10
	return tb
}

// fixture: S1{Sub1[t1a,t1b], Sub2[t2a,t2b]}, break B, S2{Sub3[t3a]}.
func fixture() *model.Course {
	return &model.Course{
		Name: "Course",
		Sections: []model.Section{
			{ID: "S1", Title: "S1", Subsections: []model.Subsection{
				{ID: "Sub1", Title: "Sub1", TopicBoxes: []model.TopicBox{topic("t1a"), topic("t1b")}},
				{ID: "Sub2", Title: "Sub2", TopicBoxes: []model.TopicBox{topic("t2a"), topic("t2b")}},
			}},
			{ID: "B", Type: model.SectionTypeBreak, Duration: 5},
			{ID: "S2", Title: "S2", Subsections: []model.Subsection{
				{ID: "Sub3", Title: "Sub3", TopicBoxes: []model.TopicBox{topic("t3a")}},
			}},
		},
	}
}

func topicIDs(sub model.Subsection) []string {
	out := make([]string, 0, len(sub.TopicBoxes))
	for _, tb := range sub.TopicBoxes {
		out = append(out, tb.ID)
	}
	return out
}

func sectionIDs(c *model.Course) []string {
	out := make([]string, 0, len(c.Sections))
	for _, s := range c.Sections {
		out = append(out, s.ID)
	}
	return out
}

// seqIDs is a deterministic IDSource for tests.
type seqIDs struct {
	seen map[string]bool
	n    int
}

func newSeqIDs(c *model.Course) *seqIDs {
	s := &seqIDs{seen: map[string]bool{}}
	c.EachID(func(id string) { s.seen[id] = true })
	return s
}

func (s *seqIDs) NextID(prefix string) string {
	for {
		s.n++
		id := fmt.Sprintf("%s-%d", prefix, s.n)
		if !s.seen[id] {
			s.seen[id] = true
			return id
		}
	}
}

func (s *seqIDs) Reserve(id string) bool {
	if id == "" || s.seen[id] {
		return false
	}
	s.seen[id] = true
	return true
}
