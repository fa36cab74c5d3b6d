package model

type Counts struct {
	Sections    int `json:"sections"`
	Breaks      int `json:"breaks"`
	Subsections int `json:"subsections"`
	TopicBoxes  int `json:"topicBoxes"`
	Videos      int `json:"videos"`
	Worksheets  int `json:"worksheets"`
	Activities  int `json:"activities"`
}

func CountAll(c *Course) Counts {
	var n Counts
	if c == nil {
		return n
	}
	for _, s := range c.Sections {
		if s.IsBreak() {
			n.Breaks++
			continue
		}
		n.Sections++
		for _, sub := range s.Subsections {
			n.Subsections++
			for _, tb := range sub.TopicBoxes {
				n.TopicBoxes++
				n.Videos += len(tb.VideoResources)
				n.Worksheets += len(tb.Worksheets)
				n.Activities += len(tb.Activities)
			}
		}
	}
	return n
}

type SectionMinutes struct {
	ID      string `json:"id"`
	Title   string `json:"title,omitempty"`
	Break   bool   `json:"break,omitempty"`
	Minutes int    `json:"minutes"`
}

type Stats struct {
	Counts       Counts           `json:"counts"`
	TotalMinutes int              `json:"totalMinutes"`
	Sections     []SectionMinutes `json:"sections"`
}

// ComputeStats sums topic-box durations per section; breaks contribute their own duration.
func ComputeStats(c *Course) Stats {
	st := Stats{Counts: CountAll(c), Sections: []SectionMinutes{}}
	if c == nil {
		return st
	}
	for _, s := range c.Sections {
		sm := SectionMinutes{ID: s.ID, Title: s.Title, Break: s.IsBreak()}
		if s.IsBreak() {
			sm.Minutes = s.Duration
		} else {
			for _, sub := range s.Subsections {
				for _, tb := range sub.TopicBoxes {
					sm.Minutes += tb.DurationMinutes
				}
			}
		}
		st.TotalMinutes += sm.Minutes
		st.Sections = append(st.Sections, sm)
	}
	return st
}
