package model

// HandsOn groups the worksheet and activity resources of one topic box.
type HandsOn struct {
	Worksheets []Resource `json:"worksheets"`
	Activities []Resource `json:"activities"`
}

// ResourceCaches are derived, never persisted views over the tree keyed by topic-box id.
// They can be rebuilt from the tree at any time.
type ResourceCaches struct {
	Videos  map[string][]Resource `json:"videos"`
	HandsOn map[string]HandsOn    `json:"handsOn"`
}

// DeriveCaches scans every topic box once. Topic boxes without resources get no entry.
func DeriveCaches(c *Course) ResourceCaches {
	out := ResourceCaches{
		Videos:  map[string][]Resource{},
		HandsOn: map[string]HandsOn{},
	}
	if c == nil {
		return out
	}
	for _, s := range c.Sections {
		if s.IsBreak() {
			continue
		}
		for _, sub := range s.Subsections {
			for _, tb := range sub.TopicBoxes {
				if len(tb.VideoResources) > 0 {
					out.Videos[tb.ID] = append([]Resource(nil), tb.VideoResources...)
				}
				if len(tb.Worksheets) > 0 || len(tb.Activities) > 0 {
					out.HandsOn[tb.ID] = HandsOn{
						Worksheets: append([]Resource{}, tb.Worksheets...),
						Activities: append([]Resource{}, tb.Activities...),
					}
				}
			}
		}
	}
	return out
}
