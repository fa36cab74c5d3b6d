package mutate

import (
	"strings"

	"coursekit/internal/model"
)

func ParseResourceType(s string) (model.ResourceType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "video", "videos":
		return model.ResourceVideo, true
	case "worksheet", "worksheets":
		return model.ResourceWorksheet, true
	case "activity", "activities":
		return model.ResourceActivity, true
	default:
		return "", false
	}
}

func resourceList(tb *model.TopicBox, t model.ResourceType) *[]model.Resource {
	switch t {
	case model.ResourceVideo:
		return &tb.VideoResources
	case model.ResourceWorksheet:
		return &tb.Worksheets
	case model.ResourceActivity:
		return &tb.Activities
	default:
		return nil
	}
}

// AttachResource appends r to the list matching r.Type. Duplicates are kept.
func AttachResource(c *model.Course, topicBoxID string, r model.Resource) *model.Course {
	return AttachResources(c, topicBoxID, []model.Resource{r})
}

// AttachResources appends several resources in order; all of them or none are attached.
func AttachResources(c *model.Course, topicBoxID string, rs []model.Resource) *model.Course {
	si, ui, ti, ok := c.TopicBoxPath(topicBoxID)
	if !ok || len(rs) == 0 {
		return c
	}
	tb := c.Sections[si].Subsections[ui].TopicBoxes[ti]
	for _, r := range rs {
		list := resourceList(&tb, r.Type)
		if list == nil {
			return c
		}
		if r.Source == "" {
			r.Source = model.SourceManual
		}
		*list = appendCopy(*list, r)
	}
	return replaceTopicBox(c, si, ui, ti, tb)
}

// RemoveResource drops the index-th resource of type t from a topic box.
func RemoveResource(c *model.Course, topicBoxID string, t model.ResourceType, index int) *model.Course {
	si, ui, ti, ok := c.TopicBoxPath(topicBoxID)
	if !ok {
		return c
	}
	tb := c.Sections[si].Subsections[ui].TopicBoxes[ti]
	list := resourceList(&tb, t)
	if list == nil || index < 0 || index >= len(*list) {
		return c
	}
	*list = removeAt(*list, index)
	return replaceTopicBox(c, si, ui, ti, tb)
}
