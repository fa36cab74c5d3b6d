package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"coursekit/internal/model"
)

// Payload is the serialized tree handed to the persistence collaborator. Sections is mirrored
// under outline.sections for readers that only know the older document layout.
type Payload struct {
	CourseName   string          `json:"courseName"`
	Class        string          `json:"class"`
	Subject      string          `json:"subject"`
	Topic        string          `json:"topic"`
	TimeDuration string          `json:"timeDuration"`
	Objectives   string          `json:"objectives"`
	IsPublic     bool            `json:"isPublic"`
	Sections     []model.Section `json:"sections"`
	Outline      PayloadOutline  `json:"outline"`
}

type PayloadOutline struct {
	Sections []model.Section `json:"sections"`
}

// SaveResult mirrors the persistence collaborator's answer. ID is the course id assigned on create.
type SaveResult struct {
	Success bool   `json:"success"`
	ID      string `json:"id,omitempty"`
	Error   string `json:"error,omitempty"`
}

func EncodePayload(c *model.Course) Payload {
	if c == nil {
		c = &model.Course{}
	}
	sections := c.Sections
	if sections == nil {
		sections = []model.Section{}
	}
	return Payload{
		CourseName:   c.Name,
		Class:        c.Class,
		Subject:      c.Subject,
		Topic:        c.Topic,
		TimeDuration: c.TimeDuration,
		Objectives:   c.Objectives,
		IsPublic:     c.IsPublic,
		Sections:     sections,
		Outline:      PayloadOutline{Sections: sections},
	}
}

// DecodeCourse decodes a persisted outline of any known shape.
//
// Decoding is tolerant below the top level: non-array child collections become empty,
// non-string scalars become "", and entities without ids get positional ids derived from their
// parent (<parent>-<kind>-<n>) so they stay addressable. Subsections whose topicBoxes is absent
// or not an array keep TopicBoxes == nil for MigrateLegacy to resolve.
func DecodeCourse(b []byte) (*model.Course, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode course: %w", err)
	}
	if raw == nil {
		return nil, errors.New("decode course: empty document")
	}

	c := &model.Course{
		ID:           rawString(raw, "courseId", "id"),
		Name:         rawString(raw, "courseName", "course_name", "name"),
		Class:        rawString(raw, "class", "grade_level"),
		Subject:      rawString(raw, "subject"),
		Topic:        rawString(raw, "topic"),
		TimeDuration: rawString(raw, "timeDuration", "duration"),
		Objectives:   rawString(raw, "objectives"),
		IsPublic:     rawBool(raw, "isPublic"),
	}

	sectionsRaw, ok := rawArray(raw["sections"])
	if !ok || len(sectionsRaw) == 0 {
		var outline map[string]json.RawMessage
		if err := json.Unmarshal(raw["outline"], &outline); err == nil {
			if alt, ok := rawArray(outline["sections"]); ok && len(alt) > 0 {
				sectionsRaw = alt
			}
		}
	}

	c.Sections = make([]model.Section, 0, len(sectionsRaw))
	for _, sr := range sectionsRaw {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(sr, &m); err != nil || m == nil {
			continue
		}
		c.Sections = append(c.Sections, decodeSection(m))
	}
	fillMissingIDs(c)
	return c, nil
}

// fillMissingIDs gives id-less entities positional ids. Ids present in the document win; a
// positional id that collides with one gets a -2, -3, ... suffix.
func fillMissingIDs(c *model.Course) {
	taken := takenIDs(c)
	for i := range c.Sections {
		s := &c.Sections[i]
		if s.ID == "" {
			s.ID = uniqueID(taken, fmt.Sprintf("section-%d", i+1))
		}
		for j := range s.Subsections {
			sub := &s.Subsections[j]
			if sub.ID == "" {
				sub.ID = uniqueID(taken, fmt.Sprintf("%s-subsection-%d", s.ID, j+1))
			}
			for k := range sub.TopicBoxes {
				tb := &sub.TopicBoxes[k]
				if tb.ID == "" {
					tb.ID = uniqueID(taken, fmt.Sprintf("%s-topic-%d", sub.ID, k+1))
				}
			}
		}
	}
}

func takenIDs(c *model.Course) map[string]bool {
	taken := map[string]bool{}
	c.EachID(func(id string) {
		if id != "" {
			taken[id] = true
		}
	})
	return taken
}

// uniqueID returns base, or base-N for the smallest N >= 2 not in taken, and marks it taken.
func uniqueID(taken map[string]bool, base string) string {
	id := base
	for n := 2; taken[id]; n++ {
		id = fmt.Sprintf("%s-%d", base, n)
	}
	taken[id] = true
	return id
}

func decodeSection(m map[string]json.RawMessage) model.Section {
	s := model.Section{
		ID:          rawString(m, "id"),
		Type:        model.SectionType(rawString(m, "type")),
		Title:       rawString(m, "title", "name"),
		Description: rawString(m, "description"),
	}
	if s.IsBreak() {
		s.Duration = rawInt(m, "duration", "duration_minutes")
		s.Title = ""
		s.Description = ""
		return s
	}
	if s.Type == model.SectionTypeSection {
		s.Type = ""
	}

	subsRaw, _ := rawArray(m["subsections"])
	s.Subsections = make([]model.Subsection, 0, len(subsRaw))
	for _, r := range subsRaw {
		var sm map[string]json.RawMessage
		if err := json.Unmarshal(r, &sm); err != nil || sm == nil {
			continue
		}
		s.Subsections = append(s.Subsections, decodeSubsection(sm))
	}
	return s
}

func decodeSubsection(m map[string]json.RawMessage) model.Subsection {
	sub := model.Subsection{
		ID:          rawString(m, "id"),
		Title:       rawString(m, "title", "name"),
		Description: rawString(m, "description"),
	}

	if boxes, ok := rawArray(m["topicBoxes"]); ok {
		sub.TopicBoxes = make([]model.TopicBox, 0, len(boxes))
		for _, r := range boxes {
			var tm map[string]json.RawMessage
			if err := json.Unmarshal(r, &tm); err != nil || tm == nil {
				continue
			}
			sub.TopicBoxes = append(sub.TopicBoxes, decodeTopicBox(tm))
		}
	}

	sub.LegacyVideoResources = rawResources(m["video_resources"], model.ResourceVideo)
	sub.LegacyWorksheets = rawResources(m["worksheets"], model.ResourceWorksheet)
	sub.LegacyActivities = rawResources(m["activities"], model.ResourceActivity)
	sub.LegacyLearningObjectives = rawStrings(m, "learning_objectives", "learningObjectives")
	if len(sub.LegacyVideoResources) == 0 {
		sub.LegacyVideoResources = nil
	}
	if len(sub.LegacyWorksheets) == 0 {
		sub.LegacyWorksheets = nil
	}
	if len(sub.LegacyActivities) == 0 {
		sub.LegacyActivities = nil
	}
	if len(sub.LegacyLearningObjectives) == 0 {
		sub.LegacyLearningObjectives = nil
	}
	return sub
}

func decodeTopicBox(m map[string]json.RawMessage) model.TopicBox {
	tb := model.TopicBox{
		ID:                 rawString(m, "id", "box_id"),
		Title:              rawString(m, "title"),
		Description:        rawString(m, "description"),
		DurationMinutes:    rawInt(m, "duration_minutes"),
		PLAPillars:         rawStrings(m, "pla_pillars"),
		LearningObjectives: rawStrings(m, "learning_objectives", "learningObjectives"),
		ContentKeywords:    rawStrings(m, "content_keywords", "keywords"),
		VideoResources:     rawResources(m["video_resources"], model.ResourceVideo),
		Worksheets:         rawResources(m["worksheets"], model.ResourceWorksheet),
		Activities:         rawResources(m["activities"], model.ResourceActivity),
	}
	if tb.DurationMinutes == 0 {
		tb.DurationMinutes = parseMinutes(rawString(m, "duration"))
	}
	return tb
}

func rawResources(b json.RawMessage, typ model.ResourceType) []model.Resource {
	items, _ := rawArray(b)
	out := make([]model.Resource, 0, len(items))
	for _, r := range items {
		var m map[string]json.RawMessage
		if err := json.Unmarshal(r, &m); err != nil || m == nil {
			continue
		}
		res := model.Resource{
			Type:        model.ResourceType(rawString(m, "type")),
			Title:       rawString(m, "title"),
			URL:         rawString(m, "url", "link"),
			Description: rawString(m, "description"),
			Thumbnail:   rawString(m, "thumbnail", "thumbnail_url"),
			Source:      model.ResourceSource(rawString(m, "source")),
		}
		if res.Type == "" {
			res.Type = typ
		}
		out = append(out, res)
	}
	return out
}

// rawArray splits a JSON array. ok is false for absent, null or non-array values.
func rawArray(b json.RawMessage) ([]json.RawMessage, bool) {
	if isNullOrEmpty(b) {
		return nil, false
	}
	var out []json.RawMessage
	if err := json.Unmarshal(b, &out); err != nil {
		return nil, false
	}
	if out == nil {
		out = []json.RawMessage{}
	}
	return out, true
}

func rawString(m map[string]json.RawMessage, keys ...string) string {
	for _, k := range keys {
		b, ok := m[k]
		if !ok || isNullOrEmpty(b) {
			continue
		}
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			return strings.TrimSpace(s)
		}
		var n json.Number
		if err := json.Unmarshal(b, &n); err == nil {
			return n.String()
		}
	}
	return ""
}

func rawInt(m map[string]json.RawMessage, keys ...string) int {
	for _, k := range keys {
		b, ok := m[k]
		if !ok || isNullOrEmpty(b) {
			continue
		}
		var f float64
		if err := json.Unmarshal(b, &f); err == nil {
			return int(f)
		}
		var s string
		if err := json.Unmarshal(b, &s); err == nil {
			if n := parseMinutes(s); n > 0 {
				return n
			}
		}
	}
	return 0
}

func rawBool(m map[string]json.RawMessage, key string) bool {
	var v bool
	if b, ok := m[key]; ok {
		_ = json.Unmarshal(b, &v)
	}
	return v
}

// rawStrings returns the string members of the first array-valued key; never nil.
func rawStrings(m map[string]json.RawMessage, keys ...string) []string {
	for _, k := range keys {
		items, ok := rawArray(m[k])
		if !ok {
			continue
		}
		out := make([]string, 0, len(items))
		for _, r := range items {
			var s string
			if err := json.Unmarshal(r, &s); err == nil && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return []string{}
}

// parseMinutes accepts a bare number of minutes, a number with a minute or hour unit
// ("20 min", "45min", "90m", "1h", "1.5 hours"), or a duration such as "1h30m".
// Anything else is 0.
func parseMinutes(s string) int {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return 0
	}
	if d, err := time.ParseDuration(s); err == nil {
		if d < 0 {
			return 0
		}
		return int(d.Round(time.Minute) / time.Minute)
	}

	end := 0
	for end < len(s) && (s[end] >= '0' && s[end] <= '9' || s[end] == '.') {
		end++
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	if err != nil || n < 0 {
		return 0
	}
	switch unit := strings.TrimSpace(s[end:]); {
	case unit == "", strings.HasPrefix(unit, "m"):
		return int(math.Round(n))
	case strings.HasPrefix(unit, "h"):
		return int(math.Round(n * 60))
	}
	return 0
}

func isNullOrEmpty(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	s := strings.TrimSpace(string(b))
	return s == "" || s == "null"
}
