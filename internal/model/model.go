package model

import "encoding/json"

type ResourceType string

const (
	ResourceVideo     ResourceType = "video"
	ResourceWorksheet ResourceType = "worksheet"
	ResourceActivity  ResourceType = "activity"
)

type ResourceSource string

const (
	SourceGenerated ResourceSource = "generated"
	SourceManual    ResourceSource = "manual"
)

type SectionType string

const (
	SectionTypeSection SectionType = "section"
	SectionTypeBreak   SectionType = "break"
)

type Resource struct {
	Type        ResourceType   `json:"type"`
	Title       string         `json:"title"`
	URL         string         `json:"url"`
	Description string         `json:"description,omitempty"`
	Thumbnail   string         `json:"thumbnail,omitempty"`
	Source      ResourceSource `json:"source"`
}

// TopicBox is the leaf unit of a course outline.
type TopicBox struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	DurationMinutes    int        `json:"duration_minutes"`
	PLAPillars         []string   `json:"pla_pillars"`
	LearningObjectives []string   `json:"learning_objectives"`
	ContentKeywords    []string   `json:"content_keywords"`
	VideoResources     []Resource `json:"video_resources"`
	Worksheets         []Resource `json:"worksheets"`
	Activities         []Resource `json:"activities"`
}

type Subsection struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`

	// TopicBoxes is nil only for documents that predate topic boxes (see store.MigrateLegacy).
	TopicBoxes []TopicBox `json:"topicBoxes"`

	// Legacy fields (folded into a topic box on load).
	LegacyVideoResources     []Resource `json:"video_resources,omitempty"`
	LegacyWorksheets         []Resource `json:"worksheets,omitempty"`
	LegacyActivities         []Resource `json:"activities,omitempty"`
	LegacyLearningObjectives []string   `json:"learning_objectives,omitempty"`
}

// HasLegacyFields reports whether any subsection-level resource field is non-empty.
func (s Subsection) HasLegacyFields() bool {
	return len(s.LegacyVideoResources) > 0 ||
		len(s.LegacyWorksheets) > 0 ||
		len(s.LegacyActivities) > 0 ||
		len(s.LegacyLearningObjectives) > 0
}

// Section is either a regular section (title, description, subsections) or a break marker
// (Type == SectionTypeBreak, Duration minutes).
type Section struct {
	ID          string       `json:"id"`
	Type        SectionType  `json:"type,omitempty"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Duration    int          `json:"duration,omitempty"`
	Subsections []Subsection `json:"subsections"`
}

func (s Section) IsBreak() bool { return s.Type == SectionTypeBreak }

// MarshalJSON writes breaks in their compact {id,type,duration} form.
func (s Section) MarshalJSON() ([]byte, error) {
	if s.IsBreak() {
		return json.Marshal(struct {
			ID       string      `json:"id"`
			Type     SectionType `json:"type"`
			Duration int         `json:"duration"`
		}{ID: s.ID, Type: s.Type, Duration: s.Duration})
	}
	type plain Section
	p := plain(s)
	if p.Subsections == nil {
		p.Subsections = []Subsection{}
	}
	return json.Marshal(p)
}

// Course is the whole outline document plus its course-level metadata.
type Course struct {
	ID           string    `json:"courseId,omitempty"`
	Name         string    `json:"courseName"`
	Class        string    `json:"class"`
	Subject      string    `json:"subject"`
	Topic        string    `json:"topic"`
	TimeDuration string    `json:"timeDuration"`
	Objectives   string    `json:"objectives"`
	IsPublic     bool      `json:"isPublic"`
	Sections     []Section `json:"sections"`
}
