package model

// Level names one tier of the outline when talking to the content-generation service.
type Level string

const (
	LevelSections    Level = "sections"
	LevelSubsections Level = "subsections"
	LevelTopics      Level = "topics"
)

func (l Level) Valid() bool {
	switch l {
	case LevelSections, LevelSubsections, LevelTopics:
		return true
	default:
		return false
	}
}

// GeneratedItem is one item returned by the content-generation service. Only the topic-box
// fields are optional; absent values default to zero/empty on insertion.
type GeneratedItem struct {
	ID                 string   `json:"id"`
	Title              string   `json:"title"`
	Description        string   `json:"description"`
	DurationMinutes    int      `json:"duration_minutes,omitempty"`
	PLAPillars         []string `json:"pla_pillars,omitempty"`
	LearningObjectives []string `json:"learning_objectives,omitempty"`
	ContentKeywords    []string `json:"content_keywords,omitempty"`
}

// TopicResources pairs a topic box with resources generated for it.
type TopicResources struct {
	TopicBoxID string     `json:"topicBoxId"`
	Resources  []Resource `json:"resources"`
}
