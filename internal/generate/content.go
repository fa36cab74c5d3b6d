package generate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"coursekit/internal/model"
	"coursekit/internal/mutate"
)

const (
	DefaultCount = 3
	MaxCount     = 10
)

type CourseContext struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Grade       string `json:"grade,omitempty"`
	Subject     string `json:"subject,omitempty"`
	Topic       string `json:"topic,omitempty"`
}

type TitledItem struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

type SectionContext struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Subsections []string `json:"subsections"`
}

type SubsectionContext struct {
	ID             string   `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description,omitempty"`
	SectionTitle   string   `json:"section_title"`
	ExistingTopics []string `json:"existing_topics"`
}

// Context is the structural summary sent with a generation request. Sibling titles let the
// service avoid duplicating what already exists.
type Context struct {
	Course           CourseContext      `json:"course"`
	ExistingSections []TitledItem       `json:"existing_sections,omitempty"`
	AllSectionNames  []string           `json:"all_section_names,omitempty"`
	CurrentSection   *SectionContext    `json:"current_section,omitempty"`
	Subsection       *SubsectionContext `json:"subsection,omitempty"`
}

type Request struct {
	Level        model.Level `json:"level"`
	Context      Context     `json:"context"`
	UserGuidance *string     `json:"userGuidance"`
	Count        int         `json:"count"`
	TeacherID    string      `json:"teacher_uid,omitempty"`
}

type Response struct {
	Success bool                  `json:"success"`
	Level   string                `json:"level,omitempty"`
	Items   []model.GeneratedItem `json:"items"`
	Message string                `json:"message,omitempty"`
	Error   string                `json:"error,omitempty"`
}

// BuildRequest summarizes c for a generation at level under parentID (a section id for
// subsections, a subsection id for topics, ignored for sections).
func BuildRequest(c *model.Course, level model.Level, parentID, guidance string, count int) (Request, error) {
	if !level.Valid() {
		return Request{}, fmt.Errorf("invalid level %q (expected sections|subsections|topics)", level)
	}
	if c == nil {
		c = &model.Course{}
	}
	if count <= 0 {
		count = DefaultCount
	}
	if count > MaxCount {
		count = MaxCount
	}

	req := Request{
		Level: level,
		Count: count,
		Context: Context{Course: CourseContext{
			Title:       c.Name,
			Description: c.Objectives,
			Grade:       c.Class,
			Subject:     c.Subject,
			Topic:       c.Topic,
		}},
	}
	if g := strings.TrimSpace(guidance); g != "" {
		req.UserGuidance = &g
	}

	switch level {
	case model.LevelSections:
		req.Context.ExistingSections = []TitledItem{}
		for _, s := range c.Sections {
			if s.IsBreak() {
				continue
			}
			req.Context.ExistingSections = append(req.Context.ExistingSections, TitledItem{Title: s.Title, Description: s.Description})
		}

	case model.LevelSubsections:
		if err := mutate.Check(c, "section", parentID); err != nil {
			return Request{}, err
		}
		s, _ := c.FindSection(parentID)
		req.Context.AllSectionNames = sectionNames(c)
		req.Context.CurrentSection = &SectionContext{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Subsections: subsectionTitles(*s),
		}

	case model.LevelTopics:
		if err := mutate.Check(c, "subsection", parentID); err != nil {
			return Request{}, err
		}
		si, ui, _ := c.SubsectionPath(parentID)
		s := c.Sections[si]
		sub := s.Subsections[ui]
		req.Context.AllSectionNames = sectionNames(c)
		req.Context.CurrentSection = &SectionContext{
			ID:          s.ID,
			Title:       s.Title,
			Description: s.Description,
			Subsections: subsectionTitles(s),
		}
		topics := make([]string, 0, len(sub.TopicBoxes))
		for _, tb := range sub.TopicBoxes {
			topics = append(topics, tb.Title)
		}
		req.Context.Subsection = &SubsectionContext{
			ID:             sub.ID,
			Title:          sub.Title,
			Description:    sub.Description,
			SectionTitle:   s.Title,
			ExistingTopics: topics,
		}
	}
	return req, nil
}

func sectionNames(c *model.Course) []string {
	out := []string{}
	for _, s := range c.Sections {
		if !s.IsBreak() {
			out = append(out, s.Title)
		}
	}
	return out
}

func subsectionTitles(s model.Section) []string {
	out := make([]string, 0, len(s.Subsections))
	for _, sub := range s.Subsections {
		out = append(out, sub.Title)
	}
	return out
}

// Generate asks the content-generation service for new items. A success:false answer or an
// empty item list is an error; the caller leaves the tree unchanged.
func (c *Client) Generate(ctx context.Context, req Request) ([]model.GeneratedItem, error) {
	if req.TeacherID == "" {
		req.TeacherID = c.teacherID
	}
	start := time.Now()
	raw, err := c.post(ctx, c.generationURL+generatePath, req)
	if err != nil {
		c.log.Warn("generate: request failed", "level", req.Level, "count", req.Count, "error", err)
		return nil, err
	}

	var resp Response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode generation response: %w", err)
	}
	if !resp.Success {
		msg := resp.Error
		if msg == "" {
			msg = resp.Message
		}
		return nil, failure(msg)
	}

	items := make([]model.GeneratedItem, 0, len(resp.Items))
	for _, it := range resp.Items {
		if strings.TrimSpace(it.Title) == "" {
			continue
		}
		items = append(items, it)
	}
	if len(items) == 0 {
		return nil, failure("no items returned")
	}
	c.log.Info("generate: items received", "level", req.Level, "count", len(items), "elapsed", time.Since(start))
	return items, nil
}
