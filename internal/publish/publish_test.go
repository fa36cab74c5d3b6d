package publish

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"coursekit/internal/model"
)

func sampleCourse() *model.Course {
	return &model.Course{
		ID:         "course-1",
		Name:       "Fractions",
		Class:      "5",
		Subject:    "Math",
		Objectives: "Add and compare fractions.",
		Sections: []model.Section{
			{ID: "s1", Title: "Basics", Subsections: []model.Subsection{{
				ID: "u1", Title: "Halves",
				TopicBoxes: []model.TopicBox{{
					ID: "t1", Title: "Cutting pizza", DurationMinutes: 20,
					LearningObjectives: []string{"Name one half", " "},
					ContentKeywords:    []string{"half", "whole"},
					VideoResources:     []model.Resource{{Type: model.ResourceVideo, Title: "Halves", URL: "https://v/1", Source: model.SourceGenerated}},
					Worksheets:         []model.Resource{{Type: model.ResourceWorksheet, Title: "Sheet", Source: model.SourceManual}},
				}},
			}}},
			{ID: "b1", Type: model.SectionTypeBreak, Duration: 10},
			{ID: "s2", Title: "Comparing"},
		},
	}
}

func TestRenderCourseMarkdown(t *testing.T) {
	t.Parallel()

	md := RenderCourseMarkdown(sampleCourse())
	for _, want := range []string{
		"# Fractions",
		"- Class: 5",
		"- Planned time: 30 minutes",
		"## Objectives",
		"## 1. Basics",
		"### Halves",
		"#### Cutting pizza (20 minutes)",
		"- Name one half",
		"Keywords: half, whole",
		"- [Halves](https://v/1) _(generated)_",
		"- Sheet",
		"> Break: 10 minutes",
		"## 2. Comparing",
	} {
		if !strings.Contains(md, want) {
			t.Fatalf("expected %q in:\n%s", want, md)
		}
	}
	if strings.Contains(md, "- Topic:") {
		t.Fatalf("expected empty metadata to be omitted, got:\n%s", md)
	}
	if RenderCourseMarkdown(nil) != "" {
		t.Fatalf("expected empty output for nil course")
	}
}

func TestWriteCourse_RespectsOverwrite(t *testing.T) {
	t.Parallel()

	to := t.TempDir()
	c := sampleCourse()
	res, err := WriteCourse(c, to, WriteOptions{})
	if err != nil {
		t.Fatalf("WriteCourse: %v", err)
	}
	want := filepath.Join(to, "courses", "course-1.md")
	if len(res.Written) != 1 || res.Written[0] != want {
		t.Fatalf("unexpected written: %v", res.Written)
	}
	if _, err := os.Stat(want); err != nil {
		t.Fatalf("stat: %v", err)
	}

	if _, err := WriteCourse(c, to, WriteOptions{}); err == nil || !strings.Contains(err.Error(), "file exists") {
		t.Fatalf("expected file exists error, got %v", err)
	}
	if _, err := WriteCourse(c, to, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

func TestWriteCourse_RequiresID(t *testing.T) {
	t.Parallel()

	c := sampleCourse()
	c.ID = ""
	if _, err := WriteCourse(c, t.TempDir(), WriteOptions{}); err == nil {
		t.Fatalf("expected error for course without id")
	}
}

func TestRenderTerminal(t *testing.T) {
	t.Setenv("COURSEKIT_MD_STYLE", "dark")

	out := RenderTerminal("# Title\n\nSome **bold** text.", 40)
	if !strings.Contains(out, "Title") || !strings.Contains(out, "bold") {
		t.Fatalf("expected rendered text, got %q", out)
	}
	if RenderTerminal("   ", 40) != "" {
		t.Fatalf("expected empty output for blank markdown")
	}
}

func TestRenderCourseHTML(t *testing.T) {
	t.Parallel()

	c := sampleCourse()
	c.Objectives = "Compare <b>fractions</b> :smile:"
	page, err := RenderCourseHTML(c)
	if err != nil {
		t.Fatalf("RenderCourseHTML: %v", err)
	}
	for _, want := range []string{
		"<title>Fractions</title>",
		"<h1>Fractions</h1>",
		"<h4>Cutting pizza (20 minutes)</h4>",
		`<a href="https://v/1">Halves</a>`,
		"<blockquote>",
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("expected %q in:\n%s", want, page)
		}
	}
	if strings.Contains(page, "<b>fractions</b>") {
		t.Fatalf("expected raw html to be escaped, got:\n%s", page)
	}
}

func TestWriteCourse_HTML(t *testing.T) {
	t.Parallel()

	to := t.TempDir()
	res, err := WriteCourse(sampleCourse(), to, WriteOptions{HTML: true})
	if err != nil {
		t.Fatalf("WriteCourse: %v", err)
	}
	if len(res.Written) != 2 || filepath.Ext(res.Written[1]) != ".html" {
		t.Fatalf("unexpected written: %v", res.Written)
	}
	b, err := os.ReadFile(res.Written[1])
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(b), "<main class=\"course\">") {
		t.Fatalf("unexpected page: %s", b)
	}
}
