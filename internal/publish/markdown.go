package publish

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"coursekit/internal/model"
)

// RenderCourseMarkdown renders the whole outline as a single Markdown document.
func RenderCourseMarkdown(c *model.Course) string {
	if c == nil {
		return ""
	}
	var buf bytes.Buffer
	writeLn := func(s string) {
		buf.WriteString(s)
		buf.WriteString("\n")
	}

	title := strings.TrimSpace(c.Name)
	if title == "" {
		title = "Untitled course"
	}
	writeLn("# " + title)
	writeLn("")

	stats := model.ComputeStats(c)
	writeLn("## Meta")
	writeLn("")
	if strings.TrimSpace(c.ID) != "" {
		writeLn("- ID: " + c.ID)
	}
	for _, kv := range [][2]string{
		{"Class", c.Class},
		{"Subject", c.Subject},
		{"Topic", c.Topic},
		{"Duration", c.TimeDuration},
	} {
		if v := strings.TrimSpace(kv[1]); v != "" {
			writeLn("- " + kv[0] + ": " + v)
		}
	}
	if c.IsPublic {
		writeLn("- Public: true")
	}
	writeLn(fmt.Sprintf("- Planned time: %s", minutes(stats.TotalMinutes)))
	writeLn(fmt.Sprintf("- Outline: %d sections, %d subsections, %d topics",
		stats.Counts.Sections, stats.Counts.Subsections, stats.Counts.TopicBoxes))

	if obj := strings.TrimSpace(c.Objectives); obj != "" {
		writeLn("")
		writeLn("## Objectives")
		writeLn("")
		writeLn(obj)
	}

	n := 0
	for i, s := range c.Sections {
		writeLn("")
		if s.IsBreak() {
			writeLn("> Break: " + minutes(s.Duration))
			continue
		}
		n++
		writeLn(fmt.Sprintf("## %d. %s", n, strings.TrimSpace(s.Title)))
		if m := stats.Sections[i].Minutes; m > 0 {
			writeLn("")
			writeLn("_" + minutes(m) + "_")
		}
		if d := strings.TrimSpace(s.Description); d != "" {
			writeLn("")
			writeLn(d)
		}
		for _, sub := range s.Subsections {
			renderSubsection(&buf, sub)
		}
	}
	return buf.String()
}

func renderSubsection(buf *bytes.Buffer, sub model.Subsection) {
	fmt.Fprintf(buf, "\n### %s\n", strings.TrimSpace(sub.Title))
	if d := strings.TrimSpace(sub.Description); d != "" {
		fmt.Fprintf(buf, "\n%s\n", d)
	}
	for _, tb := range sub.TopicBoxes {
		head := strings.TrimSpace(tb.Title)
		if tb.DurationMinutes > 0 {
			head += " (" + minutes(tb.DurationMinutes) + ")"
		}
		fmt.Fprintf(buf, "\n#### %s\n", head)
		if d := strings.TrimSpace(tb.Description); d != "" {
			fmt.Fprintf(buf, "\n%s\n", d)
		}
		writeList(buf, "Learning objectives", tb.LearningObjectives)
		writeList(buf, "Pillars", tb.PLAPillars)
		if kw := nonEmpty(tb.ContentKeywords); len(kw) > 0 {
			fmt.Fprintf(buf, "\nKeywords: %s\n", strings.Join(kw, ", "))
		}
		writeResources(buf, "Videos", tb.VideoResources)
		writeResources(buf, "Worksheets", tb.Worksheets)
		writeResources(buf, "Activities", tb.Activities)
	}
}

func writeList(buf *bytes.Buffer, label string, items []string) {
	items = nonEmpty(items)
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(buf, "\n%s:\n\n", label)
	for _, it := range items {
		fmt.Fprintf(buf, "- %s\n", it)
	}
}

func writeResources(buf *bytes.Buffer, label string, rs []model.Resource) {
	if len(rs) == 0 {
		return
	}
	fmt.Fprintf(buf, "\n%s:\n\n", label)
	for _, r := range rs {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			title = r.URL
		}
		line := "- " + title
		if u := strings.TrimSpace(r.URL); u != "" {
			line = "- [" + title + "](" + u + ")"
		}
		if d := strings.TrimSpace(r.Description); d != "" {
			line += ": " + d
		}
		if r.Source == model.SourceGenerated {
			line += " _(generated)_"
		}
		buf.WriteString(line + "\n")
	}
}

func nonEmpty(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func minutes(n int) string {
	if n == 1 {
		return "1 minute"
	}
	return strconv.Itoa(n) + " minutes"
}
