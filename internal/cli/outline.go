package cli

import (
	"context"
	"strings"

	"coursekit/internal/model"
	"coursekit/internal/mutate"
	"coursekit/internal/session"

	"github.com/spf13/cobra"
)

// outlineLevel describes one tier of the outline for the shared add/rename/delete commands.
type outlineLevel struct {
	kind       string // mutate.Check kind
	plural     string
	parentFlag string // "" for top-level sections
	parentKind string
	add        func(s *session.Session, parentID string) string
}

var (
	sectionLevel = outlineLevel{
		kind:   "section",
		plural: "sections",
		add:    func(s *session.Session, _ string) string { return s.AddSection() },
	}
	subsectionLevel = outlineLevel{
		kind:       "subsection",
		plural:     "subsections",
		parentFlag: "section",
		parentKind: "section",
		add:        func(s *session.Session, parentID string) string { return s.AddSubsection(parentID) },
	}
	topicLevel = outlineLevel{
		kind:       "topic",
		plural:     "topics",
		parentFlag: "subsection",
		parentKind: "subsection",
		add:        func(s *session.Session, parentID string) string { return s.AddTopicBox(parentID) },
	}
)

func newSectionsCmd(app *App) *cobra.Command {
	cmd := newLevelCmd(app, sectionLevel)
	cmd.AddCommand(newSectionsBreakCmd(app))
	return cmd
}

func newSubsectionsCmd(app *App) *cobra.Command { return newLevelCmd(app, subsectionLevel) }

func newTopicsCmd(app *App) *cobra.Command {
	cmd := newLevelCmd(app, topicLevel)
	cmd.AddCommand(newTopicsSetCmd(app))
	return cmd
}

func newLevelCmd(app *App, lv outlineLevel) *cobra.Command {
	cmd := &cobra.Command{
		Use:   lv.plural,
		Short: strings.ToUpper(lv.plural[:1]) + lv.plural[1:] + " commands (current course)",
	}
	cmd.AddCommand(newLevelAddCmd(app, lv))
	cmd.AddCommand(newLevelRenameCmd(app, lv))
	cmd.AddCommand(newLevelDeleteCmd(app, lv))
	return cmd
}

func newLevelAddCmd(app *App, lv outlineLevel) *cobra.Command {
	var parentID, title, description string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Append a " + lv.kind + " with a positional default title",
		RunE: func(cmd *cobra.Command, args []string) error {
			return editCourse(cmd, app, func(ctx context.Context, s *session.Session) (any, error) {
				if lv.parentFlag != "" {
					if err := mutate.Check(s.Course(), lv.parentKind, parentID); err != nil {
						return nil, err
					}
				}
				id := lv.add(s, parentID)
				if t := strings.TrimSpace(title); t != "" {
					s.SetField(id, mutate.FieldTitle, t)
				}
				if d := strings.TrimSpace(description); d != "" {
					s.SetField(id, mutate.FieldDescription, d)
				}
				got, _ := mutate.FieldValue(s.Course(), id, mutate.FieldTitle)
				return map[string]any{"id": id, "title": got, "courseId": s.CourseID()}, nil
			})
		},
	}
	if lv.parentFlag != "" {
		cmd.Flags().StringVar(&parentID, lv.parentFlag, "", "Parent "+lv.parentKind+" id")
		_ = cmd.MarkFlagRequired(lv.parentFlag)
	}
	cmd.Flags().StringVar(&title, "title", "", "Title (default: positional)")
	cmd.Flags().StringVar(&description, "description", "", "Description")
	return cmd
}

func newLevelRenameCmd(app *App, lv outlineLevel) *cobra.Command {
	var title, description string

	cmd := &cobra.Command{
		Use:   "rename <" + lv.kind + "-id>",
		Short: "Set the title and/or description of a " + lv.kind,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			setTitle := cmd.Flags().Changed("title")
			setDesc := cmd.Flags().Changed("description")
			return editCourse(cmd, app, func(ctx context.Context, s *session.Session) (any, error) {
				if err := mutate.Check(s.Course(), lv.kind, id); err != nil {
					return nil, err
				}
				changed := false
				if setTitle {
					changed = s.SetField(id, mutate.FieldTitle, title) || changed
				}
				if setDesc {
					changed = s.SetField(id, mutate.FieldDescription, description) || changed
				}
				return map[string]any{"id": id, "changed": changed}, nil
			})
		},
	}
	cmd.Flags().StringVar(&title, "title", "", "New title")
	cmd.Flags().StringVar(&description, "description", "", "New description")
	cmd.MarkFlagsOneRequired("title", "description")
	return cmd
}

func newLevelDeleteCmd(app *App, lv outlineLevel) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <" + lv.kind + "-id>",
		Short: "Delete a " + lv.kind + " and everything under it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			return editCourse(cmd, app, func(ctx context.Context, s *session.Session) (any, error) {
				kind := lv.kind
				if kind == "section" {
					if sec, ok := s.Course().FindSection(id); ok && sec.IsBreak() {
						kind = "break"
					}
				}
				if err := mutate.Check(s.Course(), kind, id); err != nil {
					return nil, err
				}
				return map[string]any{"deleted": id, "changed": s.Delete(id)}, nil
			})
		},
	}
}

func newSectionsBreakCmd(app *App) *cobra.Command {
	var minutes int

	cmd := &cobra.Command{
		Use:   "break",
		Short: "Append a break",
		RunE: func(cmd *cobra.Command, args []string) error {
			return editCourse(cmd, app, func(ctx context.Context, s *session.Session) (any, error) {
				id := s.AddBreak(minutes)
				return map[string]any{"id": id, "courseId": s.CourseID()}, nil
			})
		},
	}
	cmd.Flags().IntVar(&minutes, "minutes", mutate.DefaultBreakMinutes, "Break length in minutes")
	return cmd
}

func newTopicsSetCmd(app *App) *cobra.Command {
	var duration int
	var pillars, objectives, keywords []string

	cmd := &cobra.Command{
		Use:   "set <topic-id>",
		Short: "Set topic duration and lists (pillars, objectives, keywords)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id := strings.TrimSpace(args[0])
			flags := cmd.Flags()
			return editCourse(cmd, app, func(ctx context.Context, s *session.Session) (any, error) {
				if err := mutate.Check(s.Course(), "topic", id); err != nil {
					return nil, err
				}
				changed := false
				if flags.Changed("duration") {
					changed = s.Apply(func(c *model.Course) *model.Course { return mutate.SetTopicDuration(c, id, duration) }) || changed
				}
				lists := []struct {
					flag  string
					field mutate.ListField
					vals  []string
				}{
					{"pillar", mutate.ListPLAPillars, pillars},
					{"objective", mutate.ListLearningObjectives, objectives},
					{"keyword", mutate.ListContentKeywords, keywords},
				}
				for _, l := range lists {
					if !flags.Changed(l.flag) {
						continue
					}
					vals, field := l.vals, l.field
					changed = s.Apply(func(c *model.Course) *model.Course { return mutate.SetTopicList(c, id, field, vals) }) || changed
				}
				tb, _ := s.Course().FindTopicBox(id)
				return map[string]any{"changed": changed, "topic": tb}, nil
			})
		},
	}
	cmd.Flags().IntVar(&duration, "duration", 0, "Duration in minutes")
	cmd.Flags().StringArrayVar(&pillars, "pillar", nil, "PLA pillar (repeatable; replaces the list)")
	cmd.Flags().StringArrayVar(&objectives, "objective", nil, "Learning objective (repeatable; replaces the list)")
	cmd.Flags().StringArrayVar(&keywords, "keyword", nil, "Content keyword (repeatable; replaces the list)")
	return cmd
}
