package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"coursekit/internal/generate"
	"coursekit/internal/model"
	"coursekit/internal/mutate"
	"coursekit/internal/session"

	"github.com/spf13/cobra"
)

func newResourcesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resources",
		Short: "Topic resources (videos, worksheets, activities)",
	}
	cmd.AddCommand(newResourcesAttachCmd(app))
	cmd.AddCommand(newResourcesRemoveCmd(app))
	cmd.AddCommand(newResourcesGenerateCmd(app))
	return cmd
}

func parseTypeFlag(s string) (model.ResourceType, error) {
	t, ok := mutate.ParseResourceType(s)
	if !ok {
		return "", fmt.Errorf("invalid --type %q (expected video|worksheet|activity)", s)
	}
	return t, nil
}

func newResourcesAttachCmd(app *App) *cobra.Command {
	var topicID, typ string
	var r model.Resource

	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Attach a manual resource to a topic",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTypeFlag(typ)
			if err != nil {
				return writeErr(cmd, err)
			}
			r.Type = t
			r.Source = model.SourceManual
			r.Title = strings.TrimSpace(r.Title)
			r.URL = strings.TrimSpace(r.URL)
			return editCourse(cmd, app, func(ctx context.Context, s *session.Session) (any, error) {
				if err := mutate.Check(s.Course(), "topic", topicID); err != nil {
					return nil, err
				}
				changed := s.AttachResources(topicID, []model.Resource{r})
				return map[string]any{"topicId": topicID, "resource": r, "changed": changed}, nil
			})
		},
	}
	cmd.Flags().StringVar(&topicID, "topic", "", "Topic id")
	cmd.Flags().StringVar(&typ, "type", "", "video|worksheet|activity")
	cmd.Flags().StringVar(&r.Title, "title", "", "Title")
	cmd.Flags().StringVar(&r.URL, "url", "", "URL")
	cmd.Flags().StringVar(&r.Description, "description", "", "Description")
	cmd.Flags().StringVar(&r.Thumbnail, "thumbnail", "", "Thumbnail URL")
	_ = cmd.MarkFlagRequired("topic")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newResourcesRemoveCmd(app *App) *cobra.Command {
	var topicID, typ string
	var index int

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove the resource at --index from a topic's list of --type",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTypeFlag(typ)
			if err != nil {
				return writeErr(cmd, err)
			}
			return editCourse(cmd, app, func(ctx context.Context, s *session.Session) (any, error) {
				if err := mutate.Check(s.Course(), "topic", topicID); err != nil {
					return nil, err
				}
				if !s.RemoveResource(topicID, t, index) {
					return nil, fmt.Errorf("no %s at index %d on topic %s", t, index, topicID)
				}
				return map[string]any{"topicId": topicID, "type": t, "removed": index}, nil
			})
		},
	}
	cmd.Flags().StringVar(&topicID, "topic", "", "Topic id")
	cmd.Flags().StringVar(&typ, "type", "", "video|worksheet|activity")
	cmd.Flags().IntVar(&index, "index", 0, "Index within the list (0-based)")
	_ = cmd.MarkFlagRequired("topic")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("index")
	return cmd
}

func newResourcesGenerateCmd(app *App) *cobra.Command {
	var topicID, subsectionID, typ, grade string

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate resources for one topic (--topic) or every topic of a subsection (--subsection)",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTypeFlag(typ)
			if err != nil {
				return writeErr(cmd, err)
			}
			topicID, subsectionID = strings.TrimSpace(topicID), strings.TrimSpace(subsectionID)
			if (topicID == "") == (subsectionID == "") {
				return writeErr(cmd, errors.New("pass exactly one of --topic or --subsection"))
			}
			client, err := newGenerateClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return editCourse(cmd, app, func(ctx context.Context, s *session.Session) (any, error) {
				c := s.Course()
				g := strings.TrimSpace(grade)
				if g == "" {
					g = strings.TrimSpace(app.cfg.GradeLevel)
				}
				if g == "" {
					g = c.Class
				}

				if subsectionID != "" {
					batch, err := client.GenerateForSubsection(ctx, c, subsectionID, t, g)
					if err != nil {
						return nil, err
					}
					return map[string]any{"subsectionId": subsectionID, "results": batch, "changed": s.AttachBatch(batch)}, nil
				}

				if err := mutate.Check(c, "topic", topicID); err != nil {
					return nil, err
				}
				tb, _ := c.FindTopicBox(topicID)
				rs, err := client.GenerateResource(ctx, generate.ResourceRequestFor(*tb, t, g))
				if err != nil {
					return nil, err
				}
				return map[string]any{"topicId": topicID, "resources": rs, "changed": s.AttachResources(topicID, rs)}, nil
			})
		},
	}
	cmd.Flags().StringVar(&topicID, "topic", "", "Topic id")
	cmd.Flags().StringVar(&subsectionID, "subsection", "", "Subsection id (generates for each of its topics)")
	cmd.Flags().StringVar(&typ, "type", "", "video|worksheet|activity")
	cmd.Flags().StringVar(&grade, "grade", "", "Grade level (default: config gradeLevel, then the course class)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func newGenerateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Insert AI-generated sections, subsections or topics",
	}
	cmd.AddCommand(newGenerateLevelCmd(app, model.LevelSections, "", ""))
	cmd.AddCommand(newGenerateLevelCmd(app, model.LevelSubsections, "section", "Section to add subsections to"))
	cmd.AddCommand(newGenerateLevelCmd(app, model.LevelTopics, "subsection", "Subsection to add topics to"))
	return cmd
}

func newGenerateLevelCmd(app *App, level model.Level, parentFlag, parentUsage string) *cobra.Command {
	var parentID, guidance string
	var count int

	cmd := &cobra.Command{
		Use:   string(level),
		Short: "Generate " + string(level),
		RunE: func(cmd *cobra.Command, args []string) error {
			client, err := newGenerateClient(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			return editCourse(cmd, app, func(ctx context.Context, s *session.Session) (any, error) {
				req, err := generate.BuildRequest(s.Course(), level, parentID, guidance, count)
				if err != nil {
					return nil, err
				}
				items, err := client.Generate(ctx, req)
				if err != nil {
					return nil, err
				}
				ids := s.InsertGenerated(level, parentID, items)
				return map[string]any{"level": level, "ids": ids, "count": len(ids)}, nil
			})
		},
	}
	if parentFlag != "" {
		cmd.Flags().StringVar(&parentID, parentFlag, "", parentUsage)
		_ = cmd.MarkFlagRequired(parentFlag)
	}
	cmd.Flags().IntVar(&count, "count", generate.DefaultCount, fmt.Sprintf("Number of items (max %d)", generate.MaxCount))
	cmd.Flags().StringVar(&guidance, "guidance", "", "Free-text guidance for the generator")
	return cmd
}
