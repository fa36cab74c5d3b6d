package cli

import (
	"context"
	"errors"
	"os"
	"strings"

	"coursekit/internal/model"
	"coursekit/internal/session"
	"coursekit/internal/store"

	"github.com/spf13/cobra"
)

func newCoursesCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "courses",
		Short: "Course commands",
	}
	cmd.AddCommand(newCoursesCreateCmd(app))
	cmd.AddCommand(newCoursesListCmd(app))
	cmd.AddCommand(newCoursesShowCmd(app))
	cmd.AddCommand(newCoursesUseCmd(app))
	cmd.AddCommand(newCoursesDeleteCmd(app))
	cmd.AddCommand(newCoursesStatsCmd(app))
	cmd.AddCommand(newCoursesImportCmd(app))
	cmd.AddCommand(newCoursesExportCmd(app))
	return cmd
}

type courseMeta struct {
	name, class, subject, topic, duration, objectives string
	public                                            bool
}

func (m courseMeta) apply(c *model.Course) {
	c.Name = strings.TrimSpace(m.name)
	c.Class = strings.TrimSpace(m.class)
	c.Subject = strings.TrimSpace(m.subject)
	c.Topic = strings.TrimSpace(m.topic)
	c.TimeDuration = strings.TrimSpace(m.duration)
	c.Objectives = strings.TrimSpace(m.objectives)
	c.IsPublic = m.public
}

func newCoursesCreateCmd(app *App) *cobra.Command {
	var meta courseMeta
	var use bool

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a course",
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(meta.name) == "" {
				return writeErr(cmd, errMissingFlag("name"))
			}
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			opts := sessionOptions(app)
			opts.Persister = st
			s := session.Open(&model.Course{}, opts)
			s.SetMetadata(meta.apply)
			if err := s.Close(cmd.Context()); err != nil {
				return writeErr(cmd, err)
			}
			c := *s.Course()
			c.ID = s.CourseID()
			if use {
				if err := setCurrentCourse(app, c.ID); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": &c})
		},
	}

	cmd.Flags().StringVar(&meta.name, "name", "", "Course name")
	cmd.Flags().StringVar(&meta.class, "class", "", "Class / grade")
	cmd.Flags().StringVar(&meta.subject, "subject", "", "Subject")
	cmd.Flags().StringVar(&meta.topic, "topic", "", "Topic")
	cmd.Flags().StringVar(&meta.duration, "duration", "", "Planned duration (free text, e.g. \"6 weeks\")")
	cmd.Flags().StringVar(&meta.objectives, "objectives", "", "Course objectives")
	cmd.Flags().BoolVar(&meta.public, "public", false, "Mark the course public")
	cmd.Flags().BoolVar(&use, "use", false, "Make it the current course")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newCoursesListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List courses (most recently updated first)",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			list, err := st.ListCourses(cmd.Context())
			if err != nil {
				return writeErr(cmd, err)
			}
			current := ""
			if app.cfg != nil {
				current = app.cfg.CurrentCourse
			}
			return writeOut(cmd, app, map[string]any{
				"data": list,
				"meta": map[string]any{"currentCourse": current},
			})
		},
	}
}

func newCoursesShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [course-id]",
		Short: "Show a course outline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCourse(cmd, app, args)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": c})
		},
	}
}

func newCoursesUseCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "use <course-id>",
		Short: "Set the current course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCourse(cmd, app, args)
			if err != nil {
				return writeErr(cmd, err)
			}
			if err := setCurrentCourse(app, c.ID); err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"currentCourse": c.ID}})
		},
	}
}

func newCoursesDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <course-id>",
		Short: "Delete a course",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			id := strings.TrimSpace(args[0])
			if err := st.DeleteCourse(cmd.Context(), id); err != nil {
				return writeErr(cmd, courseErr(err, id))
			}
			if app.cfg != nil && app.cfg.CurrentCourse == id {
				if err := setCurrentCourse(app, ""); err != nil {
					return writeErr(cmd, err)
				}
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"deleted": id}})
		},
	}
}

func newCoursesStatsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [course-id]",
		Short: "Show counts and planned minutes per section",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCourse(cmd, app, args)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": model.ComputeStats(c)})
		},
	}
}

func newCoursesImportCmd(app *App) *cobra.Command {
	var use bool

	cmd := &cobra.Command{
		Use:   "import <file.json>",
		Short: "Import a course document (older layouts are migrated)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, migrated, err := readCourseFile(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			st, err := openStore(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			res, err := saveNewCourse(cmd.Context(), st, c)
			if err != nil {
				return writeErr(cmd, err)
			}
			if use {
				if err := setCurrentCourse(app, res.ID); err != nil {
					return writeErr(cmd, err)
				}
			}
			app.log.Info("courses: imported", "course_id", res.ID, "migrated", migrated)
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{"id": res.ID, "migrated": migrated, "counts": model.CountAll(c)},
			})
		},
	}
	cmd.Flags().BoolVar(&use, "use", false, "Make it the current course")
	return cmd
}

func newCoursesExportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "export [course-id]",
		Short: "Print the persistence payload of a course",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCourse(cmd, app, args)
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": store.EncodePayload(c)})
		},
	}
}

// readCourseFile decodes and migrates a course document from disk.
func readCourseFile(path string) (*model.Course, bool, error) {
	b, err := os.ReadFile(strings.TrimSpace(path))
	if err != nil {
		return nil, false, err
	}
	c, err := store.DecodeCourse(b)
	if err != nil {
		return nil, false, err
	}
	migrated, changed := store.MigrateLegacy(c)
	return migrated, changed, nil
}

func saveNewCourse(ctx context.Context, st store.Store, c *model.Course) (store.SaveResult, error) {
	res, err := st.SaveCourse(ctx, "", store.EncodePayload(c))
	if err != nil {
		return res, err
	}
	if !res.Success {
		return res, errors.New("save rejected: " + res.Error)
	}
	return res, nil
}

func setCurrentCourse(app *App, id string) error {
	if app.cfg == nil {
		app.cfg = &store.GlobalConfig{}
	}
	app.cfg.CurrentCourse = id
	return store.SaveConfig(app.cfg)
}
