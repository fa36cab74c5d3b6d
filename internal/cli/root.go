package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"coursekit/internal/format"
	"coursekit/internal/generate"
	"coursekit/internal/logger"
	"coursekit/internal/model"
	"coursekit/internal/session"
	"coursekit/internal/store"
	"coursekit/internal/tui"

	"github.com/spf13/cobra"
)

type App struct {
	Dir        string
	Course     string
	PrettyJSON bool
	Format     string
	LogMode    string

	log *logger.Logger
	cfg *store.GlobalConfig
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "coursekit",
		Short:        "Local-first course outline editor (CLI + TUI)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Edit the current course in the TUI
  coursekit

  # Scriptable commands
  coursekit courses create --name "Fractions" --class 5 --subject Math --use
  coursekit sections add
  coursekit generate topics --subsection subsection-abc12345 --count 4

  # Direct course lookup (shortcut for: coursekit courses show <course-id>)
  coursekit c-<course-id>
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive editor.
			if cmd.HasSubCommands() && len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if !format.Valid(app.Format) {
			return writeErr(cmd, fmt.Errorf("unknown format: %s (expected json|edn)", app.Format))
		}
		log, err := logger.New(app.LogMode)
		if err != nil {
			return writeErr(cmd, err)
		}
		app.log = log
		cfg, err := store.LoadConfig()
		if err != nil {
			// A broken config must not lock the user out of their courses.
			app.log.Warn("config: load failed", "error", err)
			cfg = &store.GlobalConfig{}
		}
		app.cfg = cfg
		return nil
	}
	cmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		app.log.Sync()
	}

	cmd.PersistentFlags().StringVar(&app.Dir, "dir", envOr("COURSEKIT_DIR", ""), "Path to store dir (default: ~/.coursekit/workspace)")
	cmd.PersistentFlags().StringVar(&app.Course, "course", envOr("COURSEKIT_COURSE", ""), "Course id (overrides currentCourse in config.json)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("COURSEKIT_FORMAT", "json"), "Output format (json|edn)")
	cmd.PersistentFlags().StringVar(&app.LogMode, "log", envOr("COURSEKIT_LOG", ""), "Log to stderr (off|dev|prod)")

	cmd.AddCommand(newCoursesCmd(app))
	cmd.AddCommand(newSectionsCmd(app))
	cmd.AddCommand(newSubsectionsCmd(app))
	cmd.AddCommand(newTopicsCmd(app))
	cmd.AddCommand(newMoveCmd(app))
	cmd.AddCommand(newResourcesCmd(app))
	cmd.AddCommand(newGenerateCmd(app))
	cmd.AddCommand(newPublishCmd(app))
	cmd.AddCommand(newMigrateCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	st, err := openStore(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	courseID, err := resolveCourseID(app, nil)
	if err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(cmd.Context(), st, courseID, sessionOptions(app))
}

func openStore(app *App) (store.Store, error) {
	dir := strings.TrimSpace(app.Dir)
	if dir == "" {
		d, err := store.DefaultDir()
		if err != nil {
			return store.Store{}, err
		}
		dir = d
		app.Dir = dir
	}
	s := store.Store{Dir: dir}
	return s, s.Ensure()
}

// resolveCourseID picks the positional id, then --course, then currentCourse from config.
func resolveCourseID(app *App, args []string) (string, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		return strings.TrimSpace(args[0]), nil
	}
	if v := strings.TrimSpace(app.Course); v != "" {
		return v, nil
	}
	if app.cfg != nil && strings.TrimSpace(app.cfg.CurrentCourse) != "" {
		return strings.TrimSpace(app.cfg.CurrentCourse), nil
	}
	return "", errors.New("no current course; run `coursekit courses use <course-id>` (or pass --course)")
}

func sessionOptions(app *App) session.Options {
	debounce := app.cfg.AutosaveDebounce()
	if ms := envInt("COURSEKIT_AUTOSAVE_MS", 0); ms > 0 {
		debounce = time.Duration(ms) * time.Millisecond
	}
	return session.Options{
		Debounce:     debounce,
		HistoryLimit: app.cfg.HistoryLimitOrDefault(),
		Logger:       app.log,
	}
}

// editCourse loads the course into a session, runs fn, and closes the session so the final
// autosave flush is the only write.
func editCourse(cmd *cobra.Command, app *App, fn func(ctx context.Context, s *session.Session) (any, error)) error {
	st, err := openStore(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	courseID, err := resolveCourseID(app, nil)
	if err != nil {
		return writeErr(cmd, err)
	}
	ctx := cmd.Context()
	s, err := session.Load(ctx, st, courseID, sessionOptions(app))
	if err != nil {
		return writeErr(cmd, courseErr(err, courseID))
	}
	out, fnErr := fn(ctx, s)
	if err := s.Close(ctx); err != nil && fnErr == nil {
		fnErr = fmt.Errorf("save: %w", err)
	}
	if fnErr != nil {
		return writeErr(cmd, fnErr)
	}
	return writeOut(cmd, app, format.Wrap(out))
}

// loadCourse returns the migrated course for read-only commands.
func loadCourse(cmd *cobra.Command, app *App, args []string) (*model.Course, error) {
	st, err := openStore(app)
	if err != nil {
		return nil, err
	}
	courseID, err := resolveCourseID(app, args)
	if err != nil {
		return nil, err
	}
	c, err := st.LoadCourse(cmd.Context(), courseID)
	if err != nil {
		return nil, courseErr(err, courseID)
	}
	migrated, _ := store.MigrateLegacy(c)
	return migrated, nil
}

func newGenerateClient(app *App) (*generate.Client, error) {
	genURL := envOr("COURSEKIT_GENERATION_URL", app.cfg.GenerationURL)
	resURL := envOr("COURSEKIT_RESOURCE_URL", app.cfg.ResourceURL)
	return generate.New(generate.Config{
		GenerationURL: genURL,
		ResourceURL:   resURL,
		APIKey:        os.Getenv("COURSEKIT_API_KEY"),
		TeacherID:     os.Getenv("COURSEKIT_TEACHER_ID"),
		Timeout:       time.Duration(envInt("COURSEKIT_GENERATION_TIMEOUT_SECONDS", 60)) * time.Second,
		MaxRetries:    envInt("COURSEKIT_GENERATION_RETRIES", 0),
		Logger:        app.log,
	})
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func envInt(k string, d int) int {
	v := strings.TrimSpace(os.Getenv(k))
	if v == "" {
		return d
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return d
	}
	return n
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
