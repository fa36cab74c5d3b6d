package cli

import (
	"fmt"
	"strings"

	"coursekit/internal/publish"

	"github.com/spf13/cobra"
)

func newPublishCmd(app *App) *cobra.Command {
	var toDir string
	var render, overwrite, asHTML bool
	var width int

	cmd := &cobra.Command{
		Use:   "publish [course-id]",
		Short: "Export a course as Markdown or HTML (derived, not canonical)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadCourse(cmd, app, args)
			if err != nil {
				return writeErr(cmd, err)
			}
			md := publish.RenderCourseMarkdown(c)
			if render {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), publish.RenderTerminal(md, width))
				return err
			}
			if strings.TrimSpace(toDir) == "" {
				out := map[string]any{"id": c.ID, "markdown": md}
				if asHTML {
					page, err := publish.RenderCourseHTML(c)
					if err != nil {
						return writeErr(cmd, err)
					}
					out["html"] = page
				}
				return writeOut(cmd, app, map[string]any{"data": out})
			}
			res, err := publish.WriteCourse(c, toDir, publish.WriteOptions{Overwrite: overwrite, HTML: asHTML})
			if err != nil {
				return writeErr(cmd, err)
			}
			return writeOut(cmd, app, map[string]any{"data": res})
		},
	}
	cmd.Flags().StringVar(&toDir, "to", "", "Output directory (writes courses/<id>.md)")
	cmd.Flags().BoolVar(&render, "render", false, "Render for the terminal instead of emitting JSON")
	cmd.Flags().BoolVar(&asHTML, "html", false, "Also render an HTML page (courses/<id>.html with --to)")
	cmd.Flags().IntVar(&width, "width", 100, "Wrap width for --render")
	cmd.Flags().BoolVar(&overwrite, "overwrite", true, "Overwrite existing files")
	return cmd
}
