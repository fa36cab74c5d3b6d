package cli

import (
	"coursekit/internal/model"
	"coursekit/internal/store"

	"github.com/spf13/cobra"
)

func newMigrateCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <file.json>",
		Short: "Dry-run the legacy migration of a course document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, migrated, err := readCourseFile(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			caches := model.DeriveCaches(c)
			return writeOut(cmd, app, map[string]any{
				"data": map[string]any{
					"migrated": migrated,
					"payload":  store.EncodePayload(c),
					"caches": map[string]int{
						"videos":  len(caches.Videos),
						"handsOn": len(caches.HandsOn),
					},
				},
			})
		},
	}
}
