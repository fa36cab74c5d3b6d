package cli

import (
	"context"
	"fmt"
	"strings"

	"coursekit/internal/mutate"
	"coursekit/internal/session"

	"github.com/spf13/cobra"
)

func newMoveCmd(app *App) *cobra.Command {
	var kind, from, to string
	var fromIndex, toIndex int

	cmd := &cobra.Command{
		Use:   "move",
		Short: "Move a section, subsection or topic (drag-and-drop semantics)",
		Long: strings.TrimSpace(`
Move the item at --from-index in container --from to --to-index in container --to.
--to-index is a position in the destination list after the item has been removed.

Containers: sections move within the course (no container ids), subsections move within
their section, and topics may move to any subsection. Moves that cannot be resolved leave
the course unchanged and report "moved": false.
`),
		Example: strings.TrimSpace(`
  coursekit move --kind section --from-index 0 --to-index 2
  coursekit move --kind topic --from subsection-a --from-index 1 --to subsection-b --to-index 0
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			k, ok := mutate.ParseMoveKind(kind)
			if !ok {
				return writeErr(cmd, fmt.Errorf("invalid --kind %q (expected section|subsection|topic)", kind))
			}
			m := mutate.Move{
				Kind:              k,
				SourceContainerID: strings.TrimSpace(from),
				SourceIndex:       fromIndex,
				DestContainerID:   strings.TrimSpace(to),
				DestIndex:         toIndex,
			}
			if m.DestContainerID == "" {
				m.DestContainerID = m.SourceContainerID
			}
			return editCourse(cmd, app, func(ctx context.Context, s *session.Session) (any, error) {
				switch k {
				case mutate.MoveSubsection:
					if err := mutate.Check(s.Course(), "section", m.SourceContainerID); err != nil {
						return nil, err
					}
				case mutate.MoveTopicBox:
					for _, id := range []string{m.SourceContainerID, m.DestContainerID} {
						if err := mutate.Check(s.Course(), "subsection", id); err != nil {
							return nil, err
						}
					}
				}
				return map[string]any{"move": m, "moved": s.Move(m)}, nil
			})
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "", "section|subsection|topic")
	cmd.Flags().StringVar(&from, "from", "", "Source container id (section id for subsections, subsection id for topics)")
	cmd.Flags().IntVar(&fromIndex, "from-index", 0, "Source index (0-based)")
	cmd.Flags().StringVar(&to, "to", "", "Destination container id (default: --from)")
	cmd.Flags().IntVar(&toIndex, "to-index", 0, "Destination index (0-based, after removal)")
	_ = cmd.MarkFlagRequired("kind")
	_ = cmd.MarkFlagRequired("to-index")
	return cmd
}
