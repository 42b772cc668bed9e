package cmds

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/agentline/pkg/capture"
)

func newSessionsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List recorded capture sessions in the current directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			preview, err := cmd.Flags().GetInt("preview")
			if err != nil {
				return errors.Wrap(err, "read --preview")
			}
			cwd, err := os.Getwd()
			if err != nil {
				return errors.Wrap(err, "getwd")
			}
			idx, err := capture.LoadIndex(cwd)
			if err != nil {
				return err
			}
			if len(idx.Sessions) == 0 {
				cmd.Println("no recorded sessions")
				return nil
			}
			for _, s := range idx.Sessions {
				status := "incomplete"
				if s.Completed {
					status = "complete"
				}
				cmd.Printf("%s  %s  %d packets  %s", s.Path, s.StartedAt.Format("2006-01-02 15:04:05"), s.Packets, status)
				if s.Source != "" {
					cmd.Printf("  from %s", s.Source)
				}
				cmd.Println()

				if preview > 0 {
					lines, err := capture.PreviewLines(s.Path, preview, 0)
					if err != nil {
						cmd.Printf("  (preview unavailable: %v)\n", err)
						continue
					}
					for _, l := range lines {
						cmd.Printf("  %s\n", l)
					}
				}
			}
			return nil
		},
	}
	cmd.Flags().Int("preview", 0, "Show the last N lines of each capture")
	return cmd
}
