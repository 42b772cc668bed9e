package cmds

import (
	"context"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/agentline/pkg/bus"
	"github.com/go-go-golems/agentline/pkg/capture"
	"github.com/go-go-golems/agentline/pkg/protocol"
	"github.com/go-go-golems/agentline/pkg/stream"
)

func newTailCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tail URL",
		Short: "Attach to a live packet stream and render the timeline as it arrives",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			url := args[0]
			recordPath, err := cmd.Flags().GetString("record")
			if err != nil {
				return errors.Wrap(err, "read --record")
			}

			var rec *capture.Writer
			if recordPath != "" {
				rec, err = capture.NewWriter(recordPath)
				if err != nil {
					return err
				}
			}
			startedAt := time.Now()

			runErr := runPipeline(cmd.Context(), cmd, func(ctx context.Context, b *bus.Bus) error {
				err := stream.Tail(ctx, url, func(pkt protocol.Packet) {
					if rec != nil {
						if werr := rec.Write(pkt); werr != nil {
							log.Warn().Err(werr).Msg("dropping capture line")
						}
					}
					_ = b.PublishPacket(pkt)
				})
				if err != nil {
					return err
				}
				return b.PublishStreamEnded("")
			})

			if rec != nil {
				if err := finishRecording(rec, recordPath, url, startedAt); err != nil {
					log.Warn().Err(err).Msg("failed to finalize capture")
				}
			}
			return runErr
		},
	}
	cmd.Flags().String("record", "", "Write the received packets to a replayable capture file")
	return cmd
}

// finishRecording closes the capture and registers it in the session index of
// the current directory.
func finishRecording(rec *capture.Writer, path, source string, startedAt time.Time) error {
	if err := rec.Close(); err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return errors.Wrap(err, "getwd")
	}
	idx, err := capture.LoadIndex(cwd)
	if err != nil {
		return err
	}
	idx.Upsert(capture.SessionRecord{
		Path:      path,
		Source:    source,
		StartedAt: startedAt,
		Packets:   rec.Count(),
		Completed: rec.Completed(),
	})
	return capture.SaveIndex(cwd, idx)
}
