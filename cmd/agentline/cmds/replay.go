package cmds

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/go-go-golems/agentline/pkg/bus"
	"github.com/go-go-golems/agentline/pkg/pace"
	"github.com/go-go-golems/agentline/pkg/stream"
	"github.com/go-go-golems/agentline/pkg/timeline"
	"github.com/go-go-golems/agentline/pkg/tui"
	"github.com/go-go-golems/agentline/pkg/view"
)

func newReplayCommand() *cobra.Command {
	var live bool
	var delay time.Duration

	cmd := &cobra.Command{
		Use:   "replay CAPTURE",
		Short: "Rebuild and render the timeline from a captured packet log",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			packets, err := stream.LoadFile(args[0])
			if err != nil {
				return err
			}
			log.Info().Int("packets", len(packets)).Str("capture", args[0]).Msg("loaded capture")

			if live {
				return replayLive(cmd.Context(), cmd, packets, delay)
			}
			return replayInstant(cmd, packets)
		},
	}
	cmd.Flags().BoolVar(&live, "live", false, "Replay through the TUI, paced like the original stream")
	cmd.Flags().DurationVar(&delay, "delay", 50*time.Millisecond, "Inter-packet delay for --live when the capture has no timestamps")
	return cmd
}

// replayInstant rebuilds once from the full capture and prints the expanded
// timeline. The minimum-visible floor collapses to zero here: nothing is
// transient when the whole history is already known.
func replayInstant(cmd *cobra.Command, timed []stream.TimedPacket) error {
	snap := timeline.Rebuild(stream.Packets(timed))

	ctrl := view.NewController(pace.WallClock(), view.WithMinVisible(0))
	defer ctrl.Close()
	ctrl.ToggleExpanded()
	v := ctrl.Project(snap)

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, v.Header)
	if v.ToolCount > 0 {
		fmt.Fprintf(out, "%d tools: %s\n", v.ToolCount, strings.Join(v.ToolNames, ", "))
	}
	for _, tv := range v.Turns {
		if tv.Parallel {
			fmt.Fprintf(out, "turn %d (parallel: %s)\n", tv.Turn, strings.Join(tv.TabLabels, " | "))
		} else {
			fmt.Fprintf(out, "turn %d\n", tv.Turn)
		}
		for _, sv := range tv.Steps {
			printStep(cmd, sv, 1)
		}
	}
	if v.Answer != "" {
		fmt.Fprintln(out)
		fmt.Fprintln(out, v.Answer)
	}
	return nil
}

func printStep(cmd *cobra.Command, sv view.StepView, depth int) {
	out := cmd.OutOrStdout()
	indent := strings.Repeat("  ", depth)
	fmt.Fprintf(out, "%s%s %s\n", indent, sv.Icon, sv.StatusLabel)
	if sv.Content != "" {
		for _, line := range strings.Split(strings.TrimRight(sv.Content, "\n"), "\n") {
			fmt.Fprintf(out, "%s  %s\n", indent, line)
		}
	}
	for _, child := range sv.Children {
		printStep(cmd, child, depth+1)
	}
}

// replayLive feeds the capture through the bus at its original pacing and
// drives the interactive viewer, the same pipeline tail uses.
func replayLive(ctx context.Context, cmd *cobra.Command, timed []stream.TimedPacket, fallback time.Duration) error {
	return runPipeline(ctx, cmd, func(ctx context.Context, b *bus.Bus) error {
		var prev time.Time
		for _, tp := range timed {
			wait := fallback
			if !tp.At.IsZero() && !prev.IsZero() && tp.At.After(prev) {
				wait = tp.At.Sub(prev)
			}
			if !tp.At.IsZero() {
				prev = tp.At
			}
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			if err := b.PublishPacket(tp.Packet); err != nil {
				return err
			}
		}
		return b.PublishStreamEnded("")
	})
}

// runPipeline wires bus, transformer, TUI and a packet source together and
// blocks until the viewer quits.
func runPipeline(ctx context.Context, cmd *cobra.Command, produce func(context.Context, *bus.Bus) error) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctrlOpts, err := controllerOptions(cfg)
	if err != nil {
		return err
	}

	b, err := bus.NewInMemoryBus()
	if err != nil {
		return err
	}
	bus.RegisterTimelineTransformer(b)

	ctrl := view.NewController(pace.WallClock(), ctrlOpts...)
	defer ctrl.Close()

	p := tea.NewProgram(tui.NewRootModel(ctrl), tea.WithContext(ctx))

	headerDelay := cfg.CharDelay()
	if !cfg.Animated() {
		headerDelay = 0
	}
	header := tui.NewHeaderAnimator(p, headerDelay)
	defer header.Close()
	tui.RegisterUIForwarder(b, p, header)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		if err := b.Run(runCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Msg("bus stopped with error")
		}
	}()
	go func() {
		// The gochannel pubsub drops messages published before the router's
		// subscription is up.
		select {
		case <-b.Router.Running():
		case <-runCtx.Done():
			return
		}
		if err := produce(runCtx, b); err != nil && !errors.Is(err, context.Canceled) {
			log.Warn().Err(err).Msg("packet source ended with error")
			_ = b.PublishStreamEnded(err.Error())
		}
	}()

	if _, err := p.Run(); err != nil {
		return errors.Wrap(err, "run tui")
	}
	cancel()
	return nil
}
