package track

import (
	"context"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mpapenbr/tankrace/log"
	"github.com/mpapenbr/tankrace/pkg/cmd/util"
	"github.com/mpapenbr/tankrace/pkg/config"
	"github.com/mpapenbr/tankrace/pkg/processing/collision"
	"github.com/mpapenbr/tankrace/pkg/track"
)

var watch bool

func newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [descriptor]",
		Short: "loads and validates a track",
		Long: `Loads the track descriptor (default: the configured track or the built-in one),
prints mask statistics and reports problems of the start position.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				config.TrackFile = args[0]
			}
			logger := util.SetupLogger(cmd.ErrOrStderr())
			if watch {
				ctx := log.AddToContext(cmd.Context(), logger)
				return watchTrack(ctx, cmd.OutOrStdout())
			}
			return checkTrack(cmd.OutOrStdout())
		},
	}
	cmd.Flags().BoolVar(&watch,
		"watch",
		false,
		"checks again whenever the descriptor changes")
	return cmd
}

func checkTrack(w io.Writer) error {
	t, err := util.LoadTrack()
	if err != nil {
		return err
	}
	Describe(w, t)
	problems := Check(t)
	for _, p := range problems {
		fmt.Fprintf(w, "problem: %s\n", p)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %d problem(s)", track.ErrInvalidDescriptor, len(problems))
	}
	fmt.Fprintln(w, "ok")
	return nil
}

// Describe prints the mask statistics of t
func Describe(w io.Writer, t *track.Track) {
	zone := func(name string, z track.Zone) {
		fmt.Fprintf(w, "%-12s %4dx%-4d at %d,%d  %d px\n", name,
			z.Mask.Width(), z.Mask.Height(), z.Anchor.X, z.Anchor.Y, z.Mask.Count())
	}
	fmt.Fprintf(w, "track        %s %dx%d\n", t.Name, t.Width, t.Height)
	zone("playable", t.Playable)
	zone("limit", t.Limit)
	zone("finish", t.Finish)
	for i, z := range t.Checkpoints {
		zone(fmt.Sprintf("checkpoint %d", i+1), z)
	}
	fmt.Fprintf(w, "footprint    %4dx%-4d %d px\n",
		t.Footprint.Width(), t.Footprint.Height(), t.Footprint.Count())
	fmt.Fprintf(w, "start        %.1f,%.1f heading %.1f\n", t.Start.X, t.Start.Y, t.Start.Heading)
	fmt.Fprintf(w, "racing line  %d waypoints\n", len(t.RacingLine))
}

// Check returns the problems a player would run into on t
func Check(t *track.Track) []string {
	ret := []string{}
	oracle := collision.NewOracle(t.Footprint)
	if !oracle.Overlaps(t.Playable, t.Start) {
		ret = append(ret, "start is off track")
	}
	if oracle.IsFullyContained(t.Limit, t.Start) {
		ret = append(ret, "start is inside the track limit")
	}
	if oracle.Overlaps(t.Finish, t.Start) {
		ret = append(ret, "start touches the finish")
	}
	for i, z := range t.Checkpoints {
		if oracle.Overlaps(z, t.Start) {
			ret = append(ret, fmt.Sprintf("start touches checkpoint %d", i+1))
		}
		if !z.Mask.Overlap(t.Playable.Mask, t.Playable.Anchor.X-z.Anchor.X,
			t.Playable.Anchor.Y-z.Anchor.Y) {
			ret = append(ret, fmt.Sprintf("checkpoint %d is not reachable", i+1))
		}
	}
	for i, wp := range t.RacingLine {
		x, y := int(wp.X)-t.Playable.Anchor.X, int(wp.Y)-t.Playable.Anchor.Y
		if !t.Playable.Mask.Get(x, y) {
			ret = append(ret, fmt.Sprintf("waypoint %d is off track", i+1))
		}
	}
	return ret
}

func watchTrack(ctx context.Context, w io.Writer) error {
	if config.TrackFile == "" {
		return errNothingToWatch
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	report := func() {
		if err := checkTrack(w); err != nil {
			log.GetFromContext(ctx).Warn("track check failed", log.ErrorField(err))
		}
	}
	report()
	return watchFiles(ctx, config.TrackFile, report)
}
