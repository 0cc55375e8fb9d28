package sim

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/tankrace/log"
	"github.com/mpapenbr/tankrace/pkg/clock"
	"github.com/mpapenbr/tankrace/pkg/cmd/util"
	"github.com/mpapenbr/tankrace/pkg/config"
	"github.com/mpapenbr/tankrace/pkg/model"
	"github.com/mpapenbr/tankrace/pkg/processing/autopilot"
	"github.com/mpapenbr/tankrace/pkg/session"
)

var (
	ErrNoInput       = errors.New("sim needs --script or --autopilot")
	ErrUnknownFormat = errors.New("unknown output format")
)

type simOptions struct {
	script    string
	autopilot bool
	laps      int
	maxTicks  int
	format    string
}

var (
	appConfig = config.DefaultConfig()
	simConfig = simOptions{}
	// simulated time starts here, only differences matter
	simStart = time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
)

func NewSimCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sim",
		Short: "runs a headless race with simulated time",
		Long: `Runs the race without terminal as fast as possible.
The vehicle is driven by an input script or by the autopilot.
Example script: {"steps":[{"ticks":120,"keys":["forward"]},{"ticks":30,"keys":["forward","left"]}]}`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSim(cmd)
		},
	}
	util.AddRaceFlags(cmd.Flags(), &appConfig)
	cmd.Flags().StringVar(&simConfig.script,
		"script",
		"",
		"json file with the input script")
	cmd.Flags().BoolVar(&simConfig.autopilot,
		"autopilot",
		false,
		"lets the autopilot drive")
	cmd.Flags().IntVar(&simConfig.laps,
		"laps",
		0,
		"stops after this number of completed laps (0: no limit)")
	cmd.Flags().IntVar(&simConfig.maxTicks,
		"max-ticks",
		36000,
		"stops after this number of ticks")
	cmd.Flags().StringVar(&simConfig.format,
		"format",
		"text",
		"report format (text, json)")
	return cmd
}

//nolint:funlen // by design
func runSim(cmd *cobra.Command) error {
	if simConfig.format != "text" && simConfig.format != "json" {
		return fmt.Errorf("%w: %s", ErrUnknownFormat, simConfig.format)
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	sessionID := uuid.NewString()
	logger := util.SetupLogger(cmd.ErrOrStderr()).With(log.String("session", sessionID))

	t, err := util.LoadTrack()
	if err != nil {
		return err
	}
	mock := clock.NewMock(simStart)
	proc, err := util.NewProcessor(t, &appConfig, mock, logger.Named("processor"))
	if err != nil {
		return err
	}

	var last model.Snapshot
	opts := []session.Option{
		session.WithProcessor(proc),
		session.WithEventBuffer(4096),
		session.WithFrameSink(session.FrameSinkFunc(func(s *model.Snapshot) { last = *s })),
		session.WithLogger(logger.Named("session")),
	}
	switch {
	case simConfig.script != "":
		data, err := os.ReadFile(simConfig.script)
		if err != nil {
			return err
		}
		script, err := session.ParseScript(data)
		if err != nil {
			return err
		}
		logger.Info("Script loaded", log.Int("ticks", script.Ticks()))
		opts = append(opts, session.WithInput(session.NewScriptSource(script)))
	case simConfig.autopilot:
		pilot, err := autopilot.NewPilot(t, autopilot.WithRotationRate(appConfig.RotationRate))
		if err != nil {
			return err
		}
		opts = append(opts, session.WithAutopilot(pilot))
	default:
		return ErrNoInput
	}
	runner, err := session.NewRunner(opts...)
	if err != nil {
		return err
	}

	consumers, err := util.NewConsumers(ctx, sessionID, logger)
	if err != nil {
		return err
	}
	defer consumers.Close()
	report := NewReport(t.Name)
	consumers.Add(report)
	wait := consumers.Start(ctx, runner.Events())

	report.Ticks = simulate(runner, mock, appConfig.TickInterval(),
		func() bool {
			return simConfig.laps > 0 && last.Lap >= simConfig.laps
		},
		simConfig.maxTicks)
	runner.Close()
	wait()
	if n := runner.Dropped(); n > 0 {
		logger.Warn("Race events dropped", log.Int("dropped", n))
	}

	if simConfig.format == "json" {
		return report.WriteJSON(cmd.OutOrStdout())
	}
	return report.WriteText(cmd.OutOrStdout())
}

// simulate steps the runner until the input quits, done reports true or
// maxTicks are processed. The clock advances by interval after each tick.
// It returns the number of processed ticks.
//
//nolint:whitespace // can't make both editor and linter happy
func simulate(
	r *session.Runner, c *clock.Mock, interval time.Duration,
	done func() bool, maxTicks int,
) int {
	ticks := 0
	for ticks < maxTicks {
		if !r.Step() {
			break
		}
		ticks++
		c.Advance(interval)
		if done() {
			break
		}
	}
	return ticks
}
