package play

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mpapenbr/tankrace/log"
	"github.com/mpapenbr/tankrace/pkg/clock"
	"github.com/mpapenbr/tankrace/pkg/cmd/util"
	"github.com/mpapenbr/tankrace/pkg/config"
	"github.com/mpapenbr/tankrace/pkg/frontend/audio"
	"github.com/mpapenbr/tankrace/pkg/frontend/terminal"
	"github.com/mpapenbr/tankrace/pkg/processing/autopilot"
	"github.com/mpapenbr/tankrace/pkg/session"
)

var appConfig = config.DefaultConfig()

func NewPlayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "starts the race in the terminal",
		Long: `Drive with the arrow keys, WASD or ZQSD.
Press r to restart the attempt, Esc or Ctrl-C to quit.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return startGame(cmd.Context())
		},
	}
	util.AddRaceFlags(cmd.Flags(), &appConfig)
	cmd.Flags().BoolVar(&appConfig.ShowCheckpoints,
		"show-checkpoints",
		false,
		"draws the checkpoint zones")
	cmd.Flags().BoolVar(&appConfig.Sound,
		"sound",
		false,
		"plays tones on checkpoints and laps")
	cmd.Flags().BoolVar(&appConfig.Demo,
		"demo",
		false,
		"lets the autopilot drive")
	cmd.Flags().StringVar(&config.LogFile,
		"log-file",
		"tankrace.log",
		"log destination while the terminal is in use")
	return cmd
}

//nolint:funlen // by design
func startGame(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	// the terminal belongs to the game, logs go to a file
	w, closeLog, err := util.OpenLogFile(os.Stderr)
	if err != nil {
		return err
	}
	defer closeLog()
	sessionID := uuid.NewString()
	logger := util.SetupLogger(w).With(log.String("session", sessionID))

	t, err := util.LoadTrack()
	if err != nil {
		return err
	}
	logger.Info("Track loaded", log.String("track", t.Name))
	proc, err := util.NewProcessor(t, &appConfig, clock.NewSystem(), logger.Named("processor"))
	if err != nil {
		return err
	}

	consumers, err := util.NewConsumers(ctx, sessionID, logger)
	if err != nil {
		return err
	}
	defer consumers.Close()
	if appConfig.Sound {
		player := audio.NewPlayer(audio.WithLogger(logger.Named("audio")))
		if err := player.Init(); err != nil {
			logger.Warn("Sound disabled", log.ErrorField(err))
		} else {
			defer player.Close()
			consumers.Add(player)
		}
	}

	keys := terminal.NewKeyboard()
	screen, err := terminal.Open(t,
		terminal.WithKeyboard(keys),
		terminal.WithView(terminal.NewView(t,
			terminal.WithCheckpoints(appConfig.ShowCheckpoints))),
		terminal.WithScreenLogger(logger.Named("screen")))
	if err != nil {
		return err
	}
	defer screen.Close()

	opts := []session.Option{
		session.WithProcessor(proc),
		session.WithInput(keys),
		session.WithFrameSink(screen),
		session.WithTickRate(appConfig.TickRate),
		session.WithLogger(logger.Named("session")),
	}
	if appConfig.Demo {
		pilot, err := autopilot.NewPilot(t, autopilot.WithRotationRate(appConfig.RotationRate))
		if err != nil {
			return err
		}
		opts = append(opts, session.WithAutopilot(pilot))
	}
	runner, err := session.NewRunner(opts...)
	if err != nil {
		return err
	}

	wait := consumers.Start(ctx, runner.Events())
	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	err = runner.Run(runCtx)
	wait()
	if n := runner.Dropped(); n > 0 {
		logger.Warn("Race events dropped", log.Int("dropped", n))
	}
	return err
}
