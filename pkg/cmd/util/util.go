package util

import (
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/mpapenbr/tankrace/log"
	"github.com/mpapenbr/tankrace/pkg/clock"
	"github.com/mpapenbr/tankrace/pkg/config"
	"github.com/mpapenbr/tankrace/pkg/processing"
	"github.com/mpapenbr/tankrace/pkg/processing/vehicle"
	"github.com/mpapenbr/tankrace/pkg/track"
)

func ParseLogLevel(l string, defaultVal log.Level) log.Level {
	level, err := log.ParseLevel(l)
	if err != nil {
		return defaultVal
	}
	return level
}

// SetupLogger creates the logger configured by the log flags and installs it as default
func SetupLogger(w io.Writer) *log.Logger {
	opts := []log.Option{log.WithCaller(true), log.AddCallerSkip(1)}
	if config.LogFilter != "" {
		opts = append(opts, log.WithFilter(config.LogFilter))
	}
	var logger *log.Logger
	switch config.LogFormat {
	case "json":
		logger = log.New(w, ParseLogLevel(config.LogLevel, log.InfoLevel), opts...)
	default:
		logger = log.DevLogger(w, ParseLogLevel(config.LogLevel, log.DebugLevel), opts...)
	}
	log.ResetDefault(logger)
	return logger
}

// OpenLogFile opens config.LogFile for appending. Without a log file the
// fallback writer is used.
func OpenLogFile(fallback io.Writer) (io.Writer, func(), error) {
	if config.LogFile == "" {
		return fallback, func() {}, nil
	}
	f, err := os.OpenFile(config.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// LoadTrack loads config.TrackFile or returns the built-in track
func LoadTrack() (*track.Track, error) {
	if config.TrackFile == "" {
		return track.Builtin(), nil
	}
	return track.LoadFile(config.TrackFile)
}

// AddRaceFlags registers the race tunables
func AddRaceFlags(fs *pflag.FlagSet, cfg *config.Config) {
	fs.Float64Var(&cfg.MaxSpeed,
		"max-speed",
		cfg.MaxSpeed,
		"max vehicle speed in track pixels per tick")
	fs.Float64Var(&cfg.RotationRate,
		"rotation-rate",
		cfg.RotationRate,
		"vehicle rotation in degrees per tick")
	fs.Float64Var(&cfg.Acceleration,
		"acceleration",
		cfg.Acceleration,
		"speed increment per tick")
	fs.IntVar(&cfg.TickRate,
		"tick-rate",
		cfg.TickRate,
		"ticks per second")
	fs.DurationVar(&cfg.FlashDuration,
		"flash-duration",
		cfg.FlashDuration,
		"how long improvements are highlighted")
}

// NewProcessor creates a processor for t using the race tunables of cfg
func NewProcessor(
	t *track.Track,
	cfg *config.Config,
	c clock.TimeSource,
	logger *log.Logger,
) (*processing.Processor, error) {
	return processing.NewProcessor(
		processing.WithTrack(t),
		processing.WithClock(c),
		processing.WithVehicleConfig(vehicle.Config{
			MaxSpeed:     cfg.MaxSpeed,
			RotationRate: cfg.RotationRate,
			Acceleration: cfg.Acceleration,
		}),
		processing.WithFlashDuration(cfg.FlashDuration),
		processing.WithLogger(logger),
	)
}
