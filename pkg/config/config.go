package config

import "time"

// this holds the resolved configuration values from CLI
//
//nolint:lll // readablity
var (
	LogLevel          string // sets the log level (zap log level values)
	LogFormat         string // text vs json
	LogFilter         string // zapfilter rules, empty means no filtering
	LogFile           string // log destination while the terminal is in use
	TrackFile         string // path to track descriptor, empty selects the built-in track
	EnableTelemetry   bool   // enable telemetry
	TelemetryEndpoint string // endpoint for telemetry, empty writes to TelemetryOutput
	TelemetryOutput   string // file receiving stdout exporter output
	NatsURL           string // if set, race events are published to this NATS server
	NatsSubject       string // subject prefix for published race events
	WaitForServices   string // how long to wait for the NATS server
)

// Config holds the race tunables used by the processing core and the front ends
type Config struct {
	MaxSpeed        float64       // max speed in track pixels per tick
	RotationRate    float64       // degrees per tick
	Acceleration    float64       // speed increment per tick
	TickRate        int           // ticks per second
	FlashDuration   time.Duration // how long "improved" flags stay active
	ShowCheckpoints bool          // draw checkpoint zones
	Sound           bool          // play feedback tones
	Demo            bool          // let the autopilot drive
}

func DefaultConfig() Config {
	return Config{
		MaxSpeed:      3,
		RotationRate:  2.4,
		Acceleration:  0.08,
		TickRate:      60,
		FlashDuration: 2 * time.Second,
	}
}

// TickInterval returns the duration of a single tick
func (c Config) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.TickRate)
}
