package util

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	otlpruntime "go.opentelemetry.io/contrib/instrumentation/runtime"

	"github.com/mpapenbr/tankrace/log"
	"github.com/mpapenbr/tankrace/pkg/config"
	"github.com/mpapenbr/tankrace/pkg/model"
	"github.com/mpapenbr/tankrace/pkg/session"
	"github.com/mpapenbr/tankrace/pkg/telemetry"
	"github.com/mpapenbr/tankrace/pkg/utils"
	"github.com/mpapenbr/tankrace/pkg/utils/broadcast"
	"github.com/mpapenbr/tankrace/pkg/utils/publish"
)

// Consumers fans the race events of a session out to the configured handlers.
// Every handler gets its own subscription so a slow one never delays the others.
type Consumers struct {
	sessionID string
	log       *log.Logger
	handlers  []session.Handler
	closers   []func()
	buffer    int
	wg        sync.WaitGroup
}

// NewConsumers creates the event log consumer and, depending on the config, the
// telemetry and NATS consumers.
func NewConsumers(ctx context.Context, sessionID string, logger *log.Logger) (*Consumers, error) {
	c := &Consumers{sessionID: sessionID, log: logger, buffer: 64}
	c.Add(session.NewEventLog(logger.Named("race")))
	if config.EnableTelemetry {
		if err := c.setupTelemetry(ctx); err != nil {
			c.Close()
			return nil, err
		}
	}
	if config.NatsURL != "" {
		if err := c.setupNats(ctx); err != nil {
			c.Close()
			return nil, err
		}
	}
	return c, nil
}

func (c *Consumers) setupTelemetry(ctx context.Context) error {
	c.log.Info("Enabling telemetry")
	t, err := config.SetupTelemetry(ctx)
	if err != nil {
		return err
	}
	c.closers = append(c.closers, t.Shutdown)
	err = otlpruntime.Start(otlpruntime.WithMinimumReadMemStatsInterval(time.Second))
	if err != nil {
		c.log.Warn("Could not start runtime metrics", log.ErrorField(err))
	}
	rec, err := telemetry.NewRecorder(otel.GetMeterProvider(), c.sessionID)
	if err != nil {
		return err
	}
	tracer := telemetry.NewLapTracer(otel.GetTracerProvider(), c.sessionID)
	c.Add(rec)
	c.Add(tracer)
	// spans must end before the provider is shut down
	c.closers = append([]func(){tracer.Close}, c.closers...)
	return nil
}

func (c *Consumers) setupNats(ctx context.Context) error {
	c.log.Info("Publishing race events", log.String("url", config.NatsURL))
	timeout, err := time.ParseDuration(config.WaitForServices)
	if err != nil {
		c.log.Warn("Invalid duration value. Setting default 5s", log.ErrorField(err))
		timeout = 5 * time.Second
	}
	if addr := utils.ExtractFromNatsURL(config.NatsURL); addr != "" && timeout > 0 {
		if err := utils.WaitForTCP(ctx, addr, timeout); err != nil {
			return err
		}
	}
	conn, err := publish.Connect(config.NatsURL)
	if err != nil {
		return err
	}
	opts := []publish.Option{publish.WithLogger(c.log.Named("publish"))}
	if config.NatsSubject != "" {
		opts = append(opts, publish.WithSubjectPrefix(config.NatsSubject))
	}
	p := publish.NewPublisher(conn, c.sessionID, opts...)
	c.Add(p)
	c.closers = append([]func(){func() {
		if err := conn.Drain(); err != nil {
			c.log.Warn("could not drain nats connection", log.ErrorField(err))
		}
		if n := p.Failures(); n > 0 {
			c.log.Warn("some events were not published", log.Int("failures", n))
		}
	}}, c.closers...)
	return nil
}

// Add registers h. Must be called before Start.
func (c *Consumers) Add(h session.Handler) {
	c.handlers = append(c.handlers, h)
}

// Start dispatches the events of ch until ch is closed.
// The returned function waits until every handler has seen the last event.
func (c *Consumers) Start(ctx context.Context, ch <-chan model.RaceEvent) func() {
	srv := broadcast.NewServer("race-events", ch,
		broadcast.WithLogger[model.RaceEvent](c.log.Named("broadcast")),
		broadcast.WithSendTimeout[model.RaceEvent](time.Second))
	for _, h := range c.handlers {
		sub := srv.Subscribe(c.buffer)
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			session.Dispatch(ctx, sub, h)
		}()
	}
	return func() {
		<-srv.Done()
		c.wg.Wait()
		st := srv.Stats()
		c.log.Debug("race events dispatched",
			log.Int64("received", st.Received),
			log.Int64("sent", st.Sent),
			log.Int64("skipped", st.Skipped))
	}
}

// Close releases the resources of the handlers
func (c *Consumers) Close() {
	for _, f := range c.closers {
		f()
	}
	c.closers = nil
}
