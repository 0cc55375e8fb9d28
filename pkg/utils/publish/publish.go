// Package publish sends race events to a NATS server
package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/ohler55/ojg/oj"

	"github.com/mpapenbr/tankrace/log"
	"github.com/mpapenbr/tankrace/pkg/model"
	"github.com/mpapenbr/tankrace/pkg/utils/laptime"
)

// Conn is the part of a NATS connection used by the publisher
type Conn interface {
	Publish(subject string, data []byte) error
}

type Publisher struct {
	conn      Conn
	prefix    string
	sessionID string
	log       *log.Logger
	failures  int
}

type Option func(p *Publisher)

// WithSubjectPrefix sets the first subject token (default: tankrace)
func WithSubjectPrefix(prefix string) Option {
	return func(p *Publisher) {
		p.prefix = prefix
	}
}

func WithLogger(l *log.Logger) Option {
	return func(p *Publisher) {
		p.log = l
	}
}

func NewPublisher(conn Conn, sessionID string, opts ...Option) *Publisher {
	ret := &Publisher{
		conn:      conn,
		prefix:    "tankrace",
		sessionID: sessionID,
		log:       log.Default().Named("publish"),
	}
	for _, opt := range opts {
		opt(ret)
	}
	return ret
}

// Connect opens a NATS connection for the publisher
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.Name("tankrace"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1))
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return nc, nil
}

// Subject returns the subject an event is published on
func (p *Publisher) Subject(e model.RaceEvent) string {
	return fmt.Sprintf("%s.%s.%s", p.prefix, p.sessionID, e.Type)
}

// Handle publishes e. Failures are logged and counted, they never stop the race.
func (p *Publisher) Handle(_ context.Context, e model.RaceEvent) {
	if err := p.conn.Publish(p.Subject(e), Encode(p.sessionID, e)); err != nil {
		p.failures++
		p.log.Warn("could not publish event",
			log.Stringer("type", e.Type), log.Int("failures", p.failures),
			log.ErrorField(err))
	}
}

func (p *Publisher) Failures() int {
	return p.failures
}

// Encode renders e as JSON document
func Encode(sessionID string, e model.RaceEvent) []byte {
	doc := map[string]any{
		"session":     sessionID,
		"type":        e.Type.String(),
		"tick":        int64(e.Tick),
		"time":        e.Time.UTC().Format(time.RFC3339Nano),
		"lap":         e.Lap,
		"checkpoints": e.Checkpoints,
	}
	switch e.Type {
	case model.EventCheckpoint:
		doc["checkpoint"] = e.Checkpoint
		doc["duration"] = laptime.Seconds(e.Duration).InexactFloat64()
		doc["improved"] = e.Improved
	case model.EventLap:
		doc["duration"] = laptime.Seconds(e.Duration).InexactFloat64()
		doc["improved"] = e.Improved
	case model.EventBounce:
		doc["cause"] = e.Cause.String()
	case model.EventAttempt:
	}
	return []byte(oj.JSON(doc, &oj.Options{Sort: true}))
}
