package session

import (
	"context"
	"fmt"

	"github.com/mpapenbr/tankrace/log"
	"github.com/mpapenbr/tankrace/pkg/model"
	"github.com/mpapenbr/tankrace/pkg/utils/laptime"
)

// Handler consumes race events outside of the tick
type Handler interface {
	Handle(ctx context.Context, e model.RaceEvent)
}

type HandlerFunc func(ctx context.Context, e model.RaceEvent)

func (f HandlerFunc) Handle(ctx context.Context, e model.RaceEvent) { f(ctx, e) }

// Dispatch passes every event of ch to the handlers until ch is closed
func Dispatch(ctx context.Context, ch <-chan model.RaceEvent, handlers ...Handler) {
	for e := range ch {
		for _, h := range handlers {
			h.Handle(ctx, e)
		}
	}
}

// EventLog writes a log line per checkpoint and lap
type EventLog struct {
	log *log.Logger
}

func NewEventLog(l *log.Logger) *EventLog {
	return &EventLog{log: l}
}

func (l *EventLog) Handle(_ context.Context, e model.RaceEvent) {
	switch e.Type {
	case model.EventCheckpoint:
		l.log.Info(fmt.Sprintf("Checkpoint %d/%d", e.Checkpoint+1, e.Checkpoints),
			log.String("sector", laptime.Format(e.Duration)),
			log.Bool("improved", e.Improved))
	case model.EventLap:
		l.log.Info(fmt.Sprintf("LAP %d", e.Lap),
			log.String("time", laptime.Format(e.Duration)),
			log.Bool("improved", e.Improved))
	case model.EventBounce:
		l.log.Debug("bounce", log.Stringer("cause", e.Cause), log.Uint64("tick", e.Tick))
	case model.EventAttempt:
		l.log.Info("new attempt", log.Uint64("tick", e.Tick))
	}
}
