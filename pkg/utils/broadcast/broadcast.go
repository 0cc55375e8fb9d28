package broadcast

import (
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/mpapenbr/tankrace/log"
)

// Server fans out every message of a source channel to all subscribers.
// The server stops when the source is closed or Close is called, subscriber
// channels are closed on stop.
type Server[T any] interface {
	// Subscribe registers a listener with the given channel buffer
	Subscribe(buffer int) <-chan T
	CancelSubscription(<-chan T)
	Close()
	// Done is closed after the server stopped and all listeners are closed
	Done() <-chan struct{}
	Stats() Stats
}

type Stats struct {
	Received  int64
	Sent      int64
	Skipped   int64
	Listeners int64
}

type server[T any] struct {
	name           string
	source         <-chan T
	listeners      []chan T
	addListener    chan chan T
	removeListener chan (<-chan T)
	ctx            context.Context
	cancel         context.CancelFunc
	done           chan struct{}
	sendTimeout    time.Duration
	meterProvider  metric.MeterProvider
	log            *log.Logger
	numRcv         atomic.Int64
	numSnd         atomic.Int64
	numSkip        atomic.Int64
	numListener    atomic.Int64
}

type Option[T any] func(*server[T])

// WithSendTimeout sets how long a slow listener may block a message before it is skipped
func WithSendTimeout[T any](d time.Duration) Option[T] {
	return func(b *server[T]) {
		b.sendTimeout = d
	}
}

func WithMeterProvider[T any](mp metric.MeterProvider) Option[T] {
	return func(b *server[T]) {
		b.meterProvider = mp
	}
}

func WithLogger[T any](l *log.Logger) Option[T] {
	return func(b *server[T]) {
		b.log = l
	}
}

//nolint:whitespace // false positive
func NewServer[T any](
	name string,
	source <-chan T,
	opts ...Option[T],
) Server[T] {
	ctx, cancel := context.WithCancel(context.Background())
	b := &server[T]{
		name:           name,
		source:         source,
		addListener:    make(chan chan T),
		removeListener: make(chan (<-chan T)),
		ctx:            ctx,
		cancel:         cancel,
		done:           make(chan struct{}),
		sendTimeout:    50 * time.Millisecond,
		meterProvider:  otel.GetMeterProvider(),
		log:            log.Default().Named("broadcast"),
	}
	for _, opt := range opts {
		opt(b)
	}
	b.setupMetrics()
	go b.serve()
	return b
}

func (b *server[T]) Subscribe(buffer int) <-chan T {
	ch := make(chan T, buffer)
	select {
	case b.addListener <- ch:
	case <-b.done:
		close(ch)
	}
	return ch
}

func (b *server[T]) CancelSubscription(ch <-chan T) {
	select {
	case b.removeListener <- ch:
	case <-b.done:
	}
}

func (b *server[T]) Close() {
	b.cancel()
	<-b.done
}

func (b *server[T]) Done() <-chan struct{} {
	return b.done
}

func (b *server[T]) Stats() Stats {
	return Stats{
		Received:  b.numRcv.Load(),
		Sent:      b.numSnd.Load(),
		Skipped:   b.numSkip.Load(),
		Listeners: b.numListener.Load(),
	}
}

func (b *server[T]) setupMetrics() {
	meter := b.meterProvider.Meter(fmt.Sprintf("tankrace.broadcast.%s", b.name))
	type data struct {
		name  string
		desc  string
		value *atomic.Int64
	}
	for _, d := range []data{
		{"tankrace.broadcast.rcv", "Number of received messages", &b.numRcv},
		{"tankrace.broadcast.snd", "Number of sent messages", &b.numSnd},
		{"tankrace.broadcast.skip", "Number of skipped messages", &b.numSkip},
		{"tankrace.broadcast.listener", "Number of listeners", &b.numListener},
	} {
		value := d.value
		if _, err := meter.Int64ObservableGauge(
			d.name,
			metric.WithDescription(d.desc),
			metric.WithUnit("{count}"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(value.Load(),
					metric.WithAttributes(attribute.String("name", b.name)))
				return nil
			})); err != nil {
			b.log.Error("failed to register metric",
				log.String("metric", d.name),
				log.ErrorField(err))
		}
	}
}

//nolint:cyclop // by design
func (b *server[T]) serve() {
	defer func() {
		for _, listener := range b.listeners {
			close(listener)
		}
		b.listeners = nil
		b.numListener.Store(0)
		b.log.Debug("broadcast server stopped",
			log.String("name", b.name),
			log.Int64("rcv", b.numRcv.Load()),
			log.Int64("snd", b.numSnd.Load()),
			log.Int64("skip", b.numSkip.Load()))
		close(b.done)
	}()
	for {
		select {
		case <-b.ctx.Done():
			return
		case ch := <-b.addListener:
			b.listeners = append(b.listeners, ch)
			b.numListener.Store(int64(len(b.listeners)))
		case ch := <-b.removeListener:
			idx := slices.IndexFunc(b.listeners, func(l chan T) bool {
				return (<-chan T)(l) == ch
			})
			if idx != -1 {
				close(b.listeners[idx])
				b.listeners = slices.Delete(b.listeners, idx, idx+1)
				b.numListener.Store(int64(len(b.listeners)))
			}
		case msg, ok := <-b.source:
			if !ok {
				return
			}
			b.numRcv.Add(1)
			b.dispatch(msg)
		}
	}
}

func (b *server[T]) dispatch(msg T) {
	for _, listener := range b.listeners {
		select {
		case listener <- msg:
			b.numSnd.Add(1)
		default:
			// buffer full, give the listener a moment
			select {
			case listener <- msg:
				b.numSnd.Add(1)
			case <-time.After(b.sendTimeout):
				b.numSkip.Add(1)
			}
		}
	}
}
