package audit

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type Event struct {
	OwnerID  uint
	Action   string
	Entity   string
	EntityID *uint
	Metadata any
}

// Sink persists one event.
type Sink interface {
	Log(ctx context.Context, ev Event) error
}

// Dispatcher writes events from a buffered queue on a single worker so
// request handlers never wait on the audit table.
type Dispatcher struct {
	sink  Sink
	log   *zap.Logger
	queue chan Event

	closeOnce sync.Once
	done      chan struct{}
}

func NewDispatcher(sink Sink, log *zap.Logger) *Dispatcher {
	d := &Dispatcher{
		sink:  sink,
		log:   log,
		queue: make(chan Event, 100),
		done:  make(chan struct{}),
	}

	go d.worker()
	return d
}

func (d *Dispatcher) worker() {
	defer close(d.done)
	for ev := range d.queue {
		if err := d.sink.Log(context.Background(), ev); err != nil {
			d.log.Error("audit write failed",
				zap.String("action", ev.Action),
				zap.Uint("owner_id", ev.OwnerID),
				zap.Error(err),
			)
		}
	}
}

func (d *Dispatcher) Dispatch(ev Event) {
	select {
	case d.queue <- ev:
	default:
		d.log.Warn("audit queue full, dropping event", zap.String("action", ev.Action))
	}
}

// Close drains the queue. Dispatch must not be called afterwards.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() { close(d.queue) })
	<-d.done
}
