package analytics

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emrgen/shortpage/internal/model"
	"github.com/emrgen/shortpage/internal/store"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
)

const defaultBufferSize = 1024

// Sink receives click events off the critical path. Implementations may
// write to the database or publish to a queue.
type Sink interface {
	RecordClick(ctx context.Context, click *model.ClickEvent) error
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, click *model.ClickEvent) error

func (f SinkFunc) RecordClick(ctx context.Context, click *model.ClickEvent) error {
	return f(ctx, click)
}

// NewStoreSink writes click events straight to the click store.
func NewStoreSink(clicks store.ClickStore) Sink {
	return SinkFunc(func(ctx context.Context, click *model.ClickEvent) error {
		return clicks.CreateClick(ctx, click)
	})
}

// Event is the request-scoped part of a click fact.
type Event struct {
	Type      string
	ClickedAt time.Time
	Referrer  string
	UserAgent string
	IPAddress string
	Country   string
}

// Recorder records click events without ever touching the caller's response
// path. Record never blocks and never fails: a full buffer drops the event,
// sink errors are logged and swallowed.
type Recorder struct {
	sink    Sink
	events  chan *model.ClickEvent
	done    chan struct{}
	wg      sync.WaitGroup
	dropped atomic.Int64
	once    sync.Once
}

func NewRecorder(sink Sink, buffer int) *Recorder {
	if buffer <= 0 {
		buffer = defaultBufferSize
	}

	r := &Recorder{
		sink:   sink,
		events: make(chan *model.ClickEvent, buffer),
		done:   make(chan struct{}),
	}

	r.wg.Add(1)
	go r.run()

	return r
}

// Record enqueues a click fact for the block. It returns immediately, the
// outcome of the write is deliberately discarded.
func (r *Recorder) Record(blockID string, event Event) {
	clickedAt := event.ClickedAt
	if clickedAt.IsZero() {
		clickedAt = time.Now()
	}

	click := &model.ClickEvent{
		ID:        uuid.New().String(),
		BlockID:   blockID,
		Type:      event.Type,
		ClickedAt: clickedAt,
		Referrer:  event.Referrer,
		UserAgent: event.UserAgent,
		IPAddress: event.IPAddress,
		Country:   event.Country,
		Metadata:  datatypes.JSON("{}"),
	}

	select {
	case r.events <- click:
	default:
		if r.dropped.Add(1)%100 == 1 {
			logrus.Warnf("click buffer full, dropped %d events so far", r.dropped.Load())
		}
	}
}

// Dropped reports how many events were discarded because the buffer was full.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops the worker after draining buffered events.
func (r *Recorder) Close() {
	r.once.Do(func() {
		close(r.done)
		r.wg.Wait()
	})
}

func (r *Recorder) run() {
	defer r.wg.Done()

	for {
		select {
		case click := <-r.events:
			r.write(click)
		case <-r.done:
			for {
				select {
				case click := <-r.events:
					r.write(click)
				default:
					return
				}
			}
		}
	}
}

func (r *Recorder) write(click *model.ClickEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.sink.RecordClick(ctx, click); err != nil {
		// analytics must never break a render or redirect
		logrus.Errorf("failed to record click for block %s: %v", click.BlockID, err)
	}
}
