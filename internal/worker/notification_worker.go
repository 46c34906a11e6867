package worker

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/washline/laundry-service/internal/events"
)

// ErrQueueFull is returned to the publisher when an event cannot be queued.
var ErrQueueFull = errors.New("notification queue full")

// Handler delivers one event.
type Handler interface {
	Handle(ctx context.Context, event events.Event) error
}

// NotificationWorker moves event delivery off the request path. Publishers
// only enqueue; a fixed number of goroutines drain the queue.
type NotificationWorker struct {
	handler Handler
	logger  *zap.Logger
	workers int
	queue   chan events.Event
}

// NewNotificationWorker builds a worker with the given concurrency and queue size.
func NewNotificationWorker(handler Handler, logger *zap.Logger, workers, buffer int) *NotificationWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	return &NotificationWorker{
		handler: handler,
		logger:  logger,
		workers: workers,
		queue:   make(chan events.Event, buffer),
	}
}

// Subscribe queues every event of the given types published on dispatcher.
func (w *NotificationWorker) Subscribe(dispatcher events.Dispatcher, types ...events.EventType) {
	for _, eventType := range types {
		dispatcher.Subscribe(eventType, w.enqueue)
	}
}

func (w *NotificationWorker) enqueue(_ context.Context, event events.Event) error {
	select {
	case w.queue <- event:
		return nil
	default:
		w.logger.Warn("dropping notification", zap.String("event_type", string(event.Type)), zap.String("resource_id", event.ResourceID))
		return ErrQueueFull
	}
}

// Run delivers queued events until ctx is cancelled, then drains what is
// already queued and returns.
func (w *NotificationWorker) Run(ctx context.Context) error {
	var g errgroup.Group
	for i := 0; i < w.workers; i++ {
		g.Go(func() error {
			for {
				select {
				case event := <-w.queue:
					w.deliver(context.WithoutCancel(ctx), event)
				case <-ctx.Done():
					w.drain(context.WithoutCancel(ctx))
					return nil
				}
			}
		})
	}
	return g.Wait()
}

func (w *NotificationWorker) drain(ctx context.Context) {
	for {
		select {
		case event := <-w.queue:
			w.deliver(ctx, event)
		default:
			return
		}
	}
}

func (w *NotificationWorker) deliver(ctx context.Context, event events.Event) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("notification handler panicked", zap.Any("panic", r), zap.String("event_type", string(event.Type)))
		}
	}()
	if err := w.handler.Handle(ctx, event); err != nil {
		w.logger.Warn("notification failed",
			zap.String("event_type", string(event.Type)),
			zap.String("resource_id", event.ResourceID),
			zap.Error(err))
	}
}
