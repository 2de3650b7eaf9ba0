package worker

import (
	"context"
	"log/slog"

	audit "lifedash/pkg/platform/audit"
)

// Worker drains an event channel into a store. A failed append is logged and
// the worker moves on; one bad write must not stall the trail.
type Worker struct {
	store  audit.Store
	inbox  <-chan audit.Event
	logger *slog.Logger
}

func NewWorker(store audit.Store, inbox <-chan audit.Event, logger *slog.Logger) *Worker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Worker{store: store, inbox: inbox, logger: logger}
}

// Run persists events until the inbox is closed. Once ctx is cancelled it
// keeps draining whatever is still buffered, using a background context so
// the final appends are not rejected.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.inbox:
			if !ok {
				return
			}
			w.append(ctx, event)
		case <-ctx.Done():
			w.drain()
			return
		}
	}
}

func (w *Worker) drain() {
	for event := range w.inbox {
		w.append(context.Background(), event)
	}
}

func (w *Worker) append(ctx context.Context, event audit.Event) {
	if ctx.Err() != nil {
		ctx = context.Background()
	}
	if err := w.store.Append(ctx, event); err != nil {
		w.logger.ErrorContext(ctx, "failed to append audit event",
			"error", err,
			"action", event.Action,
			"request_id", event.RequestID,
		)
	}
}
