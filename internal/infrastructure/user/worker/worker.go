package worker

import (
	"context"

	appuser "github.com/Zhima-Mochi/pizzeria/internal/application/user"
	domoutbox "github.com/Zhima-Mochi/pizzeria/internal/domain/outbox"
	domuser "github.com/Zhima-Mochi/pizzeria/internal/domain/user"
	"github.com/Zhima-Mochi/pizzeria/internal/observability"
	"github.com/Zhima-Mochi/pizzeria/internal/observability/logctx"
	workerpresentation "github.com/Zhima-Mochi/pizzeria/internal/presentation/worker"
)

// Worker removes the documents a deleted account leaves behind.
type Worker struct {
	subscriber domoutbox.Subscriber
	cleanup    *appuser.CleanupUseCase
}

func New(subscriber domoutbox.Subscriber, cleanup *appuser.CleanupUseCase) *Worker {
	return &Worker{
		subscriber: subscriber,
		cleanup:    cleanup,
	}
}

func (w *Worker) Start() {
	w.subscriber.Subscribe(domuser.DeletedEvent{}.EventName(), w.handleUserDeleted)
}

func (w *Worker) handleUserDeleted(ctx context.Context, e domoutbox.Event) error {
	evt, ok := e.(domuser.DeletedEvent)
	if !ok {
		return nil
	}
	ctx = workerpresentation.WithEventContext(ctx, logctx.From(ctx), map[string]string{
		"component": "user_worker",
		"event":     e.EventName(),
	})
	logger := logctx.FromOr(ctx, nil)

	if _, err := w.cleanup.Execute(ctx, evt); err != nil {
		logger.Warn("user_cleanup_failed",
			observability.F("username", evt.Username),
			observability.F("error", err.Error()),
		)
		return err
	}
	logger.Info("user_cleanup_done",
		observability.F("username", evt.Username),
	)
	return nil
}
