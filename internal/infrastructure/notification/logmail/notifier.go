// Package logmail "sends" notifications by writing them to the log. It stands
// in for a mail relay in development.
package logmail

import (
	"context"
	"time"

	"github.com/Zhima-Mochi/pizzeria/internal/domain/notification"
	"github.com/Zhima-Mochi/pizzeria/internal/observability"
	"github.com/Zhima-Mochi/pizzeria/internal/observability/logctx"
	"github.com/google/uuid"
)

type Notifier struct {
	log observability.Logger
}

func New(logger observability.Logger) *Notifier {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Notifier{log: logger.With(observability.F("component", "notification_log"))}
}

func (n *Notifier) Send(ctx context.Context, m notification.Message) (*notification.Receipt, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r := &notification.Receipt{
		ID:       uuid.NewString(),
		Provider: "log",
		SentAt:   time.Now().UTC(),
	}
	logctx.FromOr(ctx, n.log).Info("notification_sent",
		observability.F("receipt_id", r.ID),
		observability.F("from", m.From),
		observability.F("to", m.To),
		observability.F("subject", m.Subject),
		observability.F("body", m.Body),
	)
	return r, nil
}

var _ notification.Notifier = (*Notifier)(nil)
