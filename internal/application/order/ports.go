package order

import (
	"context"

	domainNotification "github.com/Zhima-Mochi/pizzeria/internal/domain/notification"
	domainPayment "github.com/Zhima-Mochi/pizzeria/internal/domain/payment"
)

type TokenResolver interface {
	Resolve(ctx context.Context, tokenID string) (string, error)
}

// Authorizer checks a token against an order's owner.
type Authorizer interface {
	Authorize(ctx context.Context, tokenID, username string) error
}

type PaymentPort interface {
	domainPayment.Processor
}

type NotificationPort interface {
	domainNotification.Notifier
}
