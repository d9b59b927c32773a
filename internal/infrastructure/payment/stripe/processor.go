// Package stripe charges payments through Stripe PaymentIntents.
package stripe

import (
	"context"
	"errors"
	"fmt"

	"github.com/Zhima-Mochi/pizzeria/internal/domain/payment"
	"github.com/Zhima-Mochi/pizzeria/internal/observability"
	"github.com/Zhima-Mochi/pizzeria/internal/observability/logctx"
	stripe "github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/paymentintent"
)

const provider = "stripe"

var ErrNotSucceeded = errors.New("stripe: payment intent did not succeed")

type createIntentFunc func(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)

// Processor confirms a PaymentIntent immediately with the client-supplied
// payment method. Charges that would need a redirect or further customer
// action are treated as failures.
type Processor struct {
	create createIntentFunc
	log    observability.Logger
}

// New configures the Stripe client with secretKey.
func New(secretKey string, logger observability.Logger) *Processor {
	stripe.Key = secretKey
	return newProcessor(paymentintent.New, logger)
}

func newProcessor(create createIntentFunc, logger observability.Logger) *Processor {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Processor{
		create: create,
		log:    logger.With(observability.F("component", "payment_stripe")),
	}
}

func (p *Processor) Charge(ctx context.Context, c payment.Charge) (*payment.Confirmation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := logctx.FromOr(ctx, p.log)

	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(payment.MinorUnits(c.Amount)),
		Currency:      stripe.String(c.Currency),
		Description:   stripe.String(c.Description),
		PaymentMethod: stripe.String(c.Source),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	params.Context = ctx

	intent, err := p.create(params)
	if err != nil {
		logger.Warn("stripe_request_failed", observability.F("error", err.Error()))
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}
	if intent.Status != stripe.PaymentIntentStatusSucceeded {
		logger.Warn("stripe_intent_not_succeeded",
			observability.F("payment_intent", intent.ID),
			observability.F("intent_status", string(intent.Status)),
		)
		return nil, fmt.Errorf("%w: %s is %s", ErrNotSucceeded, intent.ID, intent.Status)
	}

	logger.Info("stripe_payment_succeeded",
		observability.F("payment_intent", intent.ID),
		observability.F("amount_minor", intent.Amount),
	)
	return &payment.Confirmation{
		ID:          intent.ID,
		Provider:    provider,
		Status:      string(intent.Status),
		AmountMinor: intent.Amount,
		Currency:    string(intent.Currency),
		Description: intent.Description,
	}, nil
}

var _ payment.Processor = (*Processor)(nil)
