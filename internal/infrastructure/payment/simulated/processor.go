// Package simulated is a payment processor that approves a configurable share
// of charges without contacting any provider.
package simulated

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/Zhima-Mochi/pizzeria/internal/domain/payment"
	"github.com/Zhima-Mochi/pizzeria/internal/observability"
	"github.com/Zhima-Mochi/pizzeria/internal/observability/logctx"
	"github.com/google/uuid"
)

const provider = "simulated"

var (
	ErrDeclined      = errors.New("simulated: payment declined")
	ErrInvalidAmount = errors.New("simulated: amount must be greater than zero")
	ErrMissingSource = errors.New("simulated: payment token is required")
)

type Processor struct {
	mu          sync.Mutex
	random      *rand.Rand
	successRate float64
	log         observability.Logger
}

// New returns a processor approving charges with probability successRate.
func New(successRate float64, logger observability.Logger) *Processor {
	if logger == nil {
		logger = observability.NopLogger()
	}
	p := &Processor{
		random: rand.New(rand.NewSource(time.Now().UnixNano())),
		log:    logger.With(observability.F("component", "payment_simulated")),
	}
	p.SetSuccessRate(successRate)
	return p
}

func (p *Processor) Charge(ctx context.Context, c payment.Charge) (*payment.Confirmation, error) {
	logger := logctx.FromOr(ctx, p.log)
	amount := payment.MinorUnits(c.Amount)
	if amount <= 0 {
		return nil, ErrInvalidAmount
	}
	if c.Source == "" {
		return nil, ErrMissingSource
	}

	// respect cancellation even though this is mocked
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}

	p.mu.Lock()
	approved := p.random.Float64() < p.successRate
	p.mu.Unlock()

	if !approved {
		logger.Info("payment_declined", observability.F("amount_minor", amount))
		return nil, ErrDeclined
	}
	return &payment.Confirmation{
		ID:          "sim_" + uuid.NewString(),
		Provider:    provider,
		Status:      "succeeded",
		AmountMinor: amount,
		Currency:    c.Currency,
		Description: c.Description,
	}, nil
}

// SetSuccessRate adjusts the approval probability, clamped to [0, 1].
func (p *Processor) SetSuccessRate(rate float64) {
	if rate < 0 {
		rate = 0
	}
	if rate > 1 {
		rate = 1
	}
	p.mu.Lock()
	p.successRate = rate
	p.mu.Unlock()
}

var _ payment.Processor = (*Processor)(nil)
