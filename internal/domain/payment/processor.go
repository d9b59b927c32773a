package payment

import "context"

// Charge asks the provider to collect Amount (major currency units) using the
// client-supplied payment token.
type Charge struct {
	Amount      float64
	Currency    string
	Description string
	Source      string
}

// Confirmation is the provider's record of a successful charge.
type Confirmation struct {
	ID          string `json:"id"`
	Provider    string `json:"provider"`
	Status      string `json:"status"`
	AmountMinor int64  `json:"amount"`
	Currency    string `json:"currency"`
	Description string `json:"description"`
}

// Processor is the outbound payment port. A non-nil error means nothing was charged.
type Processor interface {
	Charge(ctx context.Context, c Charge) (*Confirmation, error)
}
