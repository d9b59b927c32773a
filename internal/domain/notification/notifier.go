package notification

import (
	"context"
	"time"
)

type Message struct {
	Subject string
	From    string
	To      string
	Body    string
}

type Receipt struct {
	ID       string    `json:"id"`
	Provider string    `json:"provider"`
	SentAt   time.Time `json:"sent_at"`
}

// Notifier is the outbound notification port.
type Notifier interface {
	Send(ctx context.Context, m Message) (*Receipt, error)
}
