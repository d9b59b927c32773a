package outbox

import "context"

// Event is a named fact published after a state change has been persisted.
type Event interface {
	EventName() string
}

type Handler func(ctx context.Context, e Event) error

// Publisher hands events to the bus. Publishing never blocks the caller past ctx.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

type Subscriber interface {
	Subscribe(eventName string, h Handler)
}

// NopPublisher drops every event.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
