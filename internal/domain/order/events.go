package order

import "time"

// PlacedEvent is emitted once a checkout has completed.
type PlacedEvent struct {
	OrderID    string
	Username   string
	Total      float64
	OccurredAt time.Time
}

func (PlacedEvent) EventName() string { return "order.placed" }

func NewPlacedEvent(o *Order) PlacedEvent {
	return PlacedEvent{
		OrderID:    o.ID,
		Username:   o.Username,
		Total:      o.Total,
		OccurredAt: time.Now().UTC(),
	}
}
