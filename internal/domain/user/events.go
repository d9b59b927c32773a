package user

import "time"

// DeletedEvent is published after an account is removed so the documents that
// referenced it can be cleaned up.
type DeletedEvent struct {
	Username   string
	CartID     string
	OccurredAt time.Time
}

func (DeletedEvent) EventName() string { return "user.deleted" }

func NewDeletedEvent(u *User) DeletedEvent {
	return DeletedEvent{
		Username:   u.Username,
		CartID:     u.CartID,
		OccurredAt: time.Now().UTC(),
	}
}
