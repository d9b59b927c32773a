package order

import (
	"time"

	"github.com/Zhima-Mochi/pizzeria/internal/domain/cart"
	"github.com/Zhima-Mochi/pizzeria/internal/domain/notification"
	"github.com/Zhima-Mochi/pizzeria/internal/domain/payment"
	"github.com/Zhima-Mochi/pizzeria/internal/pkg/apperr"
)

var (
	ErrNotFound = apperr.New(apperr.NotFound, "the specified order does not exist")
	ErrConflict = apperr.New(apperr.Conflict, "order already exists")
)

type Details struct {
	Payment payment.Confirmation  `json:"payment"`
	Cart    cart.Cart             `json:"cart"`
	Receipt *notification.Receipt `json:"receipt,omitempty"`
}

// Order is immutable once created apart from the receipt attached after the
// notification is sent.
type Order struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Total     float64   `json:"total"`
	Details   Details   `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}

func New(id, username, email string, snapshot cart.Cart, confirmation payment.Confirmation) *Order {
	return &Order{
		ID:       id,
		Username: username,
		Email:    email,
		Total:    snapshot.Total,
		Details: Details{
			Payment: confirmation,
			Cart:    snapshot,
		},
		CreatedAt: time.Now().UTC(),
	}
}

func (o *Order) AttachReceipt(r notification.Receipt) {
	o.Details.Receipt = &r
}
