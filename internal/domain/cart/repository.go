package cart

import "context"

// Repository stores carts keyed by username.
type Repository interface {
	// Insert fails with ErrExists if the user already has a cart.
	Insert(ctx context.Context, c *Cart) error
	Get(ctx context.Context, username string) (*Cart, error)
	Update(ctx context.Context, c *Cart) error
	Delete(ctx context.Context, username string) error
}
