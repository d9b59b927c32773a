package user

import "context"

type Repository interface {
	// Insert fails with ErrExists when the username is taken.
	Insert(ctx context.Context, u *User) error
	Get(ctx context.Context, username string) (*User, error)
	Update(ctx context.Context, u *User) error
	Delete(ctx context.Context, username string) error
}
