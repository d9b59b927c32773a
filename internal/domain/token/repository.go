package token

import "context"

type Repository interface {
	Insert(ctx context.Context, t *Token) error
	Get(ctx context.Context, id string) (*Token, error)
	Update(ctx context.Context, t *Token) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*Token, error)
}
