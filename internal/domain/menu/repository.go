package menu

import "context"

type Repository interface {
	Insert(ctx context.Context, item *Item) error
	Get(ctx context.Context, name string) (*Item, error)
	Update(ctx context.Context, item *Item) error
	Delete(ctx context.Context, name string) error
	// List returns every readable item. Records without a name are skipped.
	List(ctx context.Context) ([]*Item, error)
}
