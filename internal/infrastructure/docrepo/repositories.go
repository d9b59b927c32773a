package docrepo

import (
	"context"

	"github.com/Zhima-Mochi/pizzeria/internal/domain/cart"
	"github.com/Zhima-Mochi/pizzeria/internal/domain/document"
	"github.com/Zhima-Mochi/pizzeria/internal/domain/menu"
	"github.com/Zhima-Mochi/pizzeria/internal/domain/order"
	"github.com/Zhima-Mochi/pizzeria/internal/domain/token"
	"github.com/Zhima-Mochi/pizzeria/internal/domain/user"
)

type UserRepository struct{ c collection[user.User] }

func NewUserRepository(store document.Store) *UserRepository {
	return &UserRepository{c: collection[user.User]{
		store: store, name: document.Users, notFound: user.ErrNotFound, exists: user.ErrExists,
	}}
}

func (r *UserRepository) Insert(ctx context.Context, u *user.User) error {
	return r.c.insert(ctx, u.Username, u)
}

func (r *UserRepository) Get(ctx context.Context, username string) (*user.User, error) {
	return r.c.get(ctx, username)
}

func (r *UserRepository) Update(ctx context.Context, u *user.User) error {
	return r.c.update(ctx, u.Username, u)
}

func (r *UserRepository) Delete(ctx context.Context, username string) error {
	return r.c.delete(ctx, username)
}

type TokenRepository struct{ c collection[token.Token] }

func NewTokenRepository(store document.Store) *TokenRepository {
	return &TokenRepository{c: collection[token.Token]{
		store: store, name: document.Tokens, notFound: token.ErrNotFound,
	}}
}

func (r *TokenRepository) Insert(ctx context.Context, t *token.Token) error {
	return r.c.insert(ctx, t.ID, t)
}

func (r *TokenRepository) Get(ctx context.Context, id string) (*token.Token, error) {
	return r.c.get(ctx, id)
}

func (r *TokenRepository) Update(ctx context.Context, t *token.Token) error {
	return r.c.update(ctx, t.ID, t)
}

func (r *TokenRepository) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}

func (r *TokenRepository) List(ctx context.Context) ([]*token.Token, error) {
	return r.c.all(ctx, func(t *token.Token) bool { return t.ID != "" })
}

type MenuRepository struct{ c collection[menu.Item] }

func NewMenuRepository(store document.Store) *MenuRepository {
	return &MenuRepository{c: collection[menu.Item]{
		store: store, name: document.Menu, notFound: menu.ErrNotFound, exists: menu.ErrExists,
	}}
}

func (r *MenuRepository) Insert(ctx context.Context, item *menu.Item) error {
	return r.c.insert(ctx, item.Name, item)
}

func (r *MenuRepository) Get(ctx context.Context, name string) (*menu.Item, error) {
	return r.c.get(ctx, name)
}

func (r *MenuRepository) Update(ctx context.Context, item *menu.Item) error {
	return r.c.update(ctx, item.Name, item)
}

func (r *MenuRepository) Delete(ctx context.Context, name string) error {
	return r.c.delete(ctx, name)
}

// List skips unreadable records, which ReadAll reports as empty objects.
func (r *MenuRepository) List(ctx context.Context) ([]*menu.Item, error) {
	return r.c.all(ctx, func(i *menu.Item) bool { return i.Name != "" })
}

// CartRepository keys carts by their owner's username.
type CartRepository struct{ c collection[cart.Cart] }

func NewCartRepository(store document.Store) *CartRepository {
	return &CartRepository{c: collection[cart.Cart]{
		store: store, name: document.Carts, notFound: cart.ErrNotFound, exists: cart.ErrExists,
	}}
}

func (r *CartRepository) Insert(ctx context.Context, c *cart.Cart) error {
	return r.c.insert(ctx, c.Username, c)
}

func (r *CartRepository) Get(ctx context.Context, username string) (*cart.Cart, error) {
	return r.c.get(ctx, username)
}

func (r *CartRepository) Update(ctx context.Context, c *cart.Cart) error {
	return r.c.update(ctx, c.Username, c)
}

func (r *CartRepository) Delete(ctx context.Context, username string) error {
	return r.c.delete(ctx, username)
}

type OrderRepository struct{ c collection[order.Order] }

func NewOrderRepository(store document.Store) *OrderRepository {
	return &OrderRepository{c: collection[order.Order]{
		store: store, name: document.Orders, notFound: order.ErrNotFound, exists: order.ErrConflict,
	}}
}

func (r *OrderRepository) Insert(ctx context.Context, o *order.Order) error {
	return r.c.insert(ctx, o.ID, o)
}

func (r *OrderRepository) Get(ctx context.Context, id string) (*order.Order, error) {
	return r.c.get(ctx, id)
}

func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	return r.c.update(ctx, o.ID, o)
}

func (r *OrderRepository) Delete(ctx context.Context, id string) error {
	return r.c.delete(ctx, id)
}

var (
	_ user.Repository  = (*UserRepository)(nil)
	_ token.Repository = (*TokenRepository)(nil)
	_ menu.Repository  = (*MenuRepository)(nil)
	_ cart.Repository  = (*CartRepository)(nil)
	_ order.Repository = (*OrderRepository)(nil)
)
