// Package cart implements the per-user shopping cart.
package cart

import (
	"context"
	"errors"

	"github.com/Zhima-Mochi/pizzeria/internal/application"
	domain "github.com/Zhima-Mochi/pizzeria/internal/domain/cart"
	domuser "github.com/Zhima-Mochi/pizzeria/internal/domain/user"
	"github.com/Zhima-Mochi/pizzeria/internal/observability"
	"github.com/Zhima-Mochi/pizzeria/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
)

const (
	cartService    = "cart-service"
	useCaseCreate  = "cart.create"
	useCaseGet     = "cart.get"
	useCaseUpsert  = "cart.upsert_item"
	useCaseReplace = "cart.replace_items"
	useCaseClear   = "cart.clear"
)

type TokenResolver interface {
	Resolve(ctx context.Context, tokenID string) (string, error)
}

// PriceLookup returns the current catalog prices keyed by item name.
type PriceLookup interface {
	Prices(ctx context.Context) (map[string]float64, error)
}

type Service struct {
	carts  domain.Repository
	users  domuser.Repository
	tokens TokenResolver
	prices PriceLookup
	ids    application.IDGenerator
	obs    application.Instruments
}

func NewService(
	carts domain.Repository,
	users domuser.Repository,
	tokens TokenResolver,
	prices PriceLookup,
	ids application.IDGenerator,
	tel observability.Observability,
) *Service {
	return &Service{
		carts:  carts,
		users:  users,
		tokens: tokens,
		prices: prices,
		ids:    ids,
		obs:    application.NewInstruments(tel, cartService),
	}
}

// UpsertInput changes one line item. See domain.Cart.Upsert for how Index and
// Quantity combine.
type UpsertInput struct {
	Name     string
	Quantity int
	Index    *int
}

// Create opens a cart for the token owner, optionally seeded with items, and
// links it on the user record.
func (s *Service) Create(ctx context.Context, tokenID string, items ...domain.LineItem) (_ *domain.Cart, err error) {
	ctx, call := s.obs.Begin(ctx, useCaseCreate, "CreateCart")
	defer func() { call.End(err) }()

	seed, err := domain.ValidateItems(items)
	if err != nil {
		call.Fail("ITEMS_INVALID")
		return nil, err
	}
	username, err := s.tokens.Resolve(ctx, tokenID)
	if err != nil {
		call.Fail("UNAUTHORIZED")
		return nil, err
	}
	call.Span().SetAttributes(attribute.String("user.name", username))

	u, err := s.users.Get(ctx, username)
	if err != nil {
		call.Fail("USER_LOAD_FAILED")
		return nil, err
	}

	c := domain.New(s.ids.NewID(), username)
	c.Items = seed
	if err := s.recalculate(ctx, c); err != nil {
		call.Fail("MENU_LOAD_FAILED")
		return nil, err
	}
	if err := s.carts.Insert(ctx, c); err != nil {
		call.Fail("CART_INSERT_FAILED")
		return nil, err
	}

	u.LinkCart(c.ID)
	if err := s.users.Update(ctx, u); err != nil {
		call.Fail("USER_UPDATE_FAILED")
		return nil, err
	}
	return c, nil
}

func (s *Service) Get(ctx context.Context, tokenID string) (_ *domain.Cart, err error) {
	ctx, call := s.obs.Begin(ctx, useCaseGet, "GetCart")
	defer func() { call.End(err) }()

	username, err := s.tokens.Resolve(ctx, tokenID)
	if err != nil {
		call.Fail("UNAUTHORIZED")
		return nil, err
	}
	c, err := s.carts.Get(ctx, username)
	if err != nil {
		call.Fail("CART_LOAD_FAILED")
		return nil, err
	}
	return c, nil
}

func (s *Service) UpsertItem(ctx context.Context, tokenID string, in UpsertInput) (_ *domain.Cart, err error) {
	ctx, call := s.obs.Begin(ctx, useCaseUpsert, "UpsertCartItem",
		attribute.String("cart.item", in.Name),
		attribute.Int("cart.quantity", in.Quantity),
	)
	defer func() { call.End(err) }()

	if in.Index == nil && in.Quantity <= 0 {
		call.Fail("QUANTITY_INVALID")
		return nil, domain.ErrInvalidQuantity
	}
	return s.mutate(ctx, call, tokenID, func(c *domain.Cart) error {
		return c.Upsert(in.Name, in.Quantity, in.Index)
	})
}

// ReplaceItems swaps every line item of the cart for items.
func (s *Service) ReplaceItems(ctx context.Context, tokenID string, items []domain.LineItem) (_ *domain.Cart, err error) {
	ctx, call := s.obs.Begin(ctx, useCaseReplace, "ReplaceCartItems", attribute.Int("cart.lines", len(items)))
	defer func() { call.End(err) }()

	if _, err := domain.ValidateItems(items); err != nil {
		call.Fail("ITEMS_INVALID")
		return nil, err
	}
	return s.mutate(ctx, call, tokenID, func(c *domain.Cart) error {
		return c.SetItems(items)
	})
}

// Clear deletes the cart and unlinks it from its owner.
func (s *Service) Clear(ctx context.Context, tokenID string) (err error) {
	ctx, call := s.obs.Begin(ctx, useCaseClear, "ClearCart")
	defer func() { call.End(err) }()

	username, err := s.tokens.Resolve(ctx, tokenID)
	if err != nil {
		call.Fail("UNAUTHORIZED")
		return err
	}
	if err := s.carts.Delete(ctx, username); err != nil {
		call.Fail("CART_DELETE_FAILED")
		return err
	}

	u, err := s.users.Get(ctx, username)
	if err != nil {
		if errors.Is(err, domuser.ErrNotFound) {
			return nil
		}
		call.Fail("USER_LOAD_FAILED")
		return err
	}
	u.UnlinkCart()
	if err := s.users.Update(ctx, u); err != nil {
		call.Fail("USER_UPDATE_FAILED")
		return err
	}
	return nil
}

// mutate loads the owner's cart, applies change, re-totals it and saves it.
// Concurrent mutations of one cart are last-writer-wins.
func (s *Service) mutate(ctx context.Context, call *application.Call, tokenID string, change func(*domain.Cart) error) (*domain.Cart, error) {
	username, err := s.tokens.Resolve(ctx, tokenID)
	if err != nil {
		call.Fail("UNAUTHORIZED")
		return nil, err
	}
	c, err := s.carts.Get(ctx, username)
	if err != nil {
		call.Fail("CART_LOAD_FAILED")
		return nil, err
	}
	if err := change(c); err != nil {
		call.Fail("CHANGE_INVALID")
		return nil, err
	}
	if err := s.recalculate(ctx, c); err != nil {
		call.Fail("MENU_LOAD_FAILED")
		return nil, err
	}
	if err := s.carts.Update(ctx, c); err != nil {
		call.Fail("CART_UPDATE_FAILED")
		return nil, err
	}
	return c, nil
}

// recalculate re-totals c against the full catalog. Names that no longer
// resolve count as zero and are logged.
func (s *Service) recalculate(ctx context.Context, c *domain.Cart) error {
	prices, err := s.prices.Prices(ctx)
	if err != nil {
		return err
	}
	unresolved := c.Recalculate(prices)
	if len(unresolved) > 0 {
		logger := logctx.FromOr(ctx, s.obs.Logger())
		for _, name := range unresolved {
			logger.Warn("cart_item_unresolved",
				observability.F("cart_id", c.ID),
				observability.F("item", name),
			)
		}
	}
	return nil
}
