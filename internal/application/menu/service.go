// Package menu manages the catalog of items customers can order.
package menu

import (
	"context"
	"slices"
	"strings"

	"github.com/Zhima-Mochi/pizzeria/internal/application"
	domain "github.com/Zhima-Mochi/pizzeria/internal/domain/menu"
	"github.com/Zhima-Mochi/pizzeria/internal/observability"
	"github.com/Zhima-Mochi/pizzeria/internal/pkg/apperr"

	"go.opentelemetry.io/otel/attribute"
)

const (
	menuService   = "menu-service"
	useCaseCreate = "menu.create"
	useCaseGet    = "menu.get"
	useCaseList   = "menu.list"
	useCaseUpdate = "menu.update"
	useCaseDelete = "menu.delete"
)

var (
	ErrNameRequired = apperr.New(apperr.Validation, "menu item name is required")
	ErrNotAdmin     = apperr.New(apperr.Auth, "the token owner may not change the menu")
)

// TokenResolver maps a session token to its owner.
type TokenResolver interface {
	Resolve(ctx context.Context, tokenID string) (string, error)
}

type Service struct {
	repo   domain.Repository
	tokens TokenResolver
	admins []string
	obs    application.Instruments
}

// NewService builds the catalog service. When admins is empty every
// authenticated user may change the menu.
func NewService(repo domain.Repository, tokens TokenResolver, admins []string, tel observability.Observability) *Service {
	return &Service{
		repo:   repo,
		tokens: tokens,
		admins: slices.Clone(admins),
		obs:    application.NewInstruments(tel, menuService),
	}
}

type CreateInput struct {
	Name        string
	Price       float64
	Weight      float64
	Description string
}

func (s *Service) Create(ctx context.Context, tokenID string, in CreateInput) (_ *domain.Item, err error) {
	ctx, call := s.obs.Begin(ctx, useCaseCreate, "CreateMenuItem", attribute.String("menu.name", in.Name))
	defer func() { call.End(err) }()

	item, err := domain.New(in.Name, in.Price, in.Weight, in.Description)
	if err != nil {
		call.Fail("ITEM_INVALID")
		return nil, err
	}
	if err := s.authorizeChange(ctx, tokenID); err != nil {
		call.Fail("UNAUTHORIZED")
		return nil, err
	}
	if err := s.repo.Insert(ctx, item); err != nil {
		call.Fail("ITEM_INSERT_FAILED")
		return nil, err
	}
	return item, nil
}

func (s *Service) Get(ctx context.Context, tokenID, name string) (_ *domain.Item, err error) {
	name = strings.TrimSpace(name)
	ctx, call := s.obs.Begin(ctx, useCaseGet, "GetMenuItem", attribute.String("menu.name", name))
	defer func() { call.End(err) }()

	if name == "" {
		call.Fail("NAME_REQUIRED")
		return nil, ErrNameRequired
	}
	if _, err := s.tokens.Resolve(ctx, tokenID); err != nil {
		call.Fail("UNAUTHORIZED")
		return nil, err
	}
	item, err := s.repo.Get(ctx, name)
	if err != nil {
		call.Fail("ITEM_LOAD_FAILED")
		return nil, err
	}
	return item, nil
}

func (s *Service) List(ctx context.Context, tokenID string) (_ []*domain.Item, err error) {
	ctx, call := s.obs.Begin(ctx, useCaseList, "ListMenuItems")
	defer func() { call.End(err) }()

	if _, err := s.tokens.Resolve(ctx, tokenID); err != nil {
		call.Fail("UNAUTHORIZED")
		return nil, err
	}
	items, err := s.repo.List(ctx)
	if err != nil {
		call.Fail("MENU_LOAD_FAILED")
		return nil, err
	}
	call.Add(observability.F("items", len(items)))
	return items, nil
}

func (s *Service) Update(ctx context.Context, tokenID, name string, patch domain.Patch) (_ *domain.Item, err error) {
	name = strings.TrimSpace(name)
	ctx, call := s.obs.Begin(ctx, useCaseUpdate, "UpdateMenuItem", attribute.String("menu.name", name))
	defer func() { call.End(err) }()

	if name == "" {
		call.Fail("NAME_REQUIRED")
		return nil, ErrNameRequired
	}
	if patch.Empty() {
		call.Fail("NOTHING_TO_UPDATE")
		return nil, domain.ErrEmptyPatch
	}
	if err := s.authorizeChange(ctx, tokenID); err != nil {
		call.Fail("UNAUTHORIZED")
		return nil, err
	}
	item, err := s.repo.Get(ctx, name)
	if err != nil {
		call.Fail("ITEM_LOAD_FAILED")
		return nil, err
	}
	if err := item.Apply(patch); err != nil {
		call.Fail("PATCH_INVALID")
		return nil, err
	}
	if err := s.repo.Update(ctx, item); err != nil {
		call.Fail("ITEM_UPDATE_FAILED")
		return nil, err
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, tokenID, name string) (err error) {
	name = strings.TrimSpace(name)
	ctx, call := s.obs.Begin(ctx, useCaseDelete, "DeleteMenuItem", attribute.String("menu.name", name))
	defer func() { call.End(err) }()

	if name == "" {
		call.Fail("NAME_REQUIRED")
		return ErrNameRequired
	}
	if err := s.authorizeChange(ctx, tokenID); err != nil {
		call.Fail("UNAUTHORIZED")
		return err
	}
	if err := s.repo.Delete(ctx, name); err != nil {
		call.Fail("ITEM_DELETE_FAILED")
		return err
	}
	return nil
}

// Prices returns the current price of every catalog item by name.
func (s *Service) Prices(ctx context.Context) (map[string]float64, error) {
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	prices := make(map[string]float64, len(items))
	for _, it := range items {
		prices[it.Name] = it.Price
	}
	return prices, nil
}

func (s *Service) authorizeChange(ctx context.Context, tokenID string) error {
	username, err := s.tokens.Resolve(ctx, tokenID)
	if err != nil {
		return err
	}
	if len(s.admins) > 0 && !slices.Contains(s.admins, username) {
		return ErrNotAdmin
	}
	return nil
}
