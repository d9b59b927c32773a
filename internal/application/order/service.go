package order

import (
	"context"
	"strings"

	"github.com/Zhima-Mochi/pizzeria/internal/application"
	domain "github.com/Zhima-Mochi/pizzeria/internal/domain/order"
	"github.com/Zhima-Mochi/pizzeria/internal/domain/token"
	"github.com/Zhima-Mochi/pizzeria/internal/observability"
	"github.com/Zhima-Mochi/pizzeria/internal/pkg/apperr"

	"go.opentelemetry.io/otel/attribute"
)

const (
	useCaseGet    = "order.get"
	useCaseDelete = "order.delete"
)

var ErrMalformedID = apperr.New(apperr.Validation, "order id must be 20 lowercase alphanumeric characters")

// Service serves placed orders back to their owners.
type Service struct {
	repo domain.Repository
	auth Authorizer
	obs  application.Instruments
}

func NewService(repo domain.Repository, auth Authorizer, tel observability.Observability) *Service {
	return &Service{
		repo: repo,
		auth: auth,
		obs:  application.NewInstruments(tel, orderService),
	}
}

func (s *Service) Get(ctx context.Context, tokenID, id string) (_ *domain.Order, err error) {
	id = strings.TrimSpace(id)
	ctx, call := s.obs.Begin(ctx, useCaseGet, "GetOrder", attribute.String("order.id", id))
	defer func() { call.End(err) }()

	o, err := s.owned(ctx, call, tokenID, id)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (s *Service) Delete(ctx context.Context, tokenID, id string) (err error) {
	id = strings.TrimSpace(id)
	ctx, call := s.obs.Begin(ctx, useCaseDelete, "DeleteOrder", attribute.String("order.id", id))
	defer func() { call.End(err) }()

	if _, err := s.owned(ctx, call, tokenID, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		call.Fail("ORDER_DELETE_FAILED")
		return err
	}
	return nil
}

// owned loads order id and checks that tokenID belongs to its owner.
func (s *Service) owned(ctx context.Context, call *application.Call, tokenID, id string) (*domain.Order, error) {
	if !token.WellFormedID(id) {
		call.Fail("ORDER_ID_INVALID")
		return nil, ErrMalformedID
	}
	o, err := s.repo.Get(ctx, id)
	if err != nil {
		call.Fail("ORDER_LOAD_FAILED")
		return nil, err
	}
	if err := s.auth.Authorize(ctx, tokenID, o.Username); err != nil {
		call.Fail("UNAUTHORIZED")
		return nil, err
	}
	return o, nil
}
