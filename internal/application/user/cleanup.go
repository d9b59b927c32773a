package user

import (
	"context"
	"errors"

	"github.com/Zhima-Mochi/pizzeria/internal/application"
	domcart "github.com/Zhima-Mochi/pizzeria/internal/domain/cart"
	domain "github.com/Zhima-Mochi/pizzeria/internal/domain/user"
	"github.com/Zhima-Mochi/pizzeria/internal/observability"

	"go.opentelemetry.io/otel/attribute"
)

const (
	cleanupService = "user-cleanup"
	useCaseCleanup = "user.cleanup"
)

type TokenRevoker interface {
	RevokeAllFor(ctx context.Context, username string) (int, error)
}

// CleanupUseCase removes the cart and tokens left behind by a deleted account.
type CleanupUseCase struct {
	carts  domcart.Repository
	tokens TokenRevoker
	obs    application.Instruments
}

var _ application.UseCase[domain.DeletedEvent, struct{}] = (*CleanupUseCase)(nil)

func NewCleanupUseCase(carts domcart.Repository, tokens TokenRevoker, tel observability.Observability) *CleanupUseCase {
	return &CleanupUseCase{
		carts:  carts,
		tokens: tokens,
		obs:    application.NewInstruments(tel, cleanupService),
	}
}

func (uc *CleanupUseCase) Execute(ctx context.Context, evt domain.DeletedEvent) (_ struct{}, err error) {
	ctx, call := uc.obs.Begin(ctx, useCaseCleanup, "CleanupUser",
		attribute.String("user.name", evt.Username),
	)
	defer func() { call.End(err) }()

	if err := uc.carts.Delete(ctx, evt.Username); err != nil && !errors.Is(err, domcart.ErrNotFound) {
		call.Fail("CART_DELETE_FAILED")
		return struct{}{}, err
	}
	n, err := uc.tokens.RevokeAllFor(ctx, evt.Username)
	call.Add(observability.F("tokens_revoked", n))
	if err != nil {
		call.Fail("TOKEN_REVOKE_FAILED")
		return struct{}{}, err
	}
	return struct{}{}, nil
}
