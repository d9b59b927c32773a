package cart

import (
	"context"
	"testing"

	domain "github.com/Zhima-Mochi/pizzeria/internal/domain/cart"
	"github.com/Zhima-Mochi/pizzeria/internal/domain/token"
	domuser "github.com/Zhima-Mochi/pizzeria/internal/domain/user"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/docrepo"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/id"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/pizzeria/internal/observability/observabilitytest"
	"github.com/Zhima-Mochi/pizzeria/internal/pkg/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const aliceToken = "alicealicealicealice"

type staticTokens map[string]string

func (s staticTokens) Resolve(_ context.Context, id string) (string, error) {
	if u, ok := s[id]; ok {
		return u, nil
	}
	return "", token.ErrInvalid
}

type staticPrices map[string]float64

func (p staticPrices) Prices(context.Context) (map[string]float64, error) { return p, nil }

type fixture struct {
	svc   *Service
	users *docrepo.UserRepository
	carts *docrepo.CartRepository
	rec   *observabilitytest.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewDocuments()
	f := &fixture{
		users: docrepo.NewUserRepository(store),
		carts: docrepo.NewCartRepository(store),
		rec:   observabilitytest.New(),
	}
	u, err := domuser.New("alice", "a@b.com", "Main St", "hash")
	require.NoError(t, err)
	require.NoError(t, f.users.Insert(context.Background(), u))

	prices := staticPrices{"Margherita": 10, "Diavola": 12.5}
	f.svc = NewService(f.carts, f.users, staticTokens{aliceToken: "alice"}, prices,
		id.NewRandomGenerator(token.IDLength), f.rec)
	return f
}

func ptr[T any](v T) *T { return &v }

func TestCreateLinksUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.Create(ctx, aliceToken)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Equal(t, domain.StatusCreated, c.Status)
	assert.Zero(t, c.Total)

	u, err := f.users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, c.ID, u.CartID)

	_, err = f.svc.Create(ctx, aliceToken)
	assert.ErrorIs(t, err, apperr.Conflict)
}

func TestCreateWithItems(t *testing.T) {
	f := newFixture(t)
	c, err := f.svc.Create(context.Background(), aliceToken,
		domain.LineItem{Name: "Margherita", Quantity: 1},
		domain.LineItem{Name: "Diavola", Quantity: 2},
	)
	require.NoError(t, err)
	assert.Equal(t, 35.0, c.Total)
}

func TestCreateRequiresToken(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Create(context.Background(), "nonenonenonenonenone")
	assert.ErrorIs(t, err, apperr.Auth)
}

func TestUpsertItem(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, aliceToken)
	require.NoError(t, err)

	c, err := f.svc.UpsertItem(ctx, aliceToken, UpsertInput{Name: "Margherita", Quantity: 2})
	require.NoError(t, err)
	assert.Equal(t, 20.0, c.Total)
	assert.Equal(t, domain.StatusModified, c.Status)

	c, err = f.svc.UpsertItem(ctx, aliceToken, UpsertInput{Name: "Diavola", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 32.5, c.Total)

	c, err = f.svc.UpsertItem(ctx, aliceToken, UpsertInput{Name: "Diavola", Quantity: 2, Index: ptr(1)})
	require.NoError(t, err)
	assert.Equal(t, 45.0, c.Total)
	require.Len(t, c.Items, 2)

	c, err = f.svc.UpsertItem(ctx, aliceToken, UpsertInput{Quantity: 0, Index: ptr(0)})
	require.NoError(t, err)
	assert.Equal(t, []domain.LineItem{{Name: "Diavola", Quantity: 2}}, c.Items)
	assert.Equal(t, 25.0, c.Total)

	stored, err := f.carts.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, c.Total, stored.Total)
}

func TestUpsertItemRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpsertItem(ctx, aliceToken, UpsertInput{Name: "Margherita", Quantity: 1})
	assert.ErrorIs(t, err, apperr.NotFound)

	_, err = f.svc.Create(ctx, aliceToken)
	require.NoError(t, err)

	_, err = f.svc.UpsertItem(ctx, aliceToken, UpsertInput{Name: "Margherita", Quantity: 0})
	assert.ErrorIs(t, err, apperr.Validation)
	_, err = f.svc.UpsertItem(ctx, aliceToken, UpsertInput{Name: "Margherita", Quantity: 1, Index: ptr(3)})
	assert.ErrorIs(t, err, domain.ErrInvalidIndex)
}

func TestUnresolvedItemsCountZeroAndAreLogged(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, aliceToken)
	require.NoError(t, err)

	_, err = f.svc.UpsertItem(ctx, aliceToken, UpsertInput{Name: "Margherita", Quantity: 1})
	require.NoError(t, err)
	c, err := f.svc.UpsertItem(ctx, aliceToken, UpsertInput{Name: "Hawaiian", Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 10.0, c.Total)
	assert.Len(t, c.Items, 2)

	logged := f.rec.Entries("cart_item_unresolved")
	require.Len(t, logged, 1)
	assert.Equal(t, "Hawaiian", logged[0].Fields["item"])
}

func TestReplaceItems(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, aliceToken, domain.LineItem{Name: "Margherita", Quantity: 1})
	require.NoError(t, err)

	c, err := f.svc.ReplaceItems(ctx, aliceToken, []domain.LineItem{{Name: "Diavola", Quantity: 4}})
	require.NoError(t, err)
	assert.Equal(t, 50.0, c.Total)

	_, err = f.svc.ReplaceItems(ctx, aliceToken, []domain.LineItem{{Name: "", Quantity: 1}})
	assert.ErrorIs(t, err, apperr.Validation)
}

func TestClear(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.svc.Create(ctx, aliceToken)
	require.NoError(t, err)

	require.NoError(t, f.svc.Clear(ctx, aliceToken))
	_, err = f.svc.Get(ctx, aliceToken)
	assert.ErrorIs(t, err, apperr.NotFound)

	u, err := f.users.Get(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, u.CartID)

	assert.ErrorIs(t, f.svc.Clear(ctx, aliceToken), apperr.NotFound)
}
