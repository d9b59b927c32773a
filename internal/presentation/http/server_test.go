package httppresentation

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appauth "github.com/Zhima-Mochi/pizzeria/internal/application/auth"
	appcart "github.com/Zhima-Mochi/pizzeria/internal/application/cart"
	appmenu "github.com/Zhima-Mochi/pizzeria/internal/application/menu"
	apporder "github.com/Zhima-Mochi/pizzeria/internal/application/order"
	appuser "github.com/Zhima-Mochi/pizzeria/internal/application/user"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/docrepo"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/id"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/memory"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/notification/logmail"
	"github.com/Zhima-Mochi/pizzeria/internal/infrastructure/payment/simulated"
	"github.com/Zhima-Mochi/pizzeria/internal/observability"
	"github.com/Zhima-Mochi/pizzeria/internal/observability/observabilitytest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testAPI struct {
	t   *testing.T
	srv *httptest.Server
	rec *observabilitytest.Recorder
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	rec := observabilitytest.New()
	store := memory.NewDocuments()
	users := docrepo.NewUserRepository(store)
	tokens := docrepo.NewTokenRepository(store)
	carts := docrepo.NewCartRepository(store)
	orders := docrepo.NewOrderRepository(store)
	ids := id.NewRandomGenerator(20)
	hasher := appauth.NewHasher("test-secret")

	auth := appauth.NewService(users, tokens, hasher, ids, rec, appauth.Options{})
	menu := appmenu.NewService(docrepo.NewMenuRepository(store), auth, nil, rec)
	services := Services{
		Auth:  auth,
		Users: appuser.NewService(users, hasher, auth, nil, rec),
		Menu:  menu,
		Cart:  appcart.NewService(carts, users, auth, menu, ids, rec),
		Checkout: apporder.NewCheckoutUseCase(auth, carts, users, orders,
			simulated.New(1, rec.Logger()), logmail.New(rec.Logger()), ids, nil, rec, apporder.CheckoutOptions{}),
		Orders: apporder.NewService(orders, auth, rec),
	}

	srv := httptest.NewServer(NewServer(NewDispatcher(Routes(services)...), rec).Handler())
	t.Cleanup(srv.Close)
	return &testAPI{t: t, srv: srv, rec: rec}
}

func (a *testAPI) do(method, path, token string, body any) (int, map[string]any) {
	a.t.Helper()
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		var err error
		payload, err = json.Marshal(b)
		require.NoError(a.t, err)
	}
	req, err := http.NewRequest(method, a.srv.URL+path, bytes.NewReader(payload))
	require.NoError(a.t, err)
	if token != "" {
		req.Header.Set("token", token)
	}
	resp, err := a.srv.Client().Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	assert.Equal(a.t, "application/json", resp.Header.Get("Content-Type"))
	assert.NotEmpty(a.t, resp.Header.Get(headerRequestID))

	var out map[string]any
	require.NoError(a.t, json.NewDecoder(resp.Body).Decode(&out))
	return resp.StatusCode, out
}

func (a *testAPI) signUp(username string) string {
	a.t.Helper()
	status, _ := a.do(http.MethodPost, "/api/users", "", map[string]any{
		"username": username, "password": "pw123", "email": "a@b.com", "street": "Main St",
	})
	require.Equal(a.t, http.StatusOK, status)
	status, tok := a.do(http.MethodPost, "/api/tokens", "", map[string]any{"username": username, "password": "pw123"})
	require.Equal(a.t, http.StatusOK, status)
	return tok["id"].(string)
}

func TestServerCheckoutFlow(t *testing.T) {
	api := newTestAPI(t)
	tok := api.signUp("alice")
	require.Len(t, tok, 20)

	status, _ := api.do(http.MethodPost, "/api/menu", tok, map[string]any{
		"name": "Margherita", "price": 10, "weight": 300, "description": "classic",
	})
	require.Equal(t, http.StatusOK, status)

	status, c := api.do(http.MethodPost, "/api/cart", tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, c["id"], 20)

	status, c = api.do(http.MethodPut, "/api/cart", tok, map[string]any{"name": "Margherita", "quantity": 2})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 20.0, c["total"])
	assert.Equal(t, "modified", c["status"])

	status, o := api.do(http.MethodPost, "/api/order", tok, map[string]any{"payment_token": "tok_visa"})
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 20.0, o["total"])
	orderID := o["id"].(string)

	status, _ = api.do(http.MethodGet, "/api/cart", tok, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status, profile := api.do(http.MethodGet, "/api/users?username=alice", tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, []any{orderID}, profile["orders"])
	assert.NotContains(t, profile, "hashed_password")

	status, fetched := api.do(http.MethodGet, "/api/order?id="+orderID, tok, nil)
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, orderID, fetched["id"])

	assert.Equal(t, 1.0, api.rec.Count(observability.MHTTPRequests,
		observability.L("method", http.MethodPost),
		observability.L("route", "/api/order"),
		observability.L("status", "200"),
	))
	assert.NotEmpty(t, api.rec.Entries("http_access"))
}

func TestServerSignUpWithPaddedPassword(t *testing.T) {
	api := newTestAPI(t)
	status, _ := api.do(http.MethodPost, "/api/users", "", map[string]any{
		"username": "carol", "password": "pw123 ", "email": "c@b.com", "street": "Main St",
	})
	require.Equal(t, http.StatusOK, status)

	status, tok := api.do(http.MethodPost, "/api/tokens", "", map[string]any{"username": "carol", "password": "pw123 "})
	require.Equal(t, http.StatusOK, status)
	assert.Len(t, tok["id"], 20)

	status, _ = api.do(http.MethodPost, "/api/tokens", "", map[string]any{"username": "carol", "password": " pw123"})
	assert.Equal(t, http.StatusOK, status)
}

func TestServerErrorReplies(t *testing.T) {
	api := newTestAPI(t)
	tok := api.signUp("bob")

	status, body := api.do(http.MethodGet, "/api/unknown", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "not found", body["error"])

	status, _ = api.do(http.MethodPatch, "/api/cart", tok, nil)
	assert.Equal(t, http.StatusMethodNotAllowed, status)

	status, _ = api.do(http.MethodPost, "/api/users", "", map[string]any{
		"username": "bob", "password": "pw123", "email": "a@b.com", "street": "Main St",
	})
	assert.Equal(t, http.StatusConflict, status)

	status, _ = api.do(http.MethodPost, "/api/tokens", "", map[string]any{"username": "bob", "password": "wrong"})
	assert.Equal(t, http.StatusForbidden, status)

	status, _ = api.do(http.MethodGet, "/api/users?username=bob", "", nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = api.do(http.MethodPost, "/api/order", tok, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.NotEmpty(t, body["error"])

	status, _ = api.do(http.MethodPost, "/api/order", tok, map[string]any{"payment_token": "tok_visa"})
	assert.Equal(t, http.StatusNotFound, status)
}

func TestServerTreatsInvalidJSONAsEmptyObject(t *testing.T) {
	api := newTestAPI(t)

	status, body := api.do(http.MethodPost, "/api/users", "", "{not json")

	assert.Equal(t, http.StatusBadRequest, status)
	assert.True(t, strings.Contains(body["error"].(string), "missing"))
}

func TestServerPing(t *testing.T) {
	api := newTestAPI(t)

	status, body := api.do(http.MethodGet, "/ping", "", nil)

	assert.Equal(t, http.StatusOK, status)
	assert.Empty(t, body)
}

func TestServerEchoesRequestID(t *testing.T) {
	api := newTestAPI(t)
	req, err := http.NewRequest(http.MethodGet, api.srv.URL+"/ping", nil)
	require.NoError(t, err)
	req.Header.Set(headerRequestID, "req-123")

	resp, err := api.srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "req-123", resp.Header.Get(headerRequestID))
}

func TestServerWritesPlainReplies(t *testing.T) {
	d := NewDispatcher(Route{Path: "health", Resource: Resource{"get": func(context.Context, Request) Reply {
		return Reply{Status: http.StatusOK, Body: "ok", Kind: KindPlain}
	}}})
	srv := httptest.NewServer(NewServer(d, observabilitytest.New()).Handler())
	t.Cleanup(srv.Close)

	resp, err := srv.Client().Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "text/plain; charset=utf-8", resp.Header.Get("Content-Type"))
	assert.Equal(t, "ok", string(raw))
}
