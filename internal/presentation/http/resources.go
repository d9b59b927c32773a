package httppresentation

import (
	"context"
	"strings"

	appauth "github.com/Zhima-Mochi/pizzeria/internal/application/auth"
	appcart "github.com/Zhima-Mochi/pizzeria/internal/application/cart"
	appmenu "github.com/Zhima-Mochi/pizzeria/internal/application/menu"
	apporder "github.com/Zhima-Mochi/pizzeria/internal/application/order"
	appuser "github.com/Zhima-Mochi/pizzeria/internal/application/user"
	domcart "github.com/Zhima-Mochi/pizzeria/internal/domain/cart"
	dommenu "github.com/Zhima-Mochi/pizzeria/internal/domain/menu"
	"github.com/Zhima-Mochi/pizzeria/internal/pkg/apperr"
)

const headerToken = "token"

var errMissingFields = apperr.New(apperr.Validation, "missing required fields")

// Services are the application entry points exposed over HTTP.
type Services struct {
	Auth     *appauth.Service
	Users    *appuser.Service
	Menu     *appmenu.Service
	Cart     *appcart.Service
	Checkout *apporder.CheckoutUseCase
	Orders   *apporder.Service
}

// Routes returns the full route table of the API.
func Routes(s Services) []Route {
	return []Route{
		{Path: "ping", Resource: Resource{"get": ping}},
		{Path: "api/users", Resource: Resource{
			"post":   s.createUser,
			"get":    s.getUser,
			"put":    s.updateUser,
			"delete": s.deleteUser,
		}},
		{Path: "api/tokens", Resource: Resource{
			"post":   s.createToken,
			"get":    s.getToken,
			"put":    s.renewToken,
			"delete": s.deleteToken,
		}},
		{Path: "api/menu", Resource: Resource{
			"post":   s.createMenuItem,
			"get":    s.getMenu,
			"put":    s.updateMenuItem,
			"delete": s.deleteMenuItem,
		}},
		{Path: "api/cart", Resource: Resource{
			"post":   s.createCart,
			"get":    s.getCart,
			"put":    s.updateCart,
			"delete": s.clearCart,
		}},
		{Path: "api/order", Resource: Resource{
			"post":   s.placeOrder,
			"get":    s.getOrder,
			"delete": s.deleteOrder,
		}},
	}
}

func ping(context.Context, Request) Reply { return ok(nil) }

// users

type createUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Email    string `json:"email"`
	Street   string `json:"street"`
}

func (s Services) createUser(ctx context.Context, req Request) Reply {
	var body createUserRequest
	if err := req.Bind(&body); err != nil {
		return failure(err)
	}
	p, err := s.Users.Create(ctx, appuser.CreateInput{
		Username: body.Username,
		Password: body.Password,
		Email:    body.Email,
		Street:   body.Street,
	})
	if err != nil {
		return failure(err)
	}
	return ok(p)
}

func (s Services) getUser(ctx context.Context, req Request) Reply {
	p, err := s.Users.Get(ctx, req.Token(), req.Query.Get("username"))
	if err != nil {
		return failure(err)
	}
	return ok(p)
}

type updateUserRequest struct {
	Username string  `json:"username"`
	Email    *string `json:"email"`
	Street   *string `json:"street"`
	Password *string `json:"password"`
}

func (s Services) updateUser(ctx context.Context, req Request) Reply {
	var body updateUserRequest
	if err := req.Bind(&body); err != nil {
		return failure(err)
	}
	p, err := s.Users.Update(ctx, req.Token(), appuser.UpdateInput{
		Username: body.Username,
		Email:    body.Email,
		Street:   body.Street,
		Password: body.Password,
	})
	if err != nil {
		return failure(err)
	}
	return ok(p)
}

func (s Services) deleteUser(ctx context.Context, req Request) Reply {
	if err := s.Users.Delete(ctx, req.Token(), req.Query.Get("username")); err != nil {
		return failure(err)
	}
	return ok(nil)
}

// tokens

type createTokenRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (s Services) createToken(ctx context.Context, req Request) Reply {
	var body createTokenRequest
	if err := req.Bind(&body); err != nil {
		return failure(err)
	}
	t, err := s.Auth.IssueToken(ctx, body.Username, body.Password)
	if err != nil {
		return failure(err)
	}
	return ok(t)
}

func (s Services) getToken(ctx context.Context, req Request) Reply {
	t, err := s.Auth.GetToken(ctx, strings.TrimSpace(req.Query.Get("id")))
	if err != nil {
		return failure(err)
	}
	return ok(t)
}

type renewTokenRequest struct {
	ID     string `json:"id"`
	Extend bool   `json:"extend"`
}

func (s Services) renewToken(ctx context.Context, req Request) Reply {
	var body renewTokenRequest
	if err := req.Bind(&body); err != nil {
		return failure(err)
	}
	if !body.Extend {
		return failure(errMissingFields)
	}
	t, err := s.Auth.RenewToken(ctx, strings.TrimSpace(body.ID))
	if err != nil {
		return failure(err)
	}
	return ok(t)
}

func (s Services) deleteToken(ctx context.Context, req Request) Reply {
	if err := s.Auth.Revoke(ctx, strings.TrimSpace(req.Query.Get("id"))); err != nil {
		return failure(err)
	}
	return ok(nil)
}

// menu

type menuItemRequest struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Weight      *float64 `json:"weight"`
	Description *string  `json:"description"`
}

func (s Services) createMenuItem(ctx context.Context, req Request) Reply {
	var body menuItemRequest
	if err := req.Bind(&body); err != nil {
		return failure(err)
	}
	if body.Price == nil || body.Weight == nil || body.Description == nil {
		return failure(errMissingFields)
	}
	item, err := s.Menu.Create(ctx, req.Token(), appmenu.CreateInput{
		Name:        body.Name,
		Price:       *body.Price,
		Weight:      *body.Weight,
		Description: *body.Description,
	})
	if err != nil {
		return failure(err)
	}
	return ok(item)
}

// getMenu returns one item when a name is given, otherwise the whole catalog.
func (s Services) getMenu(ctx context.Context, req Request) Reply {
	if name := strings.TrimSpace(req.Query.Get("name")); name != "" {
		item, err := s.Menu.Get(ctx, req.Token(), name)
		if err != nil {
			return failure(err)
		}
		return ok(item)
	}
	items, err := s.Menu.List(ctx, req.Token())
	if err != nil {
		return failure(err)
	}
	return ok(items)
}

func (s Services) updateMenuItem(ctx context.Context, req Request) Reply {
	var body menuItemRequest
	if err := req.Bind(&body); err != nil {
		return failure(err)
	}
	item, err := s.Menu.Update(ctx, req.Token(), body.Name, dommenu.Patch{
		Price:       body.Price,
		Weight:      body.Weight,
		Description: body.Description,
	})
	if err != nil {
		return failure(err)
	}
	return ok(item)
}

func (s Services) deleteMenuItem(ctx context.Context, req Request) Reply {
	if err := s.Menu.Delete(ctx, req.Token(), req.Query.Get("name")); err != nil {
		return failure(err)
	}
	return ok(nil)
}

// cart

type cartRequest struct {
	Items    []domcart.LineItem `json:"items"`
	Name     string             `json:"name"`
	Quantity *int               `json:"quantity"`
	Index    *int               `json:"index"`
}

func (s Services) createCart(ctx context.Context, req Request) Reply {
	var body cartRequest
	if err := req.Bind(&body); err != nil {
		return failure(err)
	}
	c, err := s.Cart.Create(ctx, req.Token(), body.Items...)
	if err != nil {
		return failure(err)
	}
	return ok(c)
}

func (s Services) getCart(ctx context.Context, req Request) Reply {
	c, err := s.Cart.Get(ctx, req.Token())
	if err != nil {
		return failure(err)
	}
	return ok(c)
}

// updateCart replaces every line when items is sent, otherwise applies a
// single line change.
func (s Services) updateCart(ctx context.Context, req Request) Reply {
	var body cartRequest
	if err := req.Bind(&body); err != nil {
		return failure(err)
	}
	var (
		c   *domcart.Cart
		err error
	)
	switch {
	case body.Items != nil:
		c, err = s.Cart.ReplaceItems(ctx, req.Token(), body.Items)
	case body.Quantity != nil:
		c, err = s.Cart.UpsertItem(ctx, req.Token(), appcart.UpsertInput{
			Name:     body.Name,
			Quantity: *body.Quantity,
			Index:    body.Index,
		})
	default:
		err = errMissingFields
	}
	if err != nil {
		return failure(err)
	}
	return ok(c)
}

func (s Services) clearCart(ctx context.Context, req Request) Reply {
	if err := s.Cart.Clear(ctx, req.Token()); err != nil {
		return failure(err)
	}
	return ok(nil)
}

// orders

type placeOrderRequest struct {
	PaymentToken string `json:"payment_token"`
}

func (s Services) placeOrder(ctx context.Context, req Request) Reply {
	var body placeOrderRequest
	if err := req.Bind(&body); err != nil {
		return failure(err)
	}
	o, err := s.Checkout.Execute(ctx, apporder.CheckoutInput{
		Token:        req.Token(),
		PaymentToken: body.PaymentToken,
	})
	if err != nil {
		return failure(err)
	}
	return ok(o)
}

func (s Services) getOrder(ctx context.Context, req Request) Reply {
	o, err := s.Orders.Get(ctx, req.Token(), req.Query.Get("id"))
	if err != nil {
		return failure(err)
	}
	return ok(o)
}

func (s Services) deleteOrder(ctx context.Context, req Request) Reply {
	if err := s.Orders.Delete(ctx, req.Token(), req.Query.Get("id")); err != nil {
		return failure(err)
	}
	return ok(nil)
}
