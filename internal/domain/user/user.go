package user

import (
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/Zhima-Mochi/pizzeria/internal/pkg/apperr"
)

var (
	ErrNotFound     = apperr.New(apperr.NotFound, "user not found")
	ErrExists       = apperr.New(apperr.Conflict, "a user with that username already exists")
	ErrInvalidEmail = apperr.New(apperr.Validation, "email is invalid")
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@([^\s@.,]+\.)+[^\s@.,]{2,}$`)

type User struct {
	Username       string    `json:"username"`
	Email          string    `json:"email"`
	Street         string    `json:"street"`
	HashedPassword string    `json:"hashed_password"`
	CartID         string    `json:"cart_id,omitempty"`
	Orders         []string  `json:"orders,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Profile is the public view of a user; it never carries the password hash.
type Profile struct {
	Username string   `json:"username"`
	Email    string   `json:"email"`
	Street   string   `json:"street"`
	CartID   string   `json:"cart_id,omitempty"`
	Orders   []string `json:"orders"`
}

func New(username, email, street, hashedPassword string) (*User, error) {
	if username == "" {
		return nil, apperr.New(apperr.Validation, "username is required")
	}
	if !ValidEmail(email) {
		return nil, ErrInvalidEmail
	}
	if street == "" {
		return nil, apperr.New(apperr.Validation, "street is required")
	}
	if hashedPassword == "" {
		return nil, apperr.New(apperr.Validation, "password is required")
	}
	now := time.Now().UTC()
	return &User{
		Username:       username,
		Email:          email,
		Street:         street,
		HashedPassword: hashedPassword,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// ValidEmail applies the signup email rule.
func ValidEmail(email string) bool {
	return emailPattern.MatchString(strings.TrimSpace(email))
}

func (u *User) Profile() Profile {
	orders := u.Orders
	if orders == nil {
		orders = []string{}
	}
	return Profile{
		Username: u.Username,
		Email:    u.Email,
		Street:   u.Street,
		CartID:   u.CartID,
		Orders:   slices.Clone(orders),
	}
}

func (u *User) LinkCart(cartID string) {
	u.CartID = cartID
	u.touch()
}

func (u *User) UnlinkCart() {
	u.CartID = ""
	u.touch()
}

func (u *User) AppendOrder(orderID string) {
	u.Orders = append(u.Orders, orderID)
	u.touch()
}

func (u *User) SetEmail(email string) error {
	if !ValidEmail(email) {
		return ErrInvalidEmail
	}
	u.Email = email
	u.touch()
	return nil
}

func (u *User) SetStreet(street string) error {
	if street == "" {
		return apperr.New(apperr.Validation, "street is required")
	}
	u.Street = street
	u.touch()
	return nil
}

func (u *User) SetPasswordHash(hash string) {
	u.HashedPassword = hash
	u.touch()
}

func (u *User) touch() {
	u.UpdatedAt = time.Now().UTC()
}
