package cart

import (
	"slices"
	"strings"
	"time"

	"github.com/Zhima-Mochi/pizzeria/internal/pkg/apperr"
)

var (
	ErrNotFound        = apperr.New(apperr.NotFound, "the user has no cart")
	ErrExists          = apperr.New(apperr.Conflict, "a cart for the specified user already exists")
	ErrInvalidQuantity = apperr.New(apperr.Validation, "quantity must be a positive integer")
	ErrInvalidIndex    = apperr.New(apperr.Validation, "line item index is out of range")
	ErrMissingName     = apperr.New(apperr.Validation, "menu item name is required")
)

type Status string

const (
	StatusCreated  Status = "created"
	StatusModified Status = "modified"
)

type LineItem struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Cart is keyed by its owner; a user holds at most one at a time.
type Cart struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Items     []LineItem `json:"items"`
	Status    Status     `json:"status"`
	Total     float64    `json:"total"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func New(id, username string) *Cart {
	now := time.Now().UTC()
	return &Cart{
		ID:        id,
		Username:  username,
		Items:     []LineItem{},
		Status:    StatusCreated,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidateItems checks a full list of line items.
func ValidateItems(items []LineItem) ([]LineItem, error) {
	out := make([]LineItem, 0, len(items))
	for _, it := range items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			return nil, ErrMissingName
		}
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		out = append(out, LineItem{Name: name, Quantity: it.Quantity})
	}
	return out, nil
}

// Upsert applies a single line-item change:
//   - index set, quantity 0: remove the line at index
//   - index set, quantity > 0: replace the line at index
//   - no index: append a new line
func (c *Cart) Upsert(name string, quantity int, index *int) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if index != nil {
		i := *index
		if i < 0 || i >= len(c.Items) {
			return ErrInvalidIndex
		}
		if quantity == 0 {
			c.Items = slices.Delete(c.Items, i, i+1)
			c.modified()
			return nil
		}
	}

	line, err := ValidateItems([]LineItem{{Name: name, Quantity: quantity}})
	if err != nil {
		return err
	}
	if index != nil {
		c.Items[*index] = line[0]
	} else {
		c.Items = append(c.Items, line[0])
	}
	c.modified()
	return nil
}

// SetItems replaces every line item.
func (c *Cart) SetItems(items []LineItem) error {
	valid, err := ValidateItems(items)
	if err != nil {
		return err
	}
	c.Items = valid
	c.modified()
	return nil
}

// Recalculate sets Total to the sum of price*quantity over the lines whose name
// resolves in prices. It returns the names that did not resolve; they add nothing.
func (c *Cart) Recalculate(prices map[string]float64) []string {
	var total float64
	var unresolved []string
	for _, it := range c.Items {
		price, ok := prices[it.Name]
		if !ok {
			unresolved = append(unresolved, it.Name)
			continue
		}
		total += price * float64(it.Quantity)
	}
	c.Total = total
	return unresolved
}

// Snapshot returns a deep copy suitable for embedding in an order.
func (c *Cart) Snapshot() Cart {
	cp := *c
	cp.Items = slices.Clone(c.Items)
	return cp
}

func (c *Cart) modified() {
	c.Status = StatusModified
	c.UpdatedAt = time.Now().UTC()
}
