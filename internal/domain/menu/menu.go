package menu

import (
	"math"
	"strings"

	"github.com/Zhima-Mochi/pizzeria/internal/pkg/apperr"
)

var (
	ErrNotFound      = apperr.New(apperr.NotFound, "menu item not found")
	ErrExists        = apperr.New(apperr.Conflict, "a menu item with that name already exists")
	ErrInvalidPrice  = apperr.New(apperr.Validation, "price must be a positive number")
	ErrInvalidWeight = apperr.New(apperr.Validation, "weight must be a positive number")
	ErrInvalidDesc   = apperr.New(apperr.Validation, "description is required")
	ErrEmptyPatch    = apperr.New(apperr.Validation, "missing fields to update")
)

type Item struct {
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Weight      float64 `json:"weight"`
	Description string  `json:"description"`
}

// Patch carries the fields of a partial update. Nil means "leave unchanged".
type Patch struct {
	Price       *float64
	Weight      *float64
	Description *string
}

func New(name string, price, weight float64, description string) (*Item, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperr.New(apperr.Validation, "name is required")
	}
	item := &Item{Name: name}
	if err := item.Apply(Patch{Price: &price, Weight: &weight, Description: &description}); err != nil {
		return nil, err
	}
	return item, nil
}

// Apply validates every supplied field and only then writes them, so a rejected
// patch leaves the item untouched.
func (i *Item) Apply(p Patch) error {
	if p.Empty() {
		return ErrEmptyPatch
	}
	if p.Price != nil && !positive(*p.Price) {
		return ErrInvalidPrice
	}
	if p.Weight != nil && !positive(*p.Weight) {
		return ErrInvalidWeight
	}
	var desc string
	if p.Description != nil {
		desc = strings.TrimSpace(*p.Description)
		if desc == "" {
			return ErrInvalidDesc
		}
	}

	if p.Price != nil {
		i.Price = *p.Price
	}
	if p.Weight != nil {
		i.Weight = *p.Weight
	}
	if p.Description != nil {
		i.Description = desc
	}
	return nil
}

func (p Patch) Empty() bool {
	return p.Price == nil && p.Weight == nil && p.Description == nil
}

func positive(v float64) bool {
	return v > 0 && !math.IsInf(v, 0) && !math.IsNaN(v)
}
