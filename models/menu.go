package models

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidMenuItem = errors.New("invalid menu item")
	ErrItemNotFound    = errors.New("menu item not found")
)

// MenuItem is a purchasable catalog entry.
type MenuItem struct {
	ID            string           `json:"id" bson:"_id" yaml:"id"`
	Name          string           `json:"name" bson:"name" yaml:"name"`
	Description   string           `json:"description,omitempty" bson:"description,omitempty" yaml:"description,omitempty"`
	Category      string           `json:"category" bson:"category" yaml:"category"`
	Image         string           `json:"image,omitempty" bson:"image,omitempty" yaml:"image,omitempty"`
	Thumbnail     string           `json:"thumbnail,omitempty" bson:"thumbnail,omitempty" yaml:"thumbnail,omitempty"`
	Popular       bool             `json:"popular" bson:"popular" yaml:"popular"`
	BasePrice     decimal.Decimal  `json:"basePrice" bson:"basePrice" yaml:"basePrice"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty" bson:"discountPrice,omitempty" yaml:"discountPrice,omitempty"`
	IsOnDiscount  bool             `json:"isOnDiscount" bson:"isOnDiscount" yaml:"isOnDiscount"`
	Variations    []Variation      `json:"variations,omitempty" bson:"variations,omitempty" yaml:"variations,omitempty"`
	AddOns        []AddOn          `json:"addOns,omitempty" bson:"addOns,omitempty" yaml:"addOns,omitempty"`
	Available     bool             `json:"available" bson:"available" yaml:"available"`
	CreatedAt     time.Time        `json:"createdAt,omitempty" bson:"createdAt,omitempty" yaml:"-"`
	UpdatedAt     time.Time        `json:"updatedAt,omitempty" bson:"updatedAt,omitempty" yaml:"-"`
}

// Variation is a mutually exclusive size/option choice. Price is a delta on
// top of the effective price.
type Variation struct {
	ID    string          `json:"id" bson:"id" yaml:"id"`
	Name  string          `json:"name" bson:"name" yaml:"name"`
	Price decimal.Decimal `json:"price" bson:"price" yaml:"price"`
}

// AddOn is an optional extra charged per unit selected.
type AddOn struct {
	ID       string          `json:"id" bson:"id" yaml:"id"`
	Name     string          `json:"name" bson:"name" yaml:"name"`
	Category string          `json:"category" bson:"category" yaml:"category"`
	Price    decimal.Decimal `json:"price" bson:"price" yaml:"price"`
}

// AddOnSelection is a requested add-on quantity. It only lives for the
// duration of a configuration call.
type AddOnSelection struct {
	AddOnID  string `json:"addOnId"`
	Quantity int    `json:"quantity"`
}

// EffectivePrice is the discount price when a discount is active, else the base price.
func (m MenuItem) EffectivePrice() decimal.Decimal {
	if m.IsOnDiscount && m.DiscountPrice != nil {
		return *m.DiscountPrice
	}
	return m.BasePrice
}

// DiscountPercent is the whole-number percentage taken off the base price,
// zero when no discount applies.
func (m MenuItem) DiscountPercent() int64 {
	if !m.IsOnDiscount || m.DiscountPrice == nil || !m.BasePrice.IsPositive() {
		return 0
	}
	off := m.BasePrice.Sub(*m.DiscountPrice).Div(m.BasePrice).Mul(decimal.NewFromInt(100))
	return off.Round(0).IntPart()
}

func (m MenuItem) Savings() decimal.Decimal {
	return m.BasePrice.Sub(m.EffectivePrice())
}

func (m MenuItem) FindVariation(id string) (Variation, bool) {
	for _, v := range m.Variations {
		if v.ID == id {
			return v, true
		}
	}
	return Variation{}, false
}

func (m MenuItem) FindAddOn(id string) (AddOn, bool) {
	for _, a := range m.AddOns {
		if a.ID == id {
			return a, true
		}
	}
	return AddOn{}, false
}

// AddOnGroups returns add-ons grouped by category, categories in first-seen order.
func (m MenuItem) AddOnGroups() []AddOnGroup {
	var groups []AddOnGroup
	index := map[string]int{}
	for _, a := range m.AddOns {
		i, ok := index[a.Category]
		if !ok {
			i = len(groups)
			index[a.Category] = i
			groups = append(groups, AddOnGroup{Category: a.Category})
		}
		groups[i].AddOns = append(groups[i].AddOns, a)
	}
	return groups
}

type AddOnGroup struct {
	Category string  `json:"category"`
	AddOns   []AddOn `json:"addOns"`
}

// Validate checks the catalog invariants. Prices are limited to whole cents.
func (m MenuItem) Validate() error {
	if strings.TrimSpace(m.ID) == "" {
		return errors.Wrap(ErrInvalidMenuItem, "id is required")
	}
	if strings.Contains(m.ID, "|") {
		return errors.Wrapf(ErrInvalidMenuItem, "id %q must not contain '|'", m.ID)
	}
	if name := strings.TrimSpace(m.Name); name == "" || len(name) > 100 {
		return errors.Wrap(ErrInvalidMenuItem, "name must be between 1 and 100 characters")
	}
	if m.BasePrice.IsNegative() {
		return errors.Wrap(ErrInvalidMenuItem, "base price must not be negative")
	}
	if !isCents(m.BasePrice) {
		return errors.Wrap(ErrInvalidMenuItem, "base price has more than two decimal places")
	}
	if m.DiscountPrice != nil {
		if m.DiscountPrice.IsNegative() || !isCents(*m.DiscountPrice) {
			return errors.Wrap(ErrInvalidMenuItem, "invalid discount price")
		}
		if m.IsOnDiscount && !m.DiscountPrice.LessThan(m.BasePrice) {
			return errors.Wrap(ErrInvalidMenuItem, "discount price must be lower than base price")
		}
	}

	seen := map[string]bool{}
	for _, v := range m.Variations {
		if v.ID == "" || seen[v.ID] {
			return errors.Wrapf(ErrInvalidMenuItem, "variation id %q is empty or duplicated", v.ID)
		}
		if !isCents(v.Price) {
			return errors.Wrapf(ErrInvalidMenuItem, "variation %q price has more than two decimal places", v.ID)
		}
		seen[v.ID] = true
	}

	seen = map[string]bool{}
	for _, a := range m.AddOns {
		if a.ID == "" || seen[a.ID] {
			return errors.Wrapf(ErrInvalidMenuItem, "add-on id %q is empty or duplicated", a.ID)
		}
		if a.Price.IsNegative() || !isCents(a.Price) {
			return errors.Wrapf(ErrInvalidMenuItem, "add-on %q has an invalid price", a.ID)
		}
		seen[a.ID] = true
	}
	return nil
}

// PricedInCents reports whether every price on the item is a whole number
// of cents.
func (m MenuItem) PricedInCents() bool {
	if !isCents(m.BasePrice) {
		return false
	}
	if m.DiscountPrice != nil && !isCents(*m.DiscountPrice) {
		return false
	}
	for _, v := range m.Variations {
		if !isCents(v.Price) {
			return false
		}
	}
	for _, a := range m.AddOns {
		if !isCents(a.Price) {
			return false
		}
	}
	return true
}

func isCents(d decimal.Decimal) bool {
	return d.Equal(d.Round(2))
}
