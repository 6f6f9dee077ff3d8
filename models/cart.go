package models

import "github.com/shopspring/decimal"

// CartLine is one configured, priced row of a cart. Variation and add-ons
// are snapshots taken when the line was configured.
type CartLine struct {
	ID         string          `json:"id"`
	MenuItemID string          `json:"menuItemId"`
	Name       string          `json:"name"`
	Variation  *Variation      `json:"selectedVariation,omitempty"`
	AddOns     []SelectedAddOn `json:"selectedAddOns,omitempty"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int             `json:"quantity"`
}

// SelectedAddOn is an add-on snapshot with a quantity of at least 1.
type SelectedAddOn struct {
	AddOn
	Quantity int `json:"quantity"`
}

// Subtotal is unitPrice × quantity, unrounded.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
