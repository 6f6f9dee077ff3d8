package pricing

import (
	"strings"

	"servecart/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// VariationPolicy decides what happens when an item that has variations is
// configured without one.
type VariationPolicy int

const (
	// FirstVariation falls back to the first listed variation.
	FirstVariation VariationPolicy = iota
	// RequireVariation rejects the configuration.
	RequireVariation
)

func (p VariationPolicy) String() string {
	switch p {
	case RequireVariation:
		return "require"
	default:
		return "first"
	}
}

// ParseVariationPolicy accepts "first" or "require". Empty means "first".
func ParseVariationPolicy(s string) (VariationPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "first":
		return FirstVariation, nil
	case "require":
		return RequireVariation, nil
	}
	return FirstVariation, errors.Wrapf(ErrUnknownVariationPolicy, "%q", s)
}

// MaxQuantity caps a line quantity and a single add-on quantity.
const MaxQuantity = 999

type options struct {
	policy VariationPolicy
}

type Option func(*options)

func WithVariationPolicy(p VariationPolicy) Option {
	return func(o *options) { o.policy = p }
}

// Configuration is a fully validated, priced choice for one menu item.
type Configuration struct {
	Item      models.MenuItem
	Variation *models.Variation
	AddOns    []models.SelectedAddOn
	UnitPrice decimal.Decimal
}

// Configure validates the customer's choices against the item and computes
// the unit price:
//
//	effective price + variation delta + Σ(add-on price × quantity)
//
// Selections for the same add-on are summed and zero quantities dropped.
// The returned add-ons follow the item's add-on order.
func Configure(item models.MenuItem, variationID string, selections []models.AddOnSelection, opts ...Option) (Configuration, error) {
	o := options{policy: FirstVariation}
	for _, opt := range opts {
		opt(&o)
	}

	if !item.Available {
		return Configuration{}, errors.Wrapf(ErrItemUnavailable, "%s", item.ID)
	}
	if !item.PricedInCents() {
		return Configuration{}, errors.Wrapf(ErrInvalidConfiguration, "%s has a price finer than cents", item.ID)
	}

	cfg := Configuration{Item: item}

	variation, err := pickVariation(item, variationID, o.policy)
	if err != nil {
		return Configuration{}, err
	}
	cfg.Variation = variation

	qty := make(map[string]int, len(selections))
	for _, s := range selections {
		if s.Quantity < 0 {
			return Configuration{}, errors.Wrapf(ErrInvalidConfiguration, "add-on %q has negative quantity %d", s.AddOnID, s.Quantity)
		}
		if _, ok := item.FindAddOn(s.AddOnID); !ok {
			return Configuration{}, errors.Wrapf(ErrInvalidConfiguration, "add-on %q is not offered for %s", s.AddOnID, item.ID)
		}
		if s.Quantity > MaxQuantity {
			return Configuration{}, errors.Wrapf(ErrInvalidConfiguration, "add-on %q quantity %d exceeds %d", s.AddOnID, s.Quantity, MaxQuantity)
		}
		qty[s.AddOnID] += s.Quantity
		if qty[s.AddOnID] > MaxQuantity {
			return Configuration{}, errors.Wrapf(ErrInvalidConfiguration, "add-on %q quantity exceeds %d", s.AddOnID, MaxQuantity)
		}
	}

	unit := item.EffectivePrice()
	if variation != nil {
		unit = unit.Add(variation.Price)
	}
	for _, a := range item.AddOns {
		n := qty[a.ID]
		if n == 0 {
			continue
		}
		cfg.AddOns = append(cfg.AddOns, models.SelectedAddOn{AddOn: a, Quantity: n})
		unit = unit.Add(a.Price.Mul(decimal.NewFromInt(int64(n))))
	}

	if unit.IsNegative() {
		return Configuration{}, errors.Wrapf(ErrInvalidConfiguration, "unit price %s is negative", unit)
	}
	cfg.UnitPrice = unit
	return cfg, nil
}

func pickVariation(item models.MenuItem, id string, policy VariationPolicy) (*models.Variation, error) {
	if id == "" {
		if len(item.Variations) == 0 {
			return nil, nil
		}
		if policy == RequireVariation {
			return nil, errors.Wrapf(ErrInvalidConfiguration, "%s requires a variation", item.ID)
		}
		v := item.Variations[0]
		return &v, nil
	}
	v, ok := item.FindVariation(id)
	if !ok {
		return nil, errors.Wrapf(ErrInvalidConfiguration, "variation %q is not offered for %s", id, item.ID)
	}
	return &v, nil
}
