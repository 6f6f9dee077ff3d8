package pricing

import (
	"math"
	"testing"

	"servecart/models"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, money(want).Equal(got), "expected %s, got %s", want, got)
}

func latte() models.MenuItem {
	discount := money("80")
	return models.MenuItem{
		ID:            "latte",
		Name:          "Latte",
		BasePrice:     money("100"),
		DiscountPrice: &discount,
		IsOnDiscount:  true,
		Available:     true,
		Variations: []models.Variation{
			{ID: "reg", Name: "Regular", Price: money("0")},
			{ID: "lg", Name: "Large", Price: money("20")},
		},
		AddOns: []models.AddOn{
			{ID: "shot", Name: "Extra Shot", Category: "coffee", Price: money("15")},
			{ID: "oat", Name: "Oat Milk", Category: "milk", Price: money("10")},
		},
	}
}

func TestConfigureDiscountWithVariation(t *testing.T) {
	cfg, err := Configure(latte(), "lg", nil)
	require.NoError(t, err)
	require.NotNil(t, cfg.Variation)
	assert.Equal(t, "Large", cfg.Variation.Name)
	assertMoney(t, "100", cfg.UnitPrice)
}

func TestConfigureAddOnMultiplication(t *testing.T) {
	item := models.MenuItem{
		ID:        "toast",
		Name:      "Toast",
		BasePrice: money("50"),
		Available: true,
		AddOns:    []models.AddOn{{ID: "jam", Name: "Jam", Price: money("10")}},
	}

	cfg, err := Configure(item, "", []models.AddOnSelection{{AddOnID: "jam", Quantity: 3}})
	require.NoError(t, err)
	assertMoney(t, "80", cfg.UnitPrice)
	require.Len(t, cfg.AddOns, 1)
	assert.Equal(t, 3, cfg.AddOns[0].Quantity)
}

func TestConfigureMergesAndOrdersSelections(t *testing.T) {
	cfg, err := Configure(latte(), "reg", []models.AddOnSelection{
		{AddOnID: "oat", Quantity: 1},
		{AddOnID: "shot", Quantity: 1},
		{AddOnID: "shot", Quantity: 1},
		{AddOnID: "oat", Quantity: 0},
	})
	require.NoError(t, err)

	require.Len(t, cfg.AddOns, 2)
	assert.Equal(t, "shot", cfg.AddOns[0].ID)
	assert.Equal(t, 2, cfg.AddOns[0].Quantity)
	assert.Equal(t, "oat", cfg.AddOns[1].ID)
	// 80 + 0 + 15×2 + 10
	assertMoney(t, "120", cfg.UnitPrice)
}

func TestConfigureDropsZeroQuantity(t *testing.T) {
	cfg, err := Configure(latte(), "reg", []models.AddOnSelection{{AddOnID: "shot", Quantity: 0}})
	require.NoError(t, err)
	assert.Empty(t, cfg.AddOns)
	assertMoney(t, "80", cfg.UnitPrice)
}

func TestConfigureDefaultVariation(t *testing.T) {
	cfg, err := Configure(latte(), "", nil)
	require.NoError(t, err)
	require.NotNil(t, cfg.Variation)
	assert.Equal(t, "reg", cfg.Variation.ID)

	_, err = Configure(latte(), "", nil, WithVariationPolicy(RequireVariation))
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestConfigureRejects(t *testing.T) {
	plain := models.MenuItem{ID: "water", Name: "Water", BasePrice: money("20"), Available: true}
	unavailable := latte()
	unavailable.Available = false
	subCent := plain
	subCent.BasePrice = decimal.NewFromFloat(0.335)

	cases := []struct {
		name      string
		item      models.MenuItem
		variation string
		sel       []models.AddOnSelection
		want      error
	}{
		{"unavailable item", unavailable, "reg", nil, ErrItemUnavailable},
		{"unknown variation", latte(), "xl", nil, ErrInvalidConfiguration},
		{"variation on plain item", plain, "lg", nil, ErrInvalidConfiguration},
		{"unknown add-on", latte(), "reg", []models.AddOnSelection{{AddOnID: "syrup", Quantity: 1}}, ErrInvalidConfiguration},
		{"negative add-on quantity", latte(), "reg", []models.AddOnSelection{{AddOnID: "shot", Quantity: -1}}, ErrInvalidConfiguration},
		{"add-on quantity above cap", latte(), "reg", []models.AddOnSelection{{AddOnID: "shot", Quantity: MaxQuantity + 1}}, ErrInvalidConfiguration},
		{"summed add-on quantity above cap", latte(), "reg", []models.AddOnSelection{
			{AddOnID: "shot", Quantity: math.MaxInt},
			{AddOnID: "shot", Quantity: math.MaxInt},
			{AddOnID: "shot", Quantity: 3},
		}, ErrInvalidConfiguration},
		{"repeated selections above cap", latte(), "reg", []models.AddOnSelection{
			{AddOnID: "oat", Quantity: MaxQuantity},
			{AddOnID: "oat", Quantity: 1},
		}, ErrInvalidConfiguration},
		{"price finer than cents", subCent, "", nil, ErrInvalidConfiguration},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Configure(tc.item, tc.variation, tc.sel)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}

func TestConfigureNegativeUnitPrice(t *testing.T) {
	item := models.MenuItem{
		ID:         "promo",
		Name:       "Promo",
		BasePrice:  money("10"),
		Available:  true,
		Variations: []models.Variation{{ID: "mini", Name: "Mini", Price: money("-15")}},
	}
	_, err := Configure(item, "mini", nil)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))
}

func TestParseVariationPolicy(t *testing.T) {
	p, err := ParseVariationPolicy("")
	require.NoError(t, err)
	assert.Equal(t, FirstVariation, p)

	p, err = ParseVariationPolicy("Require")
	require.NoError(t, err)
	assert.Equal(t, RequireVariation, p)
	assert.Equal(t, "require", p.String())

	_, err = ParseVariationPolicy("random")
	assert.True(t, errors.Is(err, ErrUnknownVariationPolicy))
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "₱300.00", Format("₱", money("300")))
	assert.Equal(t, "$0.34", Format("$", money("0.335")))
	assertMoney(t, "10.5", Sum(money("3.25"), money("7.25")))
}
