package pricing

import "github.com/shopspring/decimal"

// Places is the number of fraction digits shown for money.
const Places = 2

// Round applies the single display rounding rule used for totals and subtotals.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Format renders an amount with the currency symbol, e.g. "₱100.00".
func Format(symbol string, d decimal.Decimal) string {
	return symbol + Round(d).StringFixed(Places)
}

// Sum folds amounts without intermediate rounding.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
