package cart

import (
	"net/url"
	"sort"
	"strconv"
	"strings"

	"servecart/models"
)

// LineKey builds the identity of a configured item. Add-on order does not
// matter; a plain item with neither variation nor add-ons is keyed by its
// menu item id alone.
func LineKey(itemID string, variation *models.Variation, addOns []models.SelectedAddOn) string {
	if variation == nil && len(addOns) == 0 {
		return itemID
	}

	variationID := "none"
	if variation != nil {
		variationID = url.QueryEscape(variation.ID)
	}

	pairs := make([]string, 0, len(addOns))
	for _, a := range addOns {
		pairs = append(pairs, url.QueryEscape(a.ID)+":"+strconv.Itoa(a.Quantity))
	}
	sort.Strings(pairs)

	return url.QueryEscape(itemID) + "|" + variationID + "|" + strings.Join(pairs, ",")
}
