package models

import "time"

// SiteSettings holds the storefront values shown to customers and used in
// order summaries.
type SiteSettings struct {
	SiteName         string    `json:"site_name" bson:"site_name"`
	SiteDescription  string    `json:"site_description" bson:"site_description"`
	SiteLogo         string    `json:"site_logo" bson:"site_logo"`
	Currency         string    `json:"currency" bson:"currency"`
	CurrencyCode     string    `json:"currency_code" bson:"currency_code"`
	PlaceholderImage string    `json:"placeholder_image" bson:"placeholder_image"`
	MessengerURL     string    `json:"messenger_url" bson:"messenger_url"`
	UpdatedAt        time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
}
