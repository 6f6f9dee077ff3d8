package models

import "github.com/pkg/errors"

var ErrPaymentMethodNotFound = errors.New("payment method not found")

// BookingDetails is the customer metadata collected at checkout.
type BookingDetails struct {
	CustomerName    string `json:"customerName"`
	ContactNumber   string `json:"contactNumber"`
	BookingDate     string `json:"bookingDate"` // YYYY-MM-DD
	BookingTime     string `json:"bookingTime"`
	Notes           string `json:"notes,omitempty"`
	PaymentMethodID string `json:"paymentMethod"`
}

// PaymentMethod describes where a customer sends payment before the order is confirmed.
type PaymentMethod struct {
	ID            string `json:"id" bson:"_id" yaml:"id"`
	Name          string `json:"name" bson:"name" yaml:"name"`
	AccountNumber string `json:"account_number" bson:"account_number" yaml:"account_number"`
	AccountName   string `json:"account_name" bson:"account_name" yaml:"account_name"`
	QRCodeURL     string `json:"qr_code_url" bson:"qr_code_url" yaml:"qr_code_url"`
	Active        bool   `json:"active" bson:"active" yaml:"active"`
	SortOrder     int    `json:"sort_order" bson:"sort_order" yaml:"sort_order"`
}
