package checkout

import (
	"net/url"
	"strconv"
	"strings"
	"time"

	"servecart/models"
	"servecart/pricing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrIncompleteBooking = errors.New("booking details incomplete")
	ErrTotalMismatch     = errors.New("total does not match line subtotals")
	ErrInvalidHandoffURL = errors.New("invalid hand-off url")
)

// SummaryOptions carries the storefront values printed around the order.
type SummaryOptions struct {
	SiteName      string
	Currency      string
	PaymentMethod *models.PaymentMethod
}

// ValidateBooking reports every required booking field that is blank.
func ValidateBooking(b models.BookingDetails) error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"customerName", b.CustomerName},
		{"contactNumber", b.ContactNumber},
		{"bookingDate", b.BookingDate},
		{"bookingTime", b.BookingTime},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return errors.Wrapf(ErrIncompleteBooking, "missing %s", strings.Join(missing, ", "))
	}
	return nil
}

// FormatBookingDate turns YYYY-MM-DD into "Wednesday, May 1, 2024". Anything
// else is returned unchanged.
func FormatBookingDate(s string) string {
	d, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return d.Format("Monday, January 2, 2006")
}

// DescribeLine renders "Name (Variation) + AddOn, AddOn xN".
func DescribeLine(l models.CartLine) string {
	var b strings.Builder
	b.WriteString(l.Name)
	if l.Variation != nil {
		b.WriteString(" (" + l.Variation.Name + ")")
	}
	if len(l.AddOns) > 0 {
		names := make([]string, 0, len(l.AddOns))
		for _, a := range l.AddOns {
			if a.Quantity > 1 {
				names = append(names, a.Name+" x"+strconv.Itoa(a.Quantity))
			} else {
				names = append(names, a.Name)
			}
		}
		b.WriteString(" + " + strings.Join(names, ", "))
	}
	return b.String()
}

// Build renders the order text handed off to the messaging channel. It does
// not modify lines. The total must equal the sum of the rendered subtotals.
func Build(lines []models.CartLine, total decimal.Decimal, booking models.BookingDetails, opts SummaryOptions) (string, error) {
	if err := ValidateBooking(booking); err != nil {
		return "", err
	}
	payment := booking.PaymentMethodID
	if opts.PaymentMethod != nil && opts.PaymentMethod.Name != "" {
		payment = opts.PaymentMethod.Name
	}
	if strings.TrimSpace(payment) == "" {
		return "", errors.Wrap(ErrIncompleteBooking, "missing paymentMethodId")
	}
	if len(lines) == 0 {
		return "", ErrEmptyCart
	}

	rendered := decimal.Zero
	items := make([]string, 0, len(lines))
	for _, l := range lines {
		sub := pricing.Round(l.Subtotal())
		rendered = rendered.Add(sub)
		items = append(items, "• "+DescribeLine(l)+" x"+strconv.Itoa(l.Quantity)+" - "+pricing.Format(opts.Currency, sub))
	}
	if !rendered.Equal(pricing.Round(total)) {
		return "", errors.Wrapf(ErrTotalMismatch, "lines add up to %s, total is %s", rendered, total)
	}

	notes := ""
	if strings.TrimSpace(booking.Notes) != "" {
		notes = "📝 Notes: " + booking.Notes
	}

	var b strings.Builder
	b.WriteString("🛒 " + opts.SiteName + " BOOKING\n\n")
	b.WriteString("👤 Customer: " + booking.CustomerName + "\n")
	b.WriteString("📞 Contact: " + booking.ContactNumber + "\n")
	b.WriteString("📅 Booking Date: " + FormatBookingDate(booking.BookingDate) + "\n")
	b.WriteString("🕐 Time: " + booking.BookingTime + "\n\n\n")
	b.WriteString("📋 ORDER DETAILS:\n")
	b.WriteString(strings.Join(items, "\n") + "\n\n")
	b.WriteString("💰 TOTAL: " + pricing.Format(opts.Currency, total) + "\n\n")
	b.WriteString("💳 Payment: " + payment + "\n")
	b.WriteString("📸 Payment Screenshot: Please attach your payment receipt screenshot\n\n")
	b.WriteString(notes + "\n\n")
	b.WriteString("Please confirm this order to proceed. Thank you for choosing " + opts.SiteName + "! ☕")
	return b.String(), nil
}

// EncodeText percent-encodes free text for a query string, spaces as %20.
func EncodeText(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// HandoffURL appends the encoded text as the "text" query parameter of base.
func HandoffURL(base, text string) (string, error) {
	u, err := url.Parse(base)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", errors.Wrapf(ErrInvalidHandoffURL, "%q", base)
	}
	sep := "?"
	if u.RawQuery != "" {
		sep = "&"
	}
	return strings.TrimSuffix(base, "?") + sep + "text=" + EncodeText(text), nil
}
