package checkout

import (
	"bytes"
	"fmt"
	"strconv"

	"servecart/models"
	"servecart/pricing"

	"github.com/phpdave11/gofpdf"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

var ErrQRTooLarge = errors.New("order too large for a QR code")

// Receipt is everything printed on the PDF handed to the customer.
type Receipt struct {
	Reference    string
	SiteName     string
	CurrencyCode string
	Booking      models.BookingDetails
	Payment      *models.PaymentMethod
	Lines        []models.CartLine
	Total        decimal.Decimal
	HandoffURL   string
}

// QRCode encodes content as a PNG. Low recovery keeps long hand-off URLs
// inside the largest QR version.
func QRCode(content string, size int) ([]byte, error) {
	png, err := qrcode.Encode(content, qrcode.Low, size)
	if err != nil {
		return nil, errors.Wrap(ErrQRTooLarge, err.Error())
	}
	return png, nil
}

// RenderReceipt draws an A4 receipt with the line table and a QR code that
// opens the hand-off URL. The core PDF fonts have no peso sign or emoji, so
// amounts use the currency code.
func RenderReceipt(rc Receipt) ([]byte, error) {
	qrPNG, err := QRCode(rc.HandoffURL, 256)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	money := func(d decimal.Decimal) string {
		return pricing.Format(rc.CurrencyCode+" ", d)
	}

	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(0, 10, tr(rc.SiteName+" Booking"))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 7, "Reference: "+rc.Reference)
	pdf.Ln(7)
	pdf.Cell(0, 7, tr("Customer: "+rc.Booking.CustomerName))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr("Contact: "+rc.Booking.ContactNumber))
	pdf.Ln(7)
	pdf.Cell(0, 7, tr(fmt.Sprintf("Booking: %s at %s", FormatBookingDate(rc.Booking.BookingDate), rc.Booking.BookingTime)))
	pdf.Ln(7)
	if rc.Payment != nil {
		pdf.Cell(0, 7, tr("Payment: "+rc.Payment.Name))
		pdf.Ln(7)
		if rc.Payment.AccountNumber != "" {
			pdf.Cell(0, 7, tr(fmt.Sprintf("Send to: %s (%s)", rc.Payment.AccountNumber, rc.Payment.AccountName)))
			pdf.Ln(7)
		}
	}
	pdf.Ln(4)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(110, 8, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "C", false, 0, "")
	pdf.CellFormat(50, 8, "Subtotal", "B", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 10)
	for _, l := range rc.Lines {
		pdf.CellFormat(110, 7, tr(DescribeLine(l)), "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, strconv.Itoa(l.Quantity), "", 0, "C", false, 0, "")
		pdf.CellFormat(50, 7, money(l.Subtotal()), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(130, 9, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(50, 9, money(rc.Total), "T", 1, "R", false, 0, "")

	if rc.Booking.Notes != "" {
		pdf.Ln(4)
		pdf.SetFont("Arial", "I", 10)
		pdf.MultiCell(0, 6, tr("Notes: "+rc.Booking.Notes), "", "L", false)
	}

	pdf.Ln(6)
	pdf.SetFont("Arial", "", 9)
	pdf.Cell(0, 6, "Scan to send this order and attach your payment screenshot.")
	pdf.Ln(6)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", pdf.GetX(), pdf.GetY(), 50, 50, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, errors.Wrap(err, "render receipt")
	}
	return buf.Bytes(), nil
}
