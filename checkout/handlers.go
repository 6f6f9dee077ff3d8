package checkout

import (
	"context"
	"net/http"
	"strings"
	"time"

	"servecart/cart"
	"servecart/models"
	"servecart/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Settings supplies the storefront values and payment methods.
type Settings interface {
	Site(ctx context.Context) (models.SiteSettings, error)
	PaymentMethod(ctx context.Context, id string) (models.PaymentMethod, error)
	PaymentMethods(ctx context.Context, includeInactive bool) ([]models.PaymentMethod, error)
}

// Publisher receives domain events; it may be nil.
type Publisher interface {
	Emit(ctx context.Context, ev models.Event)
}

// Recorder receives the value of every handed-off order; it may be nil.
type Recorder interface {
	OrderHandedOff(total decimal.Decimal)
}

type Handler struct {
	Store    *cart.Store
	Settings Settings
	Events   Publisher
	Metrics  Recorder
}

type SummaryResponse struct {
	Reference  string `json:"reference"`
	Text       string `json:"text"`
	HandoffURL string `json:"handoffUrl"`
	Total      string `json:"total"`
}

type order struct {
	reference string
	booking   models.BookingDetails
	site      models.SiteSettings
	payment   *models.PaymentMethod
	lines     []models.CartLine
	total     decimal.Decimal
	text      string
	url       string
}

// prepare snapshots the session cart and renders the summary. The cart is
// left as is so the customer can go back and edit it.
func (h *Handler) prepare(ctx context.Context, sessionID string, booking models.BookingDetails) (*order, error) {
	site, err := h.Settings.Site(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "load site settings")
	}

	o := &order{reference: "ORD" + strings.ToUpper(utils.ShortID(8)), booking: booking, site: site}

	if booking.PaymentMethodID != "" {
		pm, err := h.Settings.PaymentMethod(ctx, booking.PaymentMethodID)
		switch {
		case err == nil:
			o.payment = &pm
		case !errors.Is(err, models.ErrPaymentMethodNotFound):
			return nil, errors.Wrap(err, "load payment method")
		}
	} else {
		// no choice made: the first active method is preselected
		methods, err := h.Settings.PaymentMethods(ctx, false)
		if err != nil {
			return nil, errors.Wrap(err, "load payment methods")
		}
		if len(methods) > 0 {
			o.payment = &methods[0]
			o.booking.PaymentMethodID = methods[0].ID
		}
	}

	err = h.Store.Do(sessionID, func(c *cart.Cart) error {
		o.lines = c.Lines()
		o.total = c.TotalPrice()
		return nil
	})
	if err != nil {
		return nil, err
	}

	o.text, err = Build(o.lines, o.total, o.booking, SummaryOptions{
		SiteName:      site.SiteName,
		Currency:      site.Currency,
		PaymentMethod: o.payment,
	})
	if err != nil {
		return nil, err
	}
	o.url, err = HandoffURL(site.MessengerURL, o.text)
	if err != nil {
		return nil, err
	}
	return o, nil
}

func (h *Handler) decodeAndPrepare(w http.ResponseWriter, r *http.Request, ps httprouter.Params) (*order, bool) {
	var booking models.BookingDetails
	if err := utils.DecodeJSON(w, r, &booking); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	o, err := h.prepare(ctx, ps.ByName("session"), booking)
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return o, true
}

func (h *Handler) handedOff(ctx context.Context, sessionID string, o *order) {
	if h.Metrics != nil {
		h.Metrics.OrderHandedOff(o.total)
	}
	if h.Events != nil {
		h.Events.Emit(ctx, models.Event{
			Name:       "order-handed-off",
			EntityType: "order",
			Method:     "POST",
			EntityID:   o.reference,
			SessionID:  sessionID,
			Data: map[string]any{
				"total": o.total.String(),
				"lines": len(o.lines),
			},
			Timestamp: time.Now().Unix(),
		})
	}
}

// Summary returns the order text and the hand-off URL.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	o, ok := h.decodeAndPrepare(w, r, ps)
	if !ok {
		return
	}
	h.handedOff(r.Context(), ps.ByName("session"), o)
	utils.RespondWithJSON(w, http.StatusOK, SummaryResponse{
		Reference:  o.reference,
		Text:       o.text,
		HandoffURL: o.url,
		Total:      o.total.StringFixed(2),
	})
}

// Receipt renders the order as a PDF with a QR code of the hand-off URL.
func (h *Handler) Receipt(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	o, ok := h.decodeAndPrepare(w, r, ps)
	if !ok {
		return
	}

	pdf, err := RenderReceipt(Receipt{
		Reference:    o.reference,
		SiteName:     o.site.SiteName,
		CurrencyCode: o.site.CurrencyCode,
		Booking:      o.booking,
		Payment:      o.payment,
		Lines:        o.lines,
		Total:        o.total,
		HandoffURL:   o.url,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=receipt-"+o.reference+".pdf")
	w.WriteHeader(http.StatusOK)
	w.Write(pdf)
}

// QR returns a PNG QR code of the hand-off URL.
func (h *Handler) QR(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	o, ok := h.decodeAndPrepare(w, r, ps)
	if !ok {
		return
	}
	png, err := QRCode(o.url, 320)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrIncompleteBooking), errors.Is(err, ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, ErrQRTooLarge):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTotalMismatch):
		return http.StatusConflict
	case errors.Is(err, cart.ErrSessionNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("checkout failed")
		utils.RespondWithError(w, status, "Internal server error")
		return
	}
	utils.RespondWithError(w, status, err.Error())
}
