package cart

import (
	"context"
	"net/http"
	"time"

	"servecart/models"
	"servecart/pricing"
	"servecart/utils"

	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// Catalog is the read-only menu lookup the cart handlers need.
type Catalog interface {
	Get(ctx context.Context, id string) (models.MenuItem, error)
}

// Handler exposes a Store over HTTP.
type Handler struct {
	Store    *Store
	Catalog  Catalog
	Currency func(ctx context.Context) string
}

type LineView struct {
	models.CartLine
	Subtotal string `json:"subtotal"`
}

type View struct {
	SessionID string     `json:"sessionId"`
	Lines     []LineView `json:"lines"`
	Total     string     `json:"total"`
	ItemCount int        `json:"itemCount"`
	Currency  string     `json:"currency"`
}

type addRequest struct {
	MenuItemID  string                  `json:"menuItemId"`
	Quantity    int                     `json:"quantity"`
	VariationID string                  `json:"variationId"`
	AddOns      []models.AddOnSelection `json:"addOns"`
}

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

// NewView renders a cart. Subtotals and total share the same rounding.
func NewView(sessionID, currency string, c *Cart) View {
	lines := c.Lines()
	v := View{
		SessionID: sessionID,
		Lines:     make([]LineView, 0, len(lines)),
		Total:     pricing.Format(currency, c.TotalPrice()),
		ItemCount: c.TotalItemCount(),
		Currency:  currency,
	}
	for _, l := range lines {
		v.Lines = append(v.Lines, LineView{CartLine: l, Subtotal: pricing.Format(currency, l.Subtotal())})
	}
	return v
}

func (h *Handler) currency(ctx context.Context) string {
	if h.Currency == nil {
		return ""
	}
	return h.Currency(ctx)
}

// CreateSession starts a new empty cart.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	currency := h.currency(r.Context())
	id := h.Store.Create()
	var view View
	err := h.Store.Do(id, func(c *Cart) error {
		view = NewView(id, currency, c)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusCreated, view)
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.respond(w, r, ps.ByName("session"), http.StatusOK, func(*Cart) error { return nil })
}

func (h *Handler) GetLine(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	id := ps.ByName("session")
	var line models.CartLine
	err := h.Store.Do(id, func(c *Cart) error {
		var err error
		line, err = c.Line(ps.ByName("lineid"))
		return err
	})
	if err != nil {
		writeError(w, err)
		return
	}
	utils.RespondWithJSON(w, http.StatusOK, LineView{CartLine: line, Subtotal: pricing.Format(h.currency(r.Context()), line.Subtotal())})
}

// AddItem configures a menu item and merges it into the cart.
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req addRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil {
		utils.RespondWithError(w, http.StatusBadRequest, "Invalid JSON payload")
		return
	}
	if req.MenuItemID == "" {
		utils.RespondWithError(w, http.StatusBadRequest, "menuItemId is required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	item, err := h.Catalog.Get(ctx, req.MenuItemID)
	if err != nil {
		writeError(w, err)
		return
	}

	h.respond(w, r, ps.ByName("session"), http.StatusCreated, func(c *Cart) error {
		_, err := c.Add(item, req.Quantity, req.VariationID, req.AddOns)
		return err
	})
}

// UpdateItem sets a line quantity. Unknown lines are ignored.
func (h *Handler) UpdateItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req quantityRequest
	if err := utils.DecodeJSON(w, r, &req); err != nil || req.Quantity == nil {
		utils.RespondWithError(w, http.StatusBadRequest, "quantity is required")
		return
	}
	h.respond(w, r, ps.ByName("session"), http.StatusOK, func(c *Cart) error {
		_, err := c.UpdateQuantity(ps.ByName("lineid"), *req.Quantity)
		return err
	})
}

func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.respond(w, r, ps.ByName("session"), http.StatusOK, func(c *Cart) error {
		c.Remove(ps.ByName("lineid"))
		return nil
	})
}

func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	h.respond(w, r, ps.ByName("session"), http.StatusOK, func(c *Cart) error {
		c.Clear()
		return nil
	})
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request, sessionID string, status int, fn func(*Cart) error) {
	currency := h.currency(r.Context())
	var view View
	err := h.Store.Do(sessionID, func(c *Cart) error {
		if err := fn(c); err != nil {
			return err
		}
		view = NewView(sessionID, currency, c)
		return nil
	})
	if err != nil {
		writeError(w, err)
		return
	}
	utils.RespondWithJSON(w, status, view)
}

// StatusFor maps cart and pricing errors to HTTP status codes.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, ErrSessionNotFound), errors.Is(err, ErrLineNotFound), errors.Is(err, models.ErrItemNotFound):
		return http.StatusNotFound
	case errors.Is(err, pricing.ErrItemUnavailable):
		return http.StatusConflict
	case errors.Is(err, pricing.ErrInvalidConfiguration):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	status := StatusFor(err)
	if status == http.StatusInternalServerError {
		log.Error().Err(err).Msg("cart request failed")
		utils.RespondWithError(w, status, "Internal server error")
		return
	}
	utils.RespondWithError(w, status, err.Error())
}
