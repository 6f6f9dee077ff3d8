package cart

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"servecart/models"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memCatalog map[string]models.MenuItem

func (m memCatalog) Get(_ context.Context, id string) (models.MenuItem, error) {
	item, ok := m[id]
	if !ok {
		return models.MenuItem{}, models.ErrItemNotFound
	}
	return item, nil
}

func newTestRouter() *httprouter.Router {
	soldOut := plainItem()
	soldOut.ID = "sold-out"
	soldOut.Available = false

	h := &Handler{
		Store:    NewStore(time.Hour),
		Catalog:  memCatalog{"x": coffee(), "croissant": plainItem(), "sold-out": soldOut},
		Currency: func(context.Context) string { return "₱" },
	}
	router := httprouter.New()
	router.POST("/api/cart", h.CreateSession)
	router.GET("/api/cart/:session", h.GetCart)
	router.DELETE("/api/cart/:session", h.ClearCart)
	router.POST("/api/cart/:session/items", h.AddItem)
	router.GET("/api/cart/:session/items/:lineid", h.GetLine)
	router.PUT("/api/cart/:session/items/:lineid", h.UpdateItem)
	router.DELETE("/api/cart/:session/items/:lineid", h.RemoveItem)
	return router
}

func do(t *testing.T, router http.Handler, method, path, body string) (*httptest.ResponseRecorder, View) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var view View
	if rec.Code < 300 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	}
	return rec, view
}

func TestCartAPIFlow(t *testing.T) {
	router := newTestRouter()

	rec, view := do(t, router, http.MethodPost, "/api/cart", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotEmpty(t, view.SessionID)
	assert.Equal(t, "₱0.00", view.Total)
	base := "/api/cart/" + view.SessionID

	rec, view = do(t, router, http.MethodPost, base+"/items",
		`{"menuItemId":"x","variationId":"large","addOns":[{"addOnId":"shot","quantity":2}]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "₱100.00", view.Total)
	assert.Equal(t, "₱100.00", view.Lines[0].Subtotal)
	lineID := view.Lines[0].ID

	rec, view = do(t, router, http.MethodPut, base+"/items/"+url.PathEscape(lineID), `{"quantity":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "₱300.00", view.Total)
	assert.Equal(t, 3, view.ItemCount)

	rec, _ = do(t, router, http.MethodGet, base+"/items/"+url.PathEscape(lineID), "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, view = do(t, router, http.MethodPut, base+"/items/nothing", `{"quantity":3}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 3, view.ItemCount)

	rec, view = do(t, router, http.MethodDelete, base+"/items/"+url.PathEscape(lineID), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, view.Lines)
	assert.Equal(t, "₱0.00", view.Total)

	rec, _ = do(t, router, http.MethodGet, base+"/items/"+url.PathEscape(lineID), "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartAPIErrors(t *testing.T) {
	router := newTestRouter()
	_, view := do(t, router, http.MethodPost, "/api/cart", "")
	base := "/api/cart/" + view.SessionID

	cases := []struct {
		name, method, path, body string
		want                     int
	}{
		{"unknown session", http.MethodGet, "/api/cart/missing", "", http.StatusNotFound},
		{"bad json", http.MethodPost, base + "/items", `{`, http.StatusBadRequest},
		{"missing item id", http.MethodPost, base + "/items", `{}`, http.StatusBadRequest},
		{"unknown item", http.MethodPost, base + "/items", `{"menuItemId":"nope"}`, http.StatusNotFound},
		{"unavailable item", http.MethodPost, base + "/items", `{"menuItemId":"sold-out"}`, http.StatusConflict},
		{"bad variation", http.MethodPost, base + "/items", `{"menuItemId":"x","variationId":"venti"}`, http.StatusUnprocessableEntity},
		{"negative quantity", http.MethodPost, base + "/items", `{"menuItemId":"croissant","quantity":-1}`, http.StatusUnprocessableEntity},
		{"missing quantity", http.MethodPut, base + "/items/croissant", `{}`, http.StatusBadRequest},
		{"quantity overflow", http.MethodPost, base + "/items", `{"menuItemId":"croissant","quantity":9223372036854775807}`, http.StatusUnprocessableEntity},
		{"quantity above cap", http.MethodPut, base + "/items/croissant", `{"quantity":1000}`, http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec, _ := do(t, router, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.want, rec.Code, rec.Body.String())
		})
	}
}

func TestClearCartEndpoint(t *testing.T) {
	router := newTestRouter()
	_, view := do(t, router, http.MethodPost, "/api/cart", "")
	base := "/api/cart/" + view.SessionID

	do(t, router, http.MethodPost, base+"/items", `{"menuItemId":"croissant","quantity":2}`)
	rec, view := do(t, router, http.MethodDelete, base, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Zero(t, view.ItemCount)
}
