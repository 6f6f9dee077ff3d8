package routes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"servecart/auth"
	"servecart/cart"
	"servecart/checkout"
	"servecart/live"
	"servecart/menu"
	"servecart/models"
	"servecart/ratelim"
	"servecart/settings"

	"github.com/julienschmidt/httprouter"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func money(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newServer(t *testing.T) http.Handler {
	t.Helper()
	catalog := menu.NewFileSource([]models.MenuItem{{
		ID: "x", Name: "Item X", Category: "Coffee", BasePrice: money("50"), Available: true,
		Variations: []models.Variation{{ID: "regular", Name: "Regular", Price: money("0")}, {ID: "large", Name: "Large", Price: money("20")}},
		AddOns:     []models.AddOn{{ID: "shot", Name: "Extra Shot", Category: "Coffee", Price: money("15")}},
	}})
	site := settings.NewStore(settings.NewMemoryRepository(), models.SiteSettings{
		SiteName: "The Serve", Currency: "₱", CurrencyCode: "PHP", MessengerURL: "https://m.me/theservebrewandbake",
	})

	hub := live.NewHub()
	go hub.Run()
	t.Cleanup(hub.Stop)

	store := cart.NewStore(time.Hour)
	store.OnChange(hub.CartChanged)

	router := httprouter.New()
	RoutesWrapper(router, &Handlers{
		Menu:     &menu.Handler{Source: catalog, Placeholder: site.Placeholder},
		Cart:     &cart.Handler{Store: store, Catalog: catalog, Currency: site.Currency},
		Checkout: &checkout.Handler{Store: store, Settings: site},
		Settings: &settings.Handler{Store: site},
		Auth:     &auth.Handler{Username: "admin"},
		Hub:      hub,
		PicDir:   t.TempDir(),
	}, ratelim.NewRateLimiter(1000, 1000))
	return router
}

func send(t *testing.T, h http.Handler, method, path string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out), rec.Body.String())
	}
	return rec.Code
}

func TestOrderFlow(t *testing.T) {
	srv := newServer(t)

	var view cart.View
	require.Equal(t, http.StatusCreated, send(t, srv, http.MethodPost, "/api/cart", nil, &view))
	session := view.SessionID
	require.NotEmpty(t, session)

	add := map[string]any{
		"menuItemId":  "x",
		"variationId": "large",
		"addOns":      []map[string]any{{"addOnId": "shot", "quantity": 2}},
	}
	require.Equal(t, http.StatusCreated, send(t, srv, http.MethodPost, "/api/cart/"+session+"/items", add, &view))
	require.Len(t, view.Lines, 1)
	assert.Equal(t, "₱100.00", view.Total)
	line := view.Lines[0].ID

	require.Equal(t, http.StatusOK, send(t, srv, http.MethodPut, "/api/cart/"+session+"/items/"+line, map[string]int{"quantity": 3}, &view))
	assert.Equal(t, "₱300.00", view.Total)
	assert.Equal(t, 3, view.ItemCount)

	booking := models.BookingDetails{
		CustomerName: "Ana", ContactNumber: "0917", BookingDate: "2024-05-01", BookingTime: "10:00", PaymentMethodID: "gcash",
	}
	var summary checkout.SummaryResponse
	require.Equal(t, http.StatusOK, send(t, srv, http.MethodPost, "/api/checkout/"+session+"/summary", booking, &summary))
	assert.Equal(t, "300.00", summary.Total)
	assert.Contains(t, summary.Text, "💰 TOTAL: ₱300.00")

	require.Equal(t, http.StatusOK, send(t, srv, http.MethodDelete, "/api/cart/"+session+"/items/"+line, nil, &view))
	assert.Equal(t, "₱0.00", view.Total)
	assert.Empty(t, view.Lines)
}

func TestReadOnlyCatalogHasNoAdminRoutes(t *testing.T) {
	srv := newServer(t)

	var list menu.ListResponse
	require.Equal(t, http.StatusOK, send(t, srv, http.MethodGet, "/api/menu", nil, &list))
	assert.Equal(t, []string{"Coffee"}, list.Categories)

	assert.Equal(t, http.StatusMethodNotAllowed, send(t, srv, http.MethodPost, "/api/menu", models.MenuItem{}, nil))
	assert.Equal(t, http.StatusUnauthorized, send(t, srv, http.MethodPut, "/api/settings", models.SiteSettings{}, nil))
}

func TestHealthAndMetrics(t *testing.T) {
	srv := newServer(t)
	assert.Equal(t, http.StatusOK, send(t, srv, http.MethodGet, "/health", nil, nil))
	assert.Equal(t, http.StatusOK, send(t, srv, http.MethodGet, "/metrics", nil, nil))
	assert.Equal(t, http.StatusServiceUnavailable, send(t, srv, http.MethodPost, "/api/auth/login", map[string]string{"username": "admin", "password": "x"}, nil))
}
