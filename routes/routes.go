package routes

import (
	"fmt"
	"net/http"

	"servecart/auth"
	"servecart/cart"
	"servecart/checkout"
	"servecart/live"
	"servecart/menu"
	"servecart/metrics"
	"servecart/middleware"
	"servecart/ratelim"
	"servecart/settings"

	"github.com/julienschmidt/httprouter"
)

// Handlers bundles everything the router exposes.
type Handlers struct {
	Menu     *menu.Handler
	Cart     *cart.Handler
	Checkout *checkout.Handler
	Settings *settings.Handler
	Auth     *auth.Handler
	Hub      *live.Hub
	PicDir   string
}

func RoutesWrapper(router *httprouter.Router, h *Handlers, rateLimiter *ratelim.RateLimiter) {
	AddHealthRoutes(router)
	AddStaticRoutes(router, h.PicDir)
	AddAuthRoutes(router, h.Auth, rateLimiter)
	AddMenuRoutes(router, h.Menu, rateLimiter)
	AddCartRoutes(router, h.Cart, rateLimiter)
	AddCheckoutRoutes(router, h.Checkout, rateLimiter)
	AddSettingsRoutes(router, h.Settings, rateLimiter)
	AddLiveRoutes(router, h.Hub, h.Cart.Store)
}

// Index is a simple health check handler.
func Index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	fmt.Fprint(w, "200")
}

func AddHealthRoutes(router *httprouter.Router) {
	router.GET("/health", Index)
	router.Handler(http.MethodGet, "/metrics", metrics.Handler())
}

func AddStaticRoutes(router *httprouter.Router, picDir string) {
	router.ServeFiles("/menupic/*filepath", http.Dir(picDir))
}

func AddAuthRoutes(router *httprouter.Router, h *auth.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/auth/login", rl.Limit(h.Login))
}

// AddMenuRoutes registers the admin routes only for a writable catalog.
func AddMenuRoutes(router *httprouter.Router, h *menu.Handler, rl *ratelim.RateLimiter) {
	router.GET("/api/menu", h.ListItems)
	router.GET("/api/menu/:itemid", h.GetItem)
	if h.Repo == nil {
		return
	}
	router.POST("/api/menu", rl.Limit(middleware.RequireAdmin(h.CreateItem)))
	router.PUT("/api/menu/:itemid", rl.Limit(middleware.RequireAdmin(h.UpdateItem)))
	router.DELETE("/api/menu/:itemid", rl.Limit(middleware.RequireAdmin(h.DeleteItem)))
	router.POST("/api/menu/:itemid/image", rl.Limit(middleware.RequireAdmin(h.UploadImage)))
}

func AddCartRoutes(router *httprouter.Router, h *cart.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/cart", rl.Limit(h.CreateSession))
	router.GET("/api/cart/:session", h.GetCart)
	router.DELETE("/api/cart/:session", rl.Limit(h.ClearCart))
	router.POST("/api/cart/:session/items", rl.Limit(h.AddItem))
	router.GET("/api/cart/:session/items/:lineid", h.GetLine)
	router.PUT("/api/cart/:session/items/:lineid", rl.Limit(h.UpdateItem))
	router.DELETE("/api/cart/:session/items/:lineid", rl.Limit(h.RemoveItem))
}

func AddCheckoutRoutes(router *httprouter.Router, h *checkout.Handler, rl *ratelim.RateLimiter) {
	router.POST("/api/checkout/:session/summary", rl.Limit(h.Summary))
	router.POST("/api/checkout/:session/receipt", rl.Limit(h.Receipt))
	router.POST("/api/checkout/:session/qr", rl.Limit(h.QR))
}

func AddSettingsRoutes(router *httprouter.Router, h *settings.Handler, rl *ratelim.RateLimiter) {
	router.GET("/api/settings", h.GetSite)
	router.PUT("/api/settings", rl.Limit(middleware.RequireAdmin(h.UpdateSite)))
	router.GET("/api/payment-methods", h.ListPaymentMethods)
	router.PUT("/api/payment-methods/:id", rl.Limit(middleware.RequireAdmin(h.SavePaymentMethod)))
}

func AddLiveRoutes(router *httprouter.Router, hub *live.Hub, store *cart.Store) {
	router.GET("/ws/cart/:session", live.ServeCart(hub, store))
}
