package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"servecart/auth"
	"servecart/cart"
	"servecart/checkout"
	"servecart/config"
	"servecart/db"
	"servecart/globals"
	"servecart/live"
	"servecart/menu"
	"servecart/metrics"
	"servecart/middleware"
	"servecart/models"
	"servecart/mq"
	"servecart/pricing"
	"servecart/ratelim"
	"servecart/rdx"
	"servecart/routes"
	"servecart/settings"

	"github.com/julienschmidt/httprouter"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func setupLogging(level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	zerolog.TimeFieldFormat = time.RFC3339
	if format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// catalog is the storage the handlers run on: MongoDB with an optional
// Redis cache, or the seed file in memory.
type catalog struct {
	source   menu.Source
	repo     menu.Repository
	cache    *menu.CachedSource
	settings settings.Repository
	emitter  *mq.Emitter
}

func openCatalog(ctx context.Context, cfg *config.Config, seed *menu.SeedFile) catalog {
	if err := db.Connect(ctx, cfg.MongoURI, cfg.MongoDB); err != nil {
		if seed == nil {
			log.Fatal().Err(err).Msg("MongoDB unavailable and no CATALOG_SEED_FILE set")
		}
		log.Warn().Err(err).Msg("MongoDB unavailable; serving the seed catalog read-only")
		return catalog{source: menu.NewFileSource(seed.Items), settings: settings.NewMemoryRepository()}
	}

	repo := menu.NewMongoRepository(db.MenuCollection)
	if seed != nil {
		n, err := repo.SeedIfEmpty(ctx, seed.Items)
		if err != nil {
			log.Fatal().Err(err).Msg("seeding menu failed")
		}
		if n > 0 {
			log.Info().Int("items", n).Msg("menu seeded")
		}
	}
	c := catalog{
		source:   repo,
		repo:     repo,
		settings: &settings.MongoRepository{Site: db.SettingsCollection, Payments: db.PaymentMethodsCollection},
	}

	if err := rdx.Connect(ctx, cfg.RedisAddr, cfg.RedisPassword); err != nil {
		log.Warn().Err(err).Msg("Redis unavailable; menu cache and event bus disabled")
		return c
	}
	c.cache = menu.NewCachedSource(repo, rdx.Cache{Client: rdx.Conn}, cfg.MenuCacheTTL)
	c.source = c.cache
	c.emitter = mq.NewEmitter(rdx.Conn)
	return c
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg.LogLevel, cfg.LogFormat)
	globals.JwtSecret = []byte(cfg.JWTSecret)
	if cfg.JWTSecret == "change-me" {
		log.Warn().Msg("JWT_SECRET is the default; set it before exposing admin routes")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var seed *menu.SeedFile
	if cfg.CatalogSeedFile != "" {
		if seed, err = menu.LoadSeedFile(cfg.CatalogSeedFile); err != nil {
			log.Fatal().Err(err).Msg("invalid catalog seed file")
		}
	}

	cat := openCatalog(ctx, cfg, seed)
	siteStore := settings.NewStore(cat.settings, models.SiteSettings{
		SiteName:     cfg.SiteName,
		Currency:     cfg.CurrencySymbol,
		CurrencyCode: cfg.CurrencyCode,
		MessengerURL: cfg.MessengerURL,
	})
	if seed != nil {
		if _, err := siteStore.SeedPaymentMethods(ctx, seed.PaymentMethods); err != nil {
			log.Error().Err(err).Msg("seeding payment methods failed")
		}
	}

	hub := live.NewHub()
	go hub.Run()

	store := cart.NewStore(cfg.CartSessionTTL, pricing.WithVariationPolicy(cfg.VariationPolicy))
	store.OnChange(hub.CartChanged)
	store.OnChange(metrics.CartChanged)
	metrics.TrackSessions(store.Len)
	go store.StartJanitor(ctx, time.Minute)

	rateLimiter := ratelim.NewRateLimiter(float64(cfg.RateLimitRPS), cfg.RateLimitBurst)
	go rateLimiter.StartJanitor(ctx, 5*time.Minute)

	menuHandler := &menu.Handler{Source: cat.source, Repo: cat.repo, Placeholder: siteStore.Placeholder, PicDir: cfg.MenuPicDir}
	checkoutHandler := &checkout.Handler{Store: store, Settings: siteStore, Metrics: metrics.Recorder{}}
	if cat.cache != nil {
		menuHandler.Cache = cat.cache
	}
	if cat.emitter != nil {
		menuHandler.Events = cat.emitter
		checkoutHandler.Events = cat.emitter
		go mq.StartWorker(ctx, rdx.Conn, mq.Channel, func(ctx context.Context, ev models.Event) {
			metrics.EventConsumed(ev)
			log.Debug().Str("event", ev.Name).Str("entity", ev.EntityID).Msg("event received")
			// other instances share the cache; drop entries they changed
			if ev.EntityType == "menu" && cat.cache != nil {
				if err := cat.cache.Invalidate(ctx, ev.EntityID); err != nil {
					log.Warn().Err(err).Msg("menu cache not invalidated")
				}
			}
		})
	}

	router := httprouter.New()
	routes.RoutesWrapper(router, &routes.Handlers{
		Menu:     menuHandler,
		Cart:     &cart.Handler{Store: store, Catalog: cat.source, Currency: siteStore.Currency},
		Checkout: checkoutHandler,
		Settings: &settings.Handler{Store: siteStore},
		Auth:     &auth.Handler{Username: cfg.AdminUsername, PasswordHash: cfg.AdminPasswordHash},
		Hub:      hub,
		PicDir:   cfg.MenuPicDir,
	}, rateLimiter)

	// apply middleware: CORS → security headers → logging → router
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}).Handler(router)

	handler := middleware.Logging(middleware.SecurityHeaders(corsHandler))

	server := &http.Server{
		Addr:              cfg.Port,
		Handler:           handler,
		ReadTimeout:       7 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       120 * time.Second,
		ReadHeaderTimeout: 2 * time.Second,
	}

	server.RegisterOnShutdown(func() {
		log.Info().Msg("stopping live hub")
		hub.Stop()
	})

	go func() {
		log.Info().Str("addr", cfg.Port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("ListenAndServe failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received; shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	rdx.Close()
	db.Disconnect(shutdownCtx)
	log.Info().Msg("server stopped cleanly")
}
