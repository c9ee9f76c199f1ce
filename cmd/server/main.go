// Command server runs the gift registry API. Business logic lives in the
// internal feature packages; main only wires dependencies and owns the
// server lifecycle.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"giftlist/internal/auth"
	sessionstore "giftlist/internal/auth/store/session"
	userstore "giftlist/internal/auth/store/user"
	"giftlist/internal/catalog"
	catalogstore "giftlist/internal/catalog/store"
	"giftlist/internal/platform/config"
	"giftlist/internal/platform/database"
	"giftlist/internal/platform/httpserver"
	"giftlist/internal/platform/logger"
	"giftlist/internal/platform/metrics"
	platformredis "giftlist/internal/platform/redis"
	registryhandler "giftlist/internal/registry/handler"
	registryservice "giftlist/internal/registry/service"
	registrystore "giftlist/internal/registry/store"
	"giftlist/internal/report"
	"giftlist/internal/report/pdf"
	httpapi "giftlist/internal/transport/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	log := logger.New(cfg.LogLevel)

	promRegistry := prometheus.NewRegistry()
	m := metrics.New(promRegistry)

	// Stores: Postgres + Redis when configured, in-memory otherwise.
	var (
		users    auth.UserStore
		catStore catalog.Store
		regStore interface {
			registryservice.GiftListStore
			registryservice.GuestStore
			registryservice.ItemStore
			registryservice.PurchaseStore
			report.Store
			report.OwnerResolver
		}
	)
	if cfg.DatabaseURL != "" {
		db, err := database.Open(cfg.DatabaseURL, log)
		if err != nil {
			log.Error("database unavailable", "error", err)
			os.Exit(1)
		}
		defer db.Close()
		if err := db.Migrate(cfg.MigrationsPath); err != nil {
			log.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		users = userstore.NewPostgres(db.DB)
		catStore = catalogstore.NewPostgres(db.DB)
		regStore = registrystore.NewPostgres(db.DB)
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
		users = userstore.NewMemory()
		memCatalog := catalogstore.NewMemory()
		catStore = memCatalog
		regStore = registrystore.NewMemory(memCatalog)
	}

	var sessions auth.SessionStore
	redisClient, err := platformredis.New(cfg.RedisURL)
	if err != nil {
		log.Error("redis unavailable", "error", err)
		os.Exit(1)
	}
	if redisClient != nil {
		defer redisClient.Close()
		sessions = sessionstore.NewRedis(redisClient.Client)
	} else {
		log.Warn("REDIS_URL not set, using in-memory sessions")
		sessions = sessionstore.NewMemory()
	}

	authService := auth.NewService(users, sessions, cfg.JWTSigningKey, cfg.SessionTTL)
	catalogService := catalog.NewService(catStore)
	registryService := registryservice.New(regStore, regStore, regStore, regStore, catalogService, m)
	reportService := report.NewService(regStore, regStore)

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:   log,
		Metrics:  m,
		Registry: promRegistry,
		Sessions: authService,
		Auth:     auth.NewHandler(authService, log),
		Catalog:  catalog.NewHandler(catalogService, log),
		GiftList: registryhandler.New(registryService, log),
		Report:   report.NewHandler(reportService, pdf.Render, log),
	})

	srv := httpserver.New(cfg.Addr, router, cfg.ReadHeaderTimeout)
	log.Info("starting gift registry server", "addr", cfg.Addr)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		os.Exit(1)
	}
}
