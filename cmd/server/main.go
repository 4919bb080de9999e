package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/hbenali/storefront/internal/auth"
	"github.com/hbenali/storefront/internal/config"
	"github.com/hbenali/storefront/internal/es"
	"github.com/hbenali/storefront/internal/events"
	"github.com/hbenali/storefront/internal/handlers"
	"github.com/hbenali/storefront/internal/logging"
	middlewareauth "github.com/hbenali/storefront/internal/middleware/auth"
	"github.com/hbenali/storefront/internal/session"
	"github.com/hbenali/storefront/internal/store"
	httpserver "github.com/hbenali/storefront/internal/transport/http"
)

func main() {
	configuration, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := logging.New(configuration.LOG_LEVEL, configuration.LOG_FORMAT)

	db, err := config.InitDB(configuration)
	if err != nil {
		logger.Error("database init failed", "error", err)
		os.Exit(1)
	}

	var prod *events.Producer
	if configuration.KAFKA_ADDRESS != "" {
		prod = events.NewProducer([]string{configuration.KAFKA_ADDRESS})
	}

	var searchHandler *handlers.SearchHandler
	if configuration.ES_URL != "" {
		esClient, err := es.NewClient(configuration)
		if err != nil {
			logger.Error("elasticsearch init failed", "error", err)
			os.Exit(1)
		}
		searchHandler = handlers.NewSearchHandler(esClient, "products")
	}

	gateway := store.New(db)
	sessions := session.NewManager([]byte(configuration.SESSION_SECRET))

	e := echo.New()
	e.HideBanner = true
	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())

	deps := httpserver.Deps{
		Logger: logger,
		Guard:  &middlewareauth.Guard{Sessions: sessions, Store: gateway},
		Users: &handlers.UserHandler{
			Store:    gateway,
			Verifier: auth.NewVerifier(gateway),
			Sessions: sessions,
			Producer: prod,
		},
		Cart:    &handlers.CartHandler{Store: gateway, Producer: prod},
		Catalog: &handlers.CatalogHandler{Store: gateway},
		Search:  searchHandler,
	}

	httpserver.Register(e, &deps)

	srv := &http.Server{
		Addr:         configuration.HTTP_ADDR,
		Handler:      e,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			logger.Error("db close error", "error", err)
		}
	} else {
		logger.Error("db handle error", "error", err)
	}

	if err := prod.Close(); err != nil {
		logger.Error("kafka close error", "error", err)
	}

	logger.Info("shutdown complete")
}
