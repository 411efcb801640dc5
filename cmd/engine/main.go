package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"service-discounts/internal/config"
	"service-discounts/internal/infrastructure/storage"
	"service-discounts/internal/logging"
	"service-discounts/pkg/engine"
)

func main() {
	cfgPath := flag.String("config", "config.yaml", "config file")
	flag.Parse()

	config.LoadEnv()
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	cfg.ApplyEnv()
	config.Set(cfg)
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
	defer logging.Sync()

	if err := cfg.Discounts.Validate(); err != nil {
		logging.Error("invalid discount settings", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := storage.OpenVolumeStore(ctx, cfg.Storage)
	if err != nil {
		logging.Error("cannot open volume store", zap.Error(err))
		os.Exit(1)
	}
	defer closeStore()

	svc := engine.NewService(cfg.Discounts, engine.WithVolumeStore(store))
	e := newServer(svc)

	go func() {
		logging.Info("server starting", zap.String("addr", cfg.Server.Addr))
		if err := e.Start(cfg.Server.Addr); err != nil && err != http.ErrServerClosed {
			logging.Error("server stopped", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logging.Error("shutdown failed", zap.Error(err))
	}
}

func newServer(svc *engine.Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodPost, http.MethodPatch, http.MethodOptions, http.MethodGet},
		AllowHeaders: []string{echo.HeaderContentType, echo.HeaderAccept},
	}))

	h := &handlers{svc: svc}
	e.GET("/health", h.health)
	e.POST("/calculations", h.calculate)
	e.PATCH("/calculations", h.patchAndCalculate)
	e.POST("/volumes", h.recordVolume)
	e.GET("/volumes", h.readVolume)
	e.POST("/volumes/import", h.importVolumes)
	return e
}
