package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tsukuda/clubpass/internal/appdata"
	"github.com/tsukuda/clubpass/internal/concierge"
	"github.com/tsukuda/clubpass/internal/gateway"
	"github.com/tsukuda/clubpass/internal/imagestore"
	"github.com/tsukuda/clubpass/internal/logging"
	"github.com/tsukuda/clubpass/internal/server"
	ws "github.com/tsukuda/clubpass/internal/websocket"
)

func main() {
	logger := logging.Setup(os.Getenv("CLUBPASS_LOG_LEVEL"))

	port := os.Getenv("CLUBPASS_PORT")
	if port == "" {
		port = "8080"
	}

	dbPath := os.Getenv("CLUBPASS_DB_PATH")
	if dbPath == "" {
		dbPath = "clubpass.db"
	}

	ctx := context.Background()

	gw, err := gateway.Open(ctx, gateway.Config{
		SupabaseURL: os.Getenv("SUPABASE_URL"),
		SupabaseKey: os.Getenv("SUPABASE_ANON_KEY"),
		DBPath:      dbPath,
	}, logger.With("component", "gateway"))
	if err != nil {
		logger.Error("failed to open data gateway", "error", err)
		os.Exit(1)
	}
	defer gw.Close()

	hub := ws.NewHub(logger.With("component", "websocket"))

	data := appdata.New(gw, hub, logger.With("component", "appdata"))
	go func() {
		if err := data.Load(ctx); err != nil {
			logger.Error("initial data load failed", "error", err)
		}
	}()

	ai := concierge.NewService(concierge.Config{
		APIKey: os.Getenv("GEMINI_API_KEY"),
		Model:  os.Getenv("GEMINI_MODEL"),
	}, logger.With("component", "concierge"))

	images := imagestore.NewService(imagestore.Config{
		Endpoint:      os.Getenv("S3_ENDPOINT"),
		Region:        os.Getenv("S3_REGION"),
		AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		SecretKey:     os.Getenv("S3_SECRET_KEY"),
		PublicBaseURL: os.Getenv("S3_PUBLIC_BASE_URL"),
	}, logger.With("component", "imagestore"))

	srv := server.New(data, ai, images, hub, logger)

	// Expired rate-limit entries are swept in the background.
	go func() {
		ticker := time.NewTicker(10 * time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			srv.RateLimiter().Cleanup()
		}
	}()

	httpServer := &http.Server{
		Addr:         ":" + port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("clubpass running", "addr", fmt.Sprintf("http://localhost:%s", port), "mode", gw.Mode())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
