package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/MikeSquared-Agency/faqbase/internal/api"
	"github.com/MikeSquared-Agency/faqbase/internal/auth"
	"github.com/MikeSquared-Agency/faqbase/internal/events"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	setupLogging(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	slog.Info("faqbase starting", "port", cfg.Port, "version", version)
	for _, w := range cfg.Warnings() {
		slog.Warn(w)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database
	db, err := openStore(ctx, cfg.DatabaseURL, slog.Default())
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return err
	}
	defer db.Close()
	slog.Info("database ready")

	// Admin credentials
	authn := auth.New(db, cfg.JWTSecret, cfg.TokenTTL)
	seeded, err := authn.Seed(ctx, cfg.AdminPassword)
	if err != nil {
		slog.Error("failed to seed admin password", "error", err)
		return err
	}
	if seeded {
		slog.Info("admin password initialised from ADMIN_PASSWORD")
	}

	// NATS (optional; faqbase works without it, just no events)
	var pub events.Publisher = events.Nop{}
	if cfg.NatsURL != "" {
		client, err := events.NewClient(ctx, cfg.NatsURL, cfg.NatsToken, slog.Default())
		if err != nil {
			slog.Warn("NATS unavailable, events disabled", "error", err)
		} else {
			defer client.Close()
			pub = client
			slog.Info("NATS connected", "url", cfg.NatsURL)
		}
	} else {
		slog.Info("NATS not configured, events disabled")
	}

	// HTTP API
	srv := api.NewServer(cfg.Port, db, authn, pub, slog.Default(), api.Options{
		StaticDir:      cfg.StaticDir,
		CORSOrigins:    cfg.CORSOrigins,
		MaxUploadBytes: cfg.MaxUploadBytes,
	})
	if err := srv.Run(ctx); err != nil {
		slog.Error("HTTP server error", "error", err)
		return err
	}

	slog.Info("faqbase stopped")
	return nil
}
