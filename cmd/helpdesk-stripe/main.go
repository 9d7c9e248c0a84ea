package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	sqliteadapter "github.com/ericfisherdev/helpdesk-stripe/internal/adapter/driven/sqlite"
	stripeadapter "github.com/ericfisherdev/helpdesk-stripe/internal/adapter/driven/stripe"
	"github.com/ericfisherdev/helpdesk-stripe/internal/adapter/driving/helpdesk"
	httphandler "github.com/ericfisherdev/helpdesk-stripe/internal/adapter/driving/http"
	webhandler "github.com/ericfisherdev/helpdesk-stripe/internal/adapter/driving/web"
	"github.com/ericfisherdev/helpdesk-stripe/internal/application"
	"github.com/ericfisherdev/helpdesk-stripe/internal/config"
	"github.com/ericfisherdev/helpdesk-stripe/internal/hooks"
	"github.com/ericfisherdev/helpdesk-stripe/internal/secretbox"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel})))
	slog.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
		"stripe_api_url", cfg.StripeAPIURL,
		"http_timeout", cfg.HTTPTimeout,
		"list_limit", cfg.ListLimit,
		"app_key_set", cfg.HasSecretKey(),
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()
	slog.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	slog.Info("migrations complete")

	// 5. Wire storage adapters.
	mailboxStore := sqliteadapter.NewMailboxRepo(db)
	customerStore := sqliteadapter.NewCustomerRepo(db)
	conversationStore := sqliteadapter.NewConversationRepo(db)
	settingStore := sqliteadapter.NewStripeSettingRepo(db)

	// 6. Build the process-wide cipher and the shared Stripe backend.
	cipher, err := secretbox.New(cfg.SecretKey)
	if err != nil {
		return err
	}
	if !cipher.HasKey() {
		slog.Warn("no application key configured, stored stripe keys cannot be saved or read")
	}

	stripeClients := stripeadapter.NewClientFactory(stripeadapter.FactoryConfig{
		APIURL:     cfg.StripeAPIURL,
		HTTPClient: &http.Client{Timeout: cfg.HTTPTimeout},
		ListLimit:  cfg.ListLimit,
		Logger:     slog.Default(),
	})

	// 7. Create the billing service.
	stripeSvc := application.NewStripeService(conversationStore, settingStore, cipher, stripeClients, slog.Default())

	// 8. Register the plugin on the host's extension points.
	host := hooks.NewRegistry(slog.Default())
	helpdesk.NewPlugin(stripeSvc, cfg.AssetPath, slog.Default()).Register(host)

	// 9. Register API and web routes.
	mux := http.NewServeMux()
	httphandler.RegisterRoutes(mux, httphandler.NewHandler(stripeSvc, db, slog.Default()))
	webhandler.RegisterRoutes(mux,
		webhandler.NewHandler(customerStore, mailboxStore, stripeSvc, host, slog.Default()),
		cfg.AssetPath,
	)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           httphandler.Wrap(mux, slog.Default()),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// Customer pages block on two sequential Stripe calls.
		WriteTimeout: 2*cfg.HTTPTimeout + 10*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server error", "error", err)
			stop()
		}
	}()

	slog.Info("helpdesk-stripe started", "listen_addr", cfg.ListenAddr, "asset_path", cfg.AssetPath)

	// 10. Wait for shutdown signal.
	<-ctx.Done()
	slog.Info("shutting down")

	// 11. Graceful shutdown with 10s timeout.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("http server shutdown error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}
