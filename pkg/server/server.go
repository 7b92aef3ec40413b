// Package server composes the back office from configuration: storage,
// billing, email, referrals, catalog, cart and the admin API.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/getpressed/pressed/internal/storage"
	"github.com/getpressed/pressed/pkg/admin"
	"github.com/getpressed/pressed/pkg/billing"
	"github.com/getpressed/pressed/pkg/cart"
	"github.com/getpressed/pressed/pkg/catalog"
	"github.com/getpressed/pressed/pkg/config"
	"github.com/getpressed/pressed/pkg/email"
	"github.com/getpressed/pressed/pkg/logging"
	"github.com/getpressed/pressed/pkg/ratelimit"
	"github.com/getpressed/pressed/pkg/referral"
)

// Server is the assembled back office.
type Server struct {
	cfg *config.Config
	log *slog.Logger

	store   storage.Store
	pg      *storage.PostgresStore
	api     *admin.API
	limiter *ratelimit.Limiter
}

// Version is set by the CLI before starting.
var Version = "dev"

// shutdownTimeout bounds graceful shutdown.
const shutdownTimeout = 10 * time.Second

// New builds a Server from configuration. With no database URL the
// in-memory store is used.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	log := logging.New(logging.Config{
		Level:  logging.ParseLevel(cfg.Logging.Level),
		Format: logging.ParseFormat(cfg.Logging.Format),
	})

	s := &Server{cfg: cfg, log: log}

	if cfg.Database.URL != "" {
		pg, err := storage.OpenPostgres(ctx, cfg.Database.URL)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		s.pg = pg
		s.store = pg
		log.Info("using postgres store")
	} else {
		s.store = storage.NewMemoryStore()
		log.Warn("no database configured, using in-memory store")
	}

	provider := billing.NewStripeProvider(cfg.Payments.APIKey)

	var sender email.Sender
	if cfg.Email.APIKey != "" {
		var opts []email.ResendOption
		if cfg.Email.Endpoint != "" {
			opts = append(opts, email.WithEndpoint(cfg.Email.Endpoint))
		}
		sender = email.NewResendSender(cfg.Email.APIKey, opts...)
	}

	var emails *email.Service
	if sender != nil {
		emails = email.NewService(s.store, sender, cfg.Email.From)
		emails.SetLogger(log)
	}

	referrals := referral.NewService(s.store, provider, emails)
	referrals.SetLogger(log)

	webhook := billing.NewWebhook(cfg.Payments.WebhookSecret, s.store, referrals.CompleteOnFirstPurchase)
	webhook.SetLogger(log)

	cat := catalog.NewService(s.store, provider)
	cat.SetLogger(log)

	carts := cart.NewService(s.store)
	checkout := billing.NewCheckout(provider, s.store, s.store,
		cfg.Payments.SuccessURL, cfg.Payments.CancelURL)

	limiter := ratelimit.New(ratelimit.Config{})
	s.limiter = limiter

	apiOpts := []admin.Option{
		admin.WithLogger(log),
		admin.WithRateLimiter(limiter),
		admin.WithProvider(provider),
		admin.WithCarts(carts),
		admin.WithCheckout(checkout),
		admin.WithWebhook(webhook),
		admin.WithReferrals(referrals),
		admin.WithCatalog(cat),
		admin.WithVersion(Version),
		admin.WithAPIKeyConfig(admin.APIKeyConfig{
			Enabled:        true,
			Key:            cfg.Admin.APIKey,
			AllowLocalhost: cfg.Admin.AllowLocalhost,
		}),
	}
	if emails != nil {
		apiOpts = append(apiOpts, admin.WithEmails(emails))
	}

	api, err := admin.NewAPI(cfg.Admin.Port, s.store, apiOpts...)
	if err != nil {
		return nil, fmt.Errorf("create admin api: %w", err)
	}
	s.api = api
	return s, nil
}

// Run serves the admin API until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	defer s.limiter.Stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.api.Start()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.api.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown admin api: %w", err)
	}
	if s.pg != nil {
		if err := s.pg.Close(); err != nil {
			s.log.Error("close database", "error", err)
		}
	}
	return nil
}

// Store exposes the server's store (tests, seeding).
func (s *Server) Store() storage.Store {
	return s.store
}

// Logger returns the server's logger.
func (s *Server) Logger() *slog.Logger {
	return s.log
}
