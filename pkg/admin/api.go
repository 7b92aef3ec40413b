// Package admin provides the REST API for the back office: email templates,
// discounts, subscriptions, referrals, wholesale inquiries, the product
// catalog, and the storefront endpoints (cart, checkout, webhooks).
package admin

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/getpressed/pressed/internal/storage"
	"github.com/getpressed/pressed/pkg/billing"
	"github.com/getpressed/pressed/pkg/cart"
	"github.com/getpressed/pressed/pkg/catalog"
	"github.com/getpressed/pressed/pkg/email"
	"github.com/getpressed/pressed/pkg/logging"
	"github.com/getpressed/pressed/pkg/ratelimit"
	"github.com/getpressed/pressed/pkg/referral"
)

// API exposes the back office over HTTP.
type API struct {
	store     storage.Store
	provider  billing.Provider
	carts     *cart.Service
	checkout  *billing.Checkout
	webhook   *billing.Webhook
	referrals *referral.Service
	catalog   *catalog.Service
	emails    *email.Service

	httpServer *http.Server
	port       int
	startTime  time.Time
	log        *slog.Logger

	apiKeyAuth   *apiKeyAuth
	apiKeyConfig APIKeyConfig

	limiter *ratelimit.Limiter
	version string
}

// NewAPI creates an API on the given port.
func NewAPI(port int, store storage.Store, opts ...Option) (*API, error) {
	a := &API{
		store:        store,
		port:         port,
		log:          logging.Nop(),
		apiKeyConfig: DefaultAPIKeyConfig(),
	}
	for _, opt := range opts {
		opt(a)
	}

	auth, err := newAPIKeyAuth(a.apiKeyConfig, a.log)
	if err != nil {
		return nil, fmt.Errorf("initialize api key auth: %w", err)
	}
	a.apiKeyAuth = auth
	return a, nil
}

// Option configures an API.
type Option func(*API)

// WithLogger sets the logger.
func WithLogger(log *slog.Logger) Option {
	return func(a *API) {
		if log != nil {
			a.log = log
		}
	}
}

// WithProvider wires the payment provider used for coupon management.
func WithProvider(p billing.Provider) Option {
	return func(a *API) { a.provider = p }
}

// WithCarts wires the cart service.
func WithCarts(s *cart.Service) Option {
	return func(a *API) { a.carts = s }
}

// WithCheckout wires the checkout service.
func WithCheckout(c *billing.Checkout) Option {
	return func(a *API) { a.checkout = c }
}

// WithWebhook wires the payment webhook processor.
func WithWebhook(w *billing.Webhook) Option {
	return func(a *API) { a.webhook = w }
}

// WithReferrals wires the referral service.
func WithReferrals(s *referral.Service) Option {
	return func(a *API) { a.referrals = s }
}

// WithCatalog wires the catalog service.
func WithCatalog(s *catalog.Service) Option {
	return func(a *API) { a.catalog = s }
}

// WithEmails wires the email service.
func WithEmails(s *email.Service) Option {
	return func(a *API) { a.emails = s }
}

// WithRateLimiter throttles the public storefront endpoints.
func WithRateLimiter(l *ratelimit.Limiter) Option {
	return func(a *API) { a.limiter = l }
}

// WithAPIKeyConfig overrides the API key configuration.
func WithAPIKeyConfig(cfg APIKeyConfig) Option {
	return func(a *API) { a.apiKeyConfig = cfg }
}

// WithVersion sets the version reported by GET /status.
func WithVersion(v string) Option {
	return func(a *API) { a.version = v }
}

// Handler returns the API's HTTP handler with middleware applied.
func (a *API) Handler() http.Handler {
	mux := http.NewServeMux()
	a.registerRoutes(mux)

	var handler http.Handler = mux
	handler = a.apiKeyAuth.middleware(handler)
	handler = a.storefrontRateLimit(handler)
	handler = a.loggingMiddleware(handler)
	return handler
}

// storefrontRateLimit throttles the unauthenticated storefront and webhook
// paths. Authenticated admin traffic is not limited.
func (a *API) storefrontRateLimit(next http.Handler) http.Handler {
	limited := ratelimit.Middleware(a.limiter)(next)
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.limiter != nil && (strings.HasPrefix(r.URL.Path, "/store/") || strings.HasPrefix(r.URL.Path, "/webhooks/")) {
			limited.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Start begins serving the API. It blocks until the listener fails or Stop
// is called.
func (a *API) Start() error {
	a.startTime = time.Now()
	a.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", a.port),
		Handler:           a.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	a.log.Info("admin api listening", "port", a.port)

	if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("admin api: %w", err)
	}
	return nil
}

// Stop gracefully shuts down the API.
func (a *API) Stop(ctx context.Context) error {
	if a.httpServer == nil {
		return nil
	}
	a.log.Info("admin api stopping")
	return a.httpServer.Shutdown(ctx)
}

// Uptime returns how long the API has been running.
func (a *API) Uptime() string {
	if a.startTime.IsZero() {
		return "0s"
	}
	return time.Since(a.startTime).Round(time.Second).String()
}

// APIKey returns the active API key.
func (a *API) APIKey() string {
	if a.apiKeyAuth == nil {
		return ""
	}
	return a.apiKeyAuth.getKey()
}

// loggingMiddleware logs each request at debug level.
func (a *API) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		a.log.Debug("request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}
