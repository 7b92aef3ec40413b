package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultStripeEndpoint is the Stripe API base URL.
const DefaultStripeEndpoint = "https://api.stripe.com"

// StripeProvider implements Provider against the Stripe HTTP API. Requests
// are form-encoded per the Stripe convention.
type StripeProvider struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// StripeOption configures a StripeProvider.
type StripeOption func(*StripeProvider)

// WithEndpoint overrides the API base URL (tests).
func WithEndpoint(u string) StripeOption {
	return func(p *StripeProvider) { p.endpoint = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) StripeOption {
	return func(p *StripeProvider) { p.client = c }
}

// NewStripeProvider creates a Provider backed by the Stripe API.
func NewStripeProvider(apiKey string, opts ...StripeOption) *StripeProvider {
	p := &StripeProvider{
		apiKey:   apiKey,
		endpoint: DefaultStripeEndpoint,
		client:   &http.Client{Timeout: 20 * time.Second},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// CreateCheckoutSession creates a hosted checkout session.
func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, params *CheckoutParams) (*CheckoutSession, error) {
	form := url.Values{}
	form.Set("mode", params.Mode)
	form.Set("success_url", params.SuccessURL)
	form.Set("cancel_url", params.CancelURL)
	if params.CustomerEmail != "" {
		form.Set("customer_email", params.CustomerEmail)
	}
	if params.CouponID != "" {
		form.Set("discounts[0][coupon]", params.CouponID)
	}
	for i, line := range params.Lines {
		prefix := fmt.Sprintf("line_items[%d]", i)
		qty := line.Quantity
		if qty <= 0 {
			qty = 1
		}
		form.Set(prefix+"[quantity]", strconv.Itoa(qty))
		if line.PriceID != "" {
			form.Set(prefix+"[price]", line.PriceID)
			continue
		}
		form.Set(prefix+"[price_data][currency]", "usd")
		form.Set(prefix+"[price_data][unit_amount]", strconv.FormatInt(line.AmountCents, 10))
		form.Set(prefix+"[price_data][product_data][name]", line.Name)
	}
	for k, v := range params.Metadata {
		form.Set("metadata["+k+"]", v)
	}

	var session CheckoutSession
	if err := p.post(ctx, "/v1/checkout/sessions", form, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateCoupon creates a once-off coupon.
func (p *StripeProvider) CreateCoupon(ctx context.Context, params *CouponParams) (*Coupon, error) {
	form := url.Values{}
	form.Set("duration", "once")
	if params.Name != "" {
		form.Set("name", params.Name)
	}
	if params.PercentOff > 0 {
		form.Set("percent_off", strconv.Itoa(params.PercentOff))
	} else {
		form.Set("amount_off", strconv.FormatInt(params.AmountOffCents, 10))
		form.Set("currency", "usd")
	}

	var coupon Coupon
	if err := p.post(ctx, "/v1/coupons", form, &coupon); err != nil {
		return nil, err
	}
	return &coupon, nil
}

type stripePrice struct {
	ID         string `json:"id"`
	UnitAmount int64  `json:"unit_amount"`
	Active     bool   `json:"active"`
	Recurring  *struct {
		Interval string `json:"interval"`
	} `json:"recurring"`
	Product struct {
		Name string `json:"name"`
	} `json:"product"`
}

type stripePriceList struct {
	Data []stripePrice `json:"data"`
}

// ListPrices returns the provider's prices with their products expanded.
func (p *StripeProvider) ListPrices(ctx context.Context) ([]Price, error) {
	u := p.endpoint + "/v1/prices?limit=100&expand[]=data.product"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build prices request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	var list stripePriceList
	if err := p.do(req, &list); err != nil {
		return nil, err
	}

	prices := make([]Price, 0, len(list.Data))
	for _, sp := range list.Data {
		prices = append(prices, Price{
			ID:              sp.ID,
			ProductName:     sp.Product.Name,
			UnitAmountCents: sp.UnitAmount,
			Recurring:       sp.Recurring != nil,
			Active:          sp.Active,
		})
	}
	return prices, nil
}

// CancelSubscription cancels the subscription immediately. Stripe models
// immediate cancellation as a DELETE on the subscription object.
func (p *StripeProvider) CancelSubscription(ctx context.Context, providerSubscriptionID string) error {
	u := p.endpoint + "/v1/subscriptions/" + url.PathEscape(providerSubscriptionID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("build cancel request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	var out struct {
		ID string `json:"id"`
	}
	return p.do(req, &out)
}

func (p *StripeProvider) post(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint+path, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)
	return p.do(req, out)
}

func (p *StripeProvider) do(req *http.Request, out any) error {
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("payment provider request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("payment provider returned %d: %s", resp.StatusCode, msg)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode provider response: %w", err)
	}
	return nil
}

// Ensure StripeProvider implements Provider.
var _ Provider = (*StripeProvider)(nil)
