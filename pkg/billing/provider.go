// Package billing integrates with the payment provider: hosted checkout
// sessions, coupon creation and webhook processing. The Provider interface
// keeps the rest of the code off the provider's wire format; StripeProvider
// is the real implementation.
package billing

import "context"

// Checkout modes.
const (
	ModePayment      = "payment"
	ModeSubscription = "subscription"
)

// CheckoutLine is one line of a checkout session. If PriceID is set the
// provider's stored price is used; otherwise Name and AmountCents describe an
// ad-hoc price.
type CheckoutLine struct {
	PriceID     string
	Name        string
	AmountCents int64
	Quantity    int
}

// CheckoutParams describes a hosted checkout session to create.
type CheckoutParams struct {
	Mode          string
	SuccessURL    string
	CancelURL     string
	CustomerEmail string
	Lines         []CheckoutLine
	CouponID      string
	Metadata      map[string]string
}

// CheckoutSession is a created hosted checkout session.
type CheckoutSession struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// CouponParams describes a coupon to create on the provider. Exactly one of
// PercentOff and AmountOffCents is non-zero.
type CouponParams struct {
	Name           string
	PercentOff     int
	AmountOffCents int64
}

// Coupon is a created provider coupon.
type Coupon struct {
	ID string `json:"id"`
}

// Price is a provider price object, as returned by ListPrices.
type Price struct {
	ID              string `json:"id"`
	ProductName     string `json:"productName"`
	UnitAmountCents int64  `json:"unitAmountCents"`
	Recurring       bool   `json:"recurring"`
	Active          bool   `json:"active"`
}

// Provider is the payment provider surface the back office needs.
type Provider interface {
	CreateCheckoutSession(ctx context.Context, params *CheckoutParams) (*CheckoutSession, error)
	CreateCoupon(ctx context.Context, params *CouponParams) (*Coupon, error)
	ListPrices(ctx context.Context) ([]Price, error)
	// CancelSubscription cancels the provider subscription immediately.
	CancelSubscription(ctx context.Context, providerSubscriptionID string) error
}
