// Package storage provides persistence for the pressed back office: email
// templates, discounts, subscriptions, purchases, referrals, wholesale
// inquiries and the product catalog. Two implementations exist: a
// thread-safe in-memory store (tests, local development) and a Postgres
// store.
package storage

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors shared by all implementations.
var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("already exists")
)

// EmailTemplate is a stored transactional email template. Subject and
// HTMLBody are template strings for pkg/template; Schema declares the
// variables the template may reference.
type EmailTemplate struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Subject   string         `json:"subject"`
	HTMLBody  string         `json:"htmlBody"`
	Schema    map[string]any `json:"schema,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Discount is a storefront discount code. Exactly one of PercentOff and
// AmountOffCents is non-zero. ProviderCouponID links the code to the payment
// provider's coupon object.
type Discount struct {
	ID               string     `json:"id"`
	Code             string     `json:"code"`
	PercentOff       int        `json:"percentOff,omitempty"`
	AmountOffCents   int64      `json:"amountOffCents,omitempty"`
	ProviderCouponID string     `json:"providerCouponId,omitempty"`
	Active           bool       `json:"active"`
	ExpiresAt        *time.Time `json:"expiresAt,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	UpdatedAt        time.Time  `json:"updatedAt"`
}

// Subscription mirrors a payment-provider subscription for the back office.
type Subscription struct {
	ID                     string    `json:"id"`
	ProviderSubscriptionID string    `json:"providerSubscriptionId"`
	CustomerEmail          string    `json:"customerEmail"`
	PriceID                string    `json:"priceId"`
	Status                 string    `json:"status"`
	CurrentPeriodEnd       time.Time `json:"currentPeriodEnd"`
	CreatedAt              time.Time `json:"createdAt"`
	UpdatedAt              time.Time `json:"updatedAt"`
}

// Purchase is a completed one-time checkout.
type Purchase struct {
	ID                string    `json:"id"`
	ProviderSessionID string    `json:"providerSessionId"`
	CustomerEmail     string    `json:"customerEmail"`
	AmountCents       int64     `json:"amountCents"`
	LineItemsJSON     string    `json:"lineItemsJson,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
}

// Referral statuses.
const (
	ReferralPending   = "pending"
	ReferralCompleted = "completed"
)

// Referral tracks a referral code from creation through reward issuance.
type Referral struct {
	ID               string     `json:"id"`
	Code             string     `json:"code"`
	ReferrerEmail    string     `json:"referrerEmail"`
	RefereeEmail     string     `json:"refereeEmail,omitempty"`
	Status           string     `json:"status"`
	ReferrerCouponID string     `json:"referrerCouponId,omitempty"`
	RefereeCouponID  string     `json:"refereeCouponId,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
}

// Wholesale inquiry statuses.
const (
	InquiryNew       = "new"
	InquiryContacted = "contacted"
	InquiryClosed    = "closed"
)

// WholesaleInquiry is a bulk-order inquiry from the storefront form.
type WholesaleInquiry struct {
	ID            string    `json:"id"`
	Company       string    `json:"company"`
	ContactName   string    `json:"contactName"`
	Email         string    `json:"email"`
	CasesPerMonth int       `json:"casesPerMonth"`
	Message       string    `json:"message,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// Product is a catalog entry. ProviderPriceID links it to the payment
// provider's price object; Subscription marks recurring products.
type Product struct {
	ID              string    `json:"id"`
	Slug            string    `json:"slug"`
	Name            string    `json:"name"`
	PriceCents      int64     `json:"priceCents"`
	ProviderPriceID string    `json:"providerPriceId,omitempty"`
	Subscription    bool      `json:"subscription"`
	Active          bool      `json:"active"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TemplateStore stores email templates.
type TemplateStore interface {
	CreateTemplate(ctx context.Context, t *EmailTemplate) error
	GetTemplate(ctx context.Context, id string) (*EmailTemplate, error)
	GetTemplateByName(ctx context.Context, name string) (*EmailTemplate, error)
	ListTemplates(ctx context.Context) ([]*EmailTemplate, error)
	UpdateTemplate(ctx context.Context, t *EmailTemplate) error
	DeleteTemplate(ctx context.Context, id string) error
}

// DiscountStore stores discount codes.
type DiscountStore interface {
	CreateDiscount(ctx context.Context, d *Discount) error
	GetDiscount(ctx context.Context, id string) (*Discount, error)
	GetDiscountByCode(ctx context.Context, code string) (*Discount, error)
	ListDiscounts(ctx context.Context) ([]*Discount, error)
	UpdateDiscount(ctx context.Context, d *Discount) error
	DeleteDiscount(ctx context.Context, id string) error
}

// SubscriptionStore stores provider subscription mirrors.
type SubscriptionStore interface {
	// UpsertSubscription inserts or updates by ProviderSubscriptionID.
	UpsertSubscription(ctx context.Context, s *Subscription) error
	GetSubscription(ctx context.Context, id string) (*Subscription, error)
	GetSubscriptionByProviderID(ctx context.Context, providerID string) (*Subscription, error)
	ListSubscriptions(ctx context.Context) ([]*Subscription, error)
}

// PurchaseStore stores completed checkouts.
type PurchaseStore interface {
	CreatePurchase(ctx context.Context, p *Purchase) error
	GetPurchaseBySession(ctx context.Context, sessionID string) (*Purchase, error)
	ListPurchases(ctx context.Context) ([]*Purchase, error)
	CountPurchasesByEmail(ctx context.Context, email string) (int, error)
}

// ReferralStore stores referral records.
type ReferralStore interface {
	CreateReferral(ctx context.Context, r *Referral) error
	GetReferralByCode(ctx context.Context, code string) (*Referral, error)
	GetPendingReferralByReferee(ctx context.Context, email string) (*Referral, error)
	UpdateReferral(ctx context.Context, r *Referral) error
	ListReferrals(ctx context.Context) ([]*Referral, error)
}

// WholesaleStore stores wholesale inquiries.
type WholesaleStore interface {
	CreateInquiry(ctx context.Context, w *WholesaleInquiry) error
	GetInquiry(ctx context.Context, id string) (*WholesaleInquiry, error)
	ListInquiries(ctx context.Context) ([]*WholesaleInquiry, error)
	UpdateInquiry(ctx context.Context, w *WholesaleInquiry) error
}

// ProductStore stores the product catalog.
type ProductStore interface {
	CreateProduct(ctx context.Context, p *Product) error
	GetProduct(ctx context.Context, id string) (*Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*Product, error)
	ListProducts(ctx context.Context) ([]*Product, error)
	UpdateProduct(ctx context.Context, p *Product) error
}

// Store is the full persistence surface used by the services.
type Store interface {
	TemplateStore
	DiscountStore
	SubscriptionStore
	PurchaseStore
	ReferralStore
	WholesaleStore
	ProductStore
}
