package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/getpressed/pressed/internal/storage"
	"github.com/getpressed/pressed/pkg/logging"
)

// Webhook verification errors.
var (
	ErrBadSignature     = errors.New("webhook signature verification failed")
	ErrSignatureExpired = errors.New("webhook timestamp outside tolerance")
)

// DefaultTolerance is how far a webhook timestamp may drift from now.
const DefaultTolerance = 5 * time.Minute

// VerifySignature checks a "t=<unix>,v1=<hex>" signature header against the
// raw payload. The signed message is "<t>.<payload>" with HMAC-SHA256 over
// the secret. Any v1 entry matching is accepted.
func VerifySignature(payload []byte, header, secret string, tolerance time.Duration, now time.Time) error {
	var ts int64
	var sigs [][]byte
	for _, part := range strings.Split(header, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(part), "=")
		if !ok {
			continue
		}
		switch k {
		case "t":
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return ErrBadSignature
			}
			ts = n
		case "v1":
			sig, err := hex.DecodeString(v)
			if err != nil {
				continue
			}
			sigs = append(sigs, sig)
		}
	}
	if ts == 0 || len(sigs) == 0 {
		return ErrBadSignature
	}

	drift := now.Sub(time.Unix(ts, 0))
	if drift < 0 {
		drift = -drift
	}
	if drift > tolerance {
		return ErrSignatureExpired
	}

	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts)
	mac.Write(payload)
	expected := mac.Sum(nil)
	for _, sig := range sigs {
		if hmac.Equal(sig, expected) {
			return nil
		}
	}
	return ErrBadSignature
}

// Event is the envelope of a provider webhook event.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object json.RawMessage `json:"object"`
	} `json:"data"`
}

type checkoutObject struct {
	ID              string `json:"id"`
	Mode            string `json:"mode"`
	AmountTotal     int64  `json:"amount_total"`
	CustomerEmail   string `json:"customer_email"`
	CustomerDetails struct {
		Email string `json:"email"`
	} `json:"customer_details"`
}

type subscriptionObject struct {
	ID               string `json:"id"`
	Status           string `json:"status"`
	CurrentPeriodEnd int64  `json:"current_period_end"`
	Metadata         struct {
		Email string `json:"email"`
	} `json:"metadata"`
	Items struct {
		Data []struct {
			Price struct {
				ID string `json:"id"`
			} `json:"price"`
		} `json:"data"`
	} `json:"items"`
}

type invoiceObject struct {
	Subscription string `json:"subscription"`
	PeriodEnd    int64  `json:"period_end"`
}

// FirstPurchaseHook is called when a checkout completes for a customer with
// no prior purchases. The referral engine uses it to close out pending
// referrals.
type FirstPurchaseHook func(ctx context.Context, email string)

// Webhook verifies and processes provider webhook events. Unknown event
// types are logged and acknowledged so the provider stops retrying them.
type Webhook struct {
	secret          string
	tolerance       time.Duration
	store           storage.Store
	onFirstPurchase FirstPurchaseHook
	log             *slog.Logger
	now             func() time.Time
}

// NewWebhook creates a webhook processor. hook may be nil.
func NewWebhook(secret string, store storage.Store, hook FirstPurchaseHook) *Webhook {
	return &Webhook{
		secret:          secret,
		tolerance:       DefaultTolerance,
		store:           store,
		onFirstPurchase: hook,
		log:             logging.Nop(),
		now:             time.Now,
	}
}

// SetLogger sets the logger for the webhook processor.
func (w *Webhook) SetLogger(log *slog.Logger) {
	if log != nil {
		w.log = log
	}
}

// Handle verifies the signature and dispatches the event. A nil return means
// the event was accepted (including unknown event types).
func (w *Webhook) Handle(ctx context.Context, payload []byte, sigHeader string) error {
	if err := VerifySignature(payload, sigHeader, w.secret, w.tolerance, w.now()); err != nil {
		return err
	}

	var event Event
	if err := json.Unmarshal(payload, &event); err != nil {
		return fmt.Errorf("decode webhook event: %w", err)
	}

	switch event.Type {
	case "checkout.session.completed":
		return w.handleCheckoutCompleted(ctx, &event)
	case "customer.subscription.created", "customer.subscription.updated", "customer.subscription.deleted":
		return w.handleSubscriptionChange(ctx, &event)
	case "invoice.paid":
		return w.handleInvoicePaid(ctx, &event)
	default:
		w.log.Info("ignoring webhook event", "type", event.Type, "id", event.ID)
		return nil
	}
}

func (w *Webhook) handleCheckoutCompleted(ctx context.Context, event *Event) error {
	var obj checkoutObject
	if err := json.Unmarshal(event.Data.Object, &obj); err != nil {
		return fmt.Errorf("decode checkout object: %w", err)
	}
	email := obj.CustomerEmail
	if email == "" {
		email = obj.CustomerDetails.Email
	}

	err := w.store.CreatePurchase(ctx, &storage.Purchase{
		ID:                "pur_" + uuid.NewString()[:8],
		ProviderSessionID: obj.ID,
		CustomerEmail:     email,
		AmountCents:       obj.AmountTotal,
		CreatedAt:         w.now().UTC(),
	})
	if errors.Is(err, storage.ErrDuplicate) {
		// Provider retried delivery; the purchase is already recorded.
		w.log.Info("duplicate checkout event", "session", obj.ID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("record purchase: %w", err)
	}
	w.log.Info("purchase recorded", "session", obj.ID, "email", email, "amountCents", obj.AmountTotal)

	if w.onFirstPurchase != nil && email != "" {
		count, err := w.store.CountPurchasesByEmail(ctx, email)
		if err != nil {
			w.log.Error("count purchases", "email", email, "error", err)
		} else if count == 1 {
			w.onFirstPurchase(ctx, email)
		}
	}
	return nil
}

func (w *Webhook) handleSubscriptionChange(ctx context.Context, event *Event) error {
	var obj subscriptionObject
	if err := json.Unmarshal(event.Data.Object, &obj); err != nil {
		return fmt.Errorf("decode subscription object: %w", err)
	}

	// The upsert keeps the existing row's ID when the provider subscription
	// is already known; this ID is only used on first insert.
	sub := &storage.Subscription{
		ID:                     "sub_" + uuid.NewString()[:8],
		ProviderSubscriptionID: obj.ID,
		CustomerEmail:          obj.Metadata.Email,
		Status:                 obj.Status,
		CurrentPeriodEnd:       time.Unix(obj.CurrentPeriodEnd, 0).UTC(),
		CreatedAt:              w.now().UTC(),
	}
	if len(obj.Items.Data) > 0 {
		sub.PriceID = obj.Items.Data[0].Price.ID
	}
	if event.Type == "customer.subscription.deleted" {
		sub.Status = "canceled"
	}

	if err := w.store.UpsertSubscription(ctx, sub); err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	w.log.Info("subscription updated", "providerId", obj.ID, "status", sub.Status)
	return nil
}

func (w *Webhook) handleInvoicePaid(ctx context.Context, event *Event) error {
	var obj invoiceObject
	if err := json.Unmarshal(event.Data.Object, &obj); err != nil {
		return fmt.Errorf("decode invoice object: %w", err)
	}
	if obj.Subscription == "" {
		return nil
	}

	sub, err := w.store.GetSubscriptionByProviderID(ctx, obj.Subscription)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			w.log.Warn("invoice for unknown subscription", "providerId", obj.Subscription)
			return nil
		}
		return fmt.Errorf("load subscription: %w", err)
	}

	sub.Status = "active"
	if obj.PeriodEnd > 0 {
		sub.CurrentPeriodEnd = time.Unix(obj.PeriodEnd, 0).UTC()
	}
	if err := w.store.UpsertSubscription(ctx, sub); err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	w.log.Info("invoice applied", "providerId", obj.Subscription, "periodEnd", sub.CurrentPeriodEnd)
	return nil
}

// SignPayload produces a "t=<unix>,v1=<hex>" header for payload. Tests and
// the local webhook replay tool use it.
func SignPayload(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.", ts.Unix())
	mac.Write(payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}
