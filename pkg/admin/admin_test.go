package admin

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getpressed/pressed/internal/storage"
	"github.com/getpressed/pressed/pkg/billing"
	"github.com/getpressed/pressed/pkg/cart"
	"github.com/getpressed/pressed/pkg/catalog"
	"github.com/getpressed/pressed/pkg/referral"
)

const testKey = "pk_test"

type fakeProvider struct {
	prices   []billing.Price
	sessions int
	coupons  int
	cancels  int
	err      error
}

func (f *fakeProvider) CreateCheckoutSession(context.Context, *billing.CheckoutParams) (*billing.CheckoutSession, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.sessions++
	return &billing.CheckoutSession{ID: "cs_test", URL: "https://checkout.example.com/cs_test"}, nil
}

func (f *fakeProvider) CreateCoupon(context.Context, *billing.CouponParams) (*billing.Coupon, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.coupons++
	return &billing.Coupon{ID: "coup_test"}, nil
}

func (f *fakeProvider) ListPrices(context.Context) ([]billing.Price, error) {
	return f.prices, f.err
}

func (f *fakeProvider) CancelSubscription(context.Context, string) error {
	if f.err != nil {
		return f.err
	}
	f.cancels++
	return nil
}

func newTestAPI(t *testing.T) (*API, *storage.MemoryStore, *fakeProvider) {
	t.Helper()
	store := storage.NewMemoryStore()
	provider := &fakeProvider{}
	carts := cart.NewService(store)
	api, err := NewAPI(0, store,
		WithAPIKeyConfig(APIKeyConfig{Enabled: true, Key: testKey}),
		WithProvider(provider),
		WithCarts(carts),
		WithCheckout(billing.NewCheckout(provider, store, store, "https://x/thanks", "https://x/cart")),
		WithWebhook(billing.NewWebhook("whsec_test", store, nil)),
		WithReferrals(referral.NewService(store, provider, nil)),
		WithCatalog(catalog.NewService(store, provider)),
	)
	require.NoError(t, err)
	return api, store, provider
}

func doRequest(t *testing.T, api *API, method, path string, body any, authed bool) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if authed {
		req.Header.Set(APIKeyHeader, testKey)
	}
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestHealthIsExempt(t *testing.T) {
	api, _, _ := newTestAPI(t)
	rec := doRequest(t, api, http.MethodGet, "/health", nil, false)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRequired(t *testing.T) {
	api, _, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodGet, "/templates", nil, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/templates", nil)
	req.Header.Set(APIKeyHeader, "pk_wrong")
	rec = httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Bearer form works too.
	req = httptest.NewRequest(http.MethodGet, "/templates", nil)
	req.Header.Set("Authorization", "Bearer "+testKey)
	rec = httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestTemplateCRUD(t *testing.T) {
	api, _, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodPost, "/templates", templateRequest{
		Name:     "order-confirmation",
		Subject:  "Thanks {{customer_name}}",
		HTMLBody: "<p>You paid {{total|currency}}.</p>",
		Schema:   map[string]any{"customer_name": "string", "total": "currency"},
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[storage.EmailTemplate](t, rec)
	require.NotEmpty(t, created.ID)

	rec = doRequest(t, api, http.MethodGet, "/templates/"+created.ID, nil, true)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Duplicate name conflicts.
	rec = doRequest(t, api, http.MethodPost, "/templates", templateRequest{
		Name: "order-confirmation", Subject: "x", HTMLBody: "y",
	}, true)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, api, http.MethodPut, "/templates/"+created.ID, templateRequest{
		Name: "order-confirmation", Subject: "Updated", HTMLBody: "<p>Hi</p>",
	}, true)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, api, http.MethodDelete, "/templates/"+created.ID, nil, true)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, api, http.MethodGet, "/templates/"+created.ID, nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTemplatePreviewWithSampleData(t *testing.T) {
	api, _, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodPost, "/templates", templateRequest{
		Name:     "welcome",
		Subject:  "Welcome {{name}}",
		HTMLBody: "<p>Hello {{name}}, you get {{credit|currency}}.</p>",
		Schema:   map[string]any{"name": "string", "credit": "currency"},
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[storage.EmailTemplate](t, rec)

	rec = doRequest(t, api, http.MethodPost, "/templates/"+created.ID+"/preview", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	preview := decodeBody[previewResponse](t, rec)
	assert.Equal(t, "Welcome Sample name", preview.Subject)
	assert.Contains(t, preview.HTMLBody, "$49.99")

	// Explicit data overrides sample generation.
	rec = doRequest(t, api, http.MethodPost, "/templates/"+created.ID+"/preview", previewRequest{
		Data: map[string]any{"name": "Ana", "credit": 1500},
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	preview = decodeBody[previewResponse](t, rec)
	assert.Equal(t, "Welcome Ana", preview.Subject)
	assert.Contains(t, preview.HTMLBody, "$15.00")
}

func TestTemplateValidate(t *testing.T) {
	api, _, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodPost, "/templates", templateRequest{
		Name:     "broken",
		Subject:  "Hi {{name}}",
		HTMLBody: "<p>{{undeclared}}</p>",
		Schema:   map[string]any{"name": "string"},
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decodeBody[storage.EmailTemplate](t, rec)

	rec = doRequest(t, api, http.MethodPost, "/templates/"+created.ID+"/validate", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	result := decodeBody[validateResponse](t, rec)
	assert.False(t, result.Valid)
	assert.Contains(t, result.Errors, `Variable "undeclared" is not defined in schema`)
	assert.Contains(t, result.Variables, "name")
	assert.Contains(t, result.Variables, "undeclared")
}

// failingStore makes create operations fail with a non-duplicate error.
type failingStore struct {
	*storage.MemoryStore
}

func (f *failingStore) CreateTemplate(context.Context, *storage.EmailTemplate) error {
	return errors.New("disk full")
}

func (f *failingStore) CreateDiscount(context.Context, *storage.Discount) error {
	return errors.New("disk full")
}

func TestCreateStoreErrorIsNotConflict(t *testing.T) {
	store := &failingStore{MemoryStore: storage.NewMemoryStore()}
	api, err := NewAPI(0, store, WithAPIKeyConfig(APIKeyConfig{Enabled: true, Key: testKey}))
	require.NoError(t, err)

	rec := doRequest(t, api, http.MethodPost, "/templates", templateRequest{
		Name: "welcome", Subject: "Hi", HTMLBody: "<p>Hi</p>",
	}, true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = doRequest(t, api, http.MethodPost, "/discounts", discountRequest{
		Code: "SAVE10", PercentOff: 10, Active: true,
	}, true)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDiscountCreateUsesProvider(t *testing.T) {
	api, _, provider := newTestAPI(t)

	rec := doRequest(t, api, http.MethodPost, "/discounts", discountRequest{
		Code: "JUICE10", PercentOff: 10, Active: true,
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	d := decodeBody[storage.Discount](t, rec)
	assert.Equal(t, "coup_test", d.ProviderCouponID)
	assert.Equal(t, 1, provider.coupons)

	// Both or neither discount kinds are rejected.
	rec = doRequest(t, api, http.MethodPost, "/discounts", discountRequest{
		Code: "BAD", PercentOff: 10, AmountOffCents: 500,
	}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDiscountCreateProviderDown(t *testing.T) {
	api, _, provider := newTestAPI(t)
	provider.err = errors.New("provider down")

	rec := doRequest(t, api, http.MethodPost, "/discounts", discountRequest{
		Code: "JUICE10", PercentOff: 10, Active: true,
	}, true)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func seedTestProduct(t *testing.T, store *storage.MemoryStore, p *storage.Product) {
	t.Helper()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	require.NoError(t, store.CreateProduct(context.Background(), p))
}

func TestCartFlow(t *testing.T) {
	api, store, provider := newTestAPI(t)
	seedTestProduct(t, store, &storage.Product{
		ID: "prod_greens", Slug: "greens", Name: "Greens", PriceCents: 1200, Active: true,
	})
	seedTestProduct(t, store, &storage.Product{
		ID: "prod_weekly", Slug: "weekly", Name: "Weekly Box", PriceCents: 4999,
		Subscription: true, Active: true,
	})

	// Cart routes are storefront-facing and need no API key.
	rec := doRequest(t, api, http.MethodPost, "/store/carts", nil, false)
	require.Equal(t, http.StatusCreated, rec.Code)
	c := decodeBody[cartResponse](t, rec)

	rec = doRequest(t, api, http.MethodPost, "/store/carts/"+c.ID+"/items", addItemRequest{
		ProductID: "prod_greens", Quantity: 2,
	}, false)
	require.Equal(t, http.StatusOK, rec.Code)
	c = decodeBody[cartResponse](t, rec)
	assert.Equal(t, int64(2400), c.Totals.TotalCents)

	// Mixing in a subscription is rejected.
	rec = doRequest(t, api, http.MethodPost, "/store/carts/"+c.ID+"/items", addItemRequest{
		ProductID: "prod_weekly",
	}, false)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, api, http.MethodPost, "/store/carts/"+c.ID+"/checkout", checkoutRequest{
		Email: "ana@example.com",
	}, false)
	require.Equal(t, http.StatusCreated, rec.Code)
	session := decodeBody[billing.CheckoutSession](t, rec)
	assert.Equal(t, "cs_test", session.ID)
	assert.Equal(t, 1, provider.sessions)
}

func TestApplyInvalidDiscountCode(t *testing.T) {
	api, _, _ := newTestAPI(t)
	rec := doRequest(t, api, http.MethodPost, "/store/carts", nil, false)
	c := decodeBody[cartResponse](t, rec)

	rec = doRequest(t, api, http.MethodPost, "/store/carts/"+c.ID+"/discount", applyDiscountRequest{
		Code: "NOPE",
	}, false)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestWholesaleFlow(t *testing.T) {
	api, _, _ := newTestAPI(t)

	// Inquiry form is public.
	rec := doRequest(t, api, http.MethodPost, "/store/wholesale", inquiryRequest{
		Company: "Corner Cafe", ContactName: "Sam", Email: "sam@cafe.com", CasesPerMonth: 12,
	}, false)
	require.Equal(t, http.StatusCreated, rec.Code)
	inquiry := decodeBody[storage.WholesaleInquiry](t, rec)
	assert.Equal(t, storage.InquiryNew, inquiry.Status)

	rec = doRequest(t, api, http.MethodPut, "/wholesale/"+inquiry.ID+"/status", statusRequest{
		Status: storage.InquiryContacted,
	}, true)
	require.Equal(t, http.StatusOK, rec.Code)
	inquiry = decodeBody[storage.WholesaleInquiry](t, rec)
	assert.Equal(t, storage.InquiryContacted, inquiry.Status)

	rec = doRequest(t, api, http.MethodPut, "/wholesale/"+inquiry.ID+"/status", statusRequest{
		Status: "bogus",
	}, true)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelSubscription(t *testing.T) {
	api, store, provider := newTestAPI(t)
	require.NoError(t, store.UpsertSubscription(context.Background(), &storage.Subscription{
		ID:                     "sub_local",
		ProviderSubscriptionID: "sub_prov",
		CustomerEmail:          "sam@example.com",
		Status:                 "active",
	}))

	rec := doRequest(t, api, http.MethodPost, "/subscriptions/sub_local/cancel", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	sub := decodeBody[storage.Subscription](t, rec)
	assert.Equal(t, "canceled", sub.Status)
	assert.Equal(t, 1, provider.cancels)

	// Canceling again is a no-op and does not hit the provider.
	rec = doRequest(t, api, http.MethodPost, "/subscriptions/sub_local/cancel", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, provider.cancels)

	rec = doRequest(t, api, http.MethodPost, "/subscriptions/missing/cancel", nil, true)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSyncStatusEndpoint(t *testing.T) {
	api, store, provider := newTestAPI(t)
	provider.prices = []billing.Price{
		{ID: "price_greens", UnitAmountCents: 1200, Active: true},
	}
	seedTestProduct(t, store, &storage.Product{
		ID: "prod_greens", Slug: "greens", Name: "Greens", PriceCents: 1200,
		ProviderPriceID: "price_greens", Active: true,
	})

	rec := doRequest(t, api, http.MethodGet, "/sync-status", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeBody[catalog.SyncStatus](t, rec)
	assert.True(t, status.InSync)
}

func TestWebhookEndpoint(t *testing.T) {
	api, store, _ := newTestAPI(t)

	object, _ := json.Marshal(map[string]any{
		"id": "cs_hook", "mode": "payment", "amount_total": 2850,
		"customer_email": "ana@example.com",
	})
	payload, err := json.Marshal(map[string]any{
		"id": "evt_1", "type": "checkout.session.completed",
		"data": map[string]any{"object": json.RawMessage(object)},
	})
	require.NoError(t, err)

	// No API key, but a valid signature.
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(payload))
	req.Header.Set("Pressed-Signature", billing.SignPayload(payload, "whsec_test", time.Now()))
	rec := httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	p, err := store.GetPurchaseBySession(context.Background(), "cs_hook")
	require.NoError(t, err)
	assert.Equal(t, int64(2850), p.AmountCents)

	// Bad signature is rejected.
	req = httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(payload))
	req.Header.Set("Pressed-Signature", "t=1,v1=deadbeef")
	rec = httptest.NewRecorder()
	api.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestReferralSignupEndpoint(t *testing.T) {
	api, _, _ := newTestAPI(t)

	rec := doRequest(t, api, http.MethodPost, "/referrals", createReferralRequest{
		ReferrerEmail: "ana@example.com",
	}, true)
	require.Equal(t, http.StatusCreated, rec.Code)
	ref := decodeBody[storage.Referral](t, rec)

	rec = doRequest(t, api, http.MethodPost, "/store/referrals/signup", referralSignupRequest{
		Code: ref.Code, Email: "ben@example.com",
	}, false)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(t, api, http.MethodPost, "/store/referrals/signup", referralSignupRequest{
		Code: ref.Code, Email: "ana@example.com",
	}, false)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doRequest(t, api, http.MethodPost, "/store/referrals/signup", referralSignupRequest{
		Code: "UNKNOWN1", Email: "dan@example.com",
	}, false)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusEndpoint(t *testing.T) {
	api, store, _ := newTestAPI(t)
	seedTestProduct(t, store, &storage.Product{
		ID: "prod_greens", Slug: "greens", Name: "Greens", PriceCents: 1200, Active: true,
	})

	rec := doRequest(t, api, http.MethodGet, "/status", nil, true)
	require.Equal(t, http.StatusOK, rec.Code)
	status := decodeBody[StatusResponse](t, rec)
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, 1, status.Products)
}
