package referral

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getpressed/pressed/internal/storage"
	"github.com/getpressed/pressed/pkg/billing"
	"github.com/getpressed/pressed/pkg/email"
)

// fakeProvider counts coupons and can be made to fail.
type fakeProvider struct {
	coupons []*billing.CouponParams
	err     error
}

func (f *fakeProvider) CreateCoupon(_ context.Context, p *billing.CouponParams) (*billing.Coupon, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.coupons = append(f.coupons, p)
	return &billing.Coupon{ID: "coup_" + p.Name}, nil
}

func (f *fakeProvider) CreateCheckoutSession(context.Context, *billing.CheckoutParams) (*billing.CheckoutSession, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProvider) ListPrices(context.Context) ([]billing.Price, error) {
	return nil, errors.New("not implemented")
}

func (f *fakeProvider) CancelSubscription(context.Context, string) error {
	return errors.New("not implemented")
}

type fakeSender struct {
	sent []*email.Email
}

func (f *fakeSender) Send(_ context.Context, e *email.Email) (*email.SendResult, error) {
	f.sent = append(f.sent, e)
	return &email.SendResult{MessageID: "msg_test"}, nil
}

func seedRewardTemplates(t *testing.T, store storage.TemplateStore) {
	t.Helper()
	now := time.Now().UTC()
	for _, name := range []string{referrerRewardTemplate, refereeRewardTemplate} {
		require.NoError(t, store.CreateTemplate(context.Background(), &storage.EmailTemplate{
			ID:        "tpl_" + name,
			Name:      name,
			Subject:   "Your {{reward_percent}}% off is here",
			HTMLBody:  "<p>Enjoy {{reward_percent}}% off your next order.</p>",
			CreatedAt: now,
			UpdatedAt: now,
		}))
	}
}

func newTestService(t *testing.T) (*Service, *storage.MemoryStore, *fakeProvider, *fakeSender) {
	t.Helper()
	store := storage.NewMemoryStore()
	seedRewardTemplates(t, store)
	provider := &fakeProvider{}
	sender := &fakeSender{}
	emails := email.NewService(store, sender, "hello@getpressed.com")
	return NewService(store, provider, emails), store, provider, sender
}

func TestCreateCode(t *testing.T) {
	svc, store, _, _ := newTestService(t)

	r, err := svc.CreateCode(context.Background(), "ana@example.com")
	require.NoError(t, err)
	assert.Len(t, r.Code, 8)
	assert.Equal(t, storage.ReferralPending, r.Status)

	got, err := store.GetReferralByCode(context.Background(), r.Code)
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", got.ReferrerEmail)
}

func TestTrackSignup(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	r, err := svc.CreateCode(ctx, "ana@example.com")
	require.NoError(t, err)

	got, err := svc.TrackSignup(ctx, r.Code, "ben@example.com")
	require.NoError(t, err)
	assert.Equal(t, "ben@example.com", got.RefereeEmail)
	assert.Equal(t, storage.ReferralPending, got.Status)
}

func TestTrackSignupRejectsSelfReferral(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	r, err := svc.CreateCode(ctx, "ana@example.com")
	require.NoError(t, err)

	_, err = svc.TrackSignup(ctx, r.Code, "Ana@Example.com")
	assert.ErrorIs(t, err, ErrSelfReferral)
}

func TestTrackSignupRejectsDuplicateReferee(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	r1, err := svc.CreateCode(ctx, "ana@example.com")
	require.NoError(t, err)
	r2, err := svc.CreateCode(ctx, "carol@example.com")
	require.NoError(t, err)

	_, err = svc.TrackSignup(ctx, r1.Code, "ben@example.com")
	require.NoError(t, err)
	_, err = svc.TrackSignup(ctx, r2.Code, "ben@example.com")
	assert.ErrorIs(t, err, ErrAlreadyReferred)
}

func TestTrackSignupRejectsUsedCode(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()

	r, err := svc.CreateCode(ctx, "ana@example.com")
	require.NoError(t, err)
	_, err = svc.TrackSignup(ctx, r.Code, "ben@example.com")
	require.NoError(t, err)

	_, err = svc.TrackSignup(ctx, r.Code, "dan@example.com")
	assert.ErrorIs(t, err, ErrAlreadyUsed)
}

func TestCompleteOnFirstPurchase(t *testing.T) {
	svc, store, provider, sender := newTestService(t)
	ctx := context.Background()

	r, err := svc.CreateCode(ctx, "ana@example.com")
	require.NoError(t, err)
	_, err = svc.TrackSignup(ctx, r.Code, "ben@example.com")
	require.NoError(t, err)

	svc.CompleteOnFirstPurchase(ctx, "ben@example.com")

	got, err := store.GetReferralByCode(ctx, r.Code)
	require.NoError(t, err)
	assert.Equal(t, storage.ReferralCompleted, got.Status)
	assert.NotNil(t, got.CompletedAt)
	assert.NotEmpty(t, got.ReferrerCouponID)
	assert.NotEmpty(t, got.RefereeCouponID)

	require.Len(t, provider.coupons, 2)
	assert.Equal(t, RewardPercent, provider.coupons[0].PercentOff)

	require.Len(t, sender.sent, 2)
	assert.Equal(t, []string{"ana@example.com"}, sender.sent[0].To)
	assert.Equal(t, []string{"ben@example.com"}, sender.sent[1].To)
	assert.Contains(t, sender.sent[1].Subject, "15% off")
}

func TestCompleteOnFirstPurchaseNoPendingReferral(t *testing.T) {
	svc, _, provider, sender := newTestService(t)
	svc.CompleteOnFirstPurchase(context.Background(), "stranger@example.com")
	assert.Empty(t, provider.coupons)
	assert.Empty(t, sender.sent)
}

func TestCompleteSurvivesCouponFailure(t *testing.T) {
	svc, store, provider, _ := newTestService(t)
	ctx := context.Background()
	provider.err = errors.New("provider down")

	r, err := svc.CreateCode(ctx, "ana@example.com")
	require.NoError(t, err)
	_, err = svc.TrackSignup(ctx, r.Code, "ben@example.com")
	require.NoError(t, err)

	svc.CompleteOnFirstPurchase(ctx, "ben@example.com")

	got, err := store.GetReferralByCode(ctx, r.Code)
	require.NoError(t, err)
	assert.Equal(t, storage.ReferralCompleted, got.Status)
	assert.Empty(t, got.ReferrerCouponID)
}
