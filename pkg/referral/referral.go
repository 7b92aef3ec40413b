// Package referral implements the give-get referral program: customers share
// a short code, and when a referred friend makes their first purchase both
// sides receive a discount coupon and a notification email.
package referral

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/getpressed/pressed/internal/storage"
	"github.com/getpressed/pressed/pkg/billing"
	"github.com/getpressed/pressed/pkg/email"
	"github.com/getpressed/pressed/pkg/logging"
)

// Referral errors.
var (
	ErrSelfReferral    = errors.New("cannot use your own referral code")
	ErrAlreadyReferred = errors.New("email already has a pending referral")
	ErrAlreadyUsed     = errors.New("referral code already used")
)

// RewardPercent is the discount both sides receive when a referral
// completes.
const RewardPercent = 15

// Email template names used for reward notifications.
const (
	referrerRewardTemplate = "referral-reward-referrer"
	refereeRewardTemplate  = "referral-reward-referee"
)

// Service runs the referral program.
type Service struct {
	store    storage.ReferralStore
	provider billing.Provider
	emails   *email.Service
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates a referral service. emails may be nil to skip reward
// notifications.
func NewService(store storage.ReferralStore, provider billing.Provider, emails *email.Service) *Service {
	return &Service{
		store:    store,
		provider: provider,
		emails:   emails,
		log:      logging.Nop(),
		now:      time.Now,
	}
}

// SetLogger sets the logger for the service.
func (s *Service) SetLogger(log *slog.Logger) {
	if log != nil {
		s.log = log
	}
}

// CreateCode issues a new referral code for a referrer.
func (s *Service) CreateCode(ctx context.Context, referrerEmail string) (*storage.Referral, error) {
	r := &storage.Referral{
		ID:            "ref_" + uuid.NewString()[:8],
		Code:          newCode(),
		ReferrerEmail: referrerEmail,
		Status:        storage.ReferralPending,
		CreatedAt:     s.now().UTC(),
	}
	if err := s.store.CreateReferral(ctx, r); err != nil {
		return nil, fmt.Errorf("create referral: %w", err)
	}
	s.log.Info("referral code created", "code", r.Code, "referrer", referrerEmail)
	return r, nil
}

// TrackSignup binds a referee to a referral code. Self-referrals and
// referees who already hold a pending referral are rejected.
func (s *Service) TrackSignup(ctx context.Context, code, refereeEmail string) (*storage.Referral, error) {
	r, err := s.store.GetReferralByCode(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("look up code %q: %w", code, err)
	}
	if r.Status != storage.ReferralPending || r.RefereeEmail != "" {
		return nil, ErrAlreadyUsed
	}
	if strings.EqualFold(r.ReferrerEmail, refereeEmail) {
		return nil, ErrSelfReferral
	}
	if _, err := s.store.GetPendingReferralByReferee(ctx, refereeEmail); err == nil {
		return nil, ErrAlreadyReferred
	} else if !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}

	r.RefereeEmail = refereeEmail
	if err := s.store.UpdateReferral(ctx, r); err != nil {
		return nil, fmt.Errorf("bind referee: %w", err)
	}
	s.log.Info("referral signup tracked", "code", code, "referee", refereeEmail)
	return r, nil
}

// CompleteOnFirstPurchase closes out a pending referral after the referee's
// first purchase: both sides get a coupon and an email. It is wired as the
// billing webhook's first-purchase hook, so it never fails the webhook; any
// side-effect errors are logged and the referral still completes.
func (s *Service) CompleteOnFirstPurchase(ctx context.Context, refereeEmail string) {
	r, err := s.store.GetPendingReferralByReferee(ctx, refereeEmail)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			s.log.Error("look up pending referral", "referee", refereeEmail, "error", err)
		}
		return
	}

	r.ReferrerCouponID = s.issueCoupon(ctx, "Referral thanks for "+r.ReferrerEmail)
	r.RefereeCouponID = s.issueCoupon(ctx, "Referral welcome for "+r.RefereeEmail)

	now := s.now().UTC()
	r.Status = storage.ReferralCompleted
	r.CompletedAt = &now
	if err := s.store.UpdateReferral(ctx, r); err != nil {
		s.log.Error("complete referral", "code", r.Code, "error", err)
		return
	}
	s.log.Info("referral completed", "code", r.Code, "referrer", r.ReferrerEmail, "referee", r.RefereeEmail)

	s.notify(ctx, referrerRewardTemplate, r.ReferrerEmail, map[string]any{
		"friend_email":   r.RefereeEmail,
		"reward_percent": RewardPercent,
	})
	s.notify(ctx, refereeRewardTemplate, r.RefereeEmail, map[string]any{
		"reward_percent": RewardPercent,
	})
}

func (s *Service) issueCoupon(ctx context.Context, name string) string {
	coupon, err := s.provider.CreateCoupon(ctx, &billing.CouponParams{
		Name:       name,
		PercentOff: RewardPercent,
	})
	if err != nil {
		s.log.Error("issue reward coupon", "name", name, "error", err)
		return ""
	}
	return coupon.ID
}

func (s *Service) notify(ctx context.Context, templateName, to string, data map[string]any) {
	if s.emails == nil || to == "" {
		return
	}
	if _, err := s.emails.SendTemplate(ctx, templateName, to, data); err != nil {
		s.log.Error("send reward email", "template", templateName, "to", to, "error", err)
	}
}

// newCode derives a short shareable code.
func newCode() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}
