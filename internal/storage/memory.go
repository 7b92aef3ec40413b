package storage

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is a thread-safe in-memory implementation of Store. Used in
// tests and when no database is configured.
type MemoryStore struct {
	mu            sync.RWMutex
	templates     map[string]*EmailTemplate
	discounts     map[string]*Discount
	subscriptions map[string]*Subscription
	purchases     map[string]*Purchase
	referrals     map[string]*Referral
	inquiries     map[string]*WholesaleInquiry
	products      map[string]*Product
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		templates:     make(map[string]*EmailTemplate),
		discounts:     make(map[string]*Discount),
		subscriptions: make(map[string]*Subscription),
		purchases:     make(map[string]*Purchase),
		referrals:     make(map[string]*Referral),
		inquiries:     make(map[string]*WholesaleInquiry),
		products:      make(map[string]*Product),
	}
}

// Templates

func (s *MemoryStore) CreateTemplate(_ context.Context, t *EmailTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.templates[t.ID]; exists {
		return ErrDuplicate
	}
	for _, existing := range s.templates {
		if existing.Name == t.Name {
			return ErrDuplicate
		}
	}
	s.templates[t.ID] = t
	return nil
}

func (s *MemoryStore) GetTemplate(_ context.Context, id string) (*EmailTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.templates[id]
	if !ok {
		return nil, ErrNotFound
	}
	return t, nil
}

func (s *MemoryStore) GetTemplateByName(_ context.Context, name string) (*EmailTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, t := range s.templates {
		if t.Name == name {
			return t, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListTemplates(_ context.Context) ([]*EmailTemplate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*EmailTemplate, 0, len(s.templates))
	for _, t := range s.templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) UpdateTemplate(_ context.Context, t *EmailTemplate) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[t.ID]; !ok {
		return ErrNotFound
	}
	t.UpdatedAt = time.Now().UTC()
	s.templates[t.ID] = t
	return nil
}

func (s *MemoryStore) DeleteTemplate(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.templates[id]; !ok {
		return ErrNotFound
	}
	delete(s.templates, id)
	return nil
}

// Discounts

func (s *MemoryStore) CreateDiscount(_ context.Context, d *Discount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.discounts[d.ID]; exists {
		return ErrDuplicate
	}
	for _, existing := range s.discounts {
		if strings.EqualFold(existing.Code, d.Code) {
			return ErrDuplicate
		}
	}
	s.discounts[d.ID] = d
	return nil
}

func (s *MemoryStore) GetDiscount(_ context.Context, id string) (*Discount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.discounts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return d, nil
}

func (s *MemoryStore) GetDiscountByCode(_ context.Context, code string) (*Discount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, d := range s.discounts {
		if strings.EqualFold(d.Code, code) {
			return d, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListDiscounts(_ context.Context) ([]*Discount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Discount, 0, len(s.discounts))
	for _, d := range s.discounts {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (s *MemoryStore) UpdateDiscount(_ context.Context, d *Discount) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.discounts[d.ID]; !ok {
		return ErrNotFound
	}
	d.UpdatedAt = time.Now().UTC()
	s.discounts[d.ID] = d
	return nil
}

func (s *MemoryStore) DeleteDiscount(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.discounts[id]; !ok {
		return ErrNotFound
	}
	delete(s.discounts, id)
	return nil
}

// Subscriptions

func (s *MemoryStore) UpsertSubscription(_ context.Context, sub *Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, existing := range s.subscriptions {
		if existing.ProviderSubscriptionID == sub.ProviderSubscriptionID {
			sub.ID = existing.ID
			sub.CreatedAt = existing.CreatedAt
			sub.UpdatedAt = time.Now().UTC()
			s.subscriptions[id] = sub
			return nil
		}
	}
	s.subscriptions[sub.ID] = sub
	return nil
}

func (s *MemoryStore) GetSubscription(_ context.Context, id string) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subscriptions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return sub, nil
}

func (s *MemoryStore) GetSubscriptionByProviderID(_ context.Context, providerID string) (*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sub := range s.subscriptions {
		if sub.ProviderSubscriptionID == providerID {
			return sub, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListSubscriptions(_ context.Context) ([]*Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Subscription, 0, len(s.subscriptions))
	for _, sub := range s.subscriptions {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Purchases

func (s *MemoryStore) CreatePurchase(_ context.Context, p *Purchase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.purchases {
		if existing.ProviderSessionID == p.ProviderSessionID {
			return ErrDuplicate
		}
	}
	s.purchases[p.ID] = p
	return nil
}

func (s *MemoryStore) GetPurchaseBySession(_ context.Context, sessionID string) (*Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.purchases {
		if p.ProviderSessionID == sessionID {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListPurchases(_ context.Context) ([]*Purchase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Purchase, 0, len(s.purchases))
	for _, p := range s.purchases {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) CountPurchasesByEmail(_ context.Context, email string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, p := range s.purchases {
		if strings.EqualFold(p.CustomerEmail, email) {
			count++
		}
	}
	return count, nil
}

// Referrals

func (s *MemoryStore) CreateReferral(_ context.Context, r *Referral) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.referrals {
		if existing.Code == r.Code {
			return ErrDuplicate
		}
	}
	s.referrals[r.ID] = r
	return nil
}

func (s *MemoryStore) GetReferralByCode(_ context.Context, code string) (*Referral, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.referrals {
		if r.Code == code {
			return r, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) GetPendingReferralByReferee(_ context.Context, email string) (*Referral, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.referrals {
		if r.Status == ReferralPending && strings.EqualFold(r.RefereeEmail, email) {
			return r, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) UpdateReferral(_ context.Context, r *Referral) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.referrals[r.ID]; !ok {
		return ErrNotFound
	}
	s.referrals[r.ID] = r
	return nil
}

func (s *MemoryStore) ListReferrals(_ context.Context) ([]*Referral, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Referral, 0, len(s.referrals))
	for _, r := range s.referrals {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Wholesale inquiries

func (s *MemoryStore) CreateInquiry(_ context.Context, w *WholesaleInquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.inquiries[w.ID]; exists {
		return ErrDuplicate
	}
	s.inquiries[w.ID] = w
	return nil
}

func (s *MemoryStore) GetInquiry(_ context.Context, id string) (*WholesaleInquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.inquiries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return w, nil
}

func (s *MemoryStore) ListInquiries(_ context.Context) ([]*WholesaleInquiry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*WholesaleInquiry, 0, len(s.inquiries))
	for _, w := range s.inquiries {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) UpdateInquiry(_ context.Context, w *WholesaleInquiry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inquiries[w.ID]; !ok {
		return ErrNotFound
	}
	w.UpdatedAt = time.Now().UTC()
	s.inquiries[w.ID] = w
	return nil
}

// Products

func (s *MemoryStore) CreateProduct(_ context.Context, p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.products[p.ID]; exists {
		return ErrDuplicate
	}
	for _, existing := range s.products {
		if existing.Slug == p.Slug {
			return ErrDuplicate
		}
	}
	s.products[p.ID] = p
	return nil
}

func (s *MemoryStore) GetProduct(_ context.Context, id string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (s *MemoryStore) GetProductBySlug(_ context.Context, slug string) (*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListProducts(_ context.Context) ([]*Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (s *MemoryStore) UpdateProduct(_ context.Context, p *Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.products[p.ID]; !ok {
		return ErrNotFound
	}
	p.UpdatedAt = time.Now().UTC()
	s.products[p.ID] = p
	return nil
}

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
