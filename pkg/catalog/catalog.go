// Package catalog manages the product list and keeps it honest against the
// payment provider. Products are the local source of truth for the
// storefront; the provider holds the prices checkout actually charges, so
// the sync report flags any disagreement between the two.
package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/getpressed/pressed/internal/storage"
	"github.com/getpressed/pressed/pkg/billing"
	"github.com/getpressed/pressed/pkg/logging"
)

// Service manages the product catalog.
type Service struct {
	store    storage.ProductStore
	provider billing.Provider
	log      *slog.Logger
	now      func() time.Time
}

// NewService creates a catalog service.
func NewService(store storage.ProductStore, provider billing.Provider) *Service {
	return &Service{
		store:    store,
		provider: provider,
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

// Create adds a product. A missing slug is derived from the name.
func (s *Service) Create(ctx context.Context, p *storage.Product) error {
	if p.ID == "" {
		p.ID = "prod_" + uuid.NewString()[:8]
	}
	if p.Slug == "" {
		p.Slug = Slugify(p.Name)
	}
	now := s.now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	if err := s.store.CreateProduct(ctx, p); err != nil {
		return fmt.Errorf("create product: %w", err)
	}
	s.log.Info("product created", "id", p.ID, "slug", p.Slug)
	return nil
}

// Update saves changes to a product.
func (s *Service) Update(ctx context.Context, p *storage.Product) error {
	p.UpdatedAt = s.now().UTC()
	if err := s.store.UpdateProduct(ctx, p); err != nil {
		return fmt.Errorf("update product: %w", err)
	}
	return nil
}

// Get returns a product by ID.
func (s *Service) Get(ctx context.Context, id string) (*storage.Product, error) {
	return s.store.GetProduct(ctx, id)
}

// GetBySlug returns a product by slug.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*storage.Product, error) {
	return s.store.GetProductBySlug(ctx, slug)
}

// List returns all products.
func (s *Service) List(ctx context.Context) ([]*storage.Product, error) {
	return s.store.ListProducts(ctx)
}

// Slugify turns a product name into a URL slug.
func Slugify(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}

// PriceDrift is a product whose local price disagrees with the provider.
type PriceDrift struct {
	ProductID     string `json:"productId"`
	Slug          string `json:"slug"`
	LocalCents    int64  `json:"localCents"`
	ProviderCents int64  `json:"providerCents"`
}

// SyncStatus is the catalog-versus-provider reconciliation report.
type SyncStatus struct {
	CheckedAt         time.Time       `json:"checkedAt"`
	InSync            bool            `json:"inSync"`
	MissingOnProvider []string        `json:"missingOnProvider"`
	PriceDrift        []PriceDrift    `json:"priceDrift"`
	OrphanedPrices    []billing.Price `json:"orphanedPrices"`
}

// CheckSync compares active products against the provider's active prices.
// It reports products with no provider price, products whose price differs,
// and provider prices no product references.
func (s *Service) CheckSync(ctx context.Context) (*SyncStatus, error) {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	prices, err := s.provider.ListPrices(ctx)
	if err != nil {
		return nil, fmt.Errorf("list provider prices: %w", err)
	}

	byID := make(map[string]billing.Price, len(prices))
	for _, p := range prices {
		byID[p.ID] = p
	}

	status := &SyncStatus{
		CheckedAt:         s.now().UTC(),
		MissingOnProvider: []string{},
		PriceDrift:        []PriceDrift{},
		OrphanedPrices:    []billing.Price{},
	}

	referenced := make(map[string]bool)
	for _, product := range products {
		if !product.Active {
			continue
		}
		price, ok := byID[product.ProviderPriceID]
		if product.ProviderPriceID == "" || !ok {
			status.MissingOnProvider = append(status.MissingOnProvider, product.Slug)
			continue
		}
		referenced[product.ProviderPriceID] = true
		if price.UnitAmountCents != product.PriceCents {
			status.PriceDrift = append(status.PriceDrift, PriceDrift{
				ProductID:     product.ID,
				Slug:          product.Slug,
				LocalCents:    product.PriceCents,
				ProviderCents: price.UnitAmountCents,
			})
		}
	}

	for _, price := range prices {
		if price.Active && !referenced[price.ID] {
			status.OrphanedPrices = append(status.OrphanedPrices, price)
		}
	}

	status.InSync = len(status.MissingOnProvider) == 0 &&
		len(status.PriceDrift) == 0 &&
		len(status.OrphanedPrices) == 0
	return status, nil
}
