// Package cart implements the storefront shopping cart: line items, coupon
// math, and the business rules around mixing one-time and subscription
// purchases. Carts are session-scoped and held in memory; the durable record
// of a sale is the purchase row written by the webhook handlers.
package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/getpressed/pressed/internal/storage"
)

// Cart errors.
var (
	ErrNotFound = errors.New("cart not found")

	// ErrMixedCart is returned when a one-time item would join subscription
	// items or vice versa. Checkout mode (payment vs subscription) is a
	// whole-cart property, so the two kinds never share a cart.
	ErrMixedCart = errors.New("cannot mix one-time and subscription items")

	// ErrDiscountInvalid is returned for unknown, inactive or expired codes.
	ErrDiscountInvalid = errors.New("discount code is not valid")
)

// Item is a cart line item.
type Item struct {
	ProductID    string `json:"productId"`
	Name         string `json:"name"`
	PriceCents   int64  `json:"priceCents"`
	Quantity     int    `json:"quantity"`
	Subscription bool   `json:"subscription"`
}

// Cart holds a session's line items and applied discount.
type Cart struct {
	ID        string    `json:"id"`
	Items     []Item    `json:"items"`
	Discount  *Applied  `json:"discount,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Applied is a snapshot of a discount at the moment it was applied to the
// cart. Snapshotting keeps the cart's price stable if the admin later edits
// the code.
type Applied struct {
	Code           string `json:"code"`
	PercentOff     int    `json:"percentOff,omitempty"`
	AmountOffCents int64  `json:"amountOffCents,omitempty"`
}

// Totals is the priced-out cart.
type Totals struct {
	SubtotalCents int64 `json:"subtotalCents"`
	DiscountCents int64 `json:"discountCents"`
	TotalCents    int64 `json:"totalCents"`
}

// Subscription reports whether the cart holds subscription items. Empty
// carts are one-time carts.
func (c *Cart) Subscription() bool {
	return len(c.Items) > 0 && c.Items[0].Subscription
}

// Totals prices out the cart with its applied discount. Percent discounts
// round half away from zero on cents; amount discounts clamp at zero.
func (c *Cart) Totals() Totals {
	var subtotal int64
	for _, item := range c.Items {
		subtotal += item.PriceCents * int64(item.Quantity)
	}

	var discount int64
	if c.Discount != nil {
		switch {
		case c.Discount.PercentOff > 0:
			discount = (subtotal*int64(c.Discount.PercentOff) + 50) / 100
		case c.Discount.AmountOffCents > 0:
			discount = c.Discount.AmountOffCents
		}
		if discount > subtotal {
			discount = subtotal
		}
	}

	return Totals{
		SubtotalCents: subtotal,
		DiscountCents: discount,
		TotalCents:    subtotal - discount,
	}
}

// Service manages session carts.
type Service struct {
	mu        sync.RWMutex
	carts     map[string]*Cart
	discounts storage.DiscountStore
}

// NewService creates a cart service. discounts validates coupon codes at
// apply time.
func NewService(discounts storage.DiscountStore) *Service {
	return &Service{
		carts:     make(map[string]*Cart),
		discounts: discounts,
	}
}

// Create starts an empty cart and returns it.
func (s *Service) Create() *Cart {
	now := time.Now().UTC()
	c := &Cart{
		ID:        "crt_" + uuid.NewString()[:8],
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.carts[c.ID] = c
	s.mu.Unlock()
	return c
}

// Get returns a cart by ID.
func (s *Service) Get(id string) (*Cart, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.carts[id]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

// AddItem adds an item to the cart, enforcing the mixing rule and the
// quantity-one rule for subscriptions. Adding a product already in the cart
// increments its quantity (subscriptions stay at one).
func (s *Service) AddItem(cartID string, item Item) (*Cart, error) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[cartID]
	if !ok {
		return nil, ErrNotFound
	}

	if len(c.Items) > 0 && c.Items[0].Subscription != item.Subscription {
		return nil, ErrMixedCart
	}

	if item.Subscription {
		item.Quantity = 1
	}

	for i := range c.Items {
		if c.Items[i].ProductID == item.ProductID {
			if !c.Items[i].Subscription {
				c.Items[i].Quantity += item.Quantity
			}
			c.UpdatedAt = time.Now().UTC()
			return c, nil
		}
	}

	c.Items = append(c.Items, item)
	c.UpdatedAt = time.Now().UTC()
	return c, nil
}

// UpdateQuantity sets a line item's quantity. Zero or negative removes the
// line; subscription lines clamp to one.
func (s *Service) UpdateQuantity(cartID, productID string, quantity int) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[cartID]
	if !ok {
		return nil, ErrNotFound
	}

	for i := range c.Items {
		if c.Items[i].ProductID != productID {
			continue
		}
		switch {
		case quantity <= 0:
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		case c.Items[i].Subscription:
			c.Items[i].Quantity = 1
		default:
			c.Items[i].Quantity = quantity
		}
		c.UpdatedAt = time.Now().UTC()
		return c, nil
	}
	return nil, ErrNotFound
}

// ApplyDiscount validates a code against the discount store and snapshots it
// onto the cart.
func (s *Service) ApplyDiscount(ctx context.Context, cartID, code string) (*Cart, error) {
	d, err := s.discounts.GetDiscountByCode(ctx, code)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrDiscountInvalid
		}
		return nil, err
	}
	if !d.Active || (d.ExpiresAt != nil && d.ExpiresAt.Before(time.Now())) {
		return nil, ErrDiscountInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[cartID]
	if !ok {
		return nil, ErrNotFound
	}
	c.Discount = &Applied{
		Code:           d.Code,
		PercentOff:     d.PercentOff,
		AmountOffCents: d.AmountOffCents,
	}
	c.UpdatedAt = time.Now().UTC()
	return c, nil
}

// RemoveDiscount clears any applied discount.
func (s *Service) RemoveDiscount(cartID string) (*Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[cartID]
	if !ok {
		return nil, ErrNotFound
	}
	c.Discount = nil
	c.UpdatedAt = time.Now().UTC()
	return c, nil
}

// Delete removes a cart (after checkout completes).
func (s *Service) Delete(cartID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, cartID)
}
