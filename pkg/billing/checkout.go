package billing

import (
	"context"
	"errors"
	"fmt"

	"github.com/getpressed/pressed/internal/storage"
	"github.com/getpressed/pressed/pkg/cart"
)

// ErrEmptyCart is returned when checkout is started on an empty cart.
var ErrEmptyCart = errors.New("cart is empty")

// Checkout turns carts into hosted checkout sessions.
type Checkout struct {
	provider   Provider
	products   storage.ProductStore
	discounts  storage.DiscountStore
	successURL string
	cancelURL  string
}

// NewCheckout creates a checkout service. successURL and cancelURL are where
// the provider redirects the customer after checkout.
func NewCheckout(provider Provider, products storage.ProductStore, discounts storage.DiscountStore, successURL, cancelURL string) *Checkout {
	return &Checkout{
		provider:   provider,
		products:   products,
		discounts:  discounts,
		successURL: successURL,
		cancelURL:  cancelURL,
	}
}

// Start creates a hosted checkout session for the cart. Mode follows the
// cart's kind: subscription carts check out in subscription mode, everything
// else in payment mode. Items whose product has a provider price use it;
// others fall back to ad-hoc prices from the cart snapshot.
func (c *Checkout) Start(ctx context.Context, crt *cart.Cart, customerEmail string) (*CheckoutSession, error) {
	if len(crt.Items) == 0 {
		return nil, ErrEmptyCart
	}

	params := &CheckoutParams{
		Mode:          ModePayment,
		SuccessURL:    c.successURL,
		CancelURL:     c.cancelURL,
		CustomerEmail: customerEmail,
		Metadata:      map[string]string{"cartId": crt.ID},
	}
	if crt.Subscription() {
		params.Mode = ModeSubscription
	}

	for _, item := range crt.Items {
		line := CheckoutLine{
			Name:        item.Name,
			AmountCents: item.PriceCents,
			Quantity:    item.Quantity,
		}
		if p, err := c.products.GetProduct(ctx, item.ProductID); err == nil && p.ProviderPriceID != "" {
			line.PriceID = p.ProviderPriceID
		}
		params.Lines = append(params.Lines, line)
	}

	if crt.Discount != nil {
		d, err := c.discounts.GetDiscountByCode(ctx, crt.Discount.Code)
		if err == nil && d.ProviderCouponID != "" {
			params.CouponID = d.ProviderCouponID
		}
	}

	session, err := c.provider.CreateCheckoutSession(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	return session, nil
}
