// Storefront-facing handlers: carts, checkout and referral signups. These
// routes skip API key authentication.

package admin

import (
	"errors"
	"net/http"

	"github.com/getpressed/pressed/internal/storage"
	"github.com/getpressed/pressed/pkg/billing"
	"github.com/getpressed/pressed/pkg/cart"
	"github.com/getpressed/pressed/pkg/referral"
)

// cartResponse is a cart with its computed totals.
type cartResponse struct {
	*cart.Cart
	Totals cart.Totals `json:"totals"`
}

func newCartResponse(c *cart.Cart) cartResponse {
	return cartResponse{Cart: c, Totals: c.Totals()}
}

func (a *API) requireCarts(w http.ResponseWriter) bool {
	if a.carts == nil {
		writeError(w, http.StatusNotImplemented, "not_configured", "Cart is not configured")
		return false
	}
	return true
}

// handleCreateCart handles POST /store/carts.
func (a *API) handleCreateCart(w http.ResponseWriter, r *http.Request) {
	if !a.requireCarts(w) {
		return
	}
	writeJSON(w, http.StatusCreated, newCartResponse(a.carts.Create()))
}

// handleGetCart handles GET /store/carts/{id}.
func (a *API) handleGetCart(w http.ResponseWriter, r *http.Request) {
	if !a.requireCarts(w) {
		return
	}
	c, err := a.carts.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", ErrMsgNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(c))
}

// addItemRequest is the body of POST /store/carts/{id}/items.
type addItemRequest struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// handleAddCartItem handles POST /store/carts/{id}/items. The line item is
// built from the catalog row so clients cannot set their own prices.
func (a *API) handleAddCartItem(w http.ResponseWriter, r *http.Request) {
	if !a.requireCarts(w) {
		return
	}

	var req addItemRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	product, err := a.store.GetProduct(r.Context(), req.ProductID)
	if err != nil || !product.Active {
		writeError(w, http.StatusNotFound, "not_found", "Unknown product")
		return
	}

	c, err := a.carts.AddItem(r.PathValue("id"), cart.Item{
		ProductID:    product.ID,
		Name:         product.Name,
		PriceCents:   product.PriceCents,
		Quantity:     req.Quantity,
		Subscription: product.Subscription,
	})
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrMixedCart):
			writeError(w, http.StatusConflict, "mixed_cart", "One-time items and subscriptions cannot share a cart")
		case errors.Is(err, cart.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", ErrMsgNotFound)
		default:
			writeError(w, http.StatusInternalServerError, "add_failed", sanitizeError(err, a.log, "add cart item"))
		}
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(c))
}

// updateItemRequest is the body of PUT /store/carts/{id}/items/{productId}.
type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// handleUpdateCartItem handles PUT /store/carts/{id}/items/{productId}.
func (a *API) handleUpdateCartItem(w http.ResponseWriter, r *http.Request) {
	if !a.requireCarts(w) {
		return
	}

	var req updateItemRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	c, err := a.carts.UpdateQuantity(r.PathValue("id"), r.PathValue("productId"), req.Quantity)
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", ErrMsgNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(c))
}

// applyDiscountRequest is the body of POST /store/carts/{id}/discount.
type applyDiscountRequest struct {
	Code string `json:"code"`
}

// handleApplyCartDiscount handles POST /store/carts/{id}/discount.
func (a *API) handleApplyCartDiscount(w http.ResponseWriter, r *http.Request) {
	if !a.requireCarts(w) {
		return
	}

	var req applyDiscountRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	c, err := a.carts.ApplyDiscount(r.Context(), r.PathValue("id"), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, cart.ErrDiscountInvalid):
			writeError(w, http.StatusUnprocessableEntity, "invalid_code", "That discount code is not valid")
		case errors.Is(err, cart.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", ErrMsgNotFound)
		default:
			writeError(w, http.StatusInternalServerError, "apply_failed", sanitizeError(err, a.log, "apply discount"))
		}
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(c))
}

// handleRemoveCartDiscount handles DELETE /store/carts/{id}/discount.
func (a *API) handleRemoveCartDiscount(w http.ResponseWriter, r *http.Request) {
	if !a.requireCarts(w) {
		return
	}
	c, err := a.carts.RemoveDiscount(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", ErrMsgNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newCartResponse(c))
}

// checkoutRequest is the body of POST /store/carts/{id}/checkout.
type checkoutRequest struct {
	Email string `json:"email"`
}

// handleCheckout handles POST /store/carts/{id}/checkout. It returns the
// provider's hosted checkout URL.
func (a *API) handleCheckout(w http.ResponseWriter, r *http.Request) {
	if !a.requireCarts(w) {
		return
	}
	if a.checkout == nil {
		writeError(w, http.StatusNotImplemented, "not_configured", "Checkout is not configured")
		return
	}

	var req checkoutRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}

	c, err := a.carts.Get(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", ErrMsgNotFound)
		return
	}

	session, err := a.checkout.Start(r.Context(), c, req.Email)
	if err != nil {
		if errors.Is(err, billing.ErrEmptyCart) {
			writeError(w, http.StatusUnprocessableEntity, "empty_cart", "Cart is empty")
			return
		}
		writeError(w, http.StatusBadGateway, "checkout_failed", ErrMsgProviderUnavailable)
		a.log.Error("checkout failed", "cart", c.ID, "error", err)
		return
	}
	writeJSON(w, http.StatusCreated, session)
}

// referralSignupRequest is the body of POST /store/referrals/signup.
type referralSignupRequest struct {
	Code  string `json:"code"`
	Email string `json:"email"`
}

// handleReferralSignup handles POST /store/referrals/signup.
func (a *API) handleReferralSignup(w http.ResponseWriter, r *http.Request) {
	if a.referrals == nil {
		writeError(w, http.StatusNotImplemented, "not_configured", "Referral program is not configured")
		return
	}

	var req referralSignupRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if req.Code == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "code and email are required")
		return
	}

	ref, err := a.referrals.TrackSignup(r.Context(), req.Code, req.Email)
	if err != nil {
		switch {
		case errors.Is(err, referral.ErrSelfReferral):
			writeError(w, http.StatusUnprocessableEntity, "self_referral", "You cannot use your own referral code")
		case errors.Is(err, referral.ErrAlreadyReferred):
			writeError(w, http.StatusConflict, "already_referred", "This email already has a pending referral")
		case errors.Is(err, referral.ErrAlreadyUsed):
			writeError(w, http.StatusConflict, "code_used", "This referral code has already been used")
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "not_found", "Unknown referral code")
		default:
			writeError(w, http.StatusInternalServerError, "signup_failed", sanitizeError(err, a.log, "referral signup"))
		}
		return
	}
	writeJSON(w, http.StatusOK, ref)
}
