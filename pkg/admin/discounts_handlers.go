// Discount code management handlers.

package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/getpressed/pressed/internal/storage"
	"github.com/getpressed/pressed/pkg/billing"
)

// discountRequest is the create/update body for a discount.
type discountRequest struct {
	Code           string     `json:"code"`
	PercentOff     int        `json:"percentOff,omitempty"`
	AmountOffCents int64      `json:"amountOffCents,omitempty"`
	Active         bool       `json:"active"`
	ExpiresAt      *time.Time `json:"expiresAt,omitempty"`
}

func (req *discountRequest) validate() (string, bool) {
	if req.Code == "" {
		return "code is required", false
	}
	if (req.PercentOff > 0) == (req.AmountOffCents > 0) {
		return "exactly one of percentOff and amountOffCents must be set", false
	}
	if req.PercentOff < 0 || req.PercentOff > 100 {
		return "percentOff must be between 1 and 100", false
	}
	return "", true
}

// handleListDiscounts handles GET /discounts.
func (a *API) handleListDiscounts(w http.ResponseWriter, r *http.Request) {
	discounts, err := a.store.ListDiscounts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_failed", sanitizeError(err, a.log, "list discounts"))
		return
	}
	writeJSON(w, http.StatusOK, discounts)
}

// handleCreateDiscount handles POST /discounts. A matching coupon is created
// on the payment provider so checkout can honor the code.
func (a *API) handleCreateDiscount(w http.ResponseWriter, r *http.Request) {
	var req discountRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusBadRequest, "validation_failed", msg)
		return
	}

	now := time.Now().UTC()
	d := &storage.Discount{
		ID:             "dis_" + uuid.NewString()[:8],
		Code:           req.Code,
		PercentOff:     req.PercentOff,
		AmountOffCents: req.AmountOffCents,
		Active:         req.Active,
		ExpiresAt:      req.ExpiresAt,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if a.provider != nil {
		coupon, err := a.provider.CreateCoupon(r.Context(), &billing.CouponParams{
			Name:           req.Code,
			PercentOff:     req.PercentOff,
			AmountOffCents: req.AmountOffCents,
		})
		if err != nil {
			writeError(w, http.StatusBadGateway, "provider_failed", ErrMsgProviderUnavailable)
			a.log.Error("create provider coupon", "code", req.Code, "error", err)
			return
		}
		d.ProviderCouponID = coupon.ID
	}

	if err := a.store.CreateDiscount(r.Context(), d); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, storage.ErrDuplicate) {
			status = http.StatusConflict
		}
		writeError(w, status, "create_failed", sanitizeError(err, a.log, "create discount", "code", req.Code))
		return
	}
	a.log.Info("discount created", "id", d.ID, "code", d.Code)
	writeJSON(w, http.StatusCreated, d)
}

// handleGetDiscount handles GET /discounts/{id}.
func (a *API) handleGetDiscount(w http.ResponseWriter, r *http.Request) {
	d, err := a.store.GetDiscount(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", sanitizeError(err, a.log, "get discount"))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleUpdateDiscount handles PUT /discounts/{id}. The provider coupon is
// immutable, so only local fields change.
func (a *API) handleUpdateDiscount(w http.ResponseWriter, r *http.Request) {
	d, err := a.store.GetDiscount(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", sanitizeError(err, a.log, "get discount"))
		return
	}

	var req discountRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusBadRequest, "validation_failed", msg)
		return
	}

	d.Code = req.Code
	d.PercentOff = req.PercentOff
	d.AmountOffCents = req.AmountOffCents
	d.Active = req.Active
	d.ExpiresAt = req.ExpiresAt
	d.UpdatedAt = time.Now().UTC()
	if err := a.store.UpdateDiscount(r.Context(), d); err != nil {
		writeError(w, http.StatusConflict, "update_failed", sanitizeError(err, a.log, "update discount", "id", d.ID))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

// handleDeleteDiscount handles DELETE /discounts/{id}.
func (a *API) handleDeleteDiscount(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteDiscount(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, "not_found", sanitizeError(err, a.log, "delete discount"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
