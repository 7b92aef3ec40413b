// Read-only handlers for subscriptions, purchases and referrals, plus
// referral code creation.

package admin

import (
	"net/http"
	"time"
)

// handleListSubscriptions handles GET /subscriptions.
func (a *API) handleListSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := a.store.ListSubscriptions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_failed", sanitizeError(err, a.log, "list subscriptions"))
		return
	}
	writeJSON(w, http.StatusOK, subs)
}

// handleGetSubscription handles GET /subscriptions/{id}.
func (a *API) handleGetSubscription(w http.ResponseWriter, r *http.Request) {
	sub, err := a.store.GetSubscription(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", sanitizeError(err, a.log, "get subscription"))
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// handleCancelSubscription handles POST /subscriptions/{id}/cancel. The
// cancellation goes to the payment provider first; the mirrored row is
// updated optimistically and the webhook confirms it later.
func (a *API) handleCancelSubscription(w http.ResponseWriter, r *http.Request) {
	if a.provider == nil {
		writeError(w, http.StatusNotImplemented, "not_configured", "Payment provider is not configured")
		return
	}

	sub, err := a.store.GetSubscription(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", sanitizeError(err, a.log, "get subscription"))
		return
	}
	if sub.Status == "canceled" {
		writeJSON(w, http.StatusOK, sub)
		return
	}

	if err := a.provider.CancelSubscription(r.Context(), sub.ProviderSubscriptionID); err != nil {
		a.log.Error("cancel subscription", "id", sub.ID, "error", err)
		writeError(w, http.StatusBadGateway, "provider_error", ErrMsgProviderUnavailable)
		return
	}

	sub.Status = "canceled"
	sub.UpdatedAt = time.Now().UTC()
	if err := a.store.UpsertSubscription(r.Context(), sub); err != nil {
		writeError(w, http.StatusInternalServerError, "update_failed", sanitizeError(err, a.log, "update subscription"))
		return
	}
	writeJSON(w, http.StatusOK, sub)
}

// handleListPurchases handles GET /purchases.
func (a *API) handleListPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := a.store.ListPurchases(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_failed", sanitizeError(err, a.log, "list purchases"))
		return
	}
	writeJSON(w, http.StatusOK, purchases)
}

// handleListReferrals handles GET /referrals.
func (a *API) handleListReferrals(w http.ResponseWriter, r *http.Request) {
	referrals, err := a.store.ListReferrals(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_failed", sanitizeError(err, a.log, "list referrals"))
		return
	}
	writeJSON(w, http.StatusOK, referrals)
}

// createReferralRequest is the body for POST /referrals.
type createReferralRequest struct {
	ReferrerEmail string `json:"referrerEmail"`
}

// handleCreateReferral handles POST /referrals.
func (a *API) handleCreateReferral(w http.ResponseWriter, r *http.Request) {
	if a.referrals == nil {
		writeError(w, http.StatusNotImplemented, "not_configured", "Referral program is not configured")
		return
	}

	var req createReferralRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if req.ReferrerEmail == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "referrerEmail is required")
		return
	}

	ref, err := a.referrals.CreateCode(r.Context(), req.ReferrerEmail)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "create_failed", sanitizeError(err, a.log, "create referral"))
		return
	}
	writeJSON(w, http.StatusCreated, ref)
}
