// Payment provider webhook endpoint.

package admin

import (
	"errors"
	"io"
	"net/http"

	"github.com/getpressed/pressed/pkg/billing"
)

// maxWebhookBody caps webhook payload size.
const maxWebhookBody = 1 << 20

// handlePaymentWebhook handles POST /webhooks/payments. The request is
// authenticated by its signature header, not the API key.
func (a *API) handlePaymentWebhook(w http.ResponseWriter, r *http.Request) {
	if a.webhook == nil {
		writeError(w, http.StatusNotImplemented, "not_configured", "Webhooks are not configured")
		return
	}

	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read_failed", "Could not read request body")
		return
	}

	sig := r.Header.Get("Pressed-Signature")
	if sig == "" {
		sig = r.Header.Get("Stripe-Signature")
	}

	if err := a.webhook.Handle(r.Context(), payload, sig); err != nil {
		switch {
		case errors.Is(err, billing.ErrBadSignature), errors.Is(err, billing.ErrSignatureExpired):
			writeError(w, http.StatusUnauthorized, "bad_signature", "Webhook signature verification failed")
		default:
			// A 5xx makes the provider retry later.
			writeError(w, http.StatusInternalServerError, "processing_failed", sanitizeError(err, a.log, "process webhook"))
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"received": true})
}
