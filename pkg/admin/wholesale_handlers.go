// Wholesale inquiry handlers. Creation is storefront-facing; the rest is
// back office.

package admin

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/getpressed/pressed/internal/storage"
)

// inquiryRequest is the body of the storefront wholesale form.
type inquiryRequest struct {
	Company       string `json:"company"`
	ContactName   string `json:"contactName"`
	Email         string `json:"email"`
	CasesPerMonth int    `json:"casesPerMonth"`
	Message       string `json:"message,omitempty"`
}

// handleCreateInquiry handles POST /store/wholesale.
func (a *API) handleCreateInquiry(w http.ResponseWriter, r *http.Request) {
	var req inquiryRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if req.Company == "" || req.Email == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "company and email are required")
		return
	}

	now := time.Now().UTC()
	inquiry := &storage.WholesaleInquiry{
		ID:            "whl_" + uuid.NewString()[:8],
		Company:       req.Company,
		ContactName:   req.ContactName,
		Email:         req.Email,
		CasesPerMonth: req.CasesPerMonth,
		Message:       req.Message,
		Status:        storage.InquiryNew,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := a.store.CreateInquiry(r.Context(), inquiry); err != nil {
		writeError(w, http.StatusInternalServerError, "create_failed", sanitizeError(err, a.log, "create inquiry"))
		return
	}
	a.log.Info("wholesale inquiry received", "id", inquiry.ID, "company", inquiry.Company)
	writeJSON(w, http.StatusCreated, inquiry)
}

// handleListInquiries handles GET /wholesale.
func (a *API) handleListInquiries(w http.ResponseWriter, r *http.Request) {
	inquiries, err := a.store.ListInquiries(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_failed", sanitizeError(err, a.log, "list inquiries"))
		return
	}
	writeJSON(w, http.StatusOK, inquiries)
}

// handleGetInquiry handles GET /wholesale/{id}.
func (a *API) handleGetInquiry(w http.ResponseWriter, r *http.Request) {
	inquiry, err := a.store.GetInquiry(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", sanitizeError(err, a.log, "get inquiry"))
		return
	}
	writeJSON(w, http.StatusOK, inquiry)
}

// statusRequest is the body of PUT /wholesale/{id}/status.
type statusRequest struct {
	Status string `json:"status"`
}

var validInquiryStatuses = map[string]bool{
	storage.InquiryNew:       true,
	storage.InquiryContacted: true,
	storage.InquiryClosed:    true,
}

// handleUpdateInquiryStatus handles PUT /wholesale/{id}/status.
func (a *API) handleUpdateInquiryStatus(w http.ResponseWriter, r *http.Request) {
	var req statusRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if !validInquiryStatuses[req.Status] {
		writeError(w, http.StatusBadRequest, "validation_failed", "status must be one of: new, contacted, closed")
		return
	}

	inquiry, err := a.store.GetInquiry(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", sanitizeError(err, a.log, "get inquiry"))
		return
	}

	inquiry.Status = req.Status
	inquiry.UpdatedAt = time.Now().UTC()
	if err := a.store.UpdateInquiry(r.Context(), inquiry); err != nil {
		writeError(w, http.StatusInternalServerError, "update_failed", sanitizeError(err, a.log, "update inquiry", "id", inquiry.ID))
		return
	}
	writeJSON(w, http.StatusOK, inquiry)
}
