// Product catalog handlers, including the provider sync report.

package admin

import (
	"errors"
	"net/http"

	"github.com/getpressed/pressed/internal/storage"
)

// productRequest is the create/update body for a product.
type productRequest struct {
	Slug            string `json:"slug,omitempty"`
	Name            string `json:"name"`
	PriceCents      int64  `json:"priceCents"`
	ProviderPriceID string `json:"providerPriceId,omitempty"`
	Subscription    bool   `json:"subscription"`
	Active          bool   `json:"active"`
}

func (req *productRequest) validate() (string, bool) {
	if req.Name == "" {
		return "name is required", false
	}
	if req.PriceCents <= 0 {
		return "priceCents must be positive", false
	}
	return "", true
}

// handleListProducts handles GET /products.
func (a *API) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := a.store.ListProducts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_failed", sanitizeError(err, a.log, "list products"))
		return
	}
	writeJSON(w, http.StatusOK, products)
}

// handleCreateProduct handles POST /products.
func (a *API) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	if a.catalog == nil {
		writeError(w, http.StatusNotImplemented, "not_configured", "Catalog is not configured")
		return
	}

	var req productRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusBadRequest, "validation_failed", msg)
		return
	}

	p := &storage.Product{
		Slug:            req.Slug,
		Name:            req.Name,
		PriceCents:      req.PriceCents,
		ProviderPriceID: req.ProviderPriceID,
		Subscription:    req.Subscription,
		Active:          req.Active,
	}
	if err := a.catalog.Create(r.Context(), p); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, storage.ErrDuplicate) {
			status = http.StatusConflict
		}
		writeError(w, status, "create_failed", sanitizeError(err, a.log, "create product", "name", req.Name))
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// handleGetProduct handles GET /products/{id}.
func (a *API) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := a.store.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", sanitizeError(err, a.log, "get product"))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleUpdateProduct handles PUT /products/{id}.
func (a *API) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	if a.catalog == nil {
		writeError(w, http.StatusNotImplemented, "not_configured", "Catalog is not configured")
		return
	}

	p, err := a.store.GetProduct(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", sanitizeError(err, a.log, "get product"))
		return
	}

	var req productRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusBadRequest, "validation_failed", msg)
		return
	}

	p.Name = req.Name
	if req.Slug != "" {
		p.Slug = req.Slug
	}
	p.PriceCents = req.PriceCents
	p.ProviderPriceID = req.ProviderPriceID
	p.Subscription = req.Subscription
	p.Active = req.Active
	if err := a.catalog.Update(r.Context(), p); err != nil {
		writeError(w, http.StatusConflict, "update_failed", sanitizeError(err, a.log, "update product", "id", p.ID))
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// handleSyncStatus handles GET /sync-status.
func (a *API) handleSyncStatus(w http.ResponseWriter, r *http.Request) {
	if a.catalog == nil {
		writeError(w, http.StatusNotImplemented, "not_configured", "Catalog is not configured")
		return
	}

	status, err := a.catalog.CheckSync(r.Context())
	if err != nil {
		writeError(w, http.StatusBadGateway, "sync_check_failed", ErrMsgProviderUnavailable)
		a.log.Error("sync check failed", "error", err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}
