// Shared response helpers plus health and status handlers.

package admin

import (
	"encoding/json"
	"net/http"
)

// ErrorResponse is the JSON body of an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// HealthResponse is the JSON body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
	Uptime string `json:"uptime"`
}

// StatusResponse is the JSON body of GET /status.
type StatusResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version,omitempty"`
	Uptime        string `json:"uptime"`
	Templates     int    `json:"templates"`
	Products      int    `json:"products"`
	Discounts     int    `json:"discounts"`
	Subscriptions int    `json:"subscriptions"`
}

// writeJSON writes a JSON response with the given status.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, errCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Error:   errCode,
		Message: message,
	})
}

// decodeJSON decodes the request body into v, writing an error response on
// failure. The bool result reports success.
func (a *API) decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", sanitizeJSONError(err, a.log))
		return false
	}
	return true
}

// handleHealth handles GET /health.
func (a *API) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: a.Uptime(),
	})
}

// handleGetStatus handles GET /status.
func (a *API) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	resp := StatusResponse{
		Status:  "ok",
		Version: a.version,
		Uptime:  a.Uptime(),
	}
	if templates, err := a.store.ListTemplates(ctx); err == nil {
		resp.Templates = len(templates)
	}
	if products, err := a.store.ListProducts(ctx); err == nil {
		resp.Products = len(products)
	}
	if discounts, err := a.store.ListDiscounts(ctx); err == nil {
		resp.Discounts = len(discounts)
	}
	if subs, err := a.store.ListSubscriptions(ctx); err == nil {
		resp.Subscriptions = len(subs)
	}
	writeJSON(w, http.StatusOK, resp)
}
