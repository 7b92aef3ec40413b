// Email template management handlers.

package admin

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/getpressed/pressed/internal/storage"
	"github.com/getpressed/pressed/pkg/template"
)

// templateRequest is the create/update body for an email template.
type templateRequest struct {
	Name     string         `json:"name"`
	Subject  string         `json:"subject"`
	HTMLBody string         `json:"htmlBody"`
	Schema   map[string]any `json:"schema,omitempty"`
}

func (req *templateRequest) validate() (string, bool) {
	if req.Name == "" {
		return "name is required", false
	}
	if req.Subject == "" {
		return "subject is required", false
	}
	if req.HTMLBody == "" {
		return "htmlBody is required", false
	}
	return "", true
}

// handleListTemplates handles GET /templates.
func (a *API) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	templates, err := a.store.ListTemplates(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list_failed", sanitizeError(err, a.log, "list templates"))
		return
	}
	writeJSON(w, http.StatusOK, templates)
}

// handleCreateTemplate handles POST /templates.
func (a *API) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	var req templateRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusBadRequest, "validation_failed", msg)
		return
	}

	now := time.Now().UTC()
	tmpl := &storage.EmailTemplate{
		ID:        "tpl_" + uuid.NewString()[:8],
		Name:      req.Name,
		Subject:   req.Subject,
		HTMLBody:  req.HTMLBody,
		Schema:    req.Schema,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.store.CreateTemplate(r.Context(), tmpl); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, storage.ErrDuplicate) {
			status = http.StatusConflict
		}
		writeError(w, status, "create_failed", sanitizeError(err, a.log, "create template", "name", req.Name))
		return
	}
	a.log.Info("template created", "id", tmpl.ID, "name", tmpl.Name)
	writeJSON(w, http.StatusCreated, tmpl)
}

// handleGetTemplate handles GET /templates/{id}.
func (a *API) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := a.store.GetTemplate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", sanitizeError(err, a.log, "get template"))
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

// handleUpdateTemplate handles PUT /templates/{id}.
func (a *API) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := a.store.GetTemplate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", sanitizeError(err, a.log, "get template"))
		return
	}

	var req templateRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if msg, ok := req.validate(); !ok {
		writeError(w, http.StatusBadRequest, "validation_failed", msg)
		return
	}

	tmpl.Name = req.Name
	tmpl.Subject = req.Subject
	tmpl.HTMLBody = req.HTMLBody
	tmpl.Schema = req.Schema
	tmpl.UpdatedAt = time.Now().UTC()
	if err := a.store.UpdateTemplate(r.Context(), tmpl); err != nil {
		writeError(w, http.StatusConflict, "update_failed", sanitizeError(err, a.log, "update template", "id", tmpl.ID))
		return
	}
	writeJSON(w, http.StatusOK, tmpl)
}

// handleDeleteTemplate handles DELETE /templates/{id}.
func (a *API) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	if err := a.store.DeleteTemplate(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, http.StatusNotFound, "not_found", sanitizeError(err, a.log, "delete template"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// previewRequest is the body for POST /templates/{id}/preview. A nil Data
// renders with sample data generated from the template's schema.
type previewRequest struct {
	Data map[string]any `json:"data,omitempty"`
}

// previewResponse is the rendered template.
type previewResponse struct {
	Subject  string         `json:"subject"`
	HTMLBody string         `json:"htmlBody"`
	Data     map[string]any `json:"data"`
}

// handlePreviewTemplate handles POST /templates/{id}/preview.
func (a *API) handlePreviewTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := a.store.GetTemplate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", sanitizeError(err, a.log, "get template"))
		return
	}

	var req previewRequest
	if r.ContentLength > 0 && !a.decodeJSON(w, r, &req) {
		return
	}
	data := req.Data
	if data == nil {
		data = template.GenerateSampleData(tmpl.Schema)
	}

	writeJSON(w, http.StatusOK, previewResponse{
		Subject:  template.Substitute(tmpl.Subject, data),
		HTMLBody: template.Substitute(tmpl.HTMLBody, data),
		Data:     data,
	})
}

// validateResponse is the body of POST /templates/{id}/validate.
type validateResponse struct {
	Valid     bool     `json:"valid"`
	Errors    []string `json:"errors"`
	Variables []string `json:"variables"`
}

// handleValidateTemplate handles POST /templates/{id}/validate. Subject and
// body are checked against the template's schema.
func (a *API) handleValidateTemplate(w http.ResponseWriter, r *http.Request) {
	tmpl, err := a.store.GetTemplate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", sanitizeError(err, a.log, "get template"))
		return
	}

	combined := tmpl.Subject + "\n" + tmpl.HTMLBody
	result := template.ValidateTemplate(combined, tmpl.Schema)
	writeJSON(w, http.StatusOK, validateResponse{
		Valid:     result.Valid,
		Errors:    result.Errors,
		Variables: template.ExtractVariables(combined),
	})
}

// sendTestRequest is the body for POST /templates/{id}/send-test.
type sendTestRequest struct {
	To   string         `json:"to"`
	Data map[string]any `json:"data,omitempty"`
}

// handleSendTestEmail handles POST /templates/{id}/send-test. Missing data
// falls back to schema sample data.
func (a *API) handleSendTestEmail(w http.ResponseWriter, r *http.Request) {
	if a.emails == nil {
		writeError(w, http.StatusNotImplemented, "not_configured", "Email sending is not configured")
		return
	}

	tmpl, err := a.store.GetTemplate(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusNotFound, "not_found", sanitizeError(err, a.log, "get template"))
		return
	}

	var req sendTestRequest
	if !a.decodeJSON(w, r, &req) {
		return
	}
	if req.To == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "to is required")
		return
	}
	data := req.Data
	if data == nil {
		data = template.GenerateSampleData(tmpl.Schema)
	}

	result, err := a.emails.SendTemplate(r.Context(), tmpl.Name, req.To, data)
	if err != nil {
		writeError(w, http.StatusBadGateway, "send_failed", sanitizeError(err, a.log, "send test email", "template", tmpl.Name))
		return
	}
	writeJSON(w, http.StatusOK, result)
}
