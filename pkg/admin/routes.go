// Route registration for the admin API.

package admin

import (
	"net/http"
)

// registerRoutes sets up all API routes.
func (a *API) registerRoutes(mux *http.ServeMux) {
	// Health and status
	mux.HandleFunc("GET /health", a.handleHealth)
	mux.HandleFunc("GET /status", a.handleGetStatus)

	// Email templates
	mux.HandleFunc("GET /templates", a.handleListTemplates)
	mux.HandleFunc("POST /templates", a.handleCreateTemplate)
	mux.HandleFunc("GET /templates/{id}", a.handleGetTemplate)
	mux.HandleFunc("PUT /templates/{id}", a.handleUpdateTemplate)
	mux.HandleFunc("DELETE /templates/{id}", a.handleDeleteTemplate)
	mux.HandleFunc("POST /templates/{id}/preview", a.handlePreviewTemplate)
	mux.HandleFunc("POST /templates/{id}/validate", a.handleValidateTemplate)
	mux.HandleFunc("POST /templates/{id}/send-test", a.handleSendTestEmail)

	// Discounts
	mux.HandleFunc("GET /discounts", a.handleListDiscounts)
	mux.HandleFunc("POST /discounts", a.handleCreateDiscount)
	mux.HandleFunc("GET /discounts/{id}", a.handleGetDiscount)
	mux.HandleFunc("PUT /discounts/{id}", a.handleUpdateDiscount)
	mux.HandleFunc("DELETE /discounts/{id}", a.handleDeleteDiscount)

	// Subscriptions and purchases (read-only mirrors of provider state)
	mux.HandleFunc("GET /subscriptions", a.handleListSubscriptions)
	mux.HandleFunc("GET /subscriptions/{id}", a.handleGetSubscription)
	mux.HandleFunc("POST /subscriptions/{id}/cancel", a.handleCancelSubscription)
	mux.HandleFunc("GET /purchases", a.handleListPurchases)

	// Referral program
	mux.HandleFunc("GET /referrals", a.handleListReferrals)
	mux.HandleFunc("POST /referrals", a.handleCreateReferral)

	// Wholesale inquiries
	mux.HandleFunc("GET /wholesale", a.handleListInquiries)
	mux.HandleFunc("GET /wholesale/{id}", a.handleGetInquiry)
	mux.HandleFunc("PUT /wholesale/{id}/status", a.handleUpdateInquiryStatus)

	// Product catalog
	mux.HandleFunc("GET /products", a.handleListProducts)
	mux.HandleFunc("POST /products", a.handleCreateProduct)
	mux.HandleFunc("GET /products/{id}", a.handleGetProduct)
	mux.HandleFunc("PUT /products/{id}", a.handleUpdateProduct)
	mux.HandleFunc("GET /sync-status", a.handleSyncStatus)

	// API key management
	mux.HandleFunc("GET /api-key", a.handleGetAPIKey)
	mux.HandleFunc("POST /api-key/rotate", a.handleRotateAPIKey)

	// Storefront endpoints (authentication exempt)
	mux.HandleFunc("POST /store/carts", a.handleCreateCart)
	mux.HandleFunc("GET /store/carts/{id}", a.handleGetCart)
	mux.HandleFunc("POST /store/carts/{id}/items", a.handleAddCartItem)
	mux.HandleFunc("PUT /store/carts/{id}/items/{productId}", a.handleUpdateCartItem)
	mux.HandleFunc("POST /store/carts/{id}/discount", a.handleApplyCartDiscount)
	mux.HandleFunc("DELETE /store/carts/{id}/discount", a.handleRemoveCartDiscount)
	mux.HandleFunc("POST /store/carts/{id}/checkout", a.handleCheckout)
	mux.HandleFunc("POST /store/wholesale", a.handleCreateInquiry)
	mux.HandleFunc("POST /store/referrals/signup", a.handleReferralSignup)

	// Payment provider webhooks (signature-verified, authentication exempt)
	mux.HandleFunc("POST /webhooks/payments", a.handlePaymentWebhook)
}
