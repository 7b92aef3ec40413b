// API key authentication for the admin API.

package admin

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"sync"
)

const (
	// APIKeyLength is the length of generated API keys in bytes.
	APIKeyLength = 32

	// APIKeyPrefix makes keys identifiable in logs and configs.
	APIKeyPrefix = "pk_"

	// APIKeyHeader is the HTTP header for API key authentication.
	APIKeyHeader = "X-API-Key"
)

// APIKeyConfig holds configuration for API key authentication.
type APIKeyConfig struct {
	// Enabled controls whether API key authentication is required.
	Enabled bool

	// Key is the API key. If empty and Enabled is true, one is generated at
	// startup and printed to stderr.
	Key string

	// AllowLocalhost allows requests from localhost without an API key.
	// Useful for development, off in production.
	AllowLocalhost bool

	// ExemptPaths are URL path prefixes that skip authentication. Health,
	// webhooks (signature-verified) and the storefront endpoints are always
	// exempt.
	ExemptPaths []string
}

// DefaultAPIKeyConfig returns the default API key configuration.
func DefaultAPIKeyConfig() APIKeyConfig {
	return APIKeyConfig{
		Enabled:        true,
		AllowLocalhost: false,
	}
}

// alwaysExempt are paths that never require an API key. Webhooks carry their
// own signature; storefront endpoints are customer-facing.
var alwaysExempt = []string{"/health", "/webhooks", "/store"}

// apiKeyAuth handles API key state and validation.
type apiKeyAuth struct {
	config APIKeyConfig
	key    string
	mu     sync.RWMutex
	log    *slog.Logger
}

// newAPIKeyAuth creates an authenticator, generating a key if none is
// configured.
func newAPIKeyAuth(config APIKeyConfig, log *slog.Logger) (*apiKeyAuth, error) {
	auth := &apiKeyAuth{config: config, log: log}

	if !config.Enabled {
		return auth, nil
	}

	if config.Key != "" {
		auth.setKey(config.Key)
		return auth, nil
	}

	key, err := generateAPIKey()
	if err != nil {
		return nil, fmt.Errorf("generate api key: %w", err)
	}
	auth.setKey(key)
	log.Info("generated admin api key")
	fmt.Fprintf(os.Stderr, "Admin API key: %s\n", key)
	fmt.Fprintf(os.Stderr, "  Set PRESSED_API_KEY or admin.apiKey in the config file to pin it.\n")
	return auth, nil
}

func (a *apiKeyAuth) setKey(key string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.key = key
}

func (a *apiKeyAuth) getKey() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.key
}

// validate checks the provided key in constant time.
func (a *apiKeyAuth) validate(providedKey string) bool {
	a.mu.RLock()
	key := a.key
	a.mu.RUnlock()
	if key == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(providedKey), []byte(key)) == 1
}

// isExempt checks if a path skips authentication.
func (a *apiKeyAuth) isExempt(path string) bool {
	for _, exempt := range append(alwaysExempt, a.config.ExemptPaths...) {
		if path == exempt || strings.HasPrefix(path, exempt+"/") {
			return true
		}
	}
	return false
}

// isLocalhost reports whether the request came from a loopback address.
func isLocalhost(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// middleware enforces API key authentication.
func (a *apiKeyAuth) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !a.config.Enabled || a.isExempt(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if a.config.AllowLocalhost && isLocalhost(r) {
			next.ServeHTTP(w, r)
			return
		}

		apiKey := r.Header.Get(APIKeyHeader)
		if apiKey == "" {
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				apiKey = strings.TrimPrefix(auth, "Bearer ")
			}
		}

		if apiKey == "" {
			writeError(w, http.StatusUnauthorized, "missing_api_key",
				"API key required. Provide via X-API-Key header or Authorization: Bearer <key>.")
			return
		}
		if !a.validate(apiKey) {
			writeError(w, http.StatusUnauthorized, "invalid_api_key", "Invalid API key")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// rotateKey generates and installs a new API key.
func (a *apiKeyAuth) rotateKey() (string, error) {
	newKey, err := generateAPIKey()
	if err != nil {
		return "", fmt.Errorf("generate new api key: %w", err)
	}
	a.setKey(newKey)
	return newKey, nil
}

// generateAPIKey generates a new random API key.
func generateAPIKey() (string, error) {
	bytes := make([]byte, APIKeyLength)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return APIKeyPrefix + hex.EncodeToString(bytes), nil
}

// APIKeyInfo describes the current API key without revealing it.
type APIKeyInfo struct {
	Key       string `json:"key,omitempty"`
	KeyPrefix string `json:"keyPrefix"`
	Enabled   bool   `json:"enabled"`
}

func (a *apiKeyAuth) getInfo(includeFullKey bool) APIKeyInfo {
	a.mu.RLock()
	defer a.mu.RUnlock()

	info := APIKeyInfo{Enabled: a.config.Enabled}
	if a.key != "" {
		if includeFullKey {
			info.Key = a.key
		}
		if len(a.key) > 11 {
			info.KeyPrefix = a.key[:11] + "..."
		} else {
			info.KeyPrefix = a.key
		}
	}
	return info
}

// handleGetAPIKey handles GET /api-key.
func (a *API) handleGetAPIKey(w http.ResponseWriter, r *http.Request) {
	includeKey := r.URL.Query().Get("show_key") == "true"
	writeJSON(w, http.StatusOK, a.apiKeyAuth.getInfo(includeKey))
}

// handleRotateAPIKey handles POST /api-key/rotate.
func (a *API) handleRotateAPIKey(w http.ResponseWriter, r *http.Request) {
	if !a.apiKeyAuth.config.Enabled {
		writeError(w, http.StatusBadRequest, "auth_disabled", "API key authentication is disabled")
		return
	}

	newKey, err := a.apiKeyAuth.rotateKey()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "rotation_failed", ErrMsgInternalError)
		return
	}
	a.log.Info("api key rotated")
	writeJSON(w, http.StatusOK, map[string]string{"key": newKey})
}
