package middleware

import (
	"crypto/subtle"
	"net/http"
)

// AuthConfig holds the accepted API keys. An empty key set disables
// authentication entirely.
type AuthConfig struct {
	keys []string
}

// NewAuthConfigWithKeys creates an AuthConfig accepting the given keys.
func NewAuthConfigWithKeys(keys []string) AuthConfig {
	return AuthConfig{keys: keys}
}

// Enabled reports whether any keys are configured.
func (c AuthConfig) Enabled() bool { return len(c.keys) > 0 }

func (c AuthConfig) accepts(key string) bool {
	for _, k := range c.keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			return true
		}
	}
	return false
}

// WriteProtect requires a valid X-API-KEY header on mutating requests.
// Read methods (GET, HEAD, OPTIONS) always pass, as does everything when
// no keys are configured.
func WriteProtect(config AuthConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !config.Enabled() {
				next.ServeHTTP(w, r)
				return
			}
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if !config.accepts(r.Header.Get("X-API-KEY")) {
				WriteJSON(w, http.StatusUnauthorized, errorResponse{
					Error: NewAuthenticationError("missing or invalid API key").Error(),
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
