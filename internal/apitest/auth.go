package apitest

import (
	"net/http"
)

// Credentials maps API keys to their secrets.
type Credentials struct {
	keys map[string]string
}

// NewCredentials creates a credential store from key/secret pairs.
func NewCredentials(keys map[string]string) *Credentials {
	return &Credentials{keys: keys}
}

// Check reports whether key and secret form a known pair.
func (c *Credentials) Check(key, secret string) bool {
	s, found := c.keys[key]
	return found && s == secret
}

// BasicAuth rejects requests whose Basic credentials are missing or unknown.
func BasicAuth(creds *Credentials) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key, secret, ok := r.BasicAuth()
			if !ok || !creds.Check(key, secret) {
				WriteError(w, r, http.StatusUnauthorized, 40100000, "Unauthorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
