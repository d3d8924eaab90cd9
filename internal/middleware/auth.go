package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/windfall/vocal_service/pkg/response"
)

// APIKeyHeader carries the client's API key.
const APIKeyHeader = "X-API-Key"

// APIKey returns a middleware that requires one of keys in the X-API-Key header.
// Browsers cannot set headers on WebSocket upgrades, so the api_key query parameter is also accepted.
// With no keys configured every request passes.
func APIKey(keys []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if len(keys) == 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := r.Header.Get(APIKeyHeader)
			if key == "" {
				key = r.URL.Query().Get("api_key")
			}
			if key == "" {
				response.Unauthorized(w, "missing API key")
				return
			}
			if !validKey(keys, key) {
				response.Unauthorized(w, "invalid API key")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func validKey(keys []string, key string) bool {
	valid := false
	for _, k := range keys {
		if subtle.ConstantTimeCompare([]byte(k), []byte(key)) == 1 {
			valid = true
		}
	}
	return valid
}
