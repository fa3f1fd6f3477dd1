package chi

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKeyHeader is accepted as an alternative to a Bearer token.
const APIKeyHeader = "X-API-Key"

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/health":  {},
	"/metrics": {},
}

// APIKeyMiddleware returns a middleware that requires one of apiKeys, sent either as
// "Authorization: Bearer <key>" or in the X-API-Key header.
// If apiKeys is empty, authentication is disabled (pass-through).
func APIKeyMiddleware(apiKeys []string) func(http.Handler) http.Handler {
	var validKeys [][]byte
	for _, k := range apiKeys {
		if k != "" {
			validKeys = append(validKeys, []byte(k))
		}
	}

	return func(next http.Handler) http.Handler {
		if len(validKeys) == 0 {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			key, msg := presentedKey(r)
			if msg != "" {
				writeError(w, http.StatusUnauthorized, ErrorResponseCodeUnauthorized, msg)
				return
			}
			if !keyMatches(validKeys, key) {
				writeError(w, http.StatusUnauthorized, ErrorResponseCodeUnauthorized, "invalid api key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// presentedKey extracts the key from the request, or a message explaining why it could not.
func presentedKey(r *http.Request) (string, string) {
	if k := r.Header.Get(APIKeyHeader); k != "" {
		return k, ""
	}

	auth := r.Header.Get("Authorization")
	if auth == "" {
		return "", "missing api key"
	}
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(auth, bearerPrefix) {
		return "", "authorization header must use Bearer scheme"
	}
	return auth[len(bearerPrefix):], ""
}

func keyMatches(valid [][]byte, key string) bool {
	got := []byte(key)
	match := 0
	for _, k := range valid {
		match |= subtle.ConstantTimeCompare(k, got)
	}
	return match == 1
}
