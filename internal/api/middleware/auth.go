package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/newthinker/valuator/internal/api/response"
	"github.com/newthinker/valuator/internal/core"
)

// APIKeyHeader carries the client key. A bearer Authorization header is
// accepted as well.
const APIKeyHeader = "X-API-Key"

// APIKeyAuth returns middleware that validates the client key.
// If apiKey is empty, authentication is disabled.
func APIKeyAuth(apiKey string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if apiKey == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			providedKey := keyFrom(r)
			if providedKey == "" {
				response.Error(w, http.StatusUnauthorized,
					core.Errorf(core.ErrConfigMissing, "missing %s header", APIKeyHeader))
				return
			}

			if subtle.ConstantTimeCompare([]byte(providedKey), []byte(apiKey)) != 1 {
				response.Error(w, http.StatusUnauthorized,
					core.Errorf(core.ErrConfigInvalid, "api key rejected"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func keyFrom(r *http.Request) string {
	if key := r.Header.Get(APIKeyHeader); key != "" {
		return key
	}
	if token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}
