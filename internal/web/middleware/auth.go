package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/JonMunkholm/catalog/internal/config"
	"github.com/JonMunkholm/catalog/internal/logging"
)

// authError mirrors the API's error body so clients parse one shape.
type authError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action"`
	Code    string `json:"code"`
}

var (
	errMissingKey = authError{
		Error:   "missing API key",
		Message: "An API key is required",
		Action:  "Send the key in the X-API-Key header",
		Code:    "AUTH001",
	}
	errInvalidKey = authError{
		Error:   "invalid API key",
		Message: "The API key was not accepted",
		Action:  "Check the key with your administrator",
		Code:    "AUTH002",
	}
)

// APIKeyAuth returns middleware that validates the X-API-Key header against
// the configured keys. When RequireAPIKey is false every request passes.
// When it is true but no keys are configured every request is rejected.
func APIKeyAuth(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.RequireAPIKey {
				next.ServeHTTP(w, r)
				return
			}

			apiKey := r.Header.Get("X-API-Key")
			switch {
			case apiKey == "":
				rejectAuth(w, r, http.StatusUnauthorized, errMissingKey)
			case !isValidAPIKey(apiKey, cfg.APIKeys):
				rejectAuth(w, r, http.StatusForbidden, errInvalidKey)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

func rejectAuth(w http.ResponseWriter, r *http.Request, status int, body authError) {
	logging.FromContext(r.Context()).Warn("auth: "+body.Error,
		"path", r.URL.Path,
		"method", r.Method,
		"remote_addr", r.RemoteAddr,
	)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// isValidAPIKey checks key against every configured key in constant time,
// so the comparison cost does not reveal which key matched.
func isValidAPIKey(key string, validKeys []string) bool {
	valid := 0
	for _, validKey := range validKeys {
		valid |= subtle.ConstantTimeCompare([]byte(key), []byte(validKey))
	}
	return valid == 1
}
