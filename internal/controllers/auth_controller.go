package controllers

import (
	"context"
	"net/http"

	"github.com/RealZimboGuy/stepflow/internal/util"
	"github.com/RealZimboGuy/stepflow/pkg/stepflow/core"

	"golang.org/x/crypto/bcrypt"
)

// AuthController checks the api key against a bcrypt hash. With no hash
// configured every request is let through.
type AuthController struct {
	ApiKeyHash string
}

func NewAuthController(apiKeyHash string) *AuthController {
	return &AuthController{ApiKeyHash: apiKeyHash}
}

func (ac *AuthController) keyMatches(apiKey string) bool {
	if apiKey == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(ac.ApiKeyHash), []byte(apiKey)) == nil
}

// RequireAuth guards the JSON api. Supported headers: X-API-Key: <key>
func (ac *AuthController) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ac.ApiKeyHash == "" {
			next(w, r)
			return
		}
		if !ac.keyMatches(r.Header.Get("X-API-Key")) {
			util.WriteJSONError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		ctx := context.WithValue(r.Context(), core.CtxKeyApiKeyUsed, true)
		next(w, r.WithContext(ctx))
	}
}

// RequireBrowserAuth guards the html pages. Besides the X-API-Key header it
// accepts the key as the password of HTTP Basic auth, with any user name, and
// challenges the browser when neither matches.
func (ac *AuthController) RequireBrowserAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ac.ApiKeyHash == "" {
			next(w, r)
			return
		}
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			_, apiKey, _ = r.BasicAuth()
		}
		if !ac.keyMatches(apiKey) {
			w.Header().Set("WWW-Authenticate", `Basic realm="stepflow", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), core.CtxKeyApiKeyUsed, true)
		next(w, r.WithContext(ctx))
	}
}
