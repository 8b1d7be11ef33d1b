package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/campusvault/pyqhub/internal/common"
	"github.com/campusvault/pyqhub/internal/server/auth"
	"github.com/campusvault/pyqhub/internal/server/models"
	"github.com/campusvault/pyqhub/internal/server/services"
)

type ctxKey int

const claimsKey ctxKey = iota

// bearerToken extracts the token from an "Authorization: Bearer ..."
// header, empty when absent or malformed.
func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// requireAuth rejects requests without a valid bearer token and stores
// the claims in the request context.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeJSON(w, http.StatusUnauthorized, errorBody{Message: "authentication required"})
			return
		}
		claims, err := auth.ParseToken(token, s.jwtSecret)
		if err != nil {
			writeError(w, common.ErrInvalidToken)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// optionalAuth stores claims when a valid token is present and lets the
// request through anonymously otherwise. A token that is present but
// invalid is still a hard 401: silently downgrading it would make
// expiry indistinguishable from anonymity.
func (s *Server) optionalAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		claims, err := auth.ParseToken(token, s.jwtSecret)
		if err != nil {
			writeError(w, common.ErrInvalidToken)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), claimsKey, claims)))
	})
}

// requireAdmin assumes requireAuth ran earlier in the chain.
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r.Context())
		if claims == nil || claims.Role != models.RoleAdmin {
			writeError(w, common.ErrorForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func claimsFrom(ctx context.Context) *auth.Claims {
	claims, _ := ctx.Value(claimsKey).(*auth.Claims)
	return claims
}

// callerFrom converts context claims into the service-layer caller
// identity; nil means anonymous.
func callerFrom(ctx context.Context) *services.Caller {
	claims := claimsFrom(ctx)
	if claims == nil {
		return nil
	}
	return &services.Caller{UserID: claims.UserID, Role: claims.Role}
}

// corsMiddleware answers preflight requests and stamps the allowed
// origin on every response.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (allowAll || allowed[origin]) {
				if allowAll {
					w.Header().Set("Access-Control-Allow-Origin", "*")
				} else {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Vary", "Origin")
				}
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
