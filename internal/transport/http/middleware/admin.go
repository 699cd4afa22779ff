package middleware

import (
	"context"
	"net/http"

	"github.com/storefront-api/internal/domain"
)

type contextKey string

const adminEmailKey contextKey = "admin_email"

// SIDCookie is the long-lived session cookie name.
const SIDCookie = "sid"

// AdminGate verifies a session cookie against the admin allow-list.
type AdminGate interface {
	IsAdmin(rawSIDCookie string) domain.AdminCheck
}

// RequireAdmin is the single authorization gate in front of every admin
// route group. Handlers behind it never re-check; a mutating admin route
// that is not registered inside this middleware's group is a bug.
func RequireAdmin(gate AdminGate) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			check := gate.IsAdmin(cookieValue(r, SIDCookie))
			if !check.OK {
				writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
				return
			}
			ctx := context.WithValue(r.Context(), adminEmailKey, check.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminEmailFromContext returns the verified admin email injected by RequireAdmin.
func AdminEmailFromContext(ctx context.Context) (string, bool) {
	email, ok := ctx.Value(adminEmailKey).(string)
	return email, ok
}

func cookieValue(r *http.Request, name string) string {
	c, err := r.Cookie(name)
	if err != nil {
		return ""
	}
	return c.Value
}
