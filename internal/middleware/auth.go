package middleware

import (
	"net/http"

	"github.com/pkg/errors"

	"github.com/s/courseCatalog/internal/handlers"
)

// RequiredRole lets the request through only when the session user has one of roles.
// Everything else, including an unknown session, gets the 401 envelope.
func RequiredRole(h *handlers.Handler, roles ...string) func(next http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			user, err := h.CurrentUser(r)
			if err != nil {
				if !errors.Is(err, handlers.ErrUnauthorized) {
					h.Log.Error("load session user", err)
				}
				handlers.Fail(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			allowed := false
			for _, role := range roles {
				if user.Role == role {
					allowed = true
					break
				}
			}
			if !allowed {
				handlers.Fail(w, http.StatusUnauthorized, "Unauthorized")
				return
			}

			next.ServeHTTP(w, r.WithContext(handlers.WithUser(r.Context(), user)))
		}
	}
}
