package auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/sneakerstore/sneakerstore/internal/platform/httpx"
	"github.com/sneakerstore/sneakerstore/internal/shared"
)

const loginAtKey = "login_at"

type adminContextKey struct{}

// ContextWithAdmin stores the admin principal in ctx.
func ContextWithAdmin(ctx context.Context, admin Admin) context.Context {
	return context.WithValue(ctx, adminContextKey{}, admin)
}

// AdminFromContext returns the admin principal of the request, if any.
func AdminFromContext(ctx context.Context) (Admin, bool) {
	admin, ok := ctx.Value(adminContextKey{}).(Admin)
	return admin, ok
}

// LoadAdmin resolves the session user into an Admin for downstream handlers.
// Sessions whose account no longer resolves are signed out.
func LoadAdmin(service *Service, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sess := shared.SessionFromContext(r.Context())
			if sess == nil || sess.User() == "" {
				next.ServeHTTP(w, r)
				return
			}
			loginAt, _ := time.Parse(time.RFC3339, sess.Get(loginAtKey))
			admin, err := service.Resolve(r.Context(), sess.User(), loginAt)
			if err != nil {
				logger.Warn("drop stale admin session", slog.String("user", sess.User()))
				sess.SetUser("")
				sess.Delete(loginAtKey)
				next.ServeHTTP(w, r)
				return
			}
			next.ServeHTTP(w, r.WithContext(ContextWithAdmin(r.Context(), admin)))
		})
	}
}

// RequireAdmin rejects requests without an admin principal.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := AdminFromContext(r.Context()); !ok {
			httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "admin login required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
