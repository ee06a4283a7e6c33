package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/ayush/projecthub/internal/auth"
)

type userIDKey struct{}

// WithUserID stores the authenticated user id in ctx.
func WithUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

// UserID returns the id stored by RequireAuth.
func UserID(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(userIDKey{}).(int64)
	return id, ok
}

// ErrorFunc answers a request whose session could not be looked up.
type ErrorFunc func(w http.ResponseWriter, r *http.Request, err error)

// RequireAuth validates the session cookie and injects the user id into the
// request context. Requests without a live session are sent to /login
// before the wrapped handler runs. Session backend failures go to fail and
// leave the cookie in place.
func RequireAuth(sessions auth.Sessions, fail ErrorFunc) func(http.Handler) http.Handler {
	if fail == nil {
		fail = func(w http.ResponseWriter, _ *http.Request, _ error) {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.TokenFrom(r)
			if token == "" {
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			userID, err := sessions.Get(r.Context(), token)
			if errors.Is(err, auth.ErrNoSession) {
				http.SetCookie(w, auth.ExpiredSessionCookie())
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			if err != nil {
				fail(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}
