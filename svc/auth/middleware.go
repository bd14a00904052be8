package auth

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/smartdalle/smartdalle/pkg/logger"
)

// SessionResolver resolves the current user from an incoming request.
// The hosted auth platform is treated as a black box behind this interface;
// implementations typically validate a session cookie against it.
type SessionResolver interface {
	Resolve(r *http.Request) (*User, error)
}

// LoginPath is where unauthenticated browser requests are redirected.
const LoginPath = "/login"

// RequireUser resolves the session and stores the user in the request
// context. Browser requests without a valid session are redirected to the
// login page; API requests get 401.
func RequireUser(resolver SessionResolver, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := resolver.Resolve(r)
			if err != nil || user == nil {
				if err != nil && !errors.Is(err, ErrUnauthenticated) {
					log.LogAttrs(r.Context(), slog.LevelWarn, "session resolution failed",
						logger.Error(err),
					)
				}
				if wantsHTML(r) {
					http.Redirect(w, r, LoginPath, http.StatusSeeOther)
					return
				}
				http.Error(w, "unauthenticated", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(SetUserToContext(r.Context(), user)))
		})
	}
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
