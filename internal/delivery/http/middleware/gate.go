package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"campuseventhub/internal/delivery/http/helpers"
	"campuseventhub/internal/domain"
	"campuseventhub/internal/services"
)

type contextKey string

const userKey contextKey = "user"

// settleTimeout bounds how long a gated request waits for the session store
// to finish resolving before giving up with 503.
const settleTimeout = 10 * time.Second

// SetUser returns a context carrying the resolved profile. Used by the gate.
func SetUser(ctx context.Context, user *domain.Profile) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext returns the resolved profile from the context, if present.
func UserFromContext(ctx context.Context) (*domain.Profile, bool) {
	user, ok := ctx.Value(userKey).(*domain.Profile)
	return user, ok
}

// Gate wraps a handler behind the access-control decision for the required
// role. While the session store is loading it waits for settle (the loading
// placeholder of the UI rendition); then it either passes through with the
// profile in the context, redirects unauthenticated visitors to the login
// view preserving the originating location, or redirects authenticated
// non-admins to the events listing.
func Gate(sessions domain.SessionService, required domain.Role, logger *slog.Logger) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), settleTimeout)
			defer cancel()
			if err := sessions.WaitUntilSettled(ctx); err != nil {
				logger.Warn("session did not settle in time", "path", r.URL.Path, "err", err)
				helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeUnavailable, "session state unavailable")
				return
			}

			state := sessions.State()
			switch services.Decide(state, required) {
			case services.DecisionAllow:
				r = r.WithContext(SetUser(r.Context(), state.User))
				next(w, r)
			case services.DecisionRedirectLogin:
				// The from parameter is preserved for a post-login return;
				// the login flow does not consume it yet.
				http.Redirect(w, r, "/login?from="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
			case services.DecisionRedirectEvents:
				http.Redirect(w, r, "/events", http.StatusSeeOther)
			default:
				helpers.WriteJSONError(w, http.StatusServiceUnavailable, helpers.ErrCodeUnavailable, "session state unavailable")
			}
		}
	}
}
