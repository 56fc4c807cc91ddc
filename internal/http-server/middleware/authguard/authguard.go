// Package authguard holds the two route guards: one for logged-in users,
// one for the admin panel. Both run per request, nothing is cached.
package authguard

import (
	"context"
	"log/slog"
	"net/http"

	"restaurant-web/internal/clients/backend"
	"restaurant-web/internal/lib/logger/sl"
	"restaurant-web/internal/lib/web"
	"restaurant-web/internal/models"
	"restaurant-web/internal/session"

	"github.com/go-chi/chi/middleware"
)

const (
	userKey    models.ContextKey = "current_user"
	clientKey  models.ContextKey = "table_client"
	sessionKey models.ContextKey = "session"
)

// RequireUser gates routes that need an authenticated end user. The
// stored refresh token is exchanged on every request; this both
// validates the pair and yields the access token the request-scoped
// table client uses for row-level security. A rejected pair clears the
// whole session.
func RequireUser(log *slog.Logger, sessions *session.Manager, client *backend.Client) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.authguard.RequireUser"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			sess := sessions.Load(r)
			if sess.AccessToken == "" || sess.RefreshToken == "" {
				sess.Flash(web.FlashWarning, "You need to be logged in to view this page.")
				sessions.Redirect(w, r, sess, "/login")

				return
			}

			remote, err := client.RefreshSession(r.Context(), sess.RefreshToken)
			if err != nil {
				log.Warn("session rejected by auth service", sl.Err(err))

				sess.Clear()
				sess.IsAdmin = false
				sess.Flash(web.FlashWarning, "Your session has expired. Please log in again.")
				sessions.Redirect(w, r, sess, "/login")

				return
			}

			// the backend rotates refresh tokens, keep the new pair
			sess.AccessToken = remote.AccessToken
			sess.RefreshToken = remote.RefreshToken

			ctx := r.Context()
			ctx = context.WithValue(ctx, userKey, models.CurrentUser{ID: sess.UserID, Email: sess.Email})
			ctx = context.WithValue(ctx, clientKey, client.WithToken(remote.AccessToken))
			ctx = context.WithValue(ctx, sessionKey, sess)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAdmin gates the admin panel behind the session flag set by the
// admin login form. No token is involved and the flag never expires.
func RequireAdmin(log *slog.Logger, sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middleware.authguard.RequireAdmin"

			sess := sessions.Load(r)
			if !sess.IsAdmin {
				log.Warn("admin route denied",
					slog.String("op", op),
					slog.String("path", r.URL.Path),
				)

				sess.Flash(web.FlashWarning, "You must be logged in as an admin to view this page.")
				sessions.Redirect(w, r, sess, "/admin_login")

				return
			}

			ctx := context.WithValue(r.Context(), sessionKey, sess)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserFromContext returns the identity placed by RequireUser.
func UserFromContext(ctx context.Context) (models.CurrentUser, bool) {
	user, ok := ctx.Value(userKey).(models.CurrentUser)
	return user, ok
}

// ClientFromContext returns the request-scoped table client bound to the
// current user's access token.
func ClientFromContext(ctx context.Context) (*backend.Client, bool) {
	client, ok := ctx.Value(clientKey).(*backend.Client)
	return client, ok
}

// SessionFromContext returns the live session placed by a guard, so
// handlers flash onto the same session the guard will have saved.
func SessionFromContext(ctx context.Context) (*session.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*session.Session)
	return sess, ok
}
