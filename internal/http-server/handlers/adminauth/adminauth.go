// Package adminauth implements the password gate for the admin panel.
// The credential is a bcrypt hash loaded from configuration, never a
// literal in source.
package adminauth

import (
	"log/slog"
	"net/http"

	"restaurant-web/internal/lib/web"
	"restaurant-web/internal/session"
	"restaurant-web/internal/views"

	"github.com/go-chi/chi/middleware"
	"golang.org/x/crypto/bcrypt"
)

// New serves GET and POST /admin_login.
func New(log *slog.Logger, sessions *session.Manager, passwordHash string, renderer *views.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.adminauth.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess := sessions.Load(r)
		if sess.IsAdmin {
			sessions.Redirect(w, r, sess, "/admin")

			return
		}

		if r.Method != http.MethodPost {
			page := views.Page{
				Title:    "Admin login",
				Flashes:  sess.PopFlashes(),
				LoggedIn: sess.LoggedIn(),
			}

			_ = sessions.Save(w, sess)
			renderer.Render(w, "admin_login.html", page)

			return
		}

		password := r.FormValue("password")
		if err := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password)); err != nil {
			log.Warn("admin login rejected")

			sess.Flash(web.FlashDanger, "Incorrect admin password.")
			sessions.Redirect(w, r, sess, "/admin_login")

			return
		}

		log.Info("admin logged in")

		sess.IsAdmin = true
		sess.Flash(web.FlashSuccess, "Admin login successful.")
		sessions.Redirect(w, r, sess, "/admin")
	}
}

// Logout serves GET /admin_logout. Only the admin flag is dropped; a
// logged-in user stays logged in.
func Logout(log *slog.Logger, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.adminauth.Logout"

		sess := sessions.Load(r)
		sess.IsAdmin = false

		log.Info("admin logged out",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess.Flash(web.FlashInfo, "You have been logged out from the admin panel.")
		sessions.Redirect(w, r, sess, "/")
	}
}
