package verify

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"restaurant-web/internal/clients/backend"
	"restaurant-web/internal/lib/logger/sl"
	"restaurant-web/internal/lib/web"
	"restaurant-web/internal/session"
	"restaurant-web/internal/storage"
	"restaurant-web/internal/views"

	"github.com/go-chi/chi/middleware"
)

type OTPVerifier interface {
	VerifyOTP(ctx context.Context, email, code string) (backend.Session, error)
}

type PendingStore interface {
	GetPending(ctx context.Context, token string) (string, error)
	DeletePending(ctx context.Context, token string) error
}

type pageData struct {
	Token string
}

// New serves GET and POST /verify. The token query parameter resolves to
// the pending email stored at the login step; a missing or expired token
// sends the visitor back to /login.
func New(
	log *slog.Logger,
	sessions *session.Manager,
	auth OTPVerifier,
	pending PendingStore,
	renderer *views.Renderer,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.verify.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess := sessions.Load(r)
		if sess.LoggedIn() {
			sessions.Redirect(w, r, sess, "/dashboard")

			return
		}

		token := r.URL.Query().Get("token")
		if token == "" {
			sessions.Redirect(w, r, sess, "/login")

			return
		}

		email, err := pending.GetPending(r.Context(), token)
		if err != nil {
			if !errors.Is(err, storage.ErrPendingNotFound) {
				log.Error("failed to look up pending verification", sl.Err(err))
			}

			sess.Flash(web.FlashWarning, "That verification link has expired. Please log in again.")
			sessions.Redirect(w, r, sess, "/login")

			return
		}

		if r.Method != http.MethodPost {
			render(w, sessions, sess, renderer, token)

			return
		}

		remote, err := auth.VerifyOTP(r.Context(), email, r.FormValue("otp"))
		if err != nil {
			log.Warn("OTP verification failed", sl.Err(err))

			sess.Flash(web.FlashDanger, "Invalid or expired OTP. Please try again.")
			render(w, sessions, sess, renderer, token)

			return
		}

		if err := pending.DeletePending(r.Context(), token); err != nil {
			log.Error("failed to delete pending verification", sl.Err(err))
		}

		sess.UserID = remote.User.ID
		sess.Email = remote.User.Email
		sess.AccessToken = remote.AccessToken
		sess.RefreshToken = remote.RefreshToken

		log.Info("user logged in")

		sess.Flash(web.FlashSuccess, "Login successful!")
		sessions.Redirect(w, r, sess, "/dashboard")
	}
}

func render(w http.ResponseWriter, sessions *session.Manager, sess *session.Session, renderer *views.Renderer, token string) {
	page := views.Page{
		Title:   "Verify",
		Flashes: sess.PopFlashes(),
		Data:    pageData{Token: token},
	}

	_ = sessions.Save(w, sess)
	renderer.Render(w, "verify.html", page)
}
