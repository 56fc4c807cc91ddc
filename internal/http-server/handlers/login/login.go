package login

import (
	"context"
	"log/slog"
	"net/http"

	"restaurant-web/internal/lib/logger/sl"
	"restaurant-web/internal/lib/web"
	"restaurant-web/internal/session"
	"restaurant-web/internal/views"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"
	"github.com/google/uuid"
)

type OTPSender interface {
	SignInWithOTP(ctx context.Context, email string) error
}

type PendingSaver interface {
	SavePending(ctx context.Context, token, email string) error
}

type Request struct {
	Email string `validate:"required,email"`
}

// New serves GET and POST /login. A successful POST sends the OTP email
// and parks the address server-side under a random token, which is the
// only thing the browser carries to the verify step.
func New(
	log *slog.Logger,
	sessions *session.Manager,
	auth OTPSender,
	pending PendingSaver,
	renderer *views.Renderer,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.login.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess := sessions.Load(r)
		if sess.LoggedIn() {
			sessions.Redirect(w, r, sess, "/dashboard")

			return
		}

		if r.Method != http.MethodPost {
			render(w, sessions, sess, renderer)

			return
		}

		req := Request{Email: r.FormValue("email")}

		if err := validator.New().Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			sess.Flash(web.FlashDanger, web.ValidationMessage(validateErr))
			render(w, sessions, sess, renderer)

			return
		}

		if err := auth.SignInWithOTP(r.Context(), req.Email); err != nil {
			log.Error("failed to send OTP", sl.Err(err))

			sess.Flash(web.FlashDanger, "Error sending OTP: "+err.Error())
			render(w, sessions, sess, renderer)

			return
		}

		token := uuid.NewString()
		if err := pending.SavePending(r.Context(), token, req.Email); err != nil {
			log.Error("failed to save pending verification", sl.Err(err))

			sess.Flash(web.FlashDanger, "Something went wrong. Please try again.")
			render(w, sessions, sess, renderer)

			return
		}

		log.Info("OTP sent")

		sess.Flash(web.FlashInfo, "A login code has been sent to your email.")
		sessions.Redirect(w, r, sess, "/verify?token="+token)
	}
}

func render(w http.ResponseWriter, sessions *session.Manager, sess *session.Session, renderer *views.Renderer) {
	page := views.Page{
		Title:   "Log in",
		Flashes: sess.PopFlashes(),
	}

	_ = sessions.Save(w, sess)
	renderer.Render(w, "login.html", page)
}
