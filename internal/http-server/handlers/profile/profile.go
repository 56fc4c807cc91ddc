package profile

import (
	"log/slog"
	"net/http"

	"restaurant-web/internal/http-server/middleware/authguard"
	"restaurant-web/internal/lib/logger/sl"
	"restaurant-web/internal/lib/web"
	"restaurant-web/internal/models"
	"restaurant-web/internal/session"
	"restaurant-web/internal/views"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"
)

type Request struct {
	FullName string `validate:"required"`
	Phone    string
	Address  string
}

// New serves GET and POST /profile behind the user guard. Role is not
// editable from here; only the contact fields are written.
func New(log *slog.Logger, sessions *session.Manager, renderer *views.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.profile.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess, _ := authguard.SessionFromContext(r.Context())
		user, _ := authguard.UserFromContext(r.Context())
		client, _ := authguard.ClientFromContext(r.Context())

		if r.Method == http.MethodPost {
			req := Request{
				FullName: r.FormValue("full_name"),
				Phone:    r.FormValue("phone"),
				Address:  r.FormValue("address"),
			}

			if err := validator.New().Struct(req); err != nil {
				validateErr := err.(validator.ValidationErrors)

				log.Error("invalid request", sl.Err(err))

				sess.Flash(web.FlashDanger, web.ValidationMessage(validateErr))
				sessions.Redirect(w, r, sess, "/profile")

				return
			}

			err := client.From("profiles").
				Eq("id", user.ID).
				Update(r.Context(), map[string]string{
					"full_name": req.FullName,
					"phone":     req.Phone,
					"address":   req.Address,
				})
			if err != nil {
				log.Error("failed to update profile", sl.Err(err))

				sess.Flash(web.FlashDanger, "Error updating profile: "+err.Error())
			} else {
				log.Info("profile updated")

				sess.Flash(web.FlashSuccess, "Profile updated successfully!")
			}

			sessions.Redirect(w, r, sess, "/profile")

			return
		}

		var profile models.Profile
		err := client.From("profiles").
			Select("*").
			Eq("id", user.ID).
			Single().
			Get(r.Context(), &profile)
		if err != nil {
			log.Error("failed to fetch profile", sl.Err(err))

			sess.Flash(web.FlashDanger, "Error loading profile: "+err.Error())
			sessions.Redirect(w, r, sess, "/dashboard")

			return
		}

		page := views.Page{
			Title:    "Profile",
			Flashes:  sess.PopFlashes(),
			LoggedIn: true,
			IsAdmin:  sess.IsAdmin,
			Data:     profile,
		}

		_ = sessions.Save(w, sess)
		renderer.Render(w, "profile.html", page)
	}
}
