package dashboard

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
)

type pageData struct {
	Profile  models.Profile
	Orders   []models.Order
	Bookings []models.Booking
}

// New serves GET /dashboard behind the user guard: the profile plus the
// five most recent orders and bookings.
func New(log *slog.Logger, sessions *session.Manager, renderer *views.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.dashboard.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess, _ := authguard.SessionFromContext(r.Context())
		user, _ := authguard.UserFromContext(r.Context())
		client, _ := authguard.ClientFromContext(r.Context())

		var data pageData

		err := client.From("profiles").
			Select("*").
			Eq("id", user.ID).
			Single().
			Get(r.Context(), &data.Profile)
		if err == nil {
			err = client.From("orders").
				Select("*").
				Eq("user_id", user.ID).
				OrderBy("created_at", true).
				Limit(5).
				Get(r.Context(), &data.Orders)
		}
		if err == nil {
			err = client.From("bookings").
				Select("*").
				Eq("user_id", user.ID).
				OrderBy("booking_date", true).
				Limit(5).
				Get(r.Context(), &data.Bookings)
		}
		if err != nil {
			log.Error("failed to fetch dashboard data", sl.Err(err))

			sess.Flash(web.FlashDanger, "Error fetching dashboard data: "+err.Error())
			sessions.Redirect(w, r, sess, "/")

			return
		}

		page := views.Page{
			Title:    "Dashboard",
			Flashes:  sess.PopFlashes(),
			LoggedIn: true,
			IsAdmin:  sess.IsAdmin,
			Data:     data,
		}

		_ = sessions.Save(w, sess)
		renderer.Render(w, "dashboard.html", page)
	}
}
