package bookvenue

import (
	"log/slog"
	"net/http"

	"restaurant-web/internal/http-server/middleware/authguard"
	"restaurant-web/internal/lib/logger/sl"
	"restaurant-web/internal/lib/web"
	"restaurant-web/internal/session"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"
)

type Request struct {
	BookingDate string `validate:"required"`
	TimeSlot    string `validate:"required"`
}

// New serves POST /book behind the user guard. Success or failure, the
// visitor lands back on the dashboard; only the flash differs.
func New(log *slog.Logger, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.bookvenue.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess, _ := authguard.SessionFromContext(r.Context())
		user, _ := authguard.UserFromContext(r.Context())
		client, _ := authguard.ClientFromContext(r.Context())

		req := Request{
			BookingDate: r.FormValue("booking_date"),
			TimeSlot:    r.FormValue("time_slot"),
		}

		if err := validator.New().Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			sess.Flash(web.FlashDanger, web.ValidationMessage(validateErr))
			sessions.Redirect(w, r, sess, "/dashboard")

			return
		}

		booking := map[string]string{
			"user_id":      user.ID,
			"booking_date": req.BookingDate,
			"time_slot":    req.TimeSlot,
		}

		if err := client.From("bookings").Insert(r.Context(), booking); err != nil {
			log.Error("failed to insert booking", sl.Err(err))

			sess.Flash(web.FlashDanger, "Error booking venue: "+err.Error())
		} else {
			log.Info("venue booked", slog.String("date", req.BookingDate), slog.String("slot", req.TimeSlot))

			sess.Flash(web.FlashSuccess, "Venue booked successfully! Awaiting confirmation.")
		}

		sessions.Redirect(w, r, sess, "/dashboard")
	}
}
