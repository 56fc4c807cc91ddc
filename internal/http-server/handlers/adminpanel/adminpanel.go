// Package adminpanel serves the admin dashboard, list views and status
// updates. Every handler here uses the privileged client, which bypasses
// row-level security, and sits behind the admin guard.
package adminpanel

import (
	"fmt"
	"log/slog"
	"net/http"

	"restaurant-web/internal/clients/backend"
	"restaurant-web/internal/http-server/middleware/authguard"
	"restaurant-web/internal/lib/logger/sl"
	"restaurant-web/internal/lib/web"
	"restaurant-web/internal/models"
	"restaurant-web/internal/session"
	"restaurant-web/internal/views"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
)

type counts struct {
	UserCount    int64
	OrderCount   int64
	BookingCount int64
}

// Dashboard serves GET /admin with exact row counts per table.
func Dashboard(log *slog.Logger, sessions *session.Manager, admin *backend.Client, renderer *views.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.adminpanel.Dashboard"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess, _ := authguard.SessionFromContext(r.Context())

		var data counts
		var err error

		data.UserCount, err = admin.From("profiles").Select("id").Count(r.Context())
		if err == nil {
			data.OrderCount, err = admin.From("orders").Select("id").Count(r.Context())
		}
		if err == nil {
			data.BookingCount, err = admin.From("bookings").Select("id").Count(r.Context())
		}
		if err != nil {
			log.Error("failed to load admin dashboard", sl.Err(err))

			sess.Flash(web.FlashDanger, "Error loading admin dashboard: "+err.Error())
			sessions.Redirect(w, r, sess, "/")

			return
		}

		render(w, sessions, sess, renderer, "admin_dashboard.html", "Admin", data)
	}
}

// Users serves GET /admin/users.
func Users(log *slog.Logger, sessions *session.Manager, admin *backend.Client, renderer *views.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.adminpanel.Users"

		sess, _ := authguard.SessionFromContext(r.Context())

		var users []models.Profile
		err := admin.From("profiles").
			Select("id, full_name, phone, address, role").
			Get(r.Context(), &users)
		if err != nil {
			failList(w, r, log, sessions, sess, op, "users", err)

			return
		}

		render(w, sessions, sess, renderer, "admin_users.html", "Users", users)
	}
}

// Orders serves GET /admin/orders, newest first, with the customer name
// joined in from profiles.
func Orders(log *slog.Logger, sessions *session.Manager, admin *backend.Client, renderer *views.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.adminpanel.Orders"

		sess, _ := authguard.SessionFromContext(r.Context())

		var orders []models.Order
		err := admin.From("orders").
			Select("*, profiles(full_name)").
			OrderBy("created_at", true).
			Get(r.Context(), &orders)
		if err != nil {
			failList(w, r, log, sessions, sess, op, "orders", err)

			return
		}

		render(w, sessions, sess, renderer, "admin_orders.html", "Orders", orders)
	}
}

// Bookings serves GET /admin/bookings.
func Bookings(log *slog.Logger, sessions *session.Manager, admin *backend.Client, renderer *views.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.adminpanel.Bookings"

		sess, _ := authguard.SessionFromContext(r.Context())

		var bookings []models.Booking
		err := admin.From("bookings").
			Select("*, profiles(full_name)").
			OrderBy("booking_date", true).
			Get(r.Context(), &bookings)
		if err != nil {
			failList(w, r, log, sessions, sess, op, "bookings", err)

			return
		}

		render(w, sessions, sess, renderer, "admin_bookings.html", "Bookings", bookings)
	}
}

// UpdateOrderStatus serves POST /admin/orders/update/{id}.
func UpdateOrderStatus(log *slog.Logger, sessions *session.Manager, admin *backend.Client) http.HandlerFunc {
	return updateStatus(log, sessions, admin, "orders", "Order", "/admin/orders", models.OrderTransitionAllowed)
}

// UpdateBookingStatus serves POST /admin/bookings/update/{id}.
func UpdateBookingStatus(log *slog.Logger, sessions *session.Manager, admin *backend.Client) http.HandlerFunc {
	return updateStatus(log, sessions, admin, "bookings", "Booking", "/admin/bookings", models.BookingTransitionAllowed)
}

// updateStatus enforces the closed status set and the transition table
// before the write; the old behavior of persisting whatever string the
// form carried is gone.
func updateStatus(
	log *slog.Logger,
	sessions *session.Manager,
	admin *backend.Client,
	table, label, listPath string,
	allowed func(from, to models.Status) bool,
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.adminpanel.updateStatus"

		log := log.With(
			slog.String("op", op),
			slog.String("table", table),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess, _ := authguard.SessionFromContext(r.Context())
		id := chi.URLParam(r, "id")

		next, err := models.ParseStatus(r.FormValue("status"))
		if err != nil {
			log.Warn("unknown status submitted", slog.String("status", r.FormValue("status")))

			sess.Flash(web.FlashDanger, "Unknown status value.")
			sessions.Redirect(w, r, sess, listPath)

			return
		}

		var row struct {
			Status models.Status `json:"status"`
		}
		err = admin.From(table).
			Select("status").
			Eq("id", id).
			Single().
			Get(r.Context(), &row)
		if err != nil {
			log.Error("failed to fetch current status", sl.Err(err))

			sess.Flash(web.FlashDanger, fmt.Sprintf("Error updating %s #%s: %s", table, id, err))
			sessions.Redirect(w, r, sess, listPath)

			return
		}

		if !allowed(row.Status, next) {
			log.Warn("forbidden status transition",
				slog.String("from", string(row.Status)),
				slog.String("to", string(next)),
			)

			sess.Flash(web.FlashDanger, fmt.Sprintf(
				"%s #%s cannot move from %s to %s.", label, id, row.Status, next,
			))
			sessions.Redirect(w, r, sess, listPath)

			return
		}

		err = admin.From(table).
			Eq("id", id).
			Update(r.Context(), map[string]models.Status{"status": next})
		if err != nil {
			log.Error("failed to update status", sl.Err(err))

			sess.Flash(web.FlashDanger, fmt.Sprintf("Error updating %s #%s: %s", table, id, err))
			sessions.Redirect(w, r, sess, listPath)

			return
		}

		log.Info("status updated", slog.String("id", id), slog.String("status", string(next)))

		sess.Flash(web.FlashSuccess, fmt.Sprintf("%s #%s status updated.", label, id))
		sessions.Redirect(w, r, sess, listPath)
	}
}

func failList(
	w http.ResponseWriter,
	r *http.Request,
	log *slog.Logger,
	sessions *session.Manager,
	sess *session.Session,
	op, what string,
	err error,
) {
	log.Error("failed to load "+what,
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		sl.Err(err),
	)

	sess.Flash(web.FlashDanger, "Error loading "+what+": "+err.Error())
	sessions.Redirect(w, r, sess, "/admin")
}

func render(
	w http.ResponseWriter,
	sessions *session.Manager,
	sess *session.Session,
	renderer *views.Renderer,
	template, title string,
	data any,
) {
	page := views.Page{
		Title:    title,
		Flashes:  sess.PopFlashes(),
		LoggedIn: sess.LoggedIn(),
		IsAdmin:  true,
		Data:     data,
	}

	_ = sessions.Save(w, sess)
	renderer.Render(w, template, page)
}
