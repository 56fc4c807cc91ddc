package placeorder

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"restaurant-web/internal/http-server/middleware/authguard"
	"restaurant-web/internal/lib/logger/sl"
	"restaurant-web/internal/lib/web"
	"restaurant-web/internal/models"
	"restaurant-web/internal/session"

	"github.com/go-chi/chi/middleware"
	"github.com/go-playground/validator"
)

type Request struct {
	Items []models.CartItem `validate:"required,min=1,dive"`
}

// priceRow is the projection fetched for the total computation.
type priceRow struct {
	ID    int64   `json:"id"`
	Price float64 `json:"price"`
}

// New serves POST /order behind the user guard. The cart arrives as a
// JSON array in the "items" form field. The total is always recomputed
// from submission-time menu prices; an order referencing an id the menu
// lookup does not return is rejected outright.
func New(log *slog.Logger, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.placeorder.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess, _ := authguard.SessionFromContext(r.Context())
		user, _ := authguard.UserFromContext(r.Context())
		client, _ := authguard.ClientFromContext(r.Context())

		itemsJSON := r.FormValue("items")
		if itemsJSON == "" || itemsJSON == "[]" {
			sess.Flash(web.FlashDanger, "Your cart is empty.")
			sessions.Redirect(w, r, sess, "/menu")

			return
		}

		var req Request
		if err := json.Unmarshal([]byte(itemsJSON), &req.Items); err != nil {
			log.Error("failed to decode cart payload", sl.Err(err))

			sess.Flash(web.FlashDanger, "Could not read your cart. Please try again.")
			sessions.Redirect(w, r, sess, "/menu")

			return
		}

		if err := validator.New().Struct(req); err != nil {
			validateErr := err.(validator.ValidationErrors)

			log.Error("invalid request", sl.Err(err))

			sess.Flash(web.FlashDanger, web.ValidationMessage(validateErr))
			sessions.Redirect(w, r, sess, "/menu")

			return
		}

		itemIDs := make([]any, len(req.Items))
		for i, item := range req.Items {
			itemIDs[i] = item.ItemID
		}

		var rows []priceRow
		err := client.From("menu").
			Select("id, price").
			In("id", itemIDs).
			Get(r.Context(), &rows)
		if err != nil {
			log.Error("failed to fetch menu prices", sl.Err(err))

			sess.Flash(web.FlashDanger, "Error placing order: "+err.Error())
			sessions.Redirect(w, r, sess, "/menu")

			return
		}

		prices := make(map[int64]float64, len(rows))
		for _, row := range rows {
			prices[row.ID] = row.Price
		}

		total, err := models.OrderTotal(req.Items, prices)
		if err != nil {
			log.Warn("order rejected", sl.Err(err))

			if errors.Is(err, models.ErrUnknownMenuItem) {
				sess.Flash(web.FlashDanger, "Your cart contains an item that is no longer on the menu.")
			} else {
				sess.Flash(web.FlashDanger, "Item quantities must be positive.")
			}
			sessions.Redirect(w, r, sess, "/menu")

			return
		}

		order := map[string]any{
			"user_id":     user.ID,
			"items":       req.Items,
			"total_price": total,
		}

		if err := client.From("orders").Insert(r.Context(), order); err != nil {
			log.Error("failed to insert order", sl.Err(err))

			sess.Flash(web.FlashDanger, "Error placing order: "+err.Error())
			sessions.Redirect(w, r, sess, "/menu")

			return
		}

		log.Info("order placed",
			slog.Int("items", len(req.Items)),
			slog.Float64("total", total),
		)

		sess.Flash(web.FlashSuccess, "Order placed successfully! Thank you.")
		sessions.Redirect(w, r, sess, "/dashboard")
	}
}
