package menu

import (
	"log/slog"
	"net/http"

	"restaurant-web/internal/clients/backend"
	"restaurant-web/internal/lib/logger/sl"
	"restaurant-web/internal/lib/web"
	"restaurant-web/internal/models"
	"restaurant-web/internal/session"
	"restaurant-web/internal/views"

	"github.com/go-chi/chi/middleware"
)

// New serves GET /menu. The route is public, so the restricted base
// client is used as-is; row-level security lets anyone read the menu.
func New(log *slog.Logger, sessions *session.Manager, client *backend.Client, renderer *views.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.menu.New"

		log := log.With(
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess := sessions.Load(r)

		var items []models.MenuItem
		err := client.From("menu").
			Select("*").
			OrderBy("category", false).
			Get(r.Context(), &items)
		if err != nil {
			log.Error("failed to load menu", sl.Err(err))

			sess.Flash(web.FlashDanger, "Could not load menu: "+err.Error())
			items = nil
		}

		page := views.Page{
			Title:    "Menu",
			Flashes:  sess.PopFlashes(),
			LoggedIn: sess.LoggedIn(),
			IsAdmin:  sess.IsAdmin,
			Data:     items,
		}

		_ = sessions.Save(w, sess)
		renderer.Render(w, "menu.html", page)
	}
}
