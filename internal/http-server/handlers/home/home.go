package home

import (
	"net/http"

	"restaurant-web/internal/session"
	"restaurant-web/internal/views"
)

// New serves GET /, the landing page.
func New(sessions *session.Manager, renderer *views.Renderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := sessions.Load(r)

		page := views.Page{
			Title:    "Welcome",
			Flashes:  sess.PopFlashes(),
			LoggedIn: sess.LoggedIn(),
			IsAdmin:  sess.IsAdmin,
		}

		_ = sessions.Save(w, sess)
		renderer.Render(w, "index.html", page)
	}
}
