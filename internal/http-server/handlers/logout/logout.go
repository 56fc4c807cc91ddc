package logout

import (
	"log/slog"
	"net/http"

	"restaurant-web/internal/http-server/middleware/authguard"
	"restaurant-web/internal/lib/web"
	"restaurant-web/internal/session"

	"github.com/go-chi/chi/middleware"
)

// New serves GET /logout behind the user guard.
func New(log *slog.Logger, sessions *session.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "handlers.logout.New"

		sess, ok := authguard.SessionFromContext(r.Context())
		if !ok {
			sess = sessions.Load(r)
		}

		sess.Clear()
		sess.IsAdmin = false

		log.Info("user logged out",
			slog.String("op", op),
			slog.String("request_id", middleware.GetReqID(r.Context())),
		)

		sess.Flash(web.FlashInfo, "You have been logged out.")
		sessions.Redirect(w, r, sess, "/")
	}
}
