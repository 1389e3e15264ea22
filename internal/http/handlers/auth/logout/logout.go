// Package logout закрывает сессию пользователя.
package logout

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/admin-panel/internal/session"
)

// RedirectPath куда уходит пользователь после выхода.
const RedirectPath = "/"

// Handler удаляет cookie сессии.
type Handler struct {
	log      *slog.Logger
	sessions *session.Store
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, sessions *session.Store) *Handler {
	return &Handler{log: log, sessions: sessions}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.logout"

	s := h.sessions.LoadRequest(r)
	userID, _ := s.Get(session.UserIDKey)
	w.Header().Add("Set-Cookie", h.sessions.Destroy(s))

	h.log.Info("logout",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_id", userID),
	)
	http.Redirect(w, r, RedirectPath, http.StatusFound)
}
