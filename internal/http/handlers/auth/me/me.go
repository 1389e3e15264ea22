// Package me отдаёт текущего пользователя сессии.
//
// Если пользователь сессии удалён, сессия закрывается так же, как при выходе.
package me

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/admin-panel/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/admin-panel/internal/http/response"
	"github.com/magabrotheeeer/admin-panel/internal/lib/sl"
	"github.com/magabrotheeeer/admin-panel/internal/models"
	"github.com/magabrotheeeer/admin-panel/internal/session"
)

// Service возвращает пользователя по ID или nil, если его нет.
type Service interface {
	CurrentUser(ctx context.Context, id string) (*models.User, error)
}

// Handler обрабатывает GET /me.
type Handler struct {
	log      *slog.Logger
	auth     Service
	sessions *session.Store
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth Service, sessions *session.Store) *Handler {
	return &Handler{log: log, auth: auth, sessions: sessions}
}

// ServeAuthenticated вызывается только через authgate.Gate.Protect.
func (h *Handler) ServeAuthenticated(w http.ResponseWriter, r *http.Request, userID string) {
	const op = "handlers.auth.me"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	user, err := h.auth.CurrentUser(r.Context(), userID)
	if err != nil {
		log.Error("failed to load current user", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}
	if user == nil {
		log.Warn("session user no longer exists", slog.String("user_id", userID))
		w.Header().Add("Set-Cookie", h.sessions.Destroy(h.sessions.LoadRequest(r)))
		http.Redirect(w, r, logout.RedirectPath, http.StatusFound)
		return
	}

	render.JSON(w, r, response.OKWithData(user))
}
