// Package register реализует регистрацию нового пользователя с немедленным входом.
package register

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/admin-panel/internal/http/authgate"
	"github.com/magabrotheeeer/admin-panel/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/admin-panel/internal/http/response"
	"github.com/magabrotheeeer/admin-panel/internal/lib/sl"
	"github.com/magabrotheeeer/admin-panel/internal/metrics"
	"github.com/magabrotheeeer/admin-panel/internal/models"
	"github.com/magabrotheeeer/admin-panel/internal/ratelimit"
	authservice "github.com/magabrotheeeer/admin-panel/internal/services/auth"
	"github.com/magabrotheeeer/admin-panel/internal/session"
)

// Сообщения формы регистрации.
const (
	MsgRateLimited    = "Too many registration attempts. Please try again later."
	MsgDuplicateEmail = "User already exists with that email"
)

// Request — поля формы регистрации.
type Request struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=6"`
}

// Service описывает регистрацию пользователя.
type Service interface {
	Register(ctx context.Context, email, password string) (*models.User, error)
}

// Handler обрабатывает HTTP-запросы для регистрации.
type Handler struct {
	log      *slog.Logger
	auth     Service
	sessions *session.Store
	gate     *authgate.Gate
	limiter  ratelimit.Limiter
	opts     login.Options
	validate *validator.Validate
}

// New создает новый экземпляр Handler. Лимитер общий со страницей входа.
func New(log *slog.Logger, auth Service, sessions *session.Store, gate *authgate.Gate, limiter ratelimit.Limiter, opts login.Options) *Handler {
	return &Handler{
		log:      log,
		auth:     auth,
		sessions: sessions,
		gate:     gate,
		limiter:  limiter,
		opts:     opts,
		validate: validator.New(),
	}
}

// Page отдаёт страницу регистрации.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.gate.UserID(r); ok {
		http.Redirect(w, r, h.opts.LandingPath, http.StatusFound)
		return
	}
	render.JSON(w, r, response.OK())
}

// Submit регистрирует пользователя и открывает сессию.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	key := ratelimit.ClientKey(r)
	limited, err := h.limiter.IsLimited(r.Context(), key, h.opts.Policy.Limit, h.opts.Policy.Window)
	if err != nil {
		log.Error("rate limiter failed", sl.Err(err))
		h.internalError(w, r)
		return
	}
	if limited {
		log.Warn("registration rate limited", sl.ClientKey(key))
		h.opts.Metrics.AuthAttempt(metrics.ActionRegister, metrics.ResultRateLimited)
		render.JSON(w, r, response.Error(MsgRateLimited))
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		h.opts.Metrics.AuthAttempt(metrics.ActionRegister, metrics.ResultInvalid)
		render.JSON(w, r, response.Error(login.MsgInvalidForm))
		return
	}
	req := Request{
		Email:    r.PostForm.Get("email"),
		Password: r.PostForm.Get("password"),
	}
	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		h.opts.Metrics.AuthAttempt(metrics.ActionRegister, metrics.ResultInvalid)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.auth.Register(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, authservice.ErrDuplicateEmail) {
			log.Info("email already registered")
			h.opts.Metrics.AuthAttempt(metrics.ActionRegister, metrics.ResultFailure)
			render.JSON(w, r, response.Error(MsgDuplicateEmail))
			return
		}
		log.Error("registration failed", sl.Err(err))
		h.internalError(w, r)
		return
	}

	s := h.sessions.New()
	s.Set(session.UserIDKey, user.ID)
	cookie, err := h.sessions.Commit(s)
	if err != nil {
		log.Error("failed to commit session", sl.Err(err))
		h.internalError(w, r)
		return
	}

	log.Info("user registered", slog.String("user_id", user.ID))
	h.opts.Metrics.AuthAttempt(metrics.ActionRegister, metrics.ResultSuccess)
	w.Header().Add("Set-Cookie", cookie)
	http.Redirect(w, r, h.opts.LandingPath, http.StatusFound)
}

func (h *Handler) internalError(w http.ResponseWriter, r *http.Request) {
	h.opts.Metrics.AuthAttempt(metrics.ActionRegister, metrics.ResultError)
	render.Status(r, http.StatusInternalServerError)
	render.JSON(w, r, response.Error("internal error"))
}
