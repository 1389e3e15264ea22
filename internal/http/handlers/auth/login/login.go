// Package login реализует страницу входа: показ формы и проверку учётных данных.
//
// Попытки входа ограничиваются по ключу клиента (X-Forwarded-For), затем форма
// валидируется и передаётся в сервис аутентификации. При успехе выставляется
// cookie сессии и выполняется редирект на redirectTo или стартовую страницу.
package login

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/admin-panel/internal/http/authgate"
	"github.com/magabrotheeeer/admin-panel/internal/http/response"
	"github.com/magabrotheeeer/admin-panel/internal/lib/sl"
	"github.com/magabrotheeeer/admin-panel/internal/metrics"
	"github.com/magabrotheeeer/admin-panel/internal/models"
	"github.com/magabrotheeeer/admin-panel/internal/ratelimit"
	"github.com/magabrotheeeer/admin-panel/internal/session"
)

// Сообщения формы входа.
const (
	MsgRateLimited        = "Too many login attempts. Please try again later."
	MsgInvalidCredentials = "Invalid email or password"
	MsgInvalidForm        = "Invalid form submission"
)

// Request — поля формы входа.
type Request struct {
	Email      string `validate:"required,email"`
	Password   string `validate:"required"`
	RedirectTo string
}

// Service описывает проверку учётных данных.
// Неверная пара email/пароль возвращает (nil, nil).
type Service interface {
	Authenticate(ctx context.Context, email, password string) (*models.User, error)
}

// Options общие параметры обработчиков входа.
type Options struct {
	Policy      ratelimit.Policy
	LandingPath string
	Metrics     *metrics.Metrics
}

// Handler обрабатывает страницу входа.
type Handler struct {
	log      *slog.Logger
	auth     Service
	sessions *session.Store
	gate     *authgate.Gate
	limiter  ratelimit.Limiter
	opts     Options
	validate *validator.Validate
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, auth Service, sessions *session.Store, gate *authgate.Gate, limiter ratelimit.Limiter, opts Options) *Handler {
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

// Page отдаёт страницу входа или уводит уже вошедшего пользователя на стартовую.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.gate.UserID(r); ok {
		http.Redirect(w, r, h.opts.LandingPath, http.StatusFound)
		return
	}
	if redirectTo := r.URL.Query().Get(authgate.RedirectParam); redirectTo != "" {
		render.JSON(w, r, response.OKWithData(map[string]string{authgate.RedirectParam: redirectTo}))
		return
	}
	render.JSON(w, r, response.OK())
}

// Submit проверяет учётные данные и открывает сессию.
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	key := ratelimit.ClientKey(r)
	limited, err := h.limiter.IsLimited(r.Context(), key, h.opts.Policy.Limit, h.opts.Policy.Window)
	if err != nil {
		log.Error("rate limiter failed", sl.Err(err))
		h.opts.Metrics.AuthAttempt(metrics.ActionLogin, metrics.ResultError)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}
	if limited {
		log.Warn("login rate limited", sl.ClientKey(key))
		h.opts.Metrics.AuthAttempt(metrics.ActionLogin, metrics.ResultRateLimited)
		render.JSON(w, r, response.Error(MsgRateLimited))
		return
	}

	if err := r.ParseForm(); err != nil {
		log.Error("failed to parse form", sl.Err(err))
		h.opts.Metrics.AuthAttempt(metrics.ActionLogin, metrics.ResultInvalid)
		render.JSON(w, r, response.Error(MsgInvalidForm))
		return
	}
	req := Request{
		Email:      r.PostForm.Get("email"),
		Password:   r.PostForm.Get("password"),
		RedirectTo: r.PostForm.Get(authgate.RedirectParam),
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		h.opts.Metrics.AuthAttempt(metrics.ActionLogin, metrics.ResultInvalid)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	user, err := h.auth.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		log.Error("authentication failed", sl.Err(err))
		h.opts.Metrics.AuthAttempt(metrics.ActionLogin, metrics.ResultError)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}
	if user == nil {
		log.Info("invalid credentials", sl.ClientKey(key))
		h.opts.Metrics.AuthAttempt(metrics.ActionLogin, metrics.ResultFailure)
		render.JSON(w, r, response.Error(MsgInvalidCredentials))
		return
	}

	s := h.sessions.New()
	s.Set(session.UserIDKey, user.ID)
	cookie, err := h.sessions.Commit(s)
	if err != nil {
		log.Error("failed to commit session", sl.Err(err))
		h.opts.Metrics.AuthAttempt(metrics.ActionLogin, metrics.ResultError)
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("login success", slog.String("user_id", user.ID))
	h.opts.Metrics.AuthAttempt(metrics.ActionLogin, metrics.ResultSuccess)
	w.Header().Add("Set-Cookie", cookie)
	http.Redirect(w, r, authgate.SafeRedirect(req.RedirectTo, h.opts.LandingPath), http.StatusFound)
}
