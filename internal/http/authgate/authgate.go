// Package authgate пропускает к защищённым обработчикам только запросы
// с действительной сессией. Остальные перенаправляются на страницу входа
// с параметром redirectTo, равным запрошенному пути.
//
// Защищённые обработчики имеют тип AuthenticatedHandler и получают
// идентификатор пользователя аргументом, поэтому смонтировать их в обход
// Gate.Protect нельзя.
package authgate

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/admin-panel/internal/session"
)

const (
	// LoginPath страница входа.
	LoginPath = "/login"
	// RedirectParam имя параметра с путём возврата после входа.
	RedirectParam = "redirectTo"
)

type ctxKey struct{}

// AuthenticatedHandler обработчик, которому нужен проверенный пользователь.
type AuthenticatedHandler interface {
	ServeAuthenticated(w http.ResponseWriter, r *http.Request, userID string)
}

// AuthenticatedHandlerFunc адаптер функции к AuthenticatedHandler.
type AuthenticatedHandlerFunc func(w http.ResponseWriter, r *http.Request, userID string)

// ServeAuthenticated вызывает f(w, r, userID).
func (f AuthenticatedHandlerFunc) ServeAuthenticated(w http.ResponseWriter, r *http.Request, userID string) {
	f(w, r, userID)
}

// Gate проверяет сессию запроса.
type Gate struct {
	sessions *session.Store
	log      *slog.Logger
}

// New создаёт Gate поверх хранилища сессий.
func New(sessions *session.Store, log *slog.Logger) *Gate {
	return &Gate{sessions: sessions, log: log}
}

// UserID возвращает пользователя сессии, если он есть. Не завершает запрос.
func (g *Gate) UserID(r *http.Request) (string, bool) {
	id, ok := g.sessions.LoadRequest(r).Get(session.UserIDKey)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// RequireUserID возвращает пользователя сессии или отвечает редиректом на вход.
// Пустой redirectTo означает путь текущего запроса. При false ответ уже записан.
func (g *Gate) RequireUserID(w http.ResponseWriter, r *http.Request, redirectTo string) (string, bool) {
	if id, ok := g.UserID(r); ok {
		return id, true
	}
	if redirectTo == "" {
		redirectTo = r.URL.Path
	}

	g.log.Debug("unauthenticated request redirected",
		slog.String("path", r.URL.Path),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)
	http.Redirect(w, r, LoginURL(redirectTo), http.StatusFound)
	return "", false
}

// Protect оборачивает AuthenticatedHandler проверкой сессии.
// Пользователь, уже положенный в контекст через Middleware, повторно не проверяется.
func (g *Gate) Protect(h AuthenticatedHandler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userID, ok := UserIDFromContext(r.Context()); ok {
			h.ServeAuthenticated(w, r, userID)
			return
		}
		userID, ok := g.RequireUserID(w, r, "")
		if !ok {
			return
		}
		h.ServeAuthenticated(w, r.WithContext(WithUserID(r.Context(), userID)), userID)
	})
}

// Middleware то же, что Protect, для обычных http.Handler.
// Пользователь доступен через UserIDFromContext.
func (g *Gate) Middleware(next http.Handler) http.Handler {
	return g.Protect(AuthenticatedHandlerFunc(func(w http.ResponseWriter, r *http.Request, _ string) {
		next.ServeHTTP(w, r)
	}))
}

// WithUserID кладёт пользователя в контекст.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ctxKey{}, userID)
}

// UserIDFromContext достаёт пользователя, положенный Protect или Middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ctxKey{}).(string)
	return id, ok && id != ""
}

// LoginURL строит адрес страницы входа с путём возврата.
func LoginURL(redirectTo string) string {
	return LoginPath + "?" + url.Values{RedirectParam: {redirectTo}}.Encode()
}

// SafeRedirect возвращает target, если это локальный путь, иначе fallback.
// Отсекает абсолютные и протокол-относительные адреса (//host, /\host).
func SafeRedirect(target, fallback string) string {
	if target == "" || !strings.HasPrefix(target, "/") ||
		strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return fallback
	}
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" {
		return fallback
	}
	return target
}
