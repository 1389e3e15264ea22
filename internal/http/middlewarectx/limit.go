// Package middlewarectx содержит общие HTTP middleware админ-панели.
package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/admin-panel/internal/http/authgate"
	"github.com/magabrotheeeer/admin-panel/internal/http/response"
)

// Throttle ограничивает общий поток запросов к защищённым страницам.
// Ставится после authgate.Gate.Middleware, чтобы в журнал попал пользователь.
// Лимитер передаётся снаружи, чтобы тесты и приложение владели своим экземпляром.
func Throttle(log *slog.Logger, limiter *rate.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow() {
				userID, _ := authgate.UserIDFromContext(r.Context())
				log.Warn("too many requests",
					slog.String("path", r.URL.Path),
					slog.String("session_user", userID),
					slog.String("request_id", middleware.GetReqID(r.Context())),
				)
				render.Status(r, http.StatusTooManyRequests)
				render.JSON(w, r, response.Error("too many requests"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
