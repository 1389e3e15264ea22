// Package adminpanel собирает HTTP-приложение админ-панели.
package adminpanel

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/admin-panel/internal/http/authgate"
	"github.com/magabrotheeeer/admin-panel/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/admin-panel/internal/http/handlers/auth/logout"
	"github.com/magabrotheeeer/admin-panel/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/admin-panel/internal/http/handlers/auth/register"
	"github.com/magabrotheeeer/admin-panel/internal/http/handlers/customers"
	"github.com/magabrotheeeer/admin-panel/internal/http/handlers/users"
	"github.com/magabrotheeeer/admin-panel/internal/http/middlewarectx"
	"github.com/magabrotheeeer/admin-panel/internal/http/response"
	"github.com/magabrotheeeer/admin-panel/internal/lib/sl"
	"github.com/magabrotheeeer/admin-panel/internal/metrics"
	"github.com/magabrotheeeer/admin-panel/internal/ratelimit"
	authservice "github.com/magabrotheeeer/admin-panel/internal/services/auth"
	customerservice "github.com/magabrotheeeer/admin-panel/internal/services/customers"
	userservice "github.com/magabrotheeeer/admin-panel/internal/services/users"
	"github.com/magabrotheeeer/admin-panel/internal/session"
)

// Pinger проверяет доступность внешней зависимости для /healthz.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps зависимости маршрутов.
type Deps struct {
	Logger      *slog.Logger
	Production  bool
	LandingPath string

	Sessions  *session.Store
	Auth      *authservice.AuthService
	Users     *userservice.UserService
	Customers *customerservice.CustomerService

	Limiter  ratelimit.Limiter
	Policy   ratelimit.Policy
	Throttle *rate.Limiter

	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	Health   []Pinger
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, d Deps) {
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middlewarectx.SecurityHeaders(d.Production),
	)

	gate := authgate.New(d.Sessions, d.Logger)
	opts := login.Options{
		Policy:      d.Policy,
		LandingPath: d.LandingPath,
		Metrics:     d.Metrics,
	}

	// Открытые страницы
	loginHandler := login.New(d.Logger, d.Auth, d.Sessions, gate, d.Limiter, opts)
	r.Get("/", loginHandler.Page)
	r.Post("/", loginHandler.Submit)
	r.Get(authgate.LoginPath, loginHandler.Page)
	r.Post(authgate.LoginPath, loginHandler.Submit)

	registerHandler := register.New(d.Logger, d.Auth, d.Sessions, gate, d.Limiter, opts)
	r.Get("/register", registerHandler.Page)
	r.Post("/register", registerHandler.Submit)

	r.Post("/logout", logout.New(d.Logger, d.Sessions).ServeHTTP)

	// Страницы только для вошедших
	r.Group(func(r chi.Router) {
		r.Use(gate.Middleware, middlewarectx.Throttle(d.Logger, d.Throttle))

		r.Method(http.MethodGet, "/me", gate.Protect(me.New(d.Logger, d.Auth, d.Sessions)))

		uh := users.New(d.Logger, d.Users)
		r.Method(http.MethodGet, users.ListPath, gate.Protect(authgate.AuthenticatedHandlerFunc(uh.List)))
		r.Method(http.MethodPost, users.ListPath, gate.Protect(authgate.AuthenticatedHandlerFunc(uh.Action)))
		r.Method(http.MethodGet, users.ListPath+"/{id}", gate.Protect(authgate.AuthenticatedHandlerFunc(uh.Get)))
		r.Method(http.MethodPost, users.ListPath+"/{id}", gate.Protect(authgate.AuthenticatedHandlerFunc(uh.Edit)))
		r.Method(http.MethodGet, users.ListPath+"/{id}/duplicate", gate.Protect(authgate.AuthenticatedHandlerFunc(uh.Duplicate)))

		ch := customers.New(d.Logger, d.Customers)
		r.Method(http.MethodGet, customers.ListPath, gate.Protect(authgate.AuthenticatedHandlerFunc(ch.List)))
		r.Method(http.MethodPost, customers.ListPath, gate.Protect(authgate.AuthenticatedHandlerFunc(ch.Action)))
		r.Method(http.MethodGet, customers.ListPath+"/{id}", gate.Protect(authgate.AuthenticatedHandlerFunc(ch.Get)))
		r.Method(http.MethodPost, customers.ListPath+"/{id}", gate.Protect(authgate.AuthenticatedHandlerFunc(ch.Edit)))
		r.Method(http.MethodGet, customers.ListPath+"/{id}/duplicate", gate.Protect(authgate.AuthenticatedHandlerFunc(ch.Duplicate)))
	})

	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Get("/healthz", healthz(d.Logger, d.Health))
}

func healthz(log *slog.Logger, deps []Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for _, p := range deps {
			if err := p.Ping(r.Context()); err != nil {
				log.Error("health check failed", sl.Err(err))
				render.Status(r, http.StatusServiceUnavailable)
				render.JSON(w, r, response.Error("unavailable"))
				return
			}
		}
		render.JSON(w, r, response.OK())
	}
}
