package adminpanel

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/admin-panel/internal/cache"
	"github.com/magabrotheeeer/admin-panel/internal/config"
	"github.com/magabrotheeeer/admin-panel/internal/lib/sl"
	"github.com/magabrotheeeer/admin-panel/internal/metrics"
	"github.com/magabrotheeeer/admin-panel/internal/migrations"
	"github.com/magabrotheeeer/admin-panel/internal/ratelimit"
	authservice "github.com/magabrotheeeer/admin-panel/internal/services/auth"
	customerservice "github.com/magabrotheeeer/admin-panel/internal/services/customers"
	userservice "github.com/magabrotheeeer/admin-panel/internal/services/users"
	"github.com/magabrotheeeer/admin-panel/internal/session"
	"github.com/magabrotheeeer/admin-panel/internal/storage"
)

const shutdownTimeout = 15 * time.Second

// App HTTP-сервер админ-панели со всеми зависимостями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *storage.Storage
	cache  *cache.Cache

	// memory заполнен только для бэкенда memory, его чистит фоновая горутина.
	memory        *ratelimit.Memory
	sweepInterval time.Duration
}

// New подключает хранилища, применяет миграции и собирает маршруты.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := storage.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, err
	}

	app := &App{
		logger:        logger,
		db:            db,
		sweepInterval: cfg.RateLimit.SweepInterval,
	}
	health := []Pinger{db}

	var limiter ratelimit.Limiter
	switch cfg.RateLimit.Backend {
	case config.RateLimitRedis:
		app.cache, err = cache.InitServer(ctx, cfg.RedisConnection)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		limiter = ratelimit.NewRedis(app.cache.Db)
		health = append(health, app.cache)
	default:
		app.memory = ratelimit.NewMemory()
		limiter = app.memory
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	router := chi.NewRouter()
	RegisterRoutes(router, Deps{
		Logger:      logger,
		Production:  cfg.IsProduction(),
		LandingPath: cfg.LandingPath,
		Sessions: session.NewStore(session.Options{
			Env:    cfg.Env,
			Secret: cfg.Session.Secret,
			MaxAge: cfg.Session.MaxAge,
		}),
		Auth:      authservice.NewAuthService(db),
		Users:     userservice.NewUserService(db, logger),
		Customers: customerservice.NewCustomerService(db, logger),
		Limiter:   limiter,
		Policy: ratelimit.Policy{
			Limit:  cfg.RateLimit.Limit,
			Window: cfg.RateLimit.Window,
		},
		Throttle: rate.NewLimiter(rate.Limit(cfg.Throttle.RPS), cfg.Throttle.Burst),
		Metrics:  metrics.New(reg),
		Gatherer: reg,
		Health:   health,
	})

	app.server = &http.Server{
		Addr:         cfg.HTTPServer.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.TimeoutHTTP,
		WriteTimeout: cfg.HTTPServer.TimeoutHTTP,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}
	return app, nil
}

// Run обслуживает запросы до отмены ctx, затем корректно останавливает сервер.
func (a *App) Run(ctx context.Context) error {
	if a.memory != nil {
		go a.memory.Run(ctx, a.sweepInterval, a.logger)
	}

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if err := a.db.Close(); err != nil {
		a.logger.Error("failed to close storage", sl.Err(err))
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.logger.Error("failed to close redis", sl.Err(err))
		}
	}
}
