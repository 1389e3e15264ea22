// Package metrics содержит счётчики Prometheus админ-панели.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Действия.
const (
	ActionLogin    = "login"
	ActionRegister = "register"
)

// Исходы попытки.
const (
	ResultSuccess     = "success"
	ResultFailure     = "failure"
	ResultRateLimited = "rate_limited"
	ResultInvalid     = "invalid"
	ResultError       = "error"
)

// Metrics счётчики попыток входа и регистрации.
type Metrics struct {
	authAttempts *prometheus.CounterVec
}

// New регистрирует счётчики в reg. nil означает prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	return &Metrics{
		authAttempts: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "admin",
			Name:      "auth_attempts_total",
			Help:      "Login and registration attempts by outcome.",
		}, []string{"action", "result"}),
	}
}

// AuthAttempt учитывает одну попытку. Безопасен для nil получателя.
func (m *Metrics) AuthAttempt(action, result string) {
	if m == nil {
		return
	}
	m.authAttempts.WithLabelValues(action, result).Inc()
}
