// Package ratelimit реализует ограничение числа попыток входа и регистрации
// по ключу клиента с фиксированным окном.
//
// Окно не скользящее: первая попытка открывает окно длиной window, в течение
// которого разрешено ровно limit попыток. Попытка limit+1 отклоняется, а
// отклонённые попытки не продлевают окно. После истечения окна счётчик
// начинается заново.
//
// Memory хранит счётчики в памяти процесса и не разделяется между экземплярами
// сервиса. Redis даёт ту же семантику для нескольких экземпляров и включается
// только явно через конфиг.
package ratelimit

import (
	"context"
	"net/http"
	"time"
)

// ForwardedForHeader — заголовок, из которого берётся ключ клиента.
const ForwardedForHeader = "X-Forwarded-For"

// UnknownClient — ключ для запросов без X-Forwarded-For. Все такие клиенты
// делят одно окно.
const UnknownClient = "unknown"

// Limiter проверяет и учитывает очередную попытку для ключа.
type Limiter interface {
	// IsLimited возвращает true, если попытка должна быть отклонена.
	IsLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Policy описывает лимит для группы конечных точек.
type Policy struct {
	Limit  int
	Window time.Duration
}

// ClientKey возвращает ключ клиента для ограничителя.
func ClientKey(r *http.Request) string {
	if v := r.Header.Get(ForwardedForHeader); v != "" {
		return v
	}
	return UnknownClient
}
