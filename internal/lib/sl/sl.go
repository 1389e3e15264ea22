// Package sl содержит вспомогательные функции для работы с логгером slog.
// Основная цель — единообразно оформлять поля лога в обработчиках и сервисах.
package sl

import "log/slog"

// Err возвращает slog.Attr с ключом "error" и значением текста ошибки.
// Для nil возвращается пустая строка, чтобы логирование никогда не паниковало.
//
// Пример:
//
//	log.Error("failed to do something", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "")
	}
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// ClientKey оформляет ключ ограничителя частоты (адрес клиента).
func ClientKey(key string) slog.Attr {
	return slog.String("client_key", key)
}
