// Package models содержит записи, которыми управляет админ-панель:
// учётные записи пользователей и карточки клиентов.
package models

import "time"

// User представляет зарегистрированного пользователя панели.
type User struct {
	ID           string    `json:"id"`        // Уникальный идентификатор (UUID)
	Email        string    `json:"email"`     // Электронная почта, уникальна с учётом регистра
	PasswordHash string    `json:"-"`         // Хэш пароля bcrypt
	CreatedAt    time.Time `json:"createdAt"` // Дата создания
}
