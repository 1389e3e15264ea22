// Package password реализует хеширование и проверку паролей пользователей.
//
// Hash создает bcrypt-хеш с фиксированной стоимостью Cost.
// Verify сравнивает пароль с сохранённым хешем.
package password

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Cost — стоимость bcrypt. Значение фиксировано и не настраивается.
const Cost = 10

// Hash принимает пароль пользователя и возвращает его bcrypt‑хэш.
//
// Используется для безопасного хранения паролей в базе данных.
func Hash(plaintext string) (string, error) {
	const op = "password.Hash"
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), Cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return string(hashed), nil
}

// Verify сообщает, соответствует ли пароль bcrypt‑хэшу.
//
// Сравнение выполняется за постоянное время средствами bcrypt.
// Повреждённый хэш считается несовпадением.
func Verify(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}
