// Package jwt подписывает и проверяет содержимое cookie-сессии.
//
// Токен подписывается HS256 общим секретом и несёт единственный claim userId.
// Шифрования нет: подпись гарантирует только неизменность содержимого.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims описывает данные, хранящиеся в токене сессии.
type Claims struct {
	UserID               string `json:"userId,omitempty"` // Идентификатор вошедшего пользователя
	jwt.RegisteredClaims        // IssuedAt и, если задан TTL, ExpiresAt
}

// Maker описывает подпись и разбор токенов сессии.
type Maker interface {
	GenerateToken(userID string) (string, error)
	ParseToken(tokenStr string) (*Claims, error)
}

// MakerImpl реализует Maker с использованием секретного ключа
// и времени жизни токена (TTL). Нулевой TTL означает токен без срока действия.
type MakerImpl struct {
	secretKey []byte
	tokenTTL  time.Duration
	now       func() time.Time
}

// NewJWTMaker создаёт новый экземпляр MakerImpl на основе секретного ключа и TTL.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: []byte(secretKey),
		tokenTTL:  ttl,
		now:       time.Now,
	}
}
