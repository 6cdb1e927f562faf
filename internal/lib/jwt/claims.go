// Package jwt реализует выпуск и разбор токенов сессий.
//
// Токен выдаётся при входе по коду доступа или при входе администратора.
// Идентификатор токена (jti) служит ключом серверной записи сессии,
// так что отзыв сессии не требует ждать истечения токена.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Роли субъектов токена.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// SessionClaims описывает данные, хранящиеся в токене сессии.
type SessionClaims struct {
	UserID               string `json:"user_id"` // Идентификатор пользователя или администратора
	Role                 string `json:"role"`    // user или admin
	jwt.RegisteredClaims        // Стандартные claims (ID, IssuedAt, ExpiresAt)
}

// Maker описывает интерфейс выпуска и проверки токенов сессий.
type Maker interface {
	// GenerateToken выпускает токен с заданным сроком жизни.
	GenerateToken(userID, role string, ttl time.Duration) (string, *SessionClaims, error)
	// ParseToken проверяет подпись и срок токена и возвращает его claims.
	ParseToken(tokenStr string) (*SessionClaims, error)
}
