// Package jwt реализует выпуск и разбор JWT-токенов сессий Padayon.
//
// Токен несёт идентичность (id, email, признак анонимности) и уникальный
// идентификатор (jti), по которому сессию можно отозвать при выходе.
package jwt

import (
	"time"

	"github.com/Eka2r/Padayon/internal/models"
)

// Maker описывает выпуск и разбор токенов сессий.
type Maker interface {
	GenerateToken(identity models.Identity) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl подписывает токены HS256 секретным ключом.
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
	issuer    string
}

// NewJWTMaker создаёт MakerImpl. issuer обычно равен app id.
func NewJWTMaker(secretKey string, ttl time.Duration, issuer string) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
		issuer:    issuer,
	}
}

// TTL возвращает время жизни выпускаемых токенов.
func (j *MakerImpl) TTL() time.Duration {
	return j.tokenTTL
}
