package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/issafronov/redirectmap/internal/middleware/logger"
)

// Claims представляет набор пользовательских данных, встраиваемых в JWT-токен
type Claims struct {
	jwt.RegisteredClaims
	UserID string
}

const (
	exp = time.Hour * 24 * 30
	// DefaultSecret используется, если ключ подписи не задан в конфигурации
	DefaultSecret = "secret"
)

// ErrTokenExpired — срок действия токена истёк
var ErrTokenExpired = errors.New("token expired")

// ErrInvalidToken возвращается, если токен не прошёл проверку подписи или формата
var ErrInvalidToken = errors.New("invalid token")

func signingKey(secret string) []byte {
	if secret == "" {
		logger.Log.Info("secret key is not configured, falling back to default")
		secret = DefaultSecret
	}
	return []byte(secret)
}

// GenerateJWT создаёт JWT-токен для указанного userID
func GenerateJWT(userID, secret string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(exp)),
		},
		UserID: userID,
	})
	return token.SignedString(signingKey(secret))
}

// ParseJWT проверяет токен и возвращает userID из его claims
func ParseJWT(tokenString, secret string) (string, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return signingKey(secret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrTokenExpired
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return "", ErrInvalidToken
	}
	return claims.UserID, nil
}
