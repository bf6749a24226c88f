package auth

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/issafronov/redirectmap/internal/app/contextkeys"
	"github.com/issafronov/redirectmap/internal/app/security"
	"github.com/issafronov/redirectmap/internal/app/utils"
	"github.com/issafronov/redirectmap/internal/middleware/logger"
	"go.uber.org/zap"
)

// CookieName имя cookie с JWT-токеном пользователя
const CookieName = "JWT_TOKEN"

const cookieTTL = time.Hour * 24 * 30

// AuthorizationMiddleware определяет пользователя по JWT из cookie.
// Запрос без cookie получает нового анонимного пользователя и свежий токен.
func AuthorizationMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var userID string

			cookie, err := r.Cookie(CookieName)
			if err != nil {
				userID = utils.NewID()
				signed, err := security.GenerateJWT(userID, secret)
				if err != nil {
					logger.Log.Info("AuthorizationMiddleware: error generating JWT token", zap.Error(err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				http.SetCookie(w, &http.Cookie{
					Name:     CookieName,
					Value:    signed,
					Path:     "/",
					HttpOnly: true,
					Expires:  time.Now().Add(cookieTTL),
				})
			} else {
				userID, err = security.ParseJWT(cookie.Value, secret)
				if err != nil {
					logger.Log.Debug("AuthorizationMiddleware: rejected token",
						zap.Bool("expired", errors.Is(err, security.ErrTokenExpired)),
						zap.Error(err),
					)
					http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
					return
				}
			}

			ctx := context.WithValue(r.Context(), contextkeys.UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserID извлекает идентификатор пользователя из контекста запроса
func UserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(string)
	return userID, ok && userID != ""
}
