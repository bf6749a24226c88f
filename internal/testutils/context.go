// Package testutils содержит помощники для тестов обработчиков
package testutils

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/issafronov/redirectmap/internal/app/contextkeys"
)

// WithTestUserContext кладёт идентификатор пользователя в контекст запроса
func WithTestUserContext(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), contextkeys.UserIDKey, userID)
	return r.WithContext(ctx)
}

// WithURLParam подставляет параметр маршрута chi без роутера
func WithURLParam(r *http.Request, key, value string) *http.Request {
	routeCtx := chi.RouteContext(r.Context())
	if routeCtx == nil {
		routeCtx = chi.NewRouteContext()
	}
	routeCtx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, routeCtx))
}
