package service

import (
	"context"

	"github.com/issafronov/redirectmap/internal/app/models"
)

// Service определяет бизнес-логику построения карт редиректов
type Service interface {
	// BuildMapping загружает оба инвентаря, запускает движок и сохраняет отчёт пользователя
	BuildMapping(ctx context.Context, req models.MappingRequest, userID string) (*models.MappingResult, error)

	// GetRun возвращает сохранённый отчёт по идентификатору
	GetRun(ctx context.Context, id string) (*models.MappingResult, error)

	// GetUserRuns возвращает краткие описания запусков пользователя
	GetUserRuns(ctx context.Context, userID string) ([]models.RunSummary, error)

	// GetStats возвращает статистику: количество запусков и количество пользователей
	GetStats(ctx context.Context) (runs int64, users int64, err error)

	// Ping пингует сервис
	Ping(ctx context.Context) error
}
