package storage

import (
	"context"
	"errors"
	"time"

	"github.com/issafronov/redirectmap/internal/app/models"
)

var (
	ErrNotFound = errors.New("run not found")

	// ErrConflict запуск с таким идентификатором уже сохранён
	ErrConflict = errors.New("conflict")
)

// Run сохранённый отчёт одного запуска
type Run struct {
	ID        string               `json:"id"`
	UserID    string               `json:"user_id"`
	CreatedAt time.Time            `json:"created_at"`
	Result    models.MappingResult `json:"result"`
}

// Summary возвращает краткое описание запуска для списка пользователя
func (r Run) Summary() models.RunSummary {
	return models.RunSummary{
		ID:                r.ID,
		RunTimestamp:      r.Result.Meta.RunTimestamp,
		RemovedCount:      r.Result.Meta.RemovedCount,
		AddedCount:        r.Result.Meta.AddedCount,
		SuggestedMappings: r.Result.Meta.SuggestedMappings,
	}
}

// Storage хранит отчёты запусков
type Storage interface {
	Create(ctx context.Context, run Run) error
	Get(ctx context.Context, id string) (*Run, error)
	GetByUser(ctx context.Context, userID string) ([]models.RunSummary, error)
	CountRuns(ctx context.Context) (int64, error)
	CountUsers(ctx context.Context) (int64, error)
	Ping(ctx context.Context) error
	Close() error
}
