package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/issafronov/redirectmap/internal/app/models"
	"github.com/issafronov/redirectmap/internal/middleware/logger"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx"
	_ "github.com/jackc/pgx/stdlib"
	"go.uber.org/zap"
)

// PostgresStorage хранит запуски в таблице runs; схема создаётся миграциями
type PostgresStorage struct {
	db *sql.DB
}

func NewPostgresStorage(ctx context.Context, dsn string) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &PostgresStorage{db: db}, nil
}

func (s *PostgresStorage) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *PostgresStorage) Create(ctx context.Context, run Run) error {
	data, err := json.Marshal(run.Result)
	if err != nil {
		return err
	}
	query := `
	INSERT INTO runs (
	    id,
	    user_id,
	    created_at,
	    result
	    )
	VALUES ($1, $2, $3, $4)
	`
	_, err = s.db.ExecContext(ctx, query, run.ID, run.UserID, run.CreatedAt, string(data))
	if err != nil {
		var pgErr pgx.PgError
		if errors.As(err, &pgErr) && pgerrcode.IsIntegrityConstraintViolation(pgErr.Code) {
			return ErrConflict
		}
		logger.Log.Info("Failed to insert run", zap.String("run", run.ID), zap.Error(err))
		return err
	}
	return nil
}

func (s *PostgresStorage) Get(ctx context.Context, id string) (*Run, error) {
	var (
		run  Run
		data []byte
	)
	err := s.db.QueryRowContext(
		ctx,
		"SELECT id, user_id, created_at, result FROM runs WHERE id = $1",
		id,
	).Scan(&run.ID, &run.UserID, &run.CreatedAt, &data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &run.Result); err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *PostgresStorage) GetByUser(ctx context.Context, userID string) ([]models.RunSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
	SELECT id,
	       result->'meta'->>'runTimestamp',
	       (result->'meta'->>'removedCount')::int,
	       (result->'meta'->>'addedCount')::int,
	       (result->'meta'->>'suggestedMappings')::int
	FROM runs
	WHERE user_id = $1
	ORDER BY created_at DESC
	`, userID)
	if err != nil {
		logger.Log.Info("Failed to get user runs", zap.String("user", userID), zap.Error(err))
		return nil, err
	}
	defer rows.Close()

	var result []models.RunSummary
	for rows.Next() {
		var r models.RunSummary
		if err := rows.Scan(&r.ID, &r.RunTimestamp, &r.RemovedCount, &r.AddedCount, &r.SuggestedMappings); err != nil {
			return nil, err
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (s *PostgresStorage) CountRuns(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&n)
	return n, err
}

func (s *PostgresStorage) CountUsers(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(DISTINCT user_id) FROM runs WHERE user_id <> ''").Scan(&n)
	return n, err
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
