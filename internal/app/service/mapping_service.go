package service

import (
	"context"
	"errors"
	"time"

	"github.com/issafronov/redirectmap/internal/app/config"
	"github.com/issafronov/redirectmap/internal/app/contextkeys"
	"github.com/issafronov/redirectmap/internal/app/mapping"
	"github.com/issafronov/redirectmap/internal/app/models"
	"github.com/issafronov/redirectmap/internal/app/sitemap"
	"github.com/issafronov/redirectmap/internal/app/storage"
	"github.com/issafronov/redirectmap/internal/app/utils"
	"github.com/issafronov/redirectmap/internal/middleware/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrNoInput для одной из сторон не задан ни sitemap, ни список URL
	ErrNoInput = errors.New("old and new inventories are required")

	ErrNotFound = errors.New("run not found")
)

// SitemapLoader загружает список URL из sitemap
type SitemapLoader interface {
	Load(ctx context.Context, source string, limit int, limiter *semaphore.Weighted) ([]string, bool, error)
	Guard() *sitemap.Guard
}

type mappingService struct {
	storage storage.Storage
	loader  SitemapLoader
	engine  *mapping.Engine
	cfg     *config.Config
	now     func() time.Time
}

// NewService создаёт новый экземпляр сервиса
func NewService(storage storage.Storage, loader SitemapLoader, cfg *config.Config) Service {
	return &mappingService{
		storage: storage,
		loader:  loader,
		engine:  mapping.NewEngine(),
		cfg:     cfg,
		now:     time.Now,
	}
}

// BuildMapping строит карту редиректов. Ошибки загрузки sitemap не прерывают запуск:
// соответствующая сторона считается пустой.
func (s *mappingService) BuildMapping(ctx context.Context, req models.MappingRequest, userID string) (*models.MappingResult, error) {
	if !hasInput(req.OldSitemap, req.OldURLs) || !hasInput(req.NewSitemap, req.NewURLs) {
		return nil, ErrNoInput
	}

	runID := utils.NewID()
	ctx = context.WithValue(ctx, contextkeys.RunIDKey, runID)

	opts := s.options(req)
	opts.Limiter = semaphore.NewWeighted(int64(opts.Concurrency))
	opts.Guard = s.loader.Guard().Check

	oldURLs, newURLs, truncated := s.loadInventories(ctx, req, opts)
	opts.InputTruncated = truncated
	result := s.engine.Run(ctx, oldURLs, newURLs, opts)
	result.ID = runID

	run := storage.Run{
		ID:        runID,
		UserID:    userID,
		CreatedAt: s.now(),
		Result:    *result,
	}
	if err := s.storage.Create(ctx, run); err != nil {
		logger.Log.Error("Failed to store run", zap.String("run", runID), zap.Error(err))
		return nil, err
	}

	logger.Log.Info("Mapping run completed",
		zap.String("run", runID),
		zap.String("user", userID),
		zap.Int("removed", result.Meta.RemovedCount),
		zap.Int("added", result.Meta.AddedCount),
		zap.Int("pairs", result.Meta.SuggestedMappings),
		zap.Int("rules", len(result.Rules)),
		zap.Bool("truncated", result.Meta.Truncated),
	)
	return result, nil
}

// options накладывает параметры запроса на значения из конфигурации
func (s *mappingService) options(req models.MappingRequest) mapping.Options {
	opts := mapping.Options{
		MaxCompare:        s.cfg.MaxCompare,
		Timeout:           s.cfg.RequestTimeout(),
		Verify:            s.cfg.VerifyTargets,
		SameRegDomainOnly: s.cfg.SameRegDomainOnly,
		Concurrency:       s.cfg.VerifyConcurrency,
		UserAgent:         s.cfg.UserAgent,
	}
	if req.MaxCompare > 0 {
		opts.MaxCompare = req.MaxCompare
	}
	if req.Timeout > 0 {
		opts.Timeout = time.Duration(req.Timeout) * time.Millisecond
	}
	if req.Concurrency > 0 {
		opts.Concurrency = req.Concurrency
	}
	if req.VerifyTargets != nil {
		opts.Verify = *req.VerifyTargets
	}
	if req.SameRegDomainOnly != nil {
		opts.SameRegDomainOnly = *req.SameRegDomainOnly
	}
	return opts.Normalize()
}

// loadInventories загружает обе стороны параллельно. Встроенный список URL важнее sitemap.
// Третье значение сообщает, что загрузчик упёрся в MaxCompare хотя бы на одной стороне.
func (s *mappingService) loadInventories(ctx context.Context, req models.MappingRequest, opts mapping.Options) ([]string, []string, bool) {
	var (
		oldURLs, newURLs           []string
		oldTruncated, newTruncated bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		oldURLs, oldTruncated = s.inventory(gctx, "old", req.OldSitemap, req.OldURLs, opts)
		return nil
	})
	g.Go(func() error {
		newURLs, newTruncated = s.inventory(gctx, "new", req.NewSitemap, req.NewURLs, opts)
		return nil
	})
	_ = g.Wait()
	return oldURLs, newURLs, oldTruncated || newTruncated
}

func (s *mappingService) inventory(ctx context.Context, side, source string, urls []string, opts mapping.Options) ([]string, bool) {
	if len(urls) > 0 {
		return urls, false
	}
	loaded, truncated, err := s.loader.Load(ctx, source, opts.MaxCompare, opts.Limiter)
	if err != nil {
		logger.Log.Warn("Failed to load sitemap, treating inventory as empty",
			zap.Any("run", ctx.Value(contextkeys.RunIDKey)),
			zap.String("side", side),
			zap.Error(err),
		)
		return []string{}, false
	}
	if truncated {
		logger.Log.Info("Sitemap capped at max compare",
			zap.Any("run", ctx.Value(contextkeys.RunIDKey)),
			zap.String("side", side),
			zap.Int("limit", opts.MaxCompare),
		)
	}
	return loaded, truncated
}

// GetRun возвращает сохранённый отчёт
func (s *mappingService) GetRun(ctx context.Context, id string) (*models.MappingResult, error) {
	if !utils.IsID(id) {
		return nil, ErrNotFound
	}
	run, err := s.storage.Get(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	result := run.Result
	result.ID = run.ID
	return &result, nil
}

// GetUserRuns возвращает запуски пользователя
func (s *mappingService) GetUserRuns(ctx context.Context, userID string) ([]models.RunSummary, error) {
	return s.storage.GetByUser(ctx, userID)
}

// GetStats возвращает общее количество запусков и пользователей
func (s *mappingService) GetStats(ctx context.Context) (int64, int64, error) {
	runs, err := s.storage.CountRuns(ctx)
	if err != nil {
		return 0, 0, err
	}

	users, err := s.storage.CountUsers(ctx)
	if err != nil {
		return 0, 0, err
	}

	return runs, users, nil
}

func (s *mappingService) Ping(ctx context.Context) error {
	return s.storage.Ping(ctx)
}

func hasInput(source string, urls []string) bool {
	return len(urls) > 0 || source != ""
}
