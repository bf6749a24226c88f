// Package mapping сопоставляет удалённые URL старого инвентаря добавленным URL нового,
// проверяет цели и обобщает найденные пары в префиксные правила.
package mapping

import (
	"context"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/issafronov/redirectmap/internal/app/models"
	"github.com/issafronov/redirectmap/internal/middleware/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

const (
	DefaultMaxCompare  = 200
	HardMaxCompare     = 200
	DefaultConcurrency = 6
	MaxConcurrency     = 32
	DefaultTimeout     = 10 * time.Second
	MinTimeout         = time.Second
	MaxTimeout         = 30 * time.Second
)

// Options параметры одного запуска
type Options struct {
	MaxCompare        int
	Timeout           time.Duration
	Verify            bool
	SameRegDomainOnly bool
	Concurrency       int
	Limiter           *semaphore.Weighted
	Guard             Guard
	UserAgent         string

	// InputTruncated означает, что списки уже обрезаны при загрузке
	InputTruncated bool
}

// DefaultOptions возвращает параметры по умолчанию
func DefaultOptions() Options {
	return Options{
		MaxCompare:        DefaultMaxCompare,
		Timeout:           DefaultTimeout,
		SameRegDomainOnly: true,
		Concurrency:       DefaultConcurrency,
	}
}

// Normalize приводит значения к допустимым диапазонам
func (o Options) Normalize() Options {
	switch {
	case o.MaxCompare <= 0:
		o.MaxCompare = DefaultMaxCompare
	case o.MaxCompare > HardMaxCompare:
		o.MaxCompare = HardMaxCompare
	}
	switch {
	case o.Timeout <= 0:
		o.Timeout = DefaultTimeout
	case o.Timeout < MinTimeout:
		o.Timeout = MinTimeout
	case o.Timeout > MaxTimeout:
		o.Timeout = MaxTimeout
	}
	switch {
	case o.Concurrency <= 0:
		o.Concurrency = DefaultConcurrency
	case o.Concurrency > MaxConcurrency:
		o.Concurrency = MaxConcurrency
	}
	return o
}

// Engine выполняет полный конвейер: diff, подбор пар, дедупликация,
// необязательная верификация и вывод префиксных правил.
type Engine struct {
	newClient func() *resty.Client
	now       func() time.Time
}

// NewEngine создаёт движок. Каждый запуск получает собственный HTTP-клиент.
func NewEngine() *Engine {
	return &Engine{
		newClient: resty.New,
		now:       time.Now,
	}
}

// Run зависит только от двух списков URL и параметров, если не включена сетевая верификация.
// Ошибки отдельных URL и проверок не прерывают запуск.
func (e *Engine) Run(ctx context.Context, oldURLs, newURLs []string, opts Options) *models.MappingResult {
	opts = opts.Normalize()

	delta := Diff(oldURLs, newURLs, opts.MaxCompare)
	truncated := delta.Truncated || opts.InputTruncated
	logger.Log.Debug("inventories compared",
		zap.Int("removed", len(delta.Removed)),
		zap.Int("added", len(delta.Added)),
		zap.Bool("truncated", truncated),
	)

	pairs, unmapped := Dedup(SelectBest(delta.Removed, delta.Added, opts.SameRegDomainOnly), delta.Removed)
	logger.Log.Debug("mappings selected", zap.Int("pairs", len(pairs)), zap.Int("unmapped", len(unmapped)))

	if opts.Verify && len(pairs) > 0 {
		verifier := NewVerifier(e.newClient(), VerifierConfig{
			Concurrency: opts.Concurrency,
			Timeout:     opts.Timeout,
			Limiter:     opts.Limiter,
			Guard:       opts.Guard,
			UserAgent:   opts.UserAgent,
		})
		pairs = verifier.Verify(ctx, pairs)
	}

	rules := InferPrefixRules(pairs)

	result := models.EmptyResult(models.RunMeta{
		RunTimestamp:      e.now().UTC().Format(time.RFC3339),
		RemovedCount:      len(delta.Removed),
		AddedCount:        len(delta.Added),
		SuggestedMappings: len(pairs),
		Truncated:         truncated,
		Verify:            opts.Verify,
		TimeoutMs:         int(opts.Timeout / time.Millisecond),
		SameRegDomainOnly: opts.SameRegDomainOnly,
	})
	result.Added = append(result.Added, delta.Added...)
	result.Removed = append(result.Removed, delta.Removed...)
	result.Pairs = append(result.Pairs, pairs...)
	result.Unmapped = append(result.Unmapped, unmapped...)
	result.Rules = append(result.Rules, rules...)
	return result
}
