// Package sitemap загружает инвентарь URL из sitemap: по адресу или из XML-текста,
// с распаковкой gzip и обходом вложенных sitemap index.
package sitemap

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/issafronov/redirectmap/internal/app/contextkeys"
	"github.com/issafronov/redirectmap/internal/middleware/logger"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrBadSitemapURL источник пуст или адрес sitemap недопустим
	ErrBadSitemapURL = errors.New("bad_sitemap_url")
	// ErrParseEmpty означает, что в документе нет записей <url> или <sitemap>
	ErrParseEmpty = errors.New("parse_empty")

	ErrBlockedTarget = errors.New("blocked_target")
	ErrFetchFailed   = errors.New("fetch_failed")
)

const (
	DefaultMaxChildren  = 50
	DefaultMaxBodyBytes = 10 << 20
	maxRedirects        = 5
)

// Config параметры загрузчика
type Config struct {
	Timeout      time.Duration
	MaxChildren  int
	MaxBodyBytes int64
	UserAgent    string
}

// Loader загружает плоский список URL из sitemap
type Loader struct {
	client *resty.Client
	guard  *Guard
	cfg    Config
}

// NewLoader создаёт загрузчик. Редиректы проходят ту же проверку, что и исходный адрес.
func NewLoader(client *resty.Client, guard *Guard, cfg Config) *Loader {
	if client == nil {
		client = resty.New()
	}
	if guard == nil {
		guard = &Guard{}
	}
	if cfg.MaxChildren < 0 {
		cfg.MaxChildren = 0
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	client.SetRedirectPolicy(
		resty.FlexibleRedirectPolicy(maxRedirects),
		resty.RedirectPolicyFunc(func(req *http.Request, _ []*http.Request) error {
			return guard.Check(req.Context(), req.URL.String())
		}),
	)
	return &Loader{client: client, guard: guard, cfg: cfg}
}

// Guard возвращает проверку адресов загрузчика
func (l *Loader) Guard() *Guard {
	return l.guard
}

type queued struct {
	url   string
	child bool
}

// Load возвращает URL страниц в порядке появления, не больше limit (limit <= 0 означает без ограничения).
// truncated выставляется, если из-за limit часть записей отброшена или не все sitemap прочитаны.
// Ошибка корневого источника возвращается вызывающему; ошибки вложенных sitemap
// только логируются, а их записи пропускаются.
func (l *Loader) Load(ctx context.Context, source string, limit int, limiter *semaphore.Weighted) (urls []string, truncated bool, err error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, false, fmt.Errorf("%w: empty source", ErrBadSitemapURL)
	}

	var queue []queued
	if strings.HasPrefix(source, "<") {
		pages, children, err := Parse([]byte(source))
		if err != nil {
			return nil, false, err
		}
		urls, truncated = appendCapped(urls, pages, limit)
		for _, c := range children {
			queue = append(queue, queued{url: c, child: true})
		}
	} else {
		if err := l.guard.Check(ctx, source); err != nil {
			return nil, false, fmt.Errorf("%w: %v", ErrBadSitemapURL, err)
		}
		queue = append(queue, queued{url: source})
	}

	visited := make(map[string]bool)
	childFetches := 0
	for len(queue) > 0 && !full(urls, limit) {
		cur := queue[0]
		queue = queue[1:]
		if visited[cur.url] {
			continue
		}
		visited[cur.url] = true

		log := logger.Log.With(zap.String("sitemap", cur.url), zap.Any("run", ctx.Value(contextkeys.RunIDKey)))
		if cur.child {
			if childFetches >= l.cfg.MaxChildren {
				log.Warn("sitemap index expansion cap reached", zap.Int("cap", l.cfg.MaxChildren))
				break
			}
			childFetches++
			if err := l.guard.Check(ctx, cur.url); err != nil {
				log.Warn("child sitemap blocked, skipping", zap.Error(err))
				continue
			}
		}

		pages, children, err := l.fetchAndParse(ctx, cur.url, limiter)
		if err != nil {
			if !cur.child {
				return nil, false, err
			}
			log.Warn("failed to load child sitemap, continuing", zap.Error(err))
			continue
		}
		var dropped bool
		urls, dropped = appendCapped(urls, pages, limit)
		truncated = truncated || dropped
		for _, c := range children {
			queue = append(queue, queued{url: c, child: true})
		}
	}
	if full(urls, limit) && len(queue) > 0 {
		truncated = true
	}

	logger.Log.Debug("sitemap loaded",
		zap.Int("urls", len(urls)),
		zap.Int("child_fetches", childFetches),
		zap.Bool("truncated", truncated),
	)
	return urls, truncated, nil
}

func (l *Loader) fetchAndParse(ctx context.Context, target string, limiter *semaphore.Weighted) ([]string, []string, error) {
	data, err := l.fetch(ctx, target, limiter)
	if err != nil {
		return nil, nil, err
	}
	return Parse(data)
}

func (l *Loader) fetch(ctx context.Context, target string, limiter *semaphore.Weighted) ([]byte, error) {
	if limiter != nil {
		if err := limiter.Acquire(ctx, 1); err != nil {
			return nil, err
		}
		defer limiter.Release(1)
	}

	reqCtx, cancel := context.WithTimeout(ctx, l.cfg.Timeout)
	defer cancel()

	req := l.client.R().SetContext(reqCtx).SetDoNotParseResponse(true)
	if l.cfg.UserAgent != "" {
		req.SetHeader("User-Agent", l.cfg.UserAgent)
	}
	resp, err := req.Get(target)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.StatusCode() < http.StatusOK || resp.StatusCode() >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrFetchFailed, resp.StatusCode())
	}
	data, err := io.ReadAll(io.LimitReader(body, l.cfg.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrFetchFailed, err)
	}
	if looksGzipped(data) {
		if data, err = gunzip(data, l.cfg.MaxBodyBytes); err != nil {
			return nil, fmt.Errorf("%w: gunzip: %v", ErrFetchFailed, err)
		}
	}
	return data, nil
}

func full(urls []string, limit int) bool {
	return limit > 0 && len(urls) >= limit
}

func appendCapped(urls, pages []string, limit int) ([]string, bool) {
	for _, p := range pages {
		if full(urls, limit) {
			return urls, true
		}
		urls = append(urls, p)
	}
	return urls, false
}
