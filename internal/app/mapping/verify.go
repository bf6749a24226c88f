package mapping

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/issafronov/redirectmap/internal/app/models"
	"github.com/issafronov/redirectmap/internal/middleware/logger"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// Отметки, добавляемые верификатором в поле note
const (
	NoteRetry              = "retry_1"
	NoteVerifyTimeout      = "verify_timeout"
	NoteVerifyDNSError     = "verify_dns_error"
	NoteVerifyNetworkError = "verify_network_error"
	NoteVerifyBlocked      = "verify_blocked"
)

const (
	retryJitterMin  = 40 * time.Millisecond
	retryJitterSpan = 40 * time.Millisecond
)

// Guard решает, можно ли обращаться к URL. Ненулевая ошибка запрещает запрос.
type Guard func(ctx context.Context, rawURL string) error

// VerifierConfig параметры проверки достижимости целей
type VerifierConfig struct {
	Concurrency int
	Timeout     time.Duration
	// Limiter ограничивает число исходящих запросов в рамках одного запуска
	Limiter   *semaphore.Weighted
	Guard     Guard
	UserAgent string
}

// Verifier проверяет, что цель каждой пары отвечает 2xx или редиректом 301–308
type Verifier struct {
	client *resty.Client
	cfg    VerifierConfig
	jitter func() time.Duration
}

// NewVerifier создаёт верификатор. Редиректы клиентом не выполняются:
// статус редиректа сам по себе считается достижимостью.
func NewVerifier(client *resty.Client, cfg VerifierConfig) *Verifier {
	if client == nil {
		client = resty.New()
	}
	client.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}))
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Verifier{
		client: client,
		cfg:    cfg,
		jitter: func() time.Duration {
			return retryJitterMin + time.Duration(rand.Int63n(int64(retryJitterSpan)+1))
		},
	}
}

// Verify проверяет все пары пулом из Concurrency воркеров, разбирающих общий индекс.
// Порядок результата совпадает с порядком входа; пары не удаляются и не переставляются.
func (v *Verifier) Verify(ctx context.Context, pairs []models.MappingPair) []models.MappingPair {
	out := make([]models.MappingPair, len(pairs))
	copy(out, pairs)
	if len(out) == 0 {
		return out
	}

	next := atomic.NewInt64(-1)
	var g errgroup.Group
	for w := 0; w < min(v.cfg.Concurrency, len(out)); w++ {
		g.Go(func() error {
			for {
				i := int(next.Inc())
				if i >= len(out) {
					return nil
				}
				v.verifyOne(ctx, &out[i])
			}
		})
	}
	_ = g.Wait()
	return out
}

func (v *Verifier) verifyOne(ctx context.Context, p *models.MappingPair) {
	if v.cfg.Guard != nil {
		if err := v.cfg.Guard(ctx, p.To); err != nil {
			logger.Log.Debug("verification target blocked", zap.String("url", p.To), zap.Error(err))
			record(p, 0, NoteVerifyBlocked)
			return
		}
	}

	status, err := v.probe(ctx, p.To)
	if err == nil && retryable(status) {
		if waitErr := sleep(ctx, v.jitter()); waitErr != nil {
			err = waitErr
		} else {
			status, err = v.probe(ctx, p.To)
		}
		appendNote(p, NoteRetry)
	}
	if err != nil {
		code := errorCode(err)
		logger.Log.Debug("verification failed", zap.String("url", p.To), zap.String("code", code), zap.Error(err))
		record(p, 0, code)
		return
	}
	record(p, status, "")
}

func (v *Verifier) probe(ctx context.Context, target string) (int, error) {
	if v.cfg.Limiter != nil {
		if err := v.cfg.Limiter.Acquire(ctx, 1); err != nil {
			return 0, err
		}
		defer v.cfg.Limiter.Release(1)
	}

	reqCtx, cancel := context.WithTimeout(ctx, v.cfg.Timeout)
	defer cancel()

	req := v.client.R().SetContext(reqCtx)
	if v.cfg.UserAgent != "" {
		req.SetHeader("User-Agent", v.cfg.UserAgent)
	}
	resp, err := req.Head(target)
	if err != nil {
		return 0, err
	}
	return resp.StatusCode(), nil
}

// Reachable сообщает, считается ли статус достижимым: 2xx или 301–308
func Reachable(status int) bool {
	return (status >= 200 && status < 300) || (status >= 301 && status <= 308)
}

func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status >= 500
}

func record(p *models.MappingPair, status int, code string) {
	ok := code == "" && Reachable(status)
	p.VerifyStatus = &status
	p.VerifyOk = &ok
	if code != "" {
		appendNote(p, code)
	}
}

func appendNote(p *models.MappingPair, code string) {
	if p.Note == "" {
		p.Note = models.Note(code)
		return
	}
	p.Note = models.Note(string(p.Note) + ";" + code)
}

func errorCode(err error) string {
	var (
		netErr net.Error
		dnsErr *net.DNSError
	)
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return NoteVerifyTimeout
	case errors.As(err, &dnsErr):
		return NoteVerifyDNSError
	case errors.As(err, &netErr) && netErr.Timeout():
		return NoteVerifyTimeout
	default:
		return NoteVerifyNetworkError
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
