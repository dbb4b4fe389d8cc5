package janitor

import (
	"context"
	"time"

	"github.com/NordCoder/loanbook/internal/domain/auth"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var (
	mPurged = promauto.NewCounter(prometheus.CounterOpts{
		Name: "janitor_refresh_tokens_purged_total", Help: "Expired refresh tokens removed",
	})
	mErr = promauto.NewCounter(prometheus.CounterOpts{
		Name: "janitor_errors_total", Help: "Errors in janitor loop",
	})
	mLoopDur = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "janitor_loop_duration_seconds", Help: "Janitor tick duration",
		Buckets: prometheus.DefBuckets,
	})
)

// Runner periodically deletes refresh-token records whose expiry has passed.
type Runner struct {
	log    *zap.Logger
	tokens auth.TokenStore
	every  time.Duration
	now    func() time.Time
}

func New(log *zap.Logger, tokens auth.TokenStore, every time.Duration, now func() time.Time) *Runner {
	if every <= 0 {
		every = time.Hour
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Runner{log: log, tokens: tokens, every: every, now: now}
}

// Tick runs one purge and returns the number of removed records.
func (r *Runner) Tick(ctx context.Context) int64 {
	start := time.Now()
	defer func() { mLoopDur.Observe(time.Since(start).Seconds()) }()

	ctx, span := otel.Tracer("janitor").Start(ctx, "janitor.purge")
	defer span.End()

	n, err := r.tokens.PurgeExpired(ctx, r.now())
	if err != nil {
		span.RecordError(err)
		mErr.Inc()
		r.log.Warn("purge expired refresh tokens", zap.Error(err))
		return 0
	}
	span.SetAttributes(attribute.Int64("purged", n))
	if n > 0 {
		mPurged.Add(float64(n))
		r.log.Debug("purged refresh tokens", zap.Int64("count", n))
	}
	return n
}

func (r *Runner) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.every)
	defer ticker.Stop()

	r.Tick(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Tick(ctx)
		}
	}
}
