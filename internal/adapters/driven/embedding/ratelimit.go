// Package embedding provides cross-provider embedding middleware.
package embedding

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/minerva-edu/tutor-cli/internal/core/domain"
	"github.com/minerva-edu/tutor-cli/internal/core/ports/driven"
)

// Ensure RateLimited implements the interface.
var _ driven.EmbeddingService = (*RateLimited)(nil)

// rateLimitBackoff is how long to hold off after the provider reports a
// rate limit error.
const rateLimitBackoff = 60 * time.Second

// RateLimited wraps an embedding service with a token bucket so bulk
// ingestion stays under provider quotas. A provider-reported rate limit
// error additionally pauses all calls for a backoff period.
type RateLimited struct {
	inner   driven.EmbeddingService
	limiter *rate.Limiter

	mu      sync.Mutex
	retryAt time.Time
}

// NewRateLimited wraps inner with a sustained requestsPerSecond limit.
// A non-positive rate returns inner unchanged.
func NewRateLimited(inner driven.EmbeddingService, requestsPerSecond float64) driven.EmbeddingService {
	if requestsPerSecond <= 0 {
		return inner
	}
	burst := int(requestsPerSecond)
	if burst < 1 {
		burst = 1
	}
	return &RateLimited{
		inner:   inner,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Embed waits for a token and delegates to the wrapped service.
func (r *RateLimited) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := r.wait(ctx); err != nil {
		return nil, err
	}
	embedding, err := r.inner.Embed(ctx, text)
	r.record(err)
	return embedding, err
}

// EmbedBatch waits for one token per text and delegates to the wrapped
// service. Providers that batch server-side still consume quota roughly per
// input, so the bucket is charged accordingly.
func (r *RateLimited) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	if err := r.waitN(ctx, len(texts)); err != nil {
		return nil, err
	}
	embeddings, err := r.inner.EmbedBatch(ctx, texts)
	r.record(err)
	return embeddings, err
}

// Dimensions returns the wrapped service's vector size.
func (r *RateLimited) Dimensions() int {
	return r.inner.Dimensions()
}

// ModelName returns the wrapped service's model identifier.
func (r *RateLimited) ModelName() string {
	return r.inner.ModelName()
}

// Ping delegates to the wrapped service without consuming tokens.
func (r *RateLimited) Ping(ctx context.Context) error {
	return r.inner.Ping(ctx)
}

// Close closes the wrapped service.
func (r *RateLimited) Close() error {
	return r.inner.Close()
}

// wait blocks for the backoff window and then for one token.
func (r *RateLimited) wait(ctx context.Context) error {
	return r.waitN(ctx, 1)
}

func (r *RateLimited) waitN(ctx context.Context, n int) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if until := time.Until(retryAt); until > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(until):
		}
	}

	if n > r.limiter.Burst() {
		// Larger batches drain the bucket in burst-sized waits.
		for n > 0 {
			take := n
			if take > r.limiter.Burst() {
				take = r.limiter.Burst()
			}
			if err := r.limiter.WaitN(ctx, take); err != nil {
				return err
			}
			n -= take
		}
		return nil
	}
	return r.limiter.WaitN(ctx, n)
}

// record starts the backoff window when the provider reports rate limiting.
func (r *RateLimited) record(err error) {
	if err == nil || !errors.Is(err, domain.ErrRateLimited) {
		return
	}
	r.mu.Lock()
	r.retryAt = time.Now().Add(rateLimitBackoff)
	r.mu.Unlock()
}
