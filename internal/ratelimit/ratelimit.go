package ratelimit

import (
	"context"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
	Window            time.Duration
}

func DefaultConfig() RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: 100,
		Burst:             200,
		Window:            time.Second,
	}
}

// perMinute builds a RateLimitConfig expressed as requests-per-minute, the
// unit every PPM-facing preset below is quoted in.
func perMinute(rpm int, burst int) RateLimitConfig {
	return RateLimitConfig{
		RequestsPerSecond: float64(rpm) / 60,
		Burst:             burst,
		Window:            time.Minute,
	}
}

// DashboardConfig limits portfolio dashboard polling to 30 requests/minute
// per caller.
func DashboardConfig() RateLimitConfig {
	return perMinute(30, 10)
}

// BulkImportConfig limits actuals/commitments bulk import submissions to 5
// requests/minute per caller — these are heavyweight batch operations.
func BulkImportConfig() RateLimitConfig {
	return perMinute(5, 2)
}

// FeedbackConfig limits AI-response feedback submissions to 30 requests/minute.
func FeedbackConfig() RateLimitConfig {
	return perMinute(30, 10)
}

// AIQueryConfig limits help-chat/RAG query submissions to 15 requests/minute
// per caller, the midpoint of the accepted 10-20/min range.
func AIQueryConfig() RateLimitConfig {
	return perMinute(15, 5)
}

type RateLimiter struct {
	limiter   *rate.Limiter
	perMinute *rate.Limiter
	mu        sync.RWMutex
	config    RateLimitConfig
}

func New(cfg RateLimitConfig) *RateLimiter {
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 100
	}
	if cfg.Burst <= 0 {
		cfg.Burst = int(cfg.RequestsPerSecond * 2)
	}

	return &RateLimiter{
		limiter:   rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		perMinute: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond*60), cfg.Burst*2),
		config:    cfg,
	}
}

func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}

func (r *RateLimiter) AllowN(now time.Time, n int) bool {
	return r.limiter.AllowN(now, n)
}

func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}

func (r *RateLimiter) LimitExceeded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.limiter.Allow()
}

func (r *RateLimiter) PerMinuteLimitExceeded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return !r.perMinute.Allow()
}

func (r *RateLimiter) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.limiter = rate.NewLimiter(rate.Limit(r.config.RequestsPerSecond), r.config.Burst)
	r.perMinute = rate.NewLimiter(rate.Limit(r.config.RequestsPerSecond*60), r.config.Burst*2)
}

type RateLimitedClient struct {
	client  *http.Client
	limiter *RateLimiter
}

func NewRateLimitedClient(client *http.Client, cfg RateLimitConfig) *RateLimitedClient {
	return &RateLimitedClient{
		client:  client,
		limiter: New(cfg),
	}
}

func (c *RateLimitedClient) Do(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return c.client.Do(req)
}

func (c *RateLimitedClient) Allow() bool {
	return c.limiter.Allow()
}

func (c *RateLimitedClient) LimitExceeded() bool {
	return c.limiter.LimitExceeded()
}
