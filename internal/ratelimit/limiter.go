package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter throttles outbound calls per endpoint with a token bucket
// refilled evenly over a minute.
type Limiter struct {
	buckets map[string]*bucket
	mu      sync.RWMutex
}

type bucket struct {
	tokens chan struct{}
	refill *time.Ticker
	done   chan struct{}
	limit  int
}

func New() *Limiter {
	return &Limiter{
		buckets: make(map[string]*bucket),
	}
}

// Wait blocks until endpoint may be called. A non-positive
// requestsPerMinute disables throttling.
func (l *Limiter) Wait(ctx context.Context, endpoint string, requestsPerMinute int) error {
	if requestsPerMinute <= 0 {
		return ctx.Err()
	}

	b := l.bucket(endpoint, requestsPerMinute)

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-b.tokens:
		return nil
	}
}

// bucket gets or creates the bucket of an endpoint
func (l *Limiter) bucket(endpoint string, requestsPerMinute int) *bucket {
	l.mu.RLock()
	b, exists := l.buckets[endpoint]
	l.mu.RUnlock()

	if exists && b.limit == requestsPerMinute {
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring write lock
	if b, exists := l.buckets[endpoint]; exists && b.limit == requestsPerMinute {
		return b
	}

	if old, exists := l.buckets[endpoint]; exists {
		old.stop()
	}

	b = &bucket{
		tokens: make(chan struct{}, requestsPerMinute),
		refill: time.NewTicker(time.Minute / time.Duration(requestsPerMinute)),
		done:   make(chan struct{}),
		limit:  requestsPerMinute,
	}
	for i := 0; i < requestsPerMinute; i++ {
		b.tokens <- struct{}{}
	}

	go b.startRefill()

	l.buckets[endpoint] = b
	return b
}

func (b *bucket) startRefill() {
	for {
		select {
		case <-b.done:
			return
		case <-b.refill.C:
			select {
			case b.tokens <- struct{}{}:
			default:
				// bucket full
			}
		}
	}
}

func (b *bucket) stop() {
	b.refill.Stop()
	close(b.done)
}

// Stop stops every refill goroutine.
func (l *Limiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for endpoint, b := range l.buckets {
		b.stop()
		delete(l.buckets, endpoint)
	}
}
