package ratelimit

import (
	"sync"
	"time"
)

// pruneAfter is how long a bucket may sit idle before it is dropped.
// Keys are remote addresses, so the map would otherwise grow without bound.
const pruneAfter = 10 * time.Minute

type bucket struct {
	tokens float64
	last   time.Time
}

// Limiter is a keyed token bucket. Capacity and refill rate are supplied per
// call so different endpoints can share one limiter with different budgets.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	swept   time.Time
}

func New() *Limiter {
	return &Limiter{buckets: make(map[string]*bucket), swept: time.Now()}
}

// Allow consumes one token for key, refilling at refillPerSec up to capacity.
func (l *Limiter) Allow(key string, capacity, refillPerSec float64) bool {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.swept) > pruneAfter {
		l.sweep(now)
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: capacity, last: now}
		l.buckets[key] = b
	}
	if elapsed := now.Sub(b.last).Seconds(); elapsed > 0 {
		b.tokens += elapsed * refillPerSec
		if b.tokens > capacity {
			b.tokens = capacity
		}
		b.last = now
	}
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *Limiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.last) > pruneAfter {
			delete(l.buckets, key)
		}
	}
	l.swept = now
}
