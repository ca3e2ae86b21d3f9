package service

import (
	"sync"
	"time"
)

// AttemptLimiter throttles repeated attempts per key (a client address for
// login) with a token bucket. It is safe for concurrent use; idle buckets
// are dropped by a background sweep.
type AttemptLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	rate     float64 // tokens added per second
	capacity float64 // burst size
	now      func() time.Time
	stop     chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	tokens float64
	last   time.Time
}

// NewAttemptLimiter allows capacity attempts per key, refilled at rate per
// second, and starts the idle-bucket sweep. Call Stop to end it.
func NewAttemptLimiter(rate, capacity float64) *AttemptLimiter {
	l := newAttemptLimiter(rate, capacity, time.Now)
	go l.sweep(5*time.Minute, 10*time.Minute)
	return l
}

func newAttemptLimiter(rate, capacity float64, now func() time.Time) *AttemptLimiter {
	return &AttemptLimiter{
		buckets:  make(map[string]*bucket),
		rate:     rate,
		capacity: capacity,
		now:      now,
		stop:     make(chan struct{}),
	}
}

// Allow consumes one attempt for key and reports whether it was available.
func (l *AttemptLimiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, last: now}
		l.buckets[key] = b
	}

	elapsed := now.Sub(b.last).Seconds()
	b.tokens = min(b.tokens+elapsed*l.rate, l.capacity)
	b.last = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Stop ends the background sweep.
func (l *AttemptLimiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *AttemptLimiter) sweep(every, idle time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			l.prune(idle)
		case <-l.stop:
			return
		}
	}
}

// prune removes buckets untouched for longer than idle.
func (l *AttemptLimiter) prune(idle time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := l.now().Add(-idle)
	for key, b := range l.buckets {
		if b.last.Before(cutoff) {
			delete(l.buckets, key)
		}
	}
}
