package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	cleanupInterval = 5 * time.Minute
	staleAfter      = 10 * time.Minute
)

type limiterInfo struct {
	limiter      *rate.Limiter
	lastAccessed time.Time
}

// LocalLimiter keeps one token bucket per key in memory. It serves a single
// instance when Redis is not configured.
type LocalLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterInfo
	every    rate.Limit
	burst    int
	stop     chan struct{}
	once     sync.Once
}

// NewLocalLimiter refills limit tokens per window, allowing a burst of limit.
// It starts a goroutine dropping idle keys; call Close to stop it.
func NewLocalLimiter(limit int, window time.Duration) *LocalLimiter {
	if limit < 1 {
		limit = 1
	}
	l := &LocalLimiter{
		limiters: make(map[string]*limiterInfo),
		every:    rate.Every(window / time.Duration(limit)),
		burst:    limit,
		stop:     make(chan struct{}),
	}
	go l.cleanupLoop()
	return l
}

var _ Limiter = (*LocalLimiter)(nil)

func (l *LocalLimiter) Allow(_ context.Context, key string) (bool, error) {
	return l.get(key, time.Now()).Allow(), nil
}

// Close stops the cleanup goroutine.
func (l *LocalLimiter) Close() {
	l.once.Do(func() { close(l.stop) })
}

func (l *LocalLimiter) get(key string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, ok := l.limiters[key]
	if !ok {
		info = &limiterInfo{limiter: rate.NewLimiter(l.every, l.burst)}
		l.limiters[key] = info
	}
	info.lastAccessed = now
	return info.limiter
}

func (l *LocalLimiter) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case now := <-ticker.C:
			l.cleanup(now)
		}
	}
}

func (l *LocalLimiter) cleanup(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, info := range l.limiters {
		if now.Sub(info.lastAccessed) > staleAfter {
			delete(l.limiters, key)
		}
	}
}

func (l *LocalLimiter) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.limiters)
}
