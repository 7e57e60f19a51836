package http

import (
	"sync"
	"time"
)

const (
	rateLimitWindow      = time.Minute
	rateLimitMaxRequests = 60
)

// rateLimiter is a per-client sliding window over mutating requests. Reads
// are never limited; the SPA polls them.
type rateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	done     chan struct{}
	stopOnce sync.Once
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		requests: make(map[string][]time.Time),
		done:     make(chan struct{}),
	}
	go rl.cleanupLoop()
	return rl
}

func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rateLimitWindow)

	recent := rl.requests[clientIP][:0]
	for _, t := range rl.requests[clientIP] {
		if t.After(cutoff) {
			recent = append(recent, t)
		}
	}

	if len(recent) >= rateLimitMaxRequests {
		rl.requests[clientIP] = recent
		return false
	}

	rl.requests[clientIP] = append(recent, now)
	return true
}

// cleanupLoop drops idle clients so the map does not grow with every IP that
// ever connected.
func (rl *rateLimiter) cleanupLoop() {
	ticker := time.NewTicker(rateLimitWindow)
	defer ticker.Stop()

	for {
		select {
		case <-rl.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-rateLimitWindow)
			rl.mu.Lock()
			for ip, times := range rl.requests {
				idle := true
				for _, t := range times {
					if t.After(cutoff) {
						idle = false
						break
					}
				}
				if idle {
					delete(rl.requests, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.done) })
}
