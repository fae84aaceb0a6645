package ratelimit

import (
	"sync"
	"time"
)

// Limiter is a per-actor cooldown gate. It only throttles rapid-fire
// submissions; it is not an anti-fraud mechanism. State lives in
// memory and resets with the process.
type Limiter struct {
	mu       sync.Mutex
	cooldown time.Duration
	last     map[int64]time.Time
}

func New(cooldown time.Duration) *Limiter {
	return &Limiter{
		cooldown: cooldown,
		last:     make(map[int64]time.Time),
	}
}

// Allow reports whether the actor may act at the given instant. A
// permitted call records the instant as the actor's new last action.
func (l *Limiter) Allow(actorID int64, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if last, ok := l.last[actorID]; ok && now.Sub(last) < l.cooldown {
		return false
	}
	l.last[actorID] = now
	return true
}
