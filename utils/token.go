package utils

import (
	"sync"
	"time"
)

// TokenBlacklist holds logged-out tokens until they expire.
type TokenBlacklist struct {
	mu       sync.RWMutex
	tokens   map[string]time.Time
	Interval time.Duration
	stopChan chan struct{}
	stopOnce sync.Once
}

func NewTokenBlacklist() *TokenBlacklist {
	return &TokenBlacklist{
		tokens:   make(map[string]time.Time),
		Interval: time.Hour,
		stopChan: make(chan struct{}),
	}
}

func (b *TokenBlacklist) Add(token string, expiry time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens[token] = expiry
}

func (b *TokenBlacklist) IsBlacklisted(token string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	expiry, ok := b.tokens[token]
	return ok && time.Now().Before(expiry)
}

// Start runs the janitor that drops expired entries.
func (b *TokenBlacklist) Start() {
	go func() {
		ticker := time.NewTicker(b.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				b.purge(time.Now())
			case <-b.stopChan:
				return
			}
		}
	}()
}

func (b *TokenBlacklist) Stop() {
	b.stopOnce.Do(func() { close(b.stopChan) })
}

func (b *TokenBlacklist) purge(now time.Time) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	removed := 0
	for token, expiry := range b.tokens {
		if now.After(expiry) {
			delete(b.tokens, token)
			removed++
		}
	}
	if removed > 0 {
		InfoLogger.Debugf("Purged %d expired tokens from blacklist", removed)
	}
	return removed
}

func (b *TokenBlacklist) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.tokens)
}
