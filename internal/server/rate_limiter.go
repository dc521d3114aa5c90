package server

import (
	"strings"
	"sync"
	"time"
)

// webhookLimiter throttles gateway deliveries per provider with a
// fixed window. Windows for providers that went quiet are dropped on
// the next call so retired adapters do not pin memory.
type webhookLimiter struct {
	limit  int
	window time.Duration

	mu   sync.Mutex
	seen map[string]*providerWindow
}

type providerWindow struct {
	startedAt time.Time
	count     int
}

func newWebhookLimiter(limit int, window time.Duration) *webhookLimiter {
	return &webhookLimiter{
		limit:  limit,
		window: window,
		seen:   make(map[string]*providerWindow),
	}
}

// Allow reports whether one more delivery from the provider fits in
// the current window.
func (l *webhookLimiter) Allow(provider string) bool {
	provider = strings.ToLower(strings.TrimSpace(provider))
	if provider == "" {
		return false
	}

	now := time.Now().UTC()
	l.mu.Lock()
	defer l.mu.Unlock()

	l.prune(now)

	win := l.seen[provider]
	if win == nil || now.Sub(win.startedAt) >= l.window {
		win = &providerWindow{startedAt: now}
		l.seen[provider] = win
	}
	if win.count >= l.limit {
		return false
	}
	win.count++
	return true
}

func (l *webhookLimiter) prune(now time.Time) {
	for provider, win := range l.seen {
		if now.Sub(win.startedAt) >= 2*l.window {
			delete(l.seen, provider)
		}
	}
}
