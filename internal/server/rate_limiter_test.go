package server

import (
	"testing"
	"time"
)

func TestWebhookLimiterEnforcesPerProviderWindows(t *testing.T) {
	limiter := newWebhookLimiter(2, time.Minute)

	for i := 0; i < 2; i++ {
		if !limiter.Allow("stripe") {
			t.Fatalf("delivery %d should fit in the window", i)
		}
	}
	if limiter.Allow("stripe") {
		t.Fatalf("third delivery should be throttled")
	}

	// Another provider has its own window.
	if !limiter.Allow("paypal") {
		t.Fatalf("unrelated provider should not be throttled")
	}
}

func TestWebhookLimiterNormalizesProviderKeys(t *testing.T) {
	limiter := newWebhookLimiter(1, time.Minute)

	if !limiter.Allow(" Stripe ") {
		t.Fatalf("first delivery should be allowed")
	}
	if limiter.Allow("stripe") {
		t.Fatalf("case and whitespace variants must share one window")
	}
}

func TestWebhookLimiterRejectsEmptyProvider(t *testing.T) {
	limiter := newWebhookLimiter(10, time.Minute)
	if limiter.Allow("") {
		t.Fatalf("empty provider must never pass")
	}
	if limiter.Allow("   ") {
		t.Fatalf("blank provider must never pass")
	}
}

func TestWebhookLimiterResetsAfterWindow(t *testing.T) {
	limiter := newWebhookLimiter(1, 10*time.Millisecond)

	if !limiter.Allow("stripe") {
		t.Fatalf("first delivery should be allowed")
	}
	if limiter.Allow("stripe") {
		t.Fatalf("second delivery should be throttled")
	}

	time.Sleep(15 * time.Millisecond)
	if !limiter.Allow("stripe") {
		t.Fatalf("delivery after the window should be allowed")
	}
}

func TestWebhookLimiterPrunesQuietProviders(t *testing.T) {
	limiter := newWebhookLimiter(1, 5*time.Millisecond)

	limiter.Allow("stripe")
	time.Sleep(12 * time.Millisecond)
	limiter.Allow("paypal")

	limiter.mu.Lock()
	_, kept := limiter.seen["stripe"]
	limiter.mu.Unlock()
	if kept {
		t.Fatalf("stale provider window should have been pruned")
	}
}
