package worker

import (
	"context"
	"testing"
	"time"
)

func TestLimiter_AllowWithinBurst(t *testing.T) {
	l := NewLimiter(1.0, 2)

	url := "https://example.com.tw/contact"
	if !l.Allow(url) {
		t.Error("First request should be allowed")
	}
	if !l.Allow(url) {
		t.Error("Second request should be within burst")
	}
	if l.Allow(url) {
		t.Error("Third immediate request should exceed burst")
	}
}

func TestLimiter_PerHostIsolation(t *testing.T) {
	l := NewLimiter(1.0, 1)

	if !l.Allow("https://a.example.com.tw/") {
		t.Error("First request to host A should be allowed")
	}
	if !l.Allow("https://b.example.com.tw/") {
		t.Error("Host B must not share host A's budget")
	}
}

func TestLimiter_InvalidURL(t *testing.T) {
	l := NewLimiter(1.0, 1)
	if l.Allow("://not-a-url") {
		t.Error("Invalid URL should not be allowed")
	}
}

func TestLimiter_WaitWithDelay(t *testing.T) {
	l := NewLimiter(100.0, 10)

	start := time.Now()
	err := l.WaitWithDelay(context.Background(), "https://example.com.tw/", 30*time.Millisecond)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("Politeness delay not applied: %v", elapsed)
	}
}

func TestLimiter_WaitWithDelay_Cancelled(t *testing.T) {
	l := NewLimiter(100.0, 10)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := l.WaitWithDelay(ctx, "https://example.com.tw/", time.Second)
	if err == nil {
		t.Error("Expected context error")
	}
}
