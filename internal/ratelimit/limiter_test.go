package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestAllowWithinBurst(t *testing.T) {
	dl := NewDomainLimiter(1.0, 2)

	if !dl.Allow("https://careers.example.com/home") {
		t.Fatal("first request should be allowed")
	}
	if !dl.Allow("https://careers.example.com/search") {
		t.Fatal("second request should fit in burst")
	}
	if dl.Allow("https://careers.example.com/more") {
		t.Fatal("third immediate request should exceed burst")
	}
}

func TestPerDomainIsolation(t *testing.T) {
	dl := NewDomainLimiter(1.0, 1)

	if !dl.Allow("https://a.example.com/") {
		t.Fatal("first domain should be allowed")
	}
	if !dl.Allow("https://b.example.com/") {
		t.Fatal("distinct domain should have its own bucket")
	}
}

func TestWaitHonorsCancellation(t *testing.T) {
	dl := NewDomainLimiter(0.001, 1)
	// Drain the bucket
	_ = dl.Allow("https://slow.example.com/")

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := dl.Wait(ctx, "https://slow.example.com/"); err == nil {
		t.Fatal("expected context error waiting on drained bucket")
	}
}

func TestInvalidURLProceeds(t *testing.T) {
	dl := NewDomainLimiter(1.0, 1)
	if err := dl.Wait(context.Background(), "::not a url::"); err != nil {
		t.Fatalf("invalid URL should proceed, got %v", err)
	}
}
