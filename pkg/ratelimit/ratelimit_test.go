package ratelimit

import (
	"testing"
	"time"
)

func TestAllowExhaustsAndRefills(t *testing.T) {
	l := New(3, time.Minute)
	defer l.Close()

	clock := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return clock }

	for i := 0; i < 3; i++ {
		if !l.Allow("1.2.3.4") {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if l.Allow("1.2.3.4") {
		t.Fatal("fourth request should be rejected")
	}
	if !l.Allow("5.6.7.8") {
		t.Fatal("other clients have their own bucket")
	}

	clock = clock.Add(20 * time.Second)
	if !l.Allow("1.2.3.4") {
		t.Error("one token should refill after a third of the window")
	}
	if l.Allow("1.2.3.4") {
		t.Error("only one token should have refilled")
	}
}

func TestResetAndEvict(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Close()

	clock := time.Now()
	l.now = func() time.Time { return clock }

	l.Allow("a")
	if l.Allow("a") {
		t.Fatal("bucket should be empty")
	}
	l.Reset("a")
	if !l.Allow("a") {
		t.Fatal("reset should restore the bucket")
	}

	clock = clock.Add(3 * time.Minute)
	l.evict()
	l.mu.Lock()
	n := len(l.entries)
	l.mu.Unlock()
	if n != 0 {
		t.Errorf("expected stale entries to be evicted, %d remain", n)
	}
}

func TestZeroLimitDisables(t *testing.T) {
	l := New(0, time.Minute)
	defer l.Close()
	for i := 0; i < 100; i++ {
		if !l.Allow("x") {
			t.Fatal("limit 0 should allow everything")
		}
	}
	l.Close()
}
