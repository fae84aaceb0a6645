package ratelimit

import (
	"testing"
	"time"
)

func TestAllowCooldownWindow(t *testing.T) {
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	l := New(2 * time.Second)

	if !l.Allow(1, base) {
		t.Fatalf("first action should be allowed")
	}
	if l.Allow(1, base.Add(1*time.Second)) {
		t.Fatalf("action inside the cooldown should be rejected")
	}
	if !l.Allow(1, base.Add(3*time.Second)) {
		t.Fatalf("action after the cooldown should be allowed")
	}
}

func TestAllowRejectionDoesNotResetWindow(t *testing.T) {
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	l := New(2 * time.Second)

	l.Allow(1, base)
	l.Allow(1, base.Add(1*time.Second))
	if !l.Allow(1, base.Add(2*time.Second)) {
		t.Fatalf("rejected attempt must not extend the cooldown")
	}
}

func TestAllowIsPerActor(t *testing.T) {
	base := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	l := New(2 * time.Second)

	if !l.Allow(1, base) {
		t.Fatalf("actor 1 should be allowed")
	}
	if !l.Allow(2, base) {
		t.Fatalf("actor 2 must not be throttled by actor 1")
	}
}
