package ratelimit

import (
	"testing"
	"time"
)

func TestAllowDepletesCapacity(t *testing.T) {
	l := New()
	for i := 0; i < 3; i++ {
		if !l.Allow("a", 3, 0) {
			t.Fatalf("request %d should be allowed", i)
		}
	}
	if l.Allow("a", 3, 0) {
		t.Fatalf("request beyond capacity should be denied")
	}
}

func TestAllowKeysAreIndependent(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 0) {
		t.Fatalf("first key should be allowed")
	}
	if l.Allow("a", 1, 0) {
		t.Fatalf("first key should be exhausted")
	}
	if !l.Allow("b", 1, 0) {
		t.Fatalf("second key should have its own bucket")
	}
}

func TestAllowRefills(t *testing.T) {
	l := New()
	if !l.Allow("a", 1, 100) {
		t.Fatalf("initial request should be allowed")
	}
	if l.Allow("a", 1, 100) {
		t.Fatalf("bucket should be empty immediately after")
	}
	time.Sleep(50 * time.Millisecond)
	if !l.Allow("a", 1, 100) {
		t.Fatalf("bucket should have refilled")
	}
}
