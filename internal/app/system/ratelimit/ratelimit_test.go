package ratelimit

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_AllowsUpToLimitThenBlocks(t *testing.T) {
	l := New(3, time.Minute)
	defer l.Stop()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if !l.Allow(ctx, "k") {
			t.Fatalf("hit %d should be allowed", i+1)
		}
	}
	if l.Allow(ctx, "k") {
		t.Fatal("4th hit should be blocked")
	}
	if got := l.Remaining("k"); got != 0 {
		t.Errorf("Remaining = %d, want 0", got)
	}
	if !l.Allow(ctx, "other") {
		t.Error("separate key should have its own budget")
	}
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()
	ctx := context.Background()

	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	if !l.Allow(ctx, "k") {
		t.Fatal("first hit should be allowed")
	}
	if l.Allow(ctx, "k") {
		t.Fatal("second hit should be blocked")
	}
	now = now.Add(61 * time.Second)
	if !l.Allow(ctx, "k") {
		t.Error("hit after window should be allowed")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Stop()
	ctx := context.Background()

	l.Allow(ctx, "k")
	l.Reset(ctx, "k")
	if got := l.Remaining("k"); got != 1 {
		t.Errorf("Remaining after reset = %d, want 1", got)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"remote addr", "10.0.0.1:5555", "", "", "10.0.0.1"},
		{"no port", "10.0.0.1", "", "", "10.0.0.1"},
		{"forwarded first hop", "10.0.0.1:5555", "203.0.113.9, 10.0.0.2", "", "203.0.113.9"},
		{"real ip", "10.0.0.1:5555", "", "198.51.100.4", "198.51.100.4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/login", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				r.Header.Set("X-Real-IP", tt.xri)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestLoginLimiter_ScopesAndReset(t *testing.T) {
	ip := New(100, time.Minute)
	user := New(2, time.Minute)
	defer ip.Stop()
	defer user.Stop()
	ll := NewLoginLimiterWithStores(ip, user)

	r := httptest.NewRequest("POST", "/login", nil)
	for i := 0; i < 2; i++ {
		if ok, _ := ll.Check(r, "Alice"); !ok {
			t.Fatalf("attempt %d should pass", i+1)
		}
	}
	ok, scope := ll.Check(r, " alice ")
	if ok || scope != ScopeUser {
		t.Fatalf("Check = (%v, %q), want (false, %q)", ok, scope, ScopeUser)
	}
	if scope.Message() == "" {
		t.Error("refusal should carry a message")
	}

	ll.ResetUser(r, "ALICE")
	if ok, _ := ll.Check(r, "alice"); !ok {
		t.Error("attempt after reset should pass")
	}
}

func TestLoginLimiter_IPScope(t *testing.T) {
	ip := New(1, time.Minute)
	user := New(100, time.Minute)
	defer ip.Stop()
	defer user.Stop()
	ll := NewLoginLimiterWithStores(ip, user)

	r := httptest.NewRequest("POST", "/login", nil)
	ll.Check(r, "a")
	ok, scope := ll.Check(r, "b")
	if ok || scope != ScopeIP {
		t.Fatalf("Check = (%v, %q), want (false, %q)", ok, scope, ScopeIP)
	}
}
