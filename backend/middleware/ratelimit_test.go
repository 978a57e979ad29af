package middleware

import (
	"context"
	"testing"
	"time"
)

func TestRateLimiter_Allow(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 2, 50*time.Millisecond)

	if !rl.Allow("alice") || !rl.Allow("alice") {
		t.Fatal("first two requests should pass")
	}
	if rl.Allow("alice") {
		t.Error("third request inside the window should be limited")
	}
	if !rl.Allow("bob") {
		t.Error("keys are limited independently")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.Allow("alice") {
		t.Error("window should have slid past the old requests")
	}
}

func TestWithin(t *testing.T) {
	base := time.Unix(1000, 0)
	hits := []time.Time{base, base.Add(time.Second), base.Add(2 * time.Second)}

	tests := []struct {
		name   string
		cutoff time.Time
		want   int
	}{
		{"keeps all", base.Add(-time.Second), 3},
		{"cutoff is exclusive", base, 2},
		{"drops all", base.Add(5 * time.Second), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := within(hits, tt.cutoff); len(got) != tt.want {
				t.Errorf("within() kept %d, want %d", len(got), tt.want)
			}
		})
	}
}
