package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

func unreachableClient() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestRateLimitStore_FailsOpen(t *testing.T) {
	client := unreachableClient()
	defer client.Close()

	store := NewRateLimitStore(client, 1, 15*time.Minute, zerolog.Nop())

	for i := 0; i < 3; i++ {
		allowed, err := store.Allow("203.0.113.7")
		if err != nil {
			t.Fatalf("expected nil error, got %v", err)
		}
		if !allowed {
			t.Fatalf("request %d: expected allow when redis is down", i)
		}
	}
}

func TestRateLimitStore_KeyIsStableWithinWindow(t *testing.T) {
	store := NewRateLimitStore(nil, 100, 15*time.Minute, zerolog.Nop())

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	first := store.key("203.0.113.7", base.Add(time.Minute))
	second := store.key("203.0.113.7", base.Add(14*time.Minute))
	next := store.key("203.0.113.7", base.Add(16*time.Minute))

	if first != second {
		t.Fatalf("expected same key inside a window, got %q and %q", first, second)
	}
	if first == next {
		t.Fatalf("expected new key after the window rolls over")
	}
	if want := "ratelimit:203.0.113.7:1772359200"; first != want {
		t.Fatalf("expected %q, got %q", want, first)
	}
}

func TestConnect_NoAddress(t *testing.T) {
	if _, err := Connect(context.Background(), Config{}); !errors.Is(err, ErrNoAddress) {
		t.Fatalf("expected ErrNoAddress, got %v", err)
	}
}

func TestConnect_Unreachable(t *testing.T) {
	_, err := Connect(context.Background(), Config{Addr: "127.0.0.1:1", Timeout: 200 * time.Millisecond})
	if err == nil {
		t.Fatalf("expected ping error")
	}
}
