package redis

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/kamrikalive/logg/internal/domain"
)

func TestConnect(t *testing.T) {
	t.Run("Invalid URL", func(t *testing.T) {
		client, err := Connect(context.Background(), "not-a-url://")
		if err == nil {
			t.Fatal("expected an error, got nil")
		}
		if client != nil {
			t.Error("expected no client for an unparsable url")
		}
	})

	t.Run("Unreachable server", func(t *testing.T) {
		client, err := Connect(context.Background(), "redis://127.0.0.1:1/0")
		if !errors.Is(err, ErrRedisNotAvailable) {
			t.Fatalf("expected ErrRedisNotAvailable, got %v", err)
		}
		if client == nil {
			t.Fatal("expected a client to be returned alongside the error")
		}
		client.Close()
	})
}

func TestTokenCache_UnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer client.Close()

	cache := NewTokenCache(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	if _, ok, err := cache.Get(ctx, "key-id"); err == nil || ok {
		t.Errorf("expected a lookup error and no hit, got ok=%v err=%v", ok, err)
	}

	err := cache.Set(ctx, "key-id", domain.IAMToken{Token: "t1", ExpiresAt: time.Now().Add(time.Hour)}, time.Minute)
	if err == nil {
		t.Error("expected Set to fail against an unreachable server")
	}
}

func TestTokenCache_SetThenGet(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cache := NewTokenCache(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	t.Run("Miss", func(t *testing.T) {
		tok, ok, err := cache.Get(ctx, "absent")
		if err != nil || ok {
			t.Fatalf("expected a clean miss, got ok=%v err=%v", ok, err)
		}
		if tok != (domain.IAMToken{}) {
			t.Errorf("expected zero token on a miss, got %+v", tok)
		}
	})

	t.Run("Round Trip", func(t *testing.T) {
		expiresAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		want := domain.IAMToken{Token: "t1.cached", ExpiresAt: expiresAt}

		if err := cache.Set(ctx, "ajekey123", want, 40*time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}

		raw, err := mr.Get("logg:iam_token:ajekey123")
		if err != nil {
			t.Fatalf("expected the prefixed key to exist: %v", err)
		}
		var stored map[string]any
		if err := json.Unmarshal([]byte(raw), &stored); err != nil {
			t.Fatalf("stored value is not JSON: %v", err)
		}
		if stored["token"] != "t1.cached" || stored["expires_at"] != "2024-05-01T12:00:00Z" {
			t.Errorf("unexpected stored document %s", raw)
		}
		if ttl := mr.TTL("logg:iam_token:ajekey123"); ttl != 40*time.Minute {
			t.Errorf("expected TTL 40m, got %v", ttl)
		}

		got, ok, err := cache.Get(ctx, "ajekey123")
		if err != nil || !ok {
			t.Fatalf("expected a hit, got ok=%v err=%v", ok, err)
		}
		if got.Token != want.Token || !got.ExpiresAt.Equal(want.ExpiresAt) {
			t.Errorf("Get() = %+v, want %+v", got, want)
		}
	})

	t.Run("Expired Entry", func(t *testing.T) {
		if err := cache.Set(ctx, "short", domain.IAMToken{Token: "t1.short"}, time.Minute); err != nil {
			t.Fatalf("Set failed: %v", err)
		}
		mr.FastForward(2 * time.Minute)

		if _, ok, err := cache.Get(ctx, "short"); err != nil || ok {
			t.Errorf("expected expired entry to miss, got ok=%v err=%v", ok, err)
		}
	})

	t.Run("Corrupt Entry", func(t *testing.T) {
		if err := mr.Set("logg:iam_token:corrupt", "{not json"); err != nil {
			t.Fatal(err)
		}
		if _, ok, err := cache.Get(ctx, "corrupt"); err != nil || ok {
			t.Errorf("expected corrupt entry to be treated as a miss, got ok=%v err=%v", ok, err)
		}
	})
}
