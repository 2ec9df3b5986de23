package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"

	"scramble-game-service/internal/domain"
	"scramble-game-service/internal/infra/memory"
)

func TestRoundStoreLivenessMarkers(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRoundStore(memory.NewRoundStore(), client, time.Hour)

	round := domain.Round{
		ID:        "r1",
		PlayerID:  "p1",
		Mode:      domain.ModeIdiom,
		Target:    "一心一意",
		Status:    domain.RoundActive,
		StartedAt: time.Now(),
	}
	if _, err := store.Create(ctx, round); err != nil {
		t.Fatalf("create: %v", err)
	}

	marker, err := client.Get(ctx, "round:active:p1").Result()
	if err != nil {
		t.Fatalf("marker missing after create: %v", err)
	}
	if marker != "r1" {
		t.Fatalf("expected marker r1, got %s", marker)
	}

	if _, err := store.Complete(ctx, "r1", 100); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if mr.Exists("round:active:p1") {
		t.Fatalf("marker must be dropped on complete")
	}
}

func TestRoundStoreDropsMarkerOnAbandon(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRoundStore(memory.NewRoundStore(), client, time.Hour)

	round := domain.Round{
		ID:        "r1",
		PlayerID:  "p1",
		Mode:      domain.ModeIdiom,
		Target:    "一心一意",
		Status:    domain.RoundActive,
		StartedAt: time.Now(),
	}
	if _, err := store.Create(ctx, round); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := store.Abandon(ctx, "r1"); err != nil {
		t.Fatalf("abandon: %v", err)
	}
	if mr.Exists("round:active:p1") {
		t.Fatalf("marker must be dropped on abandon")
	}

	got, err := store.Get(ctx, "r1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.RoundAbandoned {
		t.Fatalf("expected abandoned, got %s", got.Status)
	}
}
