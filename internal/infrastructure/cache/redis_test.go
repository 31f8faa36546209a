package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestOpenRedis_Success(t *testing.T) {
	s := miniredis.RunT(t)

	// non-zero DB to verify it's set
	c, err := OpenRedis(s.Addr(), 2)
	if err != nil {
		t.Fatalf("OpenRedis returned error: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if got := c.Options().DB; got != 2 {
		t.Fatalf("client DB = %d, want 2", got)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	key := Key("ping")
	if err := c.Set(ctx, key, "v", 0).Err(); err != nil {
		t.Fatalf("SET err: %v", err)
	}
	s.Select(2)
	if got, err := s.Get("tier0:ping"); err != nil || got != "v" {
		t.Fatalf("miniredis GET = %q, %v", got, err)
	}
}

func TestOpenRedis_Failure(t *testing.T) {
	// Unresolvable host → Ping should fail immediately (no 5s delay)
	if _, err := OpenRedis("not-a-real-host:6379", 0); err == nil {
		t.Fatal("expected error, got nil")
	}
}

func TestKey(t *testing.T) {
	if got := Key("ledger", "usdc", "balances"); got != "tier0:ledger:usdc:balances" {
		t.Fatalf("Key = %q", got)
	}
}
