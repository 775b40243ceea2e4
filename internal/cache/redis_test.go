package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// Runs against a real server; set REDIS_TEST_ADDR to enable.
func TestRedisCache(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	ctx := context.Background()
	c := NewRedisCache(addr, os.Getenv("REDIS_TEST_PASSWORD"), 0, time.Minute)
	defer c.Close()

	if err := c.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	key := uuid.NewString()
	if _, found, err := c.Get(ctx, key); err != nil || found {
		t.Fatalf("Get(missing) = found %v, err %v", found, err)
	}
	if err := c.Set(ctx, key, "blue"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	val, found, err := c.Get(ctx, key)
	if err != nil || !found || val != "blue" {
		t.Fatalf("Get() = %q, %v, %v", val, found, err)
	}
}
