// Package testutil provides testing utilities shared by the client and gateway tests.
package testutil

import (
	"context"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// TestingTB is an interface that covers both *testing.T and *testing.B.
type TestingTB interface {
	Helper()
	Skip(args ...interface{})
	Skipf(format string, args ...interface{})
	Fatal(args ...interface{})
	Fatalf(format string, args ...interface{})
	Logf(format string, args ...interface{})
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// envBool parses common truthy values from env vars.
func envBool(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true" || v == "yes" || v == "y"
}

func requireRedis() bool { return envBool("TEST_REQUIRE_REDIS") || envBool("TEST_REQUIRE_INFRA") }

// FixedTimeFunc returns a function that always returns the same time.
func FixedTimeFunc(t time.Time) func() time.Time {
	return func() time.Time {
		return t
	}
}

// TestTime returns a fixed time for testing.
func TestTime() time.Time {
	return time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
}

// Redis test utilities

// TestRedisAddr returns the Redis address used by integration tests.
// Tests run against Redis only when TEST_REDIS_ADDR is set.
func TestRedisAddr() string {
	return strings.TrimSpace(os.Getenv("TEST_REDIS_ADDR"))
}

// SkipIfNoRedis skips the test unless a test Redis is configured and reachable.
func SkipIfNoRedis(t TestingTB) string {
	t.Helper()

	addr := TestRedisAddr()
	if addr == "" {
		if requireRedis() {
			t.Fatal("TEST_REDIS_ADDR not set")
		}
		t.Skip("TEST_REDIS_ADDR not set; skipping Redis integration test")
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	defer func() {
		if err := client.Close(); err != nil {
			t.Logf("warning: failed to close redis client: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		if requireRedis() {
			t.Fatalf("Redis not available at %s: %v", addr, err)
		}
		t.Skipf("Redis not available at %s: %v", addr, err)
	}
	return addr
}

// SetupTestRedis creates a Redis client for testing. The DB index comes from
// TEST_REDIS_DB (default 1) and is flushed before use.
func SetupTestRedis(t TestingTB) *redis.Client {
	t.Helper()
	addr := SkipIfNoRedis(t)

	db, err := strconv.Atoi(getEnvOrDefault("TEST_REDIS_DB", "1"))
	if err != nil || db < 0 {
		t.Logf("Invalid TEST_REDIS_DB, falling back to DB=1")
		db = 1
	}

	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.FlushDB(ctx).Err(); err != nil {
		t.Fatalf("flush test redis db %d: %v", db, err)
	}
	return client
}
