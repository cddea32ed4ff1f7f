package redis

import (
	"testing"
	"time"

	"github.com/shieldscan/shield-backend/pkg/config"
)

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when neither URL nor address is set")
	}
}

func TestOptionsFromConfigParsesURL(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		URL:      "redis://:secret@localhost:6380/2",
		PoolSize: 5,
	})
	if err != nil {
		t.Fatalf("options from url: %v", err)
	}
	if opts.Addr != "localhost:6380" {
		t.Fatalf("unexpected addr %q", opts.Addr)
	}
	if opts.DB != 2 {
		t.Fatalf("unexpected db %d", opts.DB)
	}
	if opts.PoolSize != 5 {
		t.Fatalf("expected pool size fallback, got %d", opts.PoolSize)
	}
}

func TestOptionsFromConfigAddressFallback(t *testing.T) {
	opts, err := optionsFromConfig(config.RedisConfig{
		Address:     "redis.internal:6379",
		Password:    "pw",
		DB:          1,
		DialTimeout: 2 * time.Second,
	})
	if err != nil {
		t.Fatalf("options from address: %v", err)
	}
	if opts.Addr != "redis.internal:6379" || opts.Password != "pw" || opts.DB != 1 {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.DialTimeout != 2*time.Second {
		t.Fatalf("expected dial timeout applied, got %s", opts.DialTimeout)
	}
}

func TestRateLimitKey(t *testing.T) {
	key := RateLimitKey("reset:ip", "10.0.0.1")
	if key != "shield:rate_limit:reset:ip:10.0.0.1" {
		t.Fatalf("unexpected key %q", key)
	}
}
