package config

import (
	"testing"
	"time"
)

func TestLoadCacheConfigDefaults(t *testing.T) {
	cfg := LoadCacheConfig()
	if !cfg.Enabled {
		t.Fatal("cache disabled by default")
	}
	if !cfg.Methods["GET"] || cfg.Methods["POST"] {
		t.Fatalf("methods = %v, want GET only", cfg.Methods)
	}
	if cfg.TTL != 15*time.Second {
		t.Fatalf("ttl = %v, want 15s", cfg.TTL)
	}
	if cfg.MaxBodyBytes != 1<<20 {
		t.Fatalf("max body = %d", cfg.MaxBodyBytes)
	}
}

func TestLoadCacheConfigFromEnv(t *testing.T) {
	t.Setenv("CACHE_ENABLED", "false")
	t.Setenv("CACHE_METHODS", "get, head")
	t.Setenv("CACHE_TTL", "2m")

	cfg := LoadCacheConfig()
	if cfg.Enabled {
		t.Fatal("CACHE_ENABLED=false ignored")
	}
	if !cfg.Methods["GET"] || !cfg.Methods["HEAD"] {
		t.Fatalf("methods = %v, want GET and HEAD", cfg.Methods)
	}
	if cfg.TTL != 2*time.Minute {
		t.Fatalf("ttl = %v, want 2m", cfg.TTL)
	}
}

func TestLoadCacheConfigBadTTLFallsBack(t *testing.T) {
	t.Setenv("CACHE_TTL", "not-a-duration")
	if cfg := LoadCacheConfig(); cfg.TTL != time.Second {
		t.Fatalf("ttl = %v, want 1s fallback", cfg.TTL)
	}
}

func TestLoadRateLimitConfigDefaults(t *testing.T) {
	cfg := LoadRateLimitConfig()
	if !cfg.Enabled || cfg.Capacity != 60 || cfg.RefillTokens != 1 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.RefillInterval != time.Second {
		t.Fatalf("refill interval = %v", cfg.RefillInterval)
	}
}

func TestLoadRateLimitConfigNormalizesNonsense(t *testing.T) {
	t.Setenv("RATE_LIMIT_CAPACITY", "0")
	t.Setenv("RATE_LIMIT_REFILL_TOKENS", "-3")
	t.Setenv("RATE_LIMIT_REFILL_INTERVAL", "-1s")
	t.Setenv("RATE_LIMIT_TTL", "1s")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 1 {
		t.Fatalf("capacity = %d, want 1", cfg.Capacity)
	}
	if cfg.RefillTokens != 1 {
		t.Fatalf("refill tokens = %d, want 1", cfg.RefillTokens)
	}
	if cfg.RefillInterval != time.Second {
		t.Fatalf("refill interval = %v, want 1s", cfg.RefillInterval)
	}
	// TTL must cover several refill intervals or keys vanish mid-bucket.
	if cfg.TTL < 5*cfg.RefillInterval {
		t.Fatalf("ttl = %v, want >= %v", cfg.TTL, 5*cfg.RefillInterval)
	}
}

func TestLoadRateLimitConfigBurstOverride(t *testing.T) {
	t.Setenv("RATE_LIMIT_BURST", "10")
	t.Setenv("RATE_LIMIT_REFILL_EVERY", "500ms")

	cfg := LoadRateLimitConfig()
	if cfg.Capacity != 10 {
		t.Fatalf("capacity = %d, want burst override 10", cfg.Capacity)
	}
	if cfg.RefillTokens != 1 || cfg.RefillInterval != 500*time.Millisecond {
		t.Fatalf("refill = %d per %v, want 1 per 500ms", cfg.RefillTokens, cfg.RefillInterval)
	}
}
