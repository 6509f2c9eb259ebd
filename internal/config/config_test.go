package config

import "testing"

func TestInitConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("COMMISSION_ATOMIC_FANOUT", "")
	t.Setenv("BREAKDOWN_CACHE_MINUTES", "")

	if err := InitConfig(); err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if AppConfig.Port != "8080" {
		t.Fatalf("expected port 8080, got %q", AppConfig.Port)
	}
	if !AppConfig.AtomicFanout {
		t.Fatalf("expected atomic fan-out to default on")
	}
	if AppConfig.BreakdownCacheMinutes != 10 {
		t.Fatalf("expected 10 cache minutes, got %d", AppConfig.BreakdownCacheMinutes)
	}
}

func TestInitConfigOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("COMMISSION_ATOMIC_FANOUT", "false")
	t.Setenv("RATE_LIMIT_BURST", "not-a-number")

	if err := InitConfig(); err != nil {
		t.Fatalf("InitConfig: %v", err)
	}
	if AppConfig.Port != "9090" {
		t.Fatalf("expected port 9090, got %q", AppConfig.Port)
	}
	if AppConfig.AtomicFanout {
		t.Fatalf("expected atomic fan-out off")
	}
	if AppConfig.RateLimitBurst != 20 {
		t.Fatalf("expected fallback burst 20, got %d", AppConfig.RateLimitBurst)
	}
}
