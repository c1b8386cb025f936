package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDoesNotInjectWeakAuthDefaults(t *testing.T) {
	t.Setenv("AUTH_SECRET", "")
	t.Setenv("ADMIN_PASSWORD", "")

	cfg := Load()
	if cfg.AuthSecret != "" {
		t.Fatalf("expected empty AUTH_SECRET when unset, got %q", cfg.AuthSecret)
	}
	if cfg.AdminPassword != "" {
		t.Fatalf("expected empty ADMIN_PASSWORD when unset, got %q", cfg.AdminPassword)
	}
}

func TestLoadTimingDefaultsAndOverrides(t *testing.T) {
	t.Setenv("SHOWCASE_DWELL_MS", "")
	t.Setenv("SHOWCASE_TICK_MS", "25")
	t.Setenv("COUNTDOWN_TICK_MS", "-5")
	t.Setenv("CART_TTL_MINUTES", "30")

	cfg := Load()
	if cfg.ShowcaseDwell != 6*time.Second {
		t.Fatalf("expected default dwell 6s, got %s", cfg.ShowcaseDwell)
	}
	if cfg.ShowcaseTick != 25*time.Millisecond {
		t.Fatalf("expected tick override 25ms, got %s", cfg.ShowcaseTick)
	}
	if cfg.CountdownTick != time.Second {
		t.Fatalf("expected invalid countdown tick to fall back to 1s, got %s", cfg.CountdownTick)
	}
	if cfg.CartTTL() != 30*time.Minute {
		t.Fatalf("expected cart ttl 30m, got %s", cfg.CartTTL())
	}
}

func TestLoadReadsDotEnvWithoutOverridingEnvironment(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("STORE_LOCALE=fr-DZ\nPORT=9999\n"), 0o600); err != nil {
		t.Fatalf("write .env: %v", err)
	}
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("PORT", "7070")
	t.Setenv("STORE_LOCALE", "")
	os.Unsetenv("STORE_LOCALE")

	cfg := Load()
	if cfg.Port != "7070" {
		t.Fatalf("expected environment PORT to win, got %q", cfg.Port)
	}
	if cfg.Locale != "fr-DZ" {
		t.Fatalf("expected locale from .env, got %q", cfg.Locale)
	}
	if cfg.Address() != ":7070" {
		t.Fatalf("unexpected address %q", cfg.Address())
	}
}
