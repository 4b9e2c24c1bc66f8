package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

var envKeys = []string{
	"CARTA_API_BASE_URL", "CARTA_SLUG", "CARTA_USERNAME", "CARTA_PASSWORD",
	"CARTA_DB_PATH", "CARTA_MENU_URL", "CARTA_LOG_PATH", "CARTA_LOG_LEVEL",
	"CARTA_TAGS", "CARTA_DWELL", "CARTA_FRAME", "CARTA_INLINE_IMAGES",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "carta.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_UsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("CARTA_SLUG", "cafe-sol")

	cfg, err := load(nil)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.APIBaseURL != defaultAPIBaseURL {
		t.Fatalf("unexpected API base URL: %s", cfg.APIBaseURL)
	}
	if cfg.DBPath != "carta.db" {
		t.Fatalf("unexpected DB path: %s", cfg.DBPath)
	}
	if cfg.LogPath != "carta.log" || cfg.LogLevel != "info" {
		t.Fatalf("unexpected log settings: %s %s", cfg.LogPath, cfg.LogLevel)
	}
	if cfg.Dwell != 4*time.Second || cfg.Frame != 16*time.Millisecond {
		t.Fatalf("unexpected timings: %s %s", cfg.Dwell, cfg.Frame)
	}
	if !cfg.ImagesEnabled() {
		t.Fatal("expected inline images on by default")
	}
	if cfg.HasCredentials() {
		t.Fatal("expected no credentials")
	}
}

func TestLoad_MissingSlug(t *testing.T) {
	clearEnv(t)

	if _, err := load(nil); err == nil {
		t.Fatal("expected error for missing slug")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, `
slug = "from-file"
api_base_url = "https://menu.example.com/api"
menu_url = "https://example.com/menu"
tags = ["Vegan", " gluten-free "]
dwell = "6s"
inline_images = false
`)
	t.Setenv("CARTA_SLUG", "from-env")
	t.Setenv("CARTA_FRAME", "33ms")

	cfg, err := load([]string{filepath.Join(t.TempDir(), "missing.toml"), path})
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if cfg.Slug != "from-env" {
		t.Fatalf("expected env to override file, got %s", cfg.Slug)
	}
	if cfg.APIBaseURL != "https://menu.example.com/api" || cfg.MenuURL != "https://example.com/menu" {
		t.Fatalf("unexpected urls: %s %s", cfg.APIBaseURL, cfg.MenuURL)
	}
	if len(cfg.Tags) != 2 || cfg.Tags[0] != "Vegan" || cfg.Tags[1] != "gluten-free" {
		t.Fatalf("unexpected tags: %#v", cfg.Tags)
	}
	if cfg.Dwell != 6*time.Second || cfg.Frame != 33*time.Millisecond {
		t.Fatalf("unexpected timings: %s %s", cfg.Dwell, cfg.Frame)
	}
	if cfg.ImagesEnabled() {
		t.Fatal("expected inline images disabled by file")
	}
}

func TestLoad_EnvLists(t *testing.T) {
	clearEnv(t)
	t.Setenv("CARTA_SLUG", "cafe-sol")
	t.Setenv("CARTA_TAGS", "vegan, ,spicy")
	t.Setenv("CARTA_INLINE_IMAGES", "false")

	cfg, err := load(nil)
	if err != nil {
		t.Fatalf("load returned error: %v", err)
	}
	if len(cfg.Tags) != 2 || cfg.Tags[1] != "spicy" {
		t.Fatalf("unexpected tags: %#v", cfg.Tags)
	}
	if cfg.ImagesEnabled() {
		t.Fatal("expected inline images disabled by env")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)
	t.Setenv("CARTA_SLUG", "cafe-sol")
	t.Setenv("CARTA_DWELL", "soon")

	if _, err := load(nil); err == nil {
		t.Fatal("expected error for invalid dwell")
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	clearEnv(t)
	path := writeConfig(t, "slug = \n")

	if _, err := load([]string{path}); err == nil {
		t.Fatal("expected error for malformed toml")
	}
}

func validConfig() Config {
	return Config{
		APIBaseURL: "https://api.carta.menu/v1",
		Slug:       "cafe-sol",
		DBPath:     "carta.db",
		LogLevel:   "info",
		Dwell:      time.Second,
		Frame:      time.Millisecond,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		ok     bool
	}{
		{name: "valid", mutate: func(*Config) {}, ok: true},
		{name: "trailing slash", mutate: func(c *Config) { c.APIBaseURL += "/" }},
		{name: "username only", mutate: func(c *Config) { c.Username = "ana" }},
		{name: "both credentials", mutate: func(c *Config) { c.Username, c.Password = "ana", "secret" }, ok: true},
		{name: "negative dwell", mutate: func(c *Config) { c.Dwell = -time.Second }},
		{name: "zero frame", mutate: func(c *Config) { c.Frame = 0 }},
		{name: "unknown level", mutate: func(c *Config) { c.LogLevel = "trace" }},
		{name: "level is case insensitive", mutate: func(c *Config) { c.LogLevel = "DEBUG" }, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}
