package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Server.Port != 20440 {
		t.Fatalf("port mismatch: got=%d want=20440", cfg.Server.Port)
	}
	if cfg.Forecast.BaseEdition != "march-2025" || cfg.Forecast.ComparisonEdition != "november-2025" {
		t.Fatalf("edition pair mismatch: got=%s/%s", cfg.Forecast.BaseEdition, cfg.Forecast.ComparisonEdition)
	}
	years := cfg.Forecast.Years()
	if len(years) != 6 || years[0] != 2025 || years[5] != 2030 {
		t.Fatalf("default year window mismatch: got=%v", years)
	}
}

func TestForecastYears_EmptyWindow(t *testing.T) {
	t.Parallel()

	c := ForecastConfig{}
	if years := c.Years(); years != nil {
		t.Fatalf("unset window should expand to nil, got=%v", years)
	}

	c = ForecastConfig{YearFrom: 2030, YearTo: 2025}
	if years := c.Years(); years != nil {
		t.Fatalf("inverted window should expand to nil, got=%v", years)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := loadFromPath(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != DefaultConfig().Server.Port {
		t.Fatalf("missing file should fall back to defaults")
	}
}

func TestLoadFromPath_ParsesTOML(t *testing.T) {
	content := `
[server]
port = 8080
dev_mode = true

[data]
cache_dir = "/tmp/forecast-cache"

[forecast]
base_edition = "november-2025"
comparison_edition = "march-2025"
year_from = 2026
year_to = 2028
`
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := loadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != 8080 || !cfg.Server.DevMode {
		t.Fatalf("server section mismatch: %+v", cfg.Server)
	}
	if cfg.Data.CacheDir != "/tmp/forecast-cache" {
		t.Fatalf("cache dir mismatch: got=%s", cfg.Data.CacheDir)
	}
	// Unset keys keep their defaults.
	if cfg.Data.DBPath != "data/forecasts.db" {
		t.Fatalf("db path should keep its default, got=%s", cfg.Data.DBPath)
	}
	if got := cfg.Forecast.Years(); len(got) != 3 || got[0] != 2026 {
		t.Fatalf("year window mismatch: got=%v", got)
	}
}

func TestLoadFromPath_EnvOverrides(t *testing.T) {
	t.Setenv("FORECAST_SOURCES_CACHE_DIR", "/srv/cache")
	t.Setenv("FORECAST_SOURCES_DB_PATH", "/srv/forecasts.db")

	cfg, err := loadFromPath(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Data.CacheDir != "/srv/cache" {
		t.Fatalf("cache dir override mismatch: got=%s", cfg.Data.CacheDir)
	}
	if cfg.Data.DBPath != "/srv/forecasts.db" {
		t.Fatalf("db path override mismatch: got=%s", cfg.Data.DBPath)
	}
}

func TestLoadFromPath_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("server = {"), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := loadFromPath(path); err == nil {
		t.Fatalf("malformed config should error")
	}
}
