// Package config loads application configuration from a config.toml placed
// beside the executable, falling back to defaults when absent.
package config

import (
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// AppConfig is the application configuration.
type AppConfig struct {
	Server   ServerConfig   `toml:"server"`
	Data     DataConfig     `toml:"data"`
	Forecast ForecastConfig `toml:"forecast"`
}

// ServerConfig configures the serve mode.
type ServerConfig struct {
	Port    int  `toml:"port"`
	DevMode bool `toml:"dev_mode"`
}

// DataConfig configures on-disk locations. An empty CacheDir selects the
// platform temp directory.
type DataConfig struct {
	CacheDir  string `toml:"cache_dir"`
	DBPath    string `toml:"db_path"`
	ExportDir string `toml:"export_dir"`
}

// ForecastConfig selects the edition pair and year window shown by default.
type ForecastConfig struct {
	BaseEdition       string `toml:"base_edition"`
	ComparisonEdition string `toml:"comparison_edition"`
	YearFrom          int    `toml:"year_from"`
	YearTo            int    `toml:"year_to"`
}

// DefaultConfig returns the built-in defaults: compare the March 2025
// edition against November 2025 over 2025-2030.
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Server: ServerConfig{
			Port:    20440,
			DevMode: false,
		},
		Data: DataConfig{
			CacheDir:  "",
			DBPath:    "data/forecasts.db",
			ExportDir: "data/exports",
		},
		Forecast: ForecastConfig{
			BaseEdition:       "march-2025",
			ComparisonEdition: "november-2025",
			YearFrom:          2025,
			YearTo:            2030,
		},
	}
}

// Years expands the configured window into an explicit year list.
func (c *ForecastConfig) Years() []int {
	if c.YearFrom == 0 || c.YearTo < c.YearFrom {
		return nil
	}
	years := make([]int, 0, c.YearTo-c.YearFrom+1)
	for y := c.YearFrom; y <= c.YearTo; y++ {
		years = append(years, y)
	}
	return years
}

// GetExeDir returns the directory holding the running executable.
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// LoadConfig reads config.toml from the executable's directory. A missing
// file yields the defaults; environment variables override file values.
func LoadConfig() (*AppConfig, error) {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}
	return loadFromPath(filepath.Join(exeDir, "config.toml"))
}

func loadFromPath(configPath string) (*AppConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnvOverrides(config)
			return config, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, err
	}

	applyEnvOverrides(config)
	return config, nil
}

func applyEnvOverrides(config *AppConfig) {
	if v := os.Getenv("FORECAST_SOURCES_CACHE_DIR"); v != "" {
		config.Data.CacheDir = v
	}
	if v := os.Getenv("FORECAST_SOURCES_DB_PATH"); v != "" {
		config.Data.DBPath = v
	}
}

// SaveConfig writes the configuration back to config.toml beside the
// executable.
func SaveConfig(config *AppConfig) error {
	exeDir, err := GetExeDir()
	if err != nil {
		exeDir = "."
	}

	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(exeDir, "config.toml"), data, 0644)
}
