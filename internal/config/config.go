// internal/config/config.go
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Resolver providers.
const (
	ProviderEntrez  = "entrez"
	ProviderEdirect = "edirect"
)

type EntrezConfig struct {
	BaseURL        string `toml:"base_url"`
	APIKey         string `toml:"api_key"`
	Email          string `toml:"email"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type ResolverConfig struct {
	Provider string `toml:"provider"`
	Workers  int    `toml:"workers"`
}

type CacheConfig struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

type SkderConfig struct {
	Command         string  `toml:"command"`
	PercentIdentity float64 `toml:"percent_identity"`
	WorkDir         string  `toml:"work_dir"`
	BatchSize       int     `toml:"batch_size"`
}

type Config struct {
	Entrez   EntrezConfig   `toml:"entrez"`
	Resolver ResolverConfig `toml:"resolver"`
	Cache    CacheConfig    `toml:"cache"`
	Skder    SkderConfig    `toml:"skder"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Entrez:   EntrezConfig{TimeoutSeconds: 30},
		Resolver: ResolverConfig{Provider: ProviderEntrez, Workers: 4},
		Cache:    CacheConfig{Enabled: true, Path: defaultCachePath()},
		Skder:    SkderConfig{PercentIdentity: 99.0},
	}
}

// Load reads a TOML config file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config file %q: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config file %q: %w", path, err)
	}
	return cfg, nil
}

// ApplyEnv overlays the NCBI credentials from the environment (typically
// populated from a .env file). Explicit config-file values win.
func (c *Config) ApplyEnv() {
	if c.Entrez.APIKey == "" {
		c.Entrez.APIKey = os.Getenv("NCBI_API_KEY")
	}
	if c.Entrez.Email == "" {
		c.Entrez.Email = os.Getenv("NCBI_EMAIL")
	}
}

func defaultCachePath() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ".cagecleaner/accessions.db"
	}
	return dir + "/cagecleaner/accessions.db"
}
