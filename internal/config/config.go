// Package config loads the server and catalog settings from an optional TOML
// file and the environment.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"go.ngs.io/sed-api/internal/domain"
	"go.ngs.io/sed-api/internal/logging"
)

// Config is the complete runtime configuration.
type Config struct {
	Server  ServerConfig   `toml:"server"`
	Catalog CatalogConfig  `toml:"catalog"`
	Logging logging.Config `toml:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port string `toml:"port"`
	// CORSAllowedOrigins empty means every origin is allowed.
	CORSAllowedOrigins []string `toml:"cors_allowed_origins"`
}

// CatalogConfig locates the grid catalogs on disk.
type CatalogConfig struct {
	// Root holds one directory per library id.
	Root string `toml:"root"`
	// CacheSize is the number of flux vectors kept in memory.
	CacheSize int `toml:"cache_size"`
	// Libraries overrides the directory of individual library ids.
	Libraries map[string]string `toml:"libraries"`
}

// Default returns the configuration used when no file or environment is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
		},
		Catalog: CatalogConfig{
			Root:      "./data/cdbs/grid",
			CacheSize: 256,
		},
		Logging: logging.DefaultConfig(),
	}
}

// Load reads path (if non-empty) over the defaults, then applies environment
// overrides and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from the environment. getenv is os.Getenv outside tests.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("PORT"); v != "" {
		c.Server.Port = v
	}
	if v := getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.Server.CORSAllowedOrigins = splitList(v)
	}
	if v := getenv("CATALOG_ROOT"); v != "" {
		c.Catalog.Root = v
	}
	if v := getenv("CATALOG_CACHE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &domain.ConfigurationError{Name: "CATALOG_CACHE_SIZE", Reason: fmt.Sprintf("not an integer: %q", v)}
		}
		c.Catalog.CacheSize = n
	}
	if v := getenv("LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := getenv("LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	return nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return &domain.ConfigurationError{Name: "server.port", Reason: "must not be empty"}
	}
	if c.Catalog.Root == "" {
		return &domain.ConfigurationError{Name: "catalog.root", Reason: "must not be empty"}
	}
	if c.Catalog.CacheSize < 0 {
		return &domain.ConfigurationError{Name: "catalog.cache_size", Reason: "must not be negative"}
	}
	names := make([]string, 0, len(c.Catalog.Libraries))
	for name := range c.Catalog.Libraries {
		names = append(names, name)
	}
	sort.Strings(names)
	seen := make(map[domain.Family]string, len(names))
	for _, name := range names {
		family, err := domain.ParseFamily(name)
		if err != nil {
			return &domain.ConfigurationError{Name: "catalog.libraries." + name, Reason: "unknown library id"}
		}
		if prev, ok := seen[family]; ok {
			return &domain.ConfigurationError{
				Name:   "catalog.libraries." + name,
				Reason: fmt.Sprintf("names the same library as %q", prev),
			}
		}
		seen[family] = name
	}
	switch c.Logging.Format {
	case "json", "console":
	default:
		return &domain.ConfigurationError{Name: "logging.format", Reason: fmt.Sprintf("must be json or console, got %q", c.Logging.Format)}
	}
	return nil
}

// LibraryOverrides returns the explicit directories keyed by library id.
// Libraries may be keyed by family name or library id; unknown keys are
// dropped. Validate reports unknown keys and keys naming the same library.
func (c *CatalogConfig) LibraryOverrides() map[string]string {
	out := make(map[string]string, len(c.Libraries))
	for name, dir := range c.Libraries {
		family, err := domain.ParseFamily(name)
		if err != nil || dir == "" {
			continue
		}
		out[domain.GridSpecs[family].LibraryID] = dir
	}
	return out
}

// LibraryDir returns the directory holding a library's catalog.csv.
func (c *CatalogConfig) LibraryDir(libraryID string) string {
	if dir, ok := c.LibraryOverrides()[libraryID]; ok {
		return dir
	}
	return filepath.Join(c.Root, libraryID)
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
