// Package config handles application configuration via TOML files.
// Configuration is stored at ~/.config/nyaa-tui/config.toml and covers the
// default site, HTTP settings, search defaults, qBittorrent and the API
// listener.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/litescript/nyaa-tui/internal/nyaa"
	"github.com/litescript/nyaa-tui/internal/version"
)

// EnvPath names the variable that overrides the config file location.
const EnvPath = "NYAA_TUI_CONFIG"

// Config holds application configuration
type Config struct {
	Site        string            `toml:"site"`
	Network     NetworkConfig     `toml:"network"`
	Search      SearchConfig      `toml:"search"`
	QBittorrent QBittorrentConfig `toml:"qbittorrent"`
	Downloads   DownloadsConfig   `toml:"downloads"`
	API         APIConfig         `toml:"api"`
}

// NetworkConfig holds HTTP settings for talking to the sites
type NetworkConfig struct {
	TimeoutSeconds int    `toml:"timeout_seconds"`
	UserAgent      string `toml:"user_agent"`

	// Mirrors maps a site name ("fun", "fap") to an alternate base URL.
	Mirrors map[string]string `toml:"mirrors"`
}

// SearchConfig holds the defaults applied to new searches
type SearchConfig struct {
	Filter    string `toml:"filter"`
	Category  string `toml:"category"`
	SortBy    string `toml:"sort_by"`
	SortOrder string `toml:"sort_order"`
}

// QBittorrentConfig holds qBittorrent Web API settings
type QBittorrentConfig struct {
	Host     string `toml:"host"`
	Port     int    `toml:"port"`
	Username string `toml:"username"`
	Password string `toml:"password"`
}

// DownloadsConfig holds download settings
type DownloadsConfig struct {
	// Path is passed to qBittorrent as the save path. Empty keeps the
	// client's own default.
	Path string `toml:"path"`
}

// APIConfig holds the JSON API server settings
type APIConfig struct {
	Listen string `toml:"listen"`
}

// Default returns the default configuration
func Default() Config {
	return Config{
		Site: nyaa.SiteFun.String(),
		Network: NetworkConfig{
			TimeoutSeconds: 30,
			UserAgent:      "nyaa-tui/" + version.Version,
		},
		Search: SearchConfig{
			Filter:   nyaa.NoFilter.String(),
			Category: "0_0",
		},
		QBittorrent: QBittorrentConfig{
			Host:     "localhost",
			Port:     8080,
			Username: "admin",
			Password: "adminadmin",
		},
		API: APIConfig{
			Listen: "127.0.0.1:8787",
		},
	}
}

// ConfigPath returns the path to the config file
func ConfigPath() string {
	if p := os.Getenv(EnvPath); p != "" {
		return p
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "nyaa-tui", "config.toml")
}

// Load reads config from ConfigPath or returns defaults
func Load() (Config, error) {
	return LoadFile(ConfigPath())
}

// LoadFile reads config from path. A missing file yields the defaults.
func LoadFile(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes config to ConfigPath
func Save(cfg Config) error {
	return SaveFile(ConfigPath(), cfg)
}

// SaveFile writes config to path, creating its directory
func SaveFile(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// Validate checks every enumerated value against the engine's tables.
// The category is resolved against the configured site.
func (c Config) Validate() error {
	var errs []error
	site, err := nyaa.ParseSite(c.Site)
	if err != nil {
		errs = append(errs, fmt.Errorf("site: %w", err))
	}
	if _, err := nyaa.ParseQualityFilter(c.Search.Filter); err != nil {
		errs = append(errs, fmt.Errorf("search.filter: %w", err))
	}
	if site.Valid() && c.Search.Category != "" {
		if _, err := nyaa.ResolveCategory(site, c.Search.Category); err != nil {
			errs = append(errs, fmt.Errorf("search.category: %w", err))
		}
	}
	if _, err := nyaa.ParseSortBy(c.Search.SortBy); err != nil {
		errs = append(errs, fmt.Errorf("search.sort_by: %w", err))
	}
	if _, err := nyaa.ParseSortOrder(c.Search.SortOrder); err != nil {
		errs = append(errs, fmt.Errorf("search.sort_order: %w", err))
	}
	for name := range c.Network.Mirrors {
		if _, err := nyaa.ParseSite(name); err != nil {
			errs = append(errs, fmt.Errorf("network.mirrors: %w", err))
		}
	}
	if c.Network.TimeoutSeconds < 0 {
		errs = append(errs, fmt.Errorf("network.timeout_seconds: negative value %d", c.Network.TimeoutSeconds))
	}
	return errors.Join(errs...)
}

// Timeout returns the request timeout, falling back to 30 seconds.
func (c Config) Timeout() time.Duration {
	if c.Network.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Network.TimeoutSeconds) * time.Second
}

// SiteValue returns the configured site
func (c Config) SiteValue() (nyaa.Site, error) {
	return nyaa.ParseSite(c.Site)
}

// SearchDefaults returns a first-page query carrying the configured filter,
// category and sort, resolved for site.
func (c Config) SearchDefaults(site nyaa.Site) (nyaa.SearchQuery, error) {
	q := nyaa.SearchQuery{Page: 1}
	var err error
	if q.Filter, err = nyaa.ParseQualityFilter(c.Search.Filter); err != nil {
		return q, err
	}
	if c.Search.Category != "" {
		if q.Category, err = nyaa.ResolveCategory(site, c.Search.Category); err != nil {
			return q, err
		}
	}
	if q.SortBy, err = nyaa.ParseSortBy(c.Search.SortBy); err != nil {
		return q, err
	}
	if q.SortOrder, err = nyaa.ParseSortOrder(c.Search.SortOrder); err != nil {
		return q, err
	}
	return q, nil
}

// MirrorFor returns the alternate base URL configured for site, if any
func (c Config) MirrorFor(site nyaa.Site) string {
	return c.Network.Mirrors[site.String()]
}
