// Package config provides configuration loading from YAML files.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/20after4/configdir"
	"github.com/cockroachdb/errors"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// AppName names the per-user data directory.
const AppName = "surabhi"

// Config represents the application configuration.
type Config struct {
	Server  ServerConfig            `yaml:"server"`
	Admin   AdminConfig             `yaml:"admin"`
	Player  PlayerConfig            `yaml:"player"`
	Storage StorageConfig           `yaml:"storage"`
	Library LibraryConfig           `yaml:"library"`
	Catalog CatalogConfig           `yaml:"catalog"`
	Filters map[string]FilterConfig `yaml:"filters"`
	Notify  NotifyConfig            `yaml:"notify"`
}

// ServerConfig represents server configuration.
type ServerConfig struct {
	Addr  string      `yaml:"addr" default:":8080"`
	Hooks HooksConfig `yaml:"hooks"`
}

// HooksConfig represents lifecycle hooks configuration.
type HooksConfig struct {
	OnStarted []string `yaml:"on_started"`
	OnStopped []string `yaml:"on_stopped"`
}

// AdminConfig represents admin-related configuration.
type AdminConfig struct {
	Token string `yaml:"token" validate:"required"`
}

// PlayerConfig represents playback controller configuration.
type PlayerConfig struct {
	InitialVolume        float64 `yaml:"initial_volume" default:"0.8" validate:"gte=0,lte=1"`
	RestartThresholdMs   int     `yaml:"restart_threshold_ms" default:"3000" validate:"gte=0,lte=60000"`
	TimeUpdateIntervalMs int     `yaml:"time_update_interval_ms" default:"250" validate:"gte=20,lte=5000"`
	EventBuffer          int     `yaml:"event_buffer" default:"64" validate:"gte=1,lte=4096"`
}

// StorageConfig represents local storage configuration.
type StorageConfig struct {
	// DataDir holds the track store and favorites. Defaults to the per-user config dir.
	DataDir string `yaml:"data_dir"`
}

// LibraryConfig represents local library configuration.
type LibraryConfig struct {
	// WatchDir is imported automatically when files appear. Empty disables watching.
	WatchDir string `yaml:"watch_dir"`
}

// CatalogConfig represents remote catalog configuration.
type CatalogConfig struct {
	Providers []ProviderConfig `yaml:"providers" validate:"required,min=1,dive"`
	Search    SearchConfig     `yaml:"search"`
	Listings  []ListingConfig  `yaml:"listings" validate:"dive"`
}

// ProviderConfig represents a single search provider configuration.
type ProviderConfig struct {
	Type        string         `yaml:"type" validate:"required,oneof=itunes spotify"`
	DisplayName string         `yaml:"display_name"`
	Settings    map[string]any `yaml:"settings"`
}

// SearchConfig represents search behaviour.
type SearchConfig struct {
	MinQueryLength int `yaml:"min_query_length" default:"3" validate:"gte=1"`
	Limit          int `yaml:"limit" default:"25" validate:"gte=1,lte=200"`
}

// ListingConfig represents a home listing and the source that fills it.
type ListingConfig struct {
	Kind     string         `yaml:"kind" validate:"required,oneof=trending new-releases"`
	Title    string         `yaml:"title"`
	Type     string         `yaml:"type" default:"search" validate:"oneof=search lastfm"`
	Limit    int            `yaml:"limit" default:"20" validate:"gte=1,lte=100"`
	Settings map[string]any `yaml:"settings"`
}

// FilterConfig represents a filter's configuration.
type FilterConfig struct {
	Enabled  bool           `yaml:"enabled"`
	Settings map[string]any `yaml:"settings,omitempty"`
}

// NotifyConfig represents desktop notification configuration.
type NotifyConfig struct {
	Desktop bool   `yaml:"desktop"`
	AppName string `yaml:"app_name" default:"surabhi"`
}

// Load loads configuration from a YAML file.
// Environment variables take precedence over file values for sensitive fields.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}
	return Parse(data)
}

// Parse parses, completes and validates a YAML configuration document.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to parse config file")
	}

	cfg.applyDefaults()

	// Override with environment variables
	cfg.overrideFromEnv()

	// Set defaults using creasty/defaults
	if err := defaults.Set(&cfg); err != nil {
		return nil, errors.Wrap(err, "failed to set defaults")
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config validation failed")
	}

	return &cfg, nil
}

// applyDefaults fills in the defaults struct tags cannot express.
func (c *Config) applyDefaults() {
	if c.Storage.DataDir == "" {
		c.Storage.DataDir = DefaultDataDir()
	}

	if len(c.Catalog.Providers) == 0 {
		c.Catalog.Providers = []ProviderConfig{{Type: "itunes", DisplayName: "iTunes"}}
	}
	for i := range c.Catalog.Providers {
		if c.Catalog.Providers[i].DisplayName == "" {
			c.Catalog.Providers[i].DisplayName = c.Catalog.Providers[i].Type
		}
	}

	if len(c.Catalog.Listings) == 0 {
		c.Catalog.Listings = []ListingConfig{
			{
				Kind:     "trending",
				Title:    "Trending Now",
				Type:     "search",
				Limit:    8,
				Settings: map[string]any{"term": "bollywood hits 2024"},
			},
			{
				Kind:     "new-releases",
				Title:    "New Releases",
				Type:     "search",
				Limit:    20,
				Settings: map[string]any{"term": "new indian songs"},
			},
		}
	}
}

// overrideFromEnv overrides config values with environment variables.
func (c *Config) overrideFromEnv() {
	if v := os.Getenv("ADMIN_TOKEN"); v != "" {
		c.Admin.Token = v
	}
	for i := range c.Catalog.Providers {
		if c.Catalog.Providers[i].Type != "spotify" {
			continue
		}
		setEnvSetting(&c.Catalog.Providers[i].Settings, "client_id", "SPOTIFY_CLIENT_ID")
		setEnvSetting(&c.Catalog.Providers[i].Settings, "client_secret", "SPOTIFY_CLIENT_SECRET")
	}
	for i := range c.Catalog.Listings {
		if c.Catalog.Listings[i].Type == "lastfm" {
			setEnvSetting(&c.Catalog.Listings[i].Settings, "api_key", "LASTFM_API_KEY")
		}
	}
}

func setEnvSetting(settings *map[string]any, key, env string) {
	v := os.Getenv(env)
	if v == "" {
		return
	}
	if *settings == nil {
		*settings = make(map[string]any)
	}
	(*settings)[key] = v
}

// DefaultDataDir returns the per-user data directory.
func DefaultDataDir() string {
	return configdir.LocalConfig(AppName)
}

// TracksDir returns the directory of the local track store.
func (c *Config) TracksDir() string {
	return filepath.Join(c.Storage.DataDir, "tracks")
}

// KVPath returns the path of the key-value store file.
func (c *Config) KVPath() string {
	return filepath.Join(c.Storage.DataDir, "kv.json")
}

// RestartThreshold returns how far into a track Previous rewinds instead of
// going back.
func (c *Config) RestartThreshold() time.Duration {
	return time.Duration(c.Player.RestartThresholdMs) * time.Millisecond
}

// TimeUpdateInterval returns how often the sink reports the position.
func (c *Config) TimeUpdateInterval() time.Duration {
	return time.Duration(c.Player.TimeUpdateIntervalMs) * time.Millisecond
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "struct validation failed")
	}

	seen := make(map[string]bool)
	for _, l := range c.Catalog.Listings {
		if seen[l.Kind] {
			return errors.Newf("listing %s configured more than once", l.Kind)
		}
		seen[l.Kind] = true
	}

	return nil
}

// IsFilterEnabled checks if a filter is enabled.
func (c *Config) IsFilterEnabled(filterName string) bool {
	if f, ok := c.Filters[filterName]; ok {
		return f.Enabled
	}
	return false
}

// EnabledFilters returns the settings of every enabled filter by name.
func (c *Config) EnabledFilters() map[string]map[string]any {
	enabled := make(map[string]map[string]any)
	for name, f := range c.Filters {
		if f.Enabled {
			enabled[name] = f.Settings
		}
	}
	return enabled
}
