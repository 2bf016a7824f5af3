package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDirectoryURL = "https://api.mullvad.net/www/relays/all/"
	DefaultCacheFile    = "relayping-relays.json"
	DefaultMaxAge       = 12 * time.Hour
	DefaultHTTPTimeout  = 10 * time.Second
	DefaultPingTimeout  = 10 * time.Second
	DefaultProbeWorkers = 4

	// EnvPrefix namespaces environment overrides, e.g. RELAYPING_PROXIES.
	EnvPrefix = "relayping"
)

// DefaultSTUNServers are used by the egress check.
var DefaultSTUNServers = []string{"stun.l.google.com:19302", "stun1.l.google.com:19302"}

// Config holds every tunable of a run.
type Config struct {
	DirectoryURL string        `yaml:"directory_url" split_words:"true"`
	CachePath    string        `yaml:"cache_path" split_words:"true"`
	MaxAge       time.Duration `yaml:"max_age" split_words:"true"`
	Proxies      []string      `yaml:"proxies" split_words:"true"`
	HTTPTimeout  time.Duration `yaml:"http_timeout" split_words:"true"`
	PingTimeout  time.Duration `yaml:"ping_timeout" split_words:"true"`
	ProbeWorkers int           `yaml:"probe_workers" split_words:"true"`
	STUNServers  []string      `yaml:"stun_servers" split_words:"true"`
	CSVPath      string        `yaml:"csv_path" split_words:"true"`
}

// DefaultPath is <user config dir>/relayping/config.yaml, or "" when the
// platform has no config directory.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "relayping", "config.yaml")
}

// Load reads and parses a YAML config file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, err
	}

	ApplyDefaults(&cfg)
	return cfg, nil
}

// LoadOptional behaves like Load but returns defaults when the file is missing.
func LoadOptional(path string) (Config, error) {
	if path == "" {
		var cfg Config
		ApplyDefaults(&cfg)
		return cfg, nil
	}
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		cfg = Config{}
		ApplyDefaults(&cfg)
		return cfg, nil
	}
	return cfg, err
}

// FromEnv overlays RELAYPING_* environment variables onto cfg, e.g.
// RELAYPING_MAX_AGE for MaxAge. Unset variables leave the file values alone,
// and unprefixed names are never consulted.
func FromEnv(cfg *Config) error {
	return envconfig.Process(EnvPrefix, cfg)
}

// Validate performs minimal validation.
func Validate(cfg Config) error {
	if cfg.DirectoryURL == "" {
		return fmt.Errorf("directory_url is required")
	}
	if _, err := url.ParseRequestURI(cfg.DirectoryURL); err != nil {
		return fmt.Errorf("directory_url: %w", err)
	}
	if cfg.CachePath == "" {
		return fmt.Errorf("cache_path is required")
	}
	if cfg.MaxAge < 0 {
		return fmt.Errorf("max_age must not be negative")
	}
	if cfg.ProbeWorkers < 1 {
		return fmt.Errorf("probe_workers must be at least 1")
	}
	for _, p := range cfg.Proxies {
		u, err := url.Parse(p)
		if err != nil {
			return fmt.Errorf("proxies: %w", err)
		}
		switch u.Scheme {
		case "socks5", "socks5h", "http", "https":
		default:
			return fmt.Errorf("proxies: unsupported scheme in %q", p)
		}
	}
	return nil
}

// ApplyDefaults fills in default values when empty.
func ApplyDefaults(cfg *Config) {
	if cfg.DirectoryURL == "" {
		cfg.DirectoryURL = DefaultDirectoryURL
	}
	if cfg.CachePath == "" {
		cfg.CachePath = filepath.Join(os.TempDir(), DefaultCacheFile)
	}
	if cfg.MaxAge == 0 {
		cfg.MaxAge = DefaultMaxAge
	}
	if cfg.HTTPTimeout == 0 {
		cfg.HTTPTimeout = DefaultHTTPTimeout
	}
	if cfg.PingTimeout == 0 {
		cfg.PingTimeout = DefaultPingTimeout
	}
	if cfg.ProbeWorkers == 0 {
		cfg.ProbeWorkers = DefaultProbeWorkers
	}
	if len(cfg.STUNServers) == 0 {
		cfg.STUNServers = append([]string(nil), DefaultSTUNServers...)
	}
}
