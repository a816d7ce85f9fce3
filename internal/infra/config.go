package infra

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every knob of the ingestion service and the read API.
// Loaded from YAML, then sensitive values are overridden from the
// environment.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Feed struct {
		WSURL       string `yaml:"ws_url"`
		APIBase     string `yaml:"api_base"`
		AssetType   string `yaml:"asset_type"`
		Framing     string `yaml:"framing"` // "binary" (default) or "json"
		Token       string `yaml:"token"`

		Symbols     []string       `yaml:"symbols"`
		Instruments map[string]int `yaml:"instruments"` // symbol -> UIC

		RefreshRateMS       int `yaml:"refresh_rate_ms"`
		SubscribeTimeoutSec int `yaml:"subscribe_timeout_sec"`
		BackoffFloorSec     int `yaml:"backoff_floor_sec"`
		BackoffCapSec       int `yaml:"backoff_cap_sec"`
	} `yaml:"feed"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Cache struct {
		TTLSec          int `yaml:"ttl_sec"`
		HistoryLimit    int `yaml:"history_limit"`
		StatusTTLSec    int `yaml:"status_ttl_sec"`
		HeartbeatTTLSec int `yaml:"heartbeat_ttl_sec"`
	} `yaml:"cache"`

	Supervisor struct {
		MaxRestartAttempts   int `yaml:"max_restart_attempts"`
		RestartDelaySec      int `yaml:"restart_delay_sec"`
		HeartbeatIntervalSec int `yaml:"heartbeat_interval_sec"`
	} `yaml:"supervisor"`

	API struct {
		Addr string `yaml:"addr"`
	} `yaml:"api"`

	Archive struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"archive"`

	Logging struct {
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// LoadConfig reads and parses the configuration file, applies environment
// overrides, fills defaults and validates the result.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// DefaultInstruments maps the streamed FX pairs to their feed instrument
// keys (UICs). A wrong key silently subscribes to the wrong instrument, so
// deployments that override this table must take it from the feed's own
// instrument lookup, never guess.
func DefaultInstruments() map[string]int {
	return map[string]int{
		"EUR-USD": 21,
		"GBP-USD": 22,
		"USD-JPY": 23,
		"AUD-USD": 24,
		"USD-CHF": 25,
		"USD-CAD": 26,
		"NZD-USD": 27,
	}
}

func (c *Config) applyDefaults() {
	if c.Feed.AssetType == "" {
		c.Feed.AssetType = "FxSpot"
	}
	if c.Feed.Framing == "" {
		c.Feed.Framing = "binary"
	}
	if len(c.Feed.Instruments) == 0 {
		c.Feed.Instruments = DefaultInstruments()
	}
	if c.Feed.RefreshRateMS <= 0 {
		c.Feed.RefreshRateMS = 1000
	}
	if c.Feed.SubscribeTimeoutSec <= 0 {
		c.Feed.SubscribeTimeoutSec = 10
	}
	if c.Feed.BackoffFloorSec <= 0 {
		c.Feed.BackoffFloorSec = 1
	}
	if c.Feed.BackoffCapSec <= 0 {
		c.Feed.BackoffCapSec = 16
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 30
	}
	if c.Cache.HistoryLimit <= 0 {
		c.Cache.HistoryLimit = 100
	}
	if c.Cache.StatusTTLSec <= 0 {
		c.Cache.StatusTTLSec = 300
	}
	if c.Cache.HeartbeatTTLSec <= 0 {
		c.Cache.HeartbeatTTLSec = 60
	}
	if c.Supervisor.MaxRestartAttempts <= 0 {
		c.Supervisor.MaxRestartAttempts = 10
	}
	if c.Supervisor.RestartDelaySec <= 0 {
		c.Supervisor.RestartDelaySec = 5
	}
	if c.Supervisor.HeartbeatIntervalSec <= 0 {
		c.Supervisor.HeartbeatIntervalSec = 30
	}
	if c.API.Addr == "" {
		c.API.Addr = ":8080"
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if c.Feed.WSURL == "" || (!hasPrefix(c.Feed.WSURL, "ws://") && !hasPrefix(c.Feed.WSURL, "wss://")) {
		return fmt.Errorf("invalid feed WS URL: %s", c.Feed.WSURL)
	}
	if c.Feed.Framing == "binary" && c.Feed.APIBase == "" {
		return fmt.Errorf("feed API base is required for binary framing")
	}
	if len(c.Feed.Symbols) == 0 {
		return fmt.Errorf("at least one symbol is required")
	}
	if c.Feed.Framing != "binary" && c.Feed.Framing != "json" {
		return fmt.Errorf("unknown framing mode: %s", c.Feed.Framing)
	}
	for _, s := range c.Feed.Symbols {
		if _, ok := c.Feed.Instruments[s]; !ok && c.Feed.Framing == "binary" {
			return fmt.Errorf("symbol %s has no instrument key", s)
		}
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis address is required")
	}
	return nil
}

// CacheTTL returns the quote TTL as a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.Cache.TTLSec) * time.Second
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv overrides sensitive values from the environment when set.
func overrideWithEnv(cfg *Config) {
	if addr := os.Getenv("FX_REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
	}
	if pass := os.Getenv("FX_REDIS_PASSWORD"); pass != "" {
		cfg.Redis.Password = pass
	}
	// SAXO_API_TOKEN is deliberately not copied here: it is the last entry
	// in the token provider chain, behind the config token and the cache.
}
