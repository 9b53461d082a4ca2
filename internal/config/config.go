package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"vesrates/internal/logging"
)

// Config materialises application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Logging  logging.Config `mapstructure:"logging"`
	History  HistoryConfig  `mapstructure:"history"`
	P2P      P2PConfig      `mapstructure:"p2p"`
	Official OfficialConfig `mapstructure:"official"`
	Export   ExportConfig   `mapstructure:"export"`
}

// AppConfig general metadata.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"`
}

// HistoryConfig governs the local price history store.
type HistoryConfig struct {
	DBPath        string        `mapstructure:"db_path"`
	Retention     time.Duration `mapstructure:"retention"`
	DedupInterval time.Duration `mapstructure:"dedup_interval"`
	PruneInterval time.Duration `mapstructure:"prune_interval"`
}

// P2PConfig covers the peer-to-peer quote source.
type P2PConfig struct {
	URL            string        `mapstructure:"url"`
	SampleInterval time.Duration `mapstructure:"sample_interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	UserAgent      string        `mapstructure:"user_agent"`
}

// OfficialConfig covers the central-bank rate sources and the snapshot cycle.
type OfficialConfig struct {
	USDURL         string        `mapstructure:"usd_url"`
	EURURL         string        `mapstructure:"eur_url"`
	EURMode        string        `mapstructure:"eur_mode"`
	CrossURL       string        `mapstructure:"cross_url"`
	Interval       time.Duration `mapstructure:"interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
}

// ExportConfig sets CLI export behaviour.
type ExportConfig struct {
	MaxDataPoints int `mapstructure:"max_data_points"`
}

// Load builds configuration from file, environment, and defaults.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VESRATES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := readConfig(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, decodeHook()); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func readConfig(v *viper.Viper) error {
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil
		}
		return fmt.Errorf("read config: %w", err)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "vesrates")
	v.SetDefault("app.environment", "development")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	v.SetDefault("history.db_path", "vesrates.db")
	v.SetDefault("history.retention", "720h")
	v.SetDefault("history.dedup_interval", "5s")
	v.SetDefault("history.prune_interval", "1h")

	v.SetDefault("p2p.url", "https://criptoya.com/api/binancep2p/usdt/ves")
	v.SetDefault("p2p.sample_interval", "10s")
	v.SetDefault("p2p.request_timeout", "10s")
	v.SetDefault("p2p.user_agent", "vesrates/1.0")

	// Registered so env overrides reach Unmarshal; there is no sensible
	// baked-in endpoint, Validate rejects the empty values.
	v.SetDefault("official.usd_url", "")
	v.SetDefault("official.eur_url", "")
	v.SetDefault("official.cross_url", "")
	v.SetDefault("official.eur_mode", "endpoint")
	v.SetDefault("official.interval", "60s")
	v.SetDefault("official.request_timeout", "10s")

	v.SetDefault("export.max_data_points", 100000)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}

// Validate performs basic sanity checks on the configuration values.
func (c *Config) Validate() error {
	if c.P2P.SampleInterval <= 0 {
		return fmt.Errorf("p2p.sample_interval must be greater than zero")
	}
	if c.Official.Interval <= 0 {
		return fmt.Errorf("official.interval must be greater than zero")
	}
	if c.History.Retention <= 0 {
		return fmt.Errorf("history.retention must be greater than zero")
	}
	if c.History.DedupInterval < 0 {
		return fmt.Errorf("history.dedup_interval cannot be negative")
	}
	if c.History.PruneInterval <= 0 {
		return fmt.Errorf("history.prune_interval must be greater than zero")
	}
	if c.Export.MaxDataPoints <= 0 {
		return fmt.Errorf("export.max_data_points must be greater than zero")
	}

	if c.Official.USDURL == "" {
		return fmt.Errorf("official.usd_url is required")
	}

	switch c.Official.EURMode {
	case "none":
	case "endpoint":
		if c.Official.EURURL == "" {
			return fmt.Errorf("official.eur_url is required when eur_mode is endpoint")
		}
	case "cross":
		if c.Official.CrossURL == "" {
			return fmt.Errorf("official.cross_url is required when eur_mode is cross")
		}
	default:
		return fmt.Errorf("official.eur_mode must be endpoint, cross, or none")
	}

	return nil
}

// ResolveMaxPoints returns either the CLI override or config default.
func (c *Config) ResolveMaxPoints(override int) int {
	if override > 0 {
		return override
	}
	return c.Export.MaxDataPoints
}
