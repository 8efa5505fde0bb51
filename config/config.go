package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"chartdesk/backtest"
	"chartdesk/feed"
)

const DefaultPath = "configs/config.yaml"

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port string `yaml:"port"`
	} `yaml:"server"`
	Provider struct {
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
		Retry   int           `yaml:"retry"`
		Trace   bool          `yaml:"trace"`
	} `yaml:"provider"`
	Fetch struct {
		Timeout time.Duration `yaml:"timeout"`
		MinRows int           `yaml:"min_rows"`
	} `yaml:"fetch"`
	Symbols              []string         `yaml:"symbols"`
	Bootstrap            *bool            `yaml:"bootstrap"`
	BootstrapConcurrency int              `yaml:"bootstrap_concurrency"`
	Backtest             backtest.Options `yaml:"backtest"`
	Log                  struct {
		Level string `yaml:"level"`
	} `yaml:"log"`
}

// Path : $CONFIG_PATH 가 있으면 그 값, 없으면 DefaultPath
func Path() string {
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		return v
	}
	return DefaultPath
}

// Load reads config from a YAML file, then applies environment variable overrides and defaults.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// Environment variable overrides
	if v := os.Getenv("CHARTDESK_PROVIDER_URL"); v != "" {
		cfg.Provider.BaseURL = v
	}
	if v := os.Getenv("CHARTDESK_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("CHARTDESK_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("CHARTDESK_SYMBOLS"); v != "" {
		cfg.Symbols = splitSymbols(v)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == "" {
		c.Server.Port = ":8080"
	}
	if !strings.HasPrefix(c.Server.Port, ":") && !strings.Contains(c.Server.Port, ":") {
		c.Server.Port = ":" + c.Server.Port
	}
	if c.Provider.BaseURL == "" {
		c.Provider.BaseURL = "http://localhost:3000"
	}
	if c.Provider.Timeout == 0 {
		c.Provider.Timeout = 10 * time.Second
	}
	if c.Fetch.Timeout == 0 {
		c.Fetch.Timeout = feed.DefaultFetchTimeout
	}
	if c.Fetch.MinRows == 0 {
		c.Fetch.MinRows = feed.DefaultMinRows
	}
	if len(c.Symbols) == 0 {
		c.Symbols = []string{"AAPL", "GOOGL", "AMZN"}
	}
	if c.Bootstrap == nil {
		enabled := true
		c.Bootstrap = &enabled
	}
	if c.BootstrapConcurrency == 0 {
		c.BootstrapConcurrency = 4
	}
	if c.Backtest.InitialCapital == 0 {
		c.Backtest.InitialCapital = backtest.DefaultInitialCapital
	}
	if c.Backtest.LotSize == 0 {
		c.Backtest.LotSize = backtest.DefaultLotSize
	}
	if c.Backtest.Commission == 0 {
		c.Backtest.Commission = backtest.DefaultCommission
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// BootstrapEnabled : 시작 시 심볼 초기 로딩 여부
func (c *Config) BootstrapEnabled() bool {
	return c.Bootstrap == nil || *c.Bootstrap
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Provider.BaseURL == "" {
		return fmt.Errorf("provider.base_url is required")
	}
	if c.Provider.Retry < 0 {
		return fmt.Errorf("provider.retry must not be negative")
	}
	if c.Fetch.Timeout <= 0 {
		return fmt.Errorf("fetch.timeout must be positive")
	}
	if c.Fetch.MinRows < 0 {
		return fmt.Errorf("fetch.min_rows must not be negative")
	}
	if c.BootstrapConcurrency < 0 {
		return fmt.Errorf("bootstrap_concurrency must not be negative")
	}
	if err := c.Backtest.Validate(); err != nil {
		return fmt.Errorf("backtest: %w", err)
	}
	return nil
}

func splitSymbols(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}
