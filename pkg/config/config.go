package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	MarketData struct {
		APIKey  string        `yaml:"api_key"`
		Timeout time.Duration `yaml:"timeout"`
		BarsTTL time.Duration `yaml:"bars_ttl"`
	} `yaml:"market_data"`
	Portfolio struct {
		StartingCash float64 `yaml:"starting_cash"`
		Store        string  `yaml:"store"` // redis, file, or memory
		FileDir      string  `yaml:"file_dir"`
	} `yaml:"portfolio"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	Backtest struct {
		InitialBalance float64 `yaml:"initial_balance"`
	} `yaml:"backtest"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("ALPHAVANTAGE_API_KEY"); v != "" {
		c.MarketData.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("PORTFOLIO_STORE"); v != "" {
		c.Portfolio.Store = v
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	switch c.Portfolio.Store {
	case "redis", "file", "memory":
	default:
		return fmt.Errorf("portfolio.store must be 'redis', 'file', or 'memory', got '%s'", c.Portfolio.Store)
	}
	if c.Portfolio.Store == "redis" && !c.Redis.Enabled {
		return fmt.Errorf("portfolio.store is 'redis' but redis is not enabled")
	}
	if c.Portfolio.Store == "file" && c.Portfolio.FileDir == "" {
		return fmt.Errorf("portfolio.file_dir is required for the file store")
	}
	return nil
}
