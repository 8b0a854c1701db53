// Package config loads application configuration from file and environment.
package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	BestBuy    BestBuyConfig    `yaml:"bestbuy" mapstructure:"bestbuy"`
	ScraperAPI ScraperAPIConfig `yaml:"scraperapi" mapstructure:"scraperapi"`
	Ebay       EbayConfig       `yaml:"ebay" mapstructure:"ebay"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Summary    SummaryConfig    `yaml:"summary" mapstructure:"summary"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// BestBuyConfig holds Best Buy reviews API settings.
type BestBuyConfig struct {
	APIKey      string `yaml:"api_key" mapstructure:"api_key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	PageSize    int    `yaml:"page_size" mapstructure:"page_size"`
	PageDelayMS int    `yaml:"page_delay_ms" mapstructure:"page_delay_ms"`
}

// ScraperAPIConfig holds the rendering proxy settings used by the eBay tiers.
type ScraperAPIConfig struct {
	Key         string `yaml:"key" mapstructure:"key"`
	BaseURL     string `yaml:"base_url" mapstructure:"base_url"`
	Retries     int    `yaml:"retries" mapstructure:"retries"`
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// EbayConfig configures the multi-tier eBay acquisition pipeline.
type EbayConfig struct {
	MaxPages int `yaml:"max_pages" mapstructure:"max_pages"`
}

// AnthropicConfig holds Anthropic API settings for the summarizer backend.
type AnthropicConfig struct {
	Key   string `yaml:"key" mapstructure:"key"`
	Model string `yaml:"model" mapstructure:"model"`
}

// SummaryConfig bounds summarization model cost.
type SummaryConfig struct {
	Disabled      bool `yaml:"disabled" mapstructure:"disabled"`
	MaxReviews    int  `yaml:"max_reviews" mapstructure:"max_reviews"`
	MaxChars      int  `yaml:"max_chars" mapstructure:"max_chars"`
	ChunkSize     int  `yaml:"chunk_size" mapstructure:"chunk_size"`
	FallbackChars int  `yaml:"fallback_chars" mapstructure:"fallback_chars"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("REVIEWPULSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "reviewpulse.db")
	v.SetDefault("bestbuy.api_key", "")
	v.SetDefault("bestbuy.base_url", "https://api.bestbuy.com/v1")
	v.SetDefault("bestbuy.page_size", 10)
	v.SetDefault("bestbuy.page_delay_ms", 1000)
	v.SetDefault("scraperapi.key", "")
	v.SetDefault("scraperapi.base_url", "https://api.scraperapi.com")
	v.SetDefault("scraperapi.retries", 3)
	v.SetDefault("scraperapi.timeout_secs", 60)
	v.SetDefault("ebay.max_pages", 2)
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("summary.disabled", false)
	v.SetDefault("summary.max_reviews", 150)
	v.SetDefault("summary.max_chars", 120000)
	v.SetDefault("summary.chunk_size", 2500)
	v.SetDefault("summary.fallback_chars", 1500)
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
