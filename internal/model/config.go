package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config is the complete vitalscan configuration
type Config struct {
	Upstream     UpstreamConfig     `mapstructure:"upstream" yaml:"upstream"`
	Normalize    NormalizeConfig    `mapstructure:"normalize" yaml:"normalize"`
	Cache        CacheConfig        `mapstructure:"cache" yaml:"cache"`
	Session      SessionConfig      `mapstructure:"session" yaml:"session"`
	Concurrency  ConcurrencyConfig  `mapstructure:"concurrency" yaml:"concurrency"`
	RateLimiting RateLimitingConfig `mapstructure:"rate_limiting" yaml:"rate_limiting"`
	Server       ServerConfig       `mapstructure:"server" yaml:"server"`
	Logging      LoggingConfig      `mapstructure:"logging" yaml:"logging"`
	LLM          LLMConfig          `mapstructure:"llm" yaml:"llm"`
	Output       OutputConfig       `mapstructure:"output" yaml:"output"`
}

// UpstreamConfig configures the assessment service and remote report fetches
type UpstreamConfig struct {
	BaseURL       string        `mapstructure:"base_url" yaml:"base_url"`
	AssessPath    string        `mapstructure:"assess_path" yaml:"assess_path"`
	Timeout       time.Duration `mapstructure:"timeout" yaml:"timeout"`
	UserAgent     string        `mapstructure:"user_agent" yaml:"user_agent"`
	MaxBodyBytes  int64         `mapstructure:"max_body_bytes" yaml:"max_body_bytes"`
	Retries       int           `mapstructure:"retries" yaml:"retries"`
	HTTPProxy     string        `mapstructure:"http_proxy" yaml:"http_proxy,omitempty"`
	HTTPSProxy    string        `mapstructure:"https_proxy" yaml:"https_proxy,omitempty"`
	NoProxy       string        `mapstructure:"no_proxy" yaml:"no_proxy,omitempty"`
	InsecureTLS   bool          `mapstructure:"insecure_tls" yaml:"insecure_tls"`
	RespectRobots bool          `mapstructure:"respect_robots" yaml:"respect_robots"`
}

// NormalizeConfig tunes the report normalizer
type NormalizeConfig struct {
	Fallbacks  FallbackConfig `mapstructure:"fallbacks" yaml:"fallbacks"`
	ClampRisks bool           `mapstructure:"clamp_risks" yaml:"clamp_risks"`
}

// FallbackConfig holds the values used when a structured report omits a field
type FallbackConfig struct {
	Heart        float64 `mapstructure:"heart" yaml:"heart"`
	Diabetes     float64 `mapstructure:"diabetes" yaml:"diabetes"`
	Hypertension float64 `mapstructure:"hypertension" yaml:"hypertension"`
	Obesity      float64 `mapstructure:"obesity" yaml:"obesity"`
	OverallScore float64 `mapstructure:"overall_score" yaml:"overall_score"`
}

// CacheConfig configures caching of upstream responses
type CacheConfig struct {
	Enabled   bool          `mapstructure:"enabled" yaml:"enabled"`
	Persist   bool          `mapstructure:"persist" yaml:"persist"` // opt-in disk layer under Dir
	Dir       string        `mapstructure:"dir" yaml:"dir"`
	MemoryTTL time.Duration `mapstructure:"memory_ttl" yaml:"memory_ttl"`
	DiskTTL   time.Duration `mapstructure:"disk_ttl" yaml:"disk_ttl"`
}

// SessionConfig configures the ephemeral results session store
type SessionConfig struct {
	TTL        time.Duration `mapstructure:"ttl" yaml:"ttl"`
	CookieName string        `mapstructure:"cookie_name" yaml:"cookie_name"`
}

// ConcurrencyConfig configures batch workers
type ConcurrencyConfig struct {
	Workers int `mapstructure:"workers" yaml:"workers"`
}

// RateLimitingConfig configures per-host request limits
type RateLimitingConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size" yaml:"burst_size"`
}

// ServerConfig configures the HTTP service
type ServerConfig struct {
	Addr            string        `mapstructure:"addr" yaml:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// LoggingConfig configures structured logging
type LoggingConfig struct {
	Level      string `mapstructure:"level" yaml:"level"`
	Format     string `mapstructure:"format" yaml:"format"` // console or json
	File       string `mapstructure:"file" yaml:"file,omitempty"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" yaml:"max_size_mb"`
	MaxBackups int    `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAgeDays int    `mapstructure:"max_age_days" yaml:"max_age_days"`
}

// LLMConfig configures the optional narrative generator
type LLMConfig struct {
	Provider      string `mapstructure:"provider" yaml:"provider"`
	Model         string `mapstructure:"model" yaml:"model"`
	APIKey        string `mapstructure:"api_key" yaml:"-"`
	BaseURL       string `mapstructure:"base_url" yaml:"base_url,omitempty"`
	Timeout       int    `mapstructure:"timeout" yaml:"timeout"` // seconds
	MaxTokens     int    `mapstructure:"max_tokens" yaml:"max_tokens"`
	StrictNumbers bool   `mapstructure:"strict_numbers" yaml:"strict_numbers"`
}

// OutputConfig configures rendering
type OutputConfig struct {
	Verbose       bool `mapstructure:"verbose" yaml:"verbose"`
	IncludeFooter bool `mapstructure:"include_footer" yaml:"include_footer"`
}

// DefaultFallbacks returns the fallback values used when structured input omits a field
func DefaultFallbacks() FallbackConfig {
	return FallbackConfig{
		Heart:        88.0,
		Diabetes:     37.0,
		Hypertension: 34.0,
		Obesity:      22.4,
		OverallScore: 48.1,
	}
}

// DefaultConfig returns the built-in configuration
func DefaultConfig() *Config {
	cacheDir := filepath.Join(os.TempDir(), "vitalscan-cache")
	if home, err := os.UserHomeDir(); err == nil {
		cacheDir = filepath.Join(home, ".vitalscan", "cache")
	}

	return &Config{
		Upstream: UpstreamConfig{
			BaseURL:       "http://localhost:5000",
			AssessPath:    "/api/assess",
			Timeout:       30 * time.Second,
			UserAgent:     "vitalscan/0.1 (+https://github.com/ppiankov/vitalscan)",
			MaxBodyBytes:  2_000_000,
			Retries:       3,
			RespectRobots: true,
		},
		Normalize: NormalizeConfig{
			Fallbacks: DefaultFallbacks(),
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       cacheDir,
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		Session: SessionConfig{
			TTL:        30 * time.Minute,
			CookieName: "vitalscan_session",
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 2,
			BurstSize:         5,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:      "info",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
			MaxAgeDays: 7,
		},
		LLM: LLMConfig{
			Timeout:       30,
			MaxTokens:     600,
			StrictNumbers: true,
		},
		Output: OutputConfig{
			IncludeFooter: true,
		},
	}
}
