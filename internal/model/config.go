package model

import "time"

// Config is the complete wastewise configuration
type Config struct {
	Detector     DetectorConfig     `yaml:"detector" mapstructure:"detector"`
	Classifier   ClassifierConfig   `yaml:"classifier" mapstructure:"classifier"`
	Pipeline     PipelineConfig     `yaml:"pipeline" mapstructure:"pipeline"`
	Ledger       LedgerConfig       `yaml:"ledger" mapstructure:"ledger"`
	Fetch        FetchConfig        `yaml:"fetch" mapstructure:"fetch"`
	HTTP         HTTPConfig         `yaml:"http" mapstructure:"http"`
	RateLimiting RateLimitConfig    `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	Logging      LoggingConfig      `yaml:"logging" mapstructure:"logging"`
	Server       ServerConfig       `yaml:"server" mapstructure:"server"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// DetectorConfig configures the remote multi-object detection service
type DetectorConfig struct {
	Endpoint  string        `yaml:"endpoint" mapstructure:"endpoint"` // Empty disables the detector
	Threshold int           `yaml:"threshold" mapstructure:"threshold"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// ClassifierConfig configures the single-label vision classifier
type ClassifierConfig struct {
	Provider string        `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, gemini, "" (disabled)
	Model    string        `yaml:"model" mapstructure:"model"`
	APIKey   string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL  string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout  time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// PipelineConfig tunes the classification orchestrator
type PipelineConfig struct {
	AdapterTimeout    time.Duration `yaml:"adapter_timeout" mapstructure:"adapter_timeout"`
	OverrideThreshold int           `yaml:"override_threshold" mapstructure:"override_threshold"`
	VerdictCacheTTL   time.Duration `yaml:"verdict_cache_ttl" mapstructure:"verdict_cache_ttl"`
	LoaderRetryAfter  time.Duration `yaml:"loader_retry_after" mapstructure:"loader_retry_after"`
}

// LedgerConfig selects and configures the history persistence substrate
type LedgerConfig struct {
	Backend  string `yaml:"backend" mapstructure:"backend"` // memory, disk, redis, sqlite, postgres, s3
	Path     string `yaml:"path" mapstructure:"path"`       // disk directory or sqlite file
	Key      string `yaml:"key" mapstructure:"key"`
	Cap      int    `yaml:"cap" mapstructure:"cap"`
	RedisURL string `yaml:"redis_url,omitempty" mapstructure:"redis_url"`
	DSN      string `yaml:"dsn,omitempty" mapstructure:"dsn"`
	Bucket   string `yaml:"bucket,omitempty" mapstructure:"bucket"`
	Region   string `yaml:"region,omitempty" mapstructure:"region"`
	Prefix   string `yaml:"prefix,omitempty" mapstructure:"prefix"`
}

// FetchConfig configures image downloads for URL inputs
type FetchConfig struct {
	UserAgent     string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBytes      int64         `yaml:"max_bytes" mapstructure:"max_bytes"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RespectRobots bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
}

// HTTPConfig holds outbound proxy settings
type HTTPConfig struct {
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// RateLimitConfig bounds outbound requests per host
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// LoggingConfig configures slog
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`   // debug, info, warn, error
	Format string `yaml:"format" mapstructure:"format"` // text, json
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr           string   `yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
	MaxUploadBytes int64    `yaml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Detector: DetectorConfig{
			Endpoint:  "",
			Threshold: 35,
			Timeout:   10 * time.Second,
		},
		Classifier: ClassifierConfig{
			Provider: "",
			Timeout:  30 * time.Second,
		},
		Pipeline: PipelineConfig{
			AdapterTimeout:    8 * time.Second,
			OverrideThreshold: 60,
			VerdictCacheTTL:   10 * time.Minute,
			LoaderRetryAfter:  30 * time.Second,
		},
		Ledger: LedgerConfig{
			Backend: "disk",
			Path:    "~/.wastewise/ledger",
			Key:     "history",
			Cap:     1000,
			Region:  "us-east-1",
			Prefix:  "wastewise/",
		},
		Fetch: FetchConfig{
			UserAgent:     "Wastewise/0.1 (+https://github.com/ppiankov/wastewise)",
			MaxBytes:      20 << 20,
			Timeout:       30 * time.Second,
			RespectRobots: true,
		},
		RateLimiting: RateLimitConfig{
			RequestsPerSecond: 5,
			BurstSize:         5,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
			MaxUploadBytes: 20 << 20,
		},
	}
}
