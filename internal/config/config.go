package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/guregu/null/v6"
	"github.com/newthinker/valuator/internal/analysis"
	"github.com/newthinker/valuator/internal/core"
	"github.com/newthinker/valuator/internal/storage/archive"
	"github.com/spf13/viper"
)

type Config struct {
	Valuation    ValuationConfig    `mapstructure:"valuation"`
	AlphaVantage AlphaVantageConfig `mapstructure:"alphavantage"`
	Archive      ArchiveConfig      `mapstructure:"archive"`
	Server       ServerConfig       `mapstructure:"server"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Batch        BatchConfig        `mapstructure:"batch"`
}

// ValuationConfig holds the market and model assumptions.
type ValuationConfig struct {
	RiskFreeRate     float64  `mapstructure:"risk_free_rate"`
	MarketReturn     float64  `mapstructure:"market_return"`
	TerminalGrowth   float64  `mapstructure:"terminal_growth"`
	Years            int      `mapstructure:"years"`
	GrowthOverride   *float64 `mapstructure:"growth_override"`
	FallbackGrowth   float64  `mapstructure:"fallback_growth"`
	FallbackDiscount float64  `mapstructure:"fallback_discount"`
}

// Params converts the section into analysis parameters.
func (v ValuationConfig) Params() analysis.Params {
	return analysis.Params{
		RiskFreeRate:     v.RiskFreeRate,
		MarketReturn:     v.MarketReturn,
		TerminalGrowth:   v.TerminalGrowth,
		Years:            v.Years,
		GrowthOverride:   null.FloatFromPtr(v.GrowthOverride),
		FallbackGrowth:   v.FallbackGrowth,
		FallbackDiscount: v.FallbackDiscount,
	}
}

type AlphaVantageConfig struct {
	APIKey  string        `mapstructure:"api_key"`
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
	// Record keeps raw payloads in the archive for offline replay.
	Record bool `mapstructure:"record"`
}

type ArchiveConfig struct {
	Type string   `mapstructure:"type"` // "", "localfs" or "s3"
	Path string   `mapstructure:"path"` // For localfs
	S3   S3Config `mapstructure:"s3"`   // For S3
}

// Backend converts the section into the archive factory config.
func (a ArchiveConfig) Backend() archive.Config {
	return archive.Config{
		Type: a.Type,
		Path: a.Path,
		S3: archive.S3Config{
			Bucket:    a.S3.Bucket,
			Endpoint:  a.S3.Endpoint,
			Region:    a.S3.Region,
			AccessKey: a.S3.AccessKey,
			SecretKey: a.S3.SecretKey,
			Prefix:    a.S3.Prefix,
		},
	}
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	APIKey      string `mapstructure:"api_key"`
	JobTTLHours int    `mapstructure:"job_ttl_hours"`
	MaxJobs     int    `mapstructure:"max_jobs"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// BatchConfig bounds concurrent ticker analyses.
type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

// envBindings map secrets to conventional variable names.
var envBindings = map[string]string{
	"alphavantage.api_key":  "ALPHAVANTAGE_API_KEY",
	"server.api_key":        "VALUATOR_API_KEY",
	"archive.s3.access_key": "AWS_ACCESS_KEY_ID",
	"archive.s3.secret_key": "AWS_SECRET_ACCESS_KEY",
}

// Load reads configuration from file on top of Defaults. An empty path
// loads defaults and environment only.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, env := range envBindings {
		if err := v.BindEnv(key, strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, core.WrapError(core.ErrConfigMissing, fmt.Errorf("reading config: %w", err))
		}
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	cfg := Defaults()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unmarshaling config: %w", err))
	}

	return cfg, nil
}

// Defaults returns a config with sensible defaults
func Defaults() *Config {
	return &Config{
		Valuation: ValuationConfig{
			RiskFreeRate:     analysis.DefaultRiskFreeRate,
			MarketReturn:     analysis.DefaultMarketReturn,
			TerminalGrowth:   analysis.DefaultTerminalGrowth,
			Years:            analysis.DefaultYears,
			FallbackGrowth:   analysis.DefaultFallbackGrowth,
			FallbackDiscount: analysis.DefaultFallbackDiscount,
		},
		AlphaVantage: AlphaVantageConfig{
			BaseURL: "https://www.alphavantage.co",
			Timeout: 30 * time.Second,
		},
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			JobTTLHours: 1,
			MaxJobs:     100,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
		Batch: BatchConfig{
			Workers: analysis.DefaultWorkers,
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	// Server validation
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	// Valuation validation
	if err := c.Valuation.Params().Validate(); err != nil {
		return err
	}

	if c.Batch.Workers < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("batch.workers cannot be negative, got %d", c.Batch.Workers))
	}
	if c.AlphaVantage.Timeout < 0 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("alphavantage.timeout cannot be negative, got %s", c.AlphaVantage.Timeout))
	}

	// Archive validation - if type set, check its settings exist
	switch c.Archive.Type {
	case archive.TypeNone:
		if c.AlphaVantage.Record {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("alphavantage.record requires an archive"))
		}
	case archive.TypeLocalFS:
		if c.Archive.Path == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive.path required when type is localfs"))
		}
	case archive.TypeS3:
		if c.Archive.S3.Bucket == "" {
			return core.WrapError(core.ErrConfigMissing,
				fmt.Errorf("archive.s3.bucket required when type is s3"))
		}
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("unknown archive type %q", c.Archive.Type))
	}

	return nil
}
