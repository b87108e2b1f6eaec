package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Pipeline  PipelineConfig
	Analytics AnalyticsConfig
	Insight   InsightConfig
	Datasets  DatasetsConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `validate:"oneof=debug info warn error"`
	Format string `validate:"oneof=json console"`
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout      time.Duration
	WriteTimeout     time.Duration
	IdleTimeout      time.Duration
	MaxHeaderBytes   int
	MaxBodySize      int64
	CORSAllowOrigins []string
	CORSAllowMethods []string
	CORSAllowHeaders []string
	TrustedProxies   []string
}

// PipelineConfig holds the cleaning thresholds.
type PipelineConfig struct {
	OutlierMultiplier float64 `validate:"gt=0"` // IQR fence multiplier
	DeliveryCapDays   float64 `validate:"gt=0"` // implausible delivery times are capped here
	PlausibleAgeMin   float64 `validate:"gt=0,ltfield=PlausibleAgeMax"`
	PlausibleAgeMax   float64 `validate:"gt=0"`
}

// AnalyticsConfig holds the analytical engine thresholds.
type AnalyticsConfig struct {
	MinSample          int `validate:"min=1"` // results over fewer rows are flagged low-confidence
	BlindThresholdDays int `validate:"min=1"` // review age past which a warehouse is blind
}

// InsightConfig holds the external insight generator settings. An empty
// API key disables the generator; everything else keeps working.
type InsightConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DatasetColumns maps logical fields to the CSV headers of one dataset.
// Header names are deployment configuration, never hardcoded in the
// cleaning logic.
type DatasetColumns map[string]string

// DatasetsConfig holds per-dataset header overrides. Empty maps keep the
// standard export headers.
type DatasetsConfig struct {
	Inventory    DatasetColumns
	Transactions DatasetColumns
	Feedback     DatasetColumns
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with TLX_ prefix (e.g., TLX_INSIGHT_API_KEY)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("TLX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:      v.GetDuration("http.read_timeout"),
			WriteTimeout:     v.GetDuration("http.write_timeout"),
			IdleTimeout:      v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes:   v.GetInt("http.max_header_bytes"),
			MaxBodySize:      v.GetInt64("http.max_body_size"),
			CORSAllowOrigins: v.GetStringSlice("http.cors_allow_origins"),
			CORSAllowMethods: v.GetStringSlice("http.cors_allow_methods"),
			CORSAllowHeaders: v.GetStringSlice("http.cors_allow_headers"),
			TrustedProxies:   v.GetStringSlice("http.trusted_proxies"),
		},
		Pipeline: PipelineConfig{
			OutlierMultiplier: v.GetFloat64("pipeline.outlier_multiplier"),
			DeliveryCapDays:   v.GetFloat64("pipeline.delivery_cap_days"),
			PlausibleAgeMin:   v.GetFloat64("pipeline.plausible_age_min"),
			PlausibleAgeMax:   v.GetFloat64("pipeline.plausible_age_max"),
		},
		Analytics: AnalyticsConfig{
			MinSample:          v.GetInt("analytics.min_sample"),
			BlindThresholdDays: v.GetInt("analytics.blind_threshold_days"),
		},
		Insight: InsightConfig{
			APIKey:      v.GetString("insight.api_key"),
			BaseURL:     v.GetString("insight.base_url"),
			Model:       v.GetString("insight.model"),
			Timeout:     v.GetDuration("insight.timeout"),
			MaxAttempts: v.GetInt("insight.max_attempts"),
			BaseDelay:   v.GetDuration("insight.base_delay"),
			MaxDelay:    v.GetDuration("insight.max_delay"),
		},
		Datasets: DatasetsConfig{
			Inventory:    v.GetStringMapString("datasets.inventory"),
			Transactions: v.GetStringMapString("datasets.transactions"),
			Feedback:     v.GetStringMapString("datasets.feedback"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "techlogistics-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 30 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.HTTP.MaxBodySize == 0 {
		cfg.HTTP.MaxBodySize = 50 << 20 // 50MB, uploads carry three CSV files
	}
	if len(cfg.HTTP.CORSAllowMethods) == 0 {
		cfg.HTTP.CORSAllowMethods = []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"}
	}
	if len(cfg.HTTP.CORSAllowHeaders) == 0 {
		cfg.HTTP.CORSAllowHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
	}
	if cfg.Pipeline.OutlierMultiplier == 0 {
		cfg.Pipeline.OutlierMultiplier = 3.0
	}
	if cfg.Pipeline.DeliveryCapDays == 0 {
		cfg.Pipeline.DeliveryCapDays = 90
	}
	if cfg.Pipeline.PlausibleAgeMin == 0 {
		cfg.Pipeline.PlausibleAgeMin = 18
	}
	if cfg.Pipeline.PlausibleAgeMax == 0 {
		cfg.Pipeline.PlausibleAgeMax = 100
	}
	if cfg.Analytics.MinSample == 0 {
		cfg.Analytics.MinSample = 30
	}
	if cfg.Analytics.BlindThresholdDays == 0 {
		cfg.Analytics.BlindThresholdDays = 180
	}
	if cfg.Insight.BaseURL == "" {
		cfg.Insight.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Insight.Model == "" {
		cfg.Insight.Model = "gpt-4o-mini"
	}
	if cfg.Insight.Timeout == 0 {
		cfg.Insight.Timeout = 60 * time.Second
	}
	if cfg.Insight.MaxAttempts == 0 {
		cfg.Insight.MaxAttempts = 3
	}
	if cfg.Insight.BaseDelay == 0 {
		cfg.Insight.BaseDelay = 500 * time.Millisecond
	}
	if cfg.Insight.MaxDelay == 0 {
		cfg.Insight.MaxDelay = 4 * time.Second
	}
}

var structValidator = validator.New()

// validate checks the struct rules and the cross-field production
// requirements
func (c *Config) validate() error {
	if err := structValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			f := verrs[0]
			return fmt.Errorf("invalid config: %s fails rule %q (value %v)", f.Namespace(), f.Tag(), f.Value())
		}
		return fmt.Errorf("invalid config: %w", err)
	}

	if c.App.Env == "production" {
		for _, origin := range c.HTTP.CORSAllowOrigins {
			if origin == "*" {
				return fmt.Errorf("cors_allow_origins cannot be '*' in production (use specific origins)")
			}
		}
		if c.Log.Format == "console" {
			// JSON logs are required by the log shipper in production.
			return fmt.Errorf("log.format must be 'json' in production")
		}
	}

	return nil
}
