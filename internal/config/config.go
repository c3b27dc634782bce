package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/newthinker/premia/internal/core"
	"github.com/spf13/viper"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Screen  ScreenConfig  `mapstructure:"screen"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Export  ExportConfig  `mapstructure:"export"`
	Advisor AdvisorConfig `mapstructure:"advisor"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type ServerConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	JobTTLHours int    `mapstructure:"job_ttl_hours"`
	MaxJobs     int    `mapstructure:"max_jobs"`
}

// ScreenConfig holds the default scan parameters; the CLI and API can
// override each one per run.
type ScreenConfig struct {
	Strategy        string   `mapstructure:"strategy"`
	MoneynessPct    float64  `mapstructure:"moneyness_pct"`
	MinPrice        float64  `mapstructure:"min_price"`
	MaxPrice        float64  `mapstructure:"max_price"`
	Tickers         []string `mapstructure:"tickers"`
	ExpirationCount int      `mapstructure:"expiration_count"`
}

type GatewayConfig struct {
	Provider string        `mapstructure:"provider"`
	BaseURL  string        `mapstructure:"base_url"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// ExportConfig selects the CSV export sink
type ExportConfig struct {
	Type     string   `mapstructure:"type"` // "localfs" or "s3"
	Path     string   `mapstructure:"path"` // For localfs
	Filename string   `mapstructure:"filename"`
	S3       S3Config `mapstructure:"s3"` // For S3
}

type S3Config struct {
	Bucket    string `mapstructure:"bucket"`
	Endpoint  string `mapstructure:"endpoint"`
	Region    string `mapstructure:"region"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Prefix    string `mapstructure:"prefix"`
}

// AdvisorConfig holds the optional LLM commentary settings
type AdvisorConfig struct {
	Enabled  bool         `mapstructure:"enabled"`
	Provider string       `mapstructure:"provider"`
	TopRows  int          `mapstructure:"top_rows"`
	Claude   ClaudeConfig `mapstructure:"claude"`
	OpenAI   OpenAIConfig `mapstructure:"openai"`
}

type ClaudeConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type OpenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Load reads configuration from file
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)

	// Support environment variable overrides
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	// Expand environment variables in string values
	for _, key := range v.AllKeys() {
		val := v.GetString(key)
		if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
			envKey := strings.TrimSuffix(strings.TrimPrefix(val, "${"), "}")
			v.Set(key, os.Getenv(envKey))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}

// Defaults returns a config with sensible defaults: the magnificent
// seven plus the two big index ETFs, 5% moneyness, eight weekly
// expirations.
func Defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8080,
			JobTTLHours: 1,
			MaxJobs:     100,
		},
		Screen: ScreenConfig{
			Strategy:     string(core.StrategyCashSecuredPut),
			MoneynessPct: 5,
			MinPrice:     50,
			MaxPrice:     500,
			Tickers: []string{
				"AAPL", "MSFT", "NVDA", "AMZN", "GOOGL", "META", "TSLA",
				"SPY", "QQQ",
			},
			ExpirationCount: 8,
		},
		Gateway: GatewayConfig{
			Provider: "yahoo",
			Timeout:  10 * time.Second,
		},
		Export: ExportConfig{
			Type:     "localfs",
			Path:     ".",
			Filename: "options_analysis.csv",
		},
		Advisor: AdvisorConfig{
			Enabled: false,
			TopRows: 10,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Path:    "/metrics",
		},
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("port must be between 1 and 65535, got %d", c.Server.Port))
	}

	if _, err := core.ParseStrategy(c.Screen.Strategy); err != nil {
		return core.WrapError(core.ErrConfigInvalid, err)
	}
	if !core.ValidMoneyness(c.Screen.MoneynessPct) {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("moneyness_pct must be one of %v, got %v", core.MoneynessLevels, c.Screen.MoneynessPct))
	}
	if c.Screen.MinPrice > c.Screen.MaxPrice {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("min_price %.2f above max_price %.2f", c.Screen.MinPrice, c.Screen.MaxPrice))
	}
	if c.Screen.ExpirationCount < 1 {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("expiration_count must be positive, got %d", c.Screen.ExpirationCount))
	}

	switch c.Export.Type {
	case "localfs", "s3":
	default:
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("export type must be localfs or s3, got %q", c.Export.Type))
	}
	if c.Export.Type == "s3" && c.Export.S3.Bucket == "" {
		return core.WrapError(core.ErrConfigInvalid,
			fmt.Errorf("s3 export requires a bucket"))
	}

	if c.Advisor.Enabled {
		switch c.Advisor.Provider {
		case "claude", "openai":
		default:
			return core.WrapError(core.ErrConfigInvalid,
				fmt.Errorf("advisor provider must be claude or openai, got %q", c.Advisor.Provider))
		}
	}

	return nil
}
