package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration. It is constructed once in main
// and passed by reference into each component; nothing in this package caches
// process-global state, so tests can build as many instances as they need.
type Config struct {
	Server  ServerConfig
	Model   ModelConfig
	Extract ExtractConfig
	Export  ExportConfig
	Email   EmailConfig
	Log     LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// ModelConfig holds vision model provider settings.
type ModelConfig struct {
	APIKey        string `mapstructure:"api_key"`
	ModelOverride string `mapstructure:"model_override"`
	Endpoint      string `mapstructure:"endpoint"`
	TimeoutSecs   int    `mapstructure:"timeout_secs"`
	Mock          bool   `mapstructure:"mock"`
}

// ExtractConfig holds extraction validation settings.
type ExtractConfig struct {
	CodePattern   string  `mapstructure:"code_pattern"`
	MinConfidence float64 `mapstructure:"min_confidence"`
	MaxFileBytes  int64   `mapstructure:"max_file_bytes"`
}

// ExportConfig holds export artifact settings.
type ExportConfig struct {
	Format string `mapstructure:"format"` // "csv" or "xlsx"
}

// EmailConfig holds email delivery settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"` // "ses" or "noop"
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
	ToAddress   string `mapstructure:"to_address"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from environment variables with the REGSCAN_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("REGSCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "120s")
	v.SetDefault("server.environment", "development")

	// Model defaults
	v.SetDefault("model.api_key", "")
	v.SetDefault("model.model_override", "")
	v.SetDefault("model.endpoint", "https://api.anthropic.com")
	v.SetDefault("model.timeout_secs", 120)
	v.SetDefault("model.mock", false)

	// Extraction defaults
	v.SetDefault("extract.code_pattern", `^\d{5}$`)
	v.SetDefault("extract.min_confidence", 0.6)
	v.SetDefault("extract.max_file_bytes", 4_718_592) // 4.5MB

	// Export defaults
	v.SetDefault("export.format", "csv")

	// Email defaults
	v.SetDefault("email.provider", "ses")
	v.SetDefault("email.region", "ap-northeast-2")
	v.SetDefault("email.from_address", "")
	v.SetDefault("email.from_name", "regscan")
	v.SetDefault("email.to_address", "")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":            "REGSCAN_SERVER_PORT",
		"server.read_timeout":    "REGSCAN_SERVER_READ_TIMEOUT",
		"server.write_timeout":   "REGSCAN_SERVER_WRITE_TIMEOUT",
		"server.environment":     "REGSCAN_SERVER_ENVIRONMENT",
		"model.api_key":          "REGSCAN_MODEL_API_KEY",
		"model.model_override":   "REGSCAN_MODEL_MODEL_OVERRIDE",
		"model.endpoint":         "REGSCAN_MODEL_ENDPOINT",
		"model.timeout_secs":     "REGSCAN_MODEL_TIMEOUT_SECS",
		"model.mock":             "REGSCAN_MODEL_MOCK",
		"extract.code_pattern":   "REGSCAN_EXTRACT_CODE_PATTERN",
		"extract.min_confidence": "REGSCAN_EXTRACT_MIN_CONFIDENCE",
		"extract.max_file_bytes": "REGSCAN_EXTRACT_MAX_FILE_BYTES",
		"export.format":          "REGSCAN_EXPORT_FORMAT",
		"email.provider":         "REGSCAN_EMAIL_PROVIDER",
		"email.region":           "REGSCAN_EMAIL_REGION",
		"email.from_address":     "REGSCAN_EMAIL_FROM_ADDRESS",
		"email.from_name":        "REGSCAN_EMAIL_FROM_NAME",
		"email.to_address":       "REGSCAN_EMAIL_TO_ADDRESS",
		"log.level":              "REGSCAN_LOG_LEVEL",
		"log.format":             "REGSCAN_LOG_FORMAT",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if REGSCAN_SERVER_PORT
	// is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("REGSCAN_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Model = ModelConfig{
		APIKey:        v.GetString("model.api_key"),
		ModelOverride: v.GetString("model.model_override"),
		Endpoint:      v.GetString("model.endpoint"),
		TimeoutSecs:   v.GetInt("model.timeout_secs"),
		Mock:          v.GetBool("model.mock"),
	}
	cfg.Extract = ExtractConfig{
		CodePattern:   v.GetString("extract.code_pattern"),
		MinConfidence: v.GetFloat64("extract.min_confidence"),
		MaxFileBytes:  v.GetInt64("extract.max_file_bytes"),
	}
	cfg.Export = ExportConfig{
		Format: v.GetString("export.format"),
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
		ToAddress:   v.GetString("email.to_address"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	return cfg, nil
}

// Validate fails fast on configuration the service cannot start without.
// Called once at startup, before any request-specific work.
func (c *Config) Validate() error {
	if !c.Model.Mock && c.Model.APIKey == "" {
		return fmt.Errorf("model.api_key is required unless mock mode is enabled")
	}
	if _, err := regexp.Compile(c.Extract.CodePattern); err != nil {
		return fmt.Errorf("extract.code_pattern is not a valid regexp: %w", err)
	}
	if c.Extract.MinConfidence < 0 || c.Extract.MinConfidence > 1 {
		return fmt.Errorf("extract.min_confidence must be within [0,1], got %v", c.Extract.MinConfidence)
	}
	switch c.Export.Format {
	case "csv", "xlsx":
	default:
		return fmt.Errorf("export.format must be csv or xlsx, got %q", c.Export.Format)
	}
	switch c.Email.Provider {
	case "ses":
		if c.Email.FromAddress == "" || c.Email.ToAddress == "" {
			return fmt.Errorf("email.from_address and email.to_address are required for the ses provider")
		}
	case "noop":
	default:
		return fmt.Errorf("unknown email provider: %s", c.Email.Provider)
	}
	return nil
}
