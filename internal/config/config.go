// Package config loads application configuration and bootstraps logging.
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
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Client   ClientConfig   `yaml:"client" mapstructure:"client"`
	Baubuddy BaubuddyConfig `yaml:"baubuddy" mapstructure:"baubuddy"`
	CSV      CSVConfig      `yaml:"csv" mapstructure:"csv"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// ServerConfig configures the vehicle upload server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// ClientConfig configures the report client command.
type ClientConfig struct {
	ServerURL string `yaml:"server_url" mapstructure:"server_url"`
}

// BaubuddyConfig holds the authoritative source endpoint and credentials.
type BaubuddyConfig struct {
	BaseURL   string `yaml:"base_url" mapstructure:"base_url"`
	Username  string `yaml:"username" mapstructure:"username"`
	Password  string `yaml:"password" mapstructure:"password"`
	AuthKey   string `yaml:"auth_key" mapstructure:"auth_key"`
	LabelRate int    `yaml:"label_rate" mapstructure:"label_rate"`
}

// CSVConfig configures input parsing. Delimiter and charset are fixed
// configuration, never sniffed from the data.
type CSVConfig struct {
	Delimiter string `yaml:"delimiter" mapstructure:"delimiter"`
	Charset   string `yaml:"charset" mapstructure:"charset"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// DelimiterRune returns the configured delimiter as a rune, defaulting to ';'.
func (c CSVConfig) DelimiterRune() rune {
	for _, r := range c.Delimiter {
		return r
	}
	return ';'
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("FLEET")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("server.port", 8000)
	v.SetDefault("client.server_url", "http://localhost:8000")
	v.SetDefault("baubuddy.base_url", "https://api.baubuddy.de")
	v.SetDefault("baubuddy.username", "365")
	v.SetDefault("baubuddy.password", "1")
	v.SetDefault("baubuddy.auth_key", "Basic QVBJX0V4cGxvcmVyOjEyMzQ1NmlzQUxhbWVQYXNz")
	v.SetDefault("baubuddy.label_rate", 10)
	v.SetDefault("csv.delimiter", ";")
	v.SetDefault("csv.charset", "utf-8")
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
