// Package config loads the broker's configuration through a layered
// viper.Viper: built-in defaults, an optional config file, then
// TESSERACT_-prefixed environment variables, each layer overriding the last.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/dlworhd/meier/internal/storage"
)

// Config is the broker's fully-resolved configuration.
type Config struct {
	Server struct {
		BindAddr       string `mapstructure:"bind_addr"`
		MaxConnections int    `mapstructure:"max_connections"`
		MaxFrameLength int    `mapstructure:"max_frame_length"`
	} `mapstructure:"server"`

	Storage struct {
		MaxTopics   int    `mapstructure:"max_topics"`
		MaxMessages int    `mapstructure:"max_messages"`
		MaxBytes    int    `mapstructure:"max_bytes"`
		Compression string `mapstructure:"compression"`
	} `mapstructure:"storage"`

	Logging struct {
		Level string `mapstructure:"level"`
		File  string `mapstructure:"file"`
	} `mapstructure:"logging"`

	Metrics struct {
		Addr    string `mapstructure:"addr"`
		Enabled bool   `mapstructure:"enabled"`
	} `mapstructure:"metrics"`
}

// Load builds a Config from defaults, optionally overlaid by the file at
// path (ignored if path is empty and no config file is found in the usual
// search locations), then by TESSERACT_-prefixed environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TESSERACT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", path, err)
		}
	} else {
		v.SetConfigName("tesseract")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/tesseract")
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, fmt.Errorf("config: reading default config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.bind_addr", "127.0.0.1:2369")
	v.SetDefault("server.max_connections", 1000)
	v.SetDefault("server.max_frame_length", 10*1024*1024)

	v.SetDefault("storage.max_topics", 100)
	v.SetDefault("storage.max_messages", 10000)
	v.SetDefault("storage.max_bytes", 1024*1024)
	v.SetDefault("storage.compression", "none")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.file", "")

	v.SetDefault("metrics.addr", "127.0.0.1:9369")
	v.SetDefault("metrics.enabled", true)
}

func (c *Config) validate() error {
	if c.Server.BindAddr == "" {
		return fmt.Errorf("config: server.bind_addr must not be empty")
	}
	if c.Storage.MaxTopics <= 0 {
		return fmt.Errorf("config: storage.max_topics must be positive")
	}
	if c.Storage.MaxMessages <= 0 {
		return fmt.Errorf("config: storage.max_messages must be positive")
	}
	if c.Storage.MaxBytes <= 0 {
		return fmt.Errorf("config: storage.max_bytes must be positive")
	}
	if _, ok := storage.ParseCompressionKind(c.Storage.Compression); !ok {
		return fmt.Errorf("config: storage.compression %q is not one of none|snappy|lz4|zstd", c.Storage.Compression)
	}
	return nil
}
