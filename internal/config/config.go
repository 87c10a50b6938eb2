package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/restage/restage/internal/adapter"
	"github.com/restage/restage/internal/logger"
)

// FileConfig represents the top-level TOML structure:
//
//	[log]
//	level = "info"
//	dir = "/var/log/restage"
//
//	[store]
//	dsn = "/Users/me/.restage/workspaces"
//
//	[[history]]
//	dsn = "sqlite:///Users/me/.restage/history.db"
//
//	[server]
//	listen = "127.0.0.1:8080"
//	base_path = "/api"
//
//	[bridge]
//	timeout = "30s"
//	exclude = ["Finder", "System Events"]
//
//	[capture]
//	concurrency = 4
//
//	[restore]
//	concurrency = 4
//	ready_initial = "500ms"
//	ready_max = "4s"
//	ready_timeout = "12s"
//	overall_timeout = "2m"
//
//	[[adapters]]
//	match = "Safari"
//	family = "tabs"
type FileConfig struct {
	Log      *LogConfig     `toml:"log" mapstructure:"log"`
	Store    StoreConfig    `toml:"store" mapstructure:"store"`
	History  []HistoryEntry `toml:"history" mapstructure:"history"`
	Server   ServerConfig   `toml:"server" mapstructure:"server"`
	Bridge   BridgeConfig   `toml:"bridge" mapstructure:"bridge"`
	Capture  CaptureConfig  `toml:"capture" mapstructure:"capture"`
	Restore  RestoreConfig  `toml:"restore" mapstructure:"restore"`
	Adapters []AdapterEntry `toml:"adapters" mapstructure:"adapters"`
}

type LogConfig struct {
	Level      string `toml:"level" mapstructure:"level"`
	Dir        string `toml:"dir" mapstructure:"dir"`
	MaxSizeMB  int    `toml:"max_size_mb" mapstructure:"max_size_mb"`
	MaxBackups int    `toml:"max_backups" mapstructure:"max_backups"`
	MaxAgeDays int    `toml:"max_age_days" mapstructure:"max_age_days"`
	Compress   bool   `toml:"compress" mapstructure:"compress"`
}

type StoreConfig struct {
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

type HistoryEntry struct {
	DSN string `toml:"dsn" mapstructure:"dsn"`
}

type ServerConfig struct {
	Listen   string `toml:"listen" mapstructure:"listen"`
	BasePath string `toml:"base_path" mapstructure:"base_path"`
}

type BridgeConfig struct {
	Timeout time.Duration `toml:"timeout" mapstructure:"timeout"`
	Exclude []string      `toml:"exclude" mapstructure:"exclude"`
}

type CaptureConfig struct {
	Concurrency int `toml:"concurrency" mapstructure:"concurrency"`
}

type RestoreConfig struct {
	Concurrency    int           `toml:"concurrency" mapstructure:"concurrency"`
	ReadyInitial   time.Duration `toml:"ready_initial" mapstructure:"ready_initial"`
	ReadyMax       time.Duration `toml:"ready_max" mapstructure:"ready_max"`
	ReadyTimeout   time.Duration `toml:"ready_timeout" mapstructure:"ready_timeout"`
	OverallTimeout time.Duration `toml:"overall_timeout" mapstructure:"overall_timeout"`
}

// AdapterEntry binds an application identifier (or prefix when match
// ends with a dot) to a named adapter family.
type AdapterEntry struct {
	Match  string `toml:"match" mapstructure:"match"`
	Family string `toml:"family" mapstructure:"family"`
}

// LoadConfig reads and validates a TOML config file.
func LoadConfig(path string) (*FileConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("toml")
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	var fc FileConfig
	if err := v.Unmarshal(&fc); err != nil {
		return nil, err
	}
	for _, a := range fc.Adapters {
		if a.Match == "" {
			return nil, fmt.Errorf("adapter entry requires match")
		}
		if _, err := adapter.ForFamily(a.Family); err != nil {
			return nil, err
		}
	}
	return &fc, nil
}

// BuildRegistry returns the built-in registry extended with the
// configured adapter table.
func (fc *FileConfig) BuildRegistry() (*adapter.Registry, error) {
	reg := adapter.NewRegistry()
	for _, a := range fc.Adapters {
		if err := reg.RegisterFamily(a.Match, a.Family); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// LoggerConfig converts the [log] section for internal/logger.
func (fc *FileConfig) LoggerConfig() logger.Config {
	lc := logger.Config{}
	if fc.Log != nil {
		lc = logger.Config{
			Level:      fc.Log.Level,
			Dir:        fc.Log.Dir,
			MaxSizeMB:  fc.Log.MaxSizeMB,
			MaxBackups: fc.Log.MaxBackups,
			MaxAgeDays: fc.Log.MaxAgeDays,
			Compress:   fc.Log.Compress,
		}
	}
	return lc
}
