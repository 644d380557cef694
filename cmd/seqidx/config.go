package main

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/hupe1980/seqidx"
	"github.com/hupe1980/seqidx/codec"
)

// Config holds the settings shared by all commands. Values come from flags,
// then SEQIDX_* environment variables, then the optional config file.
type Config struct {
	LogLevel    string `mapstructure:"log-level"`
	Codec       string `mapstructure:"codec"`
	Output      string `mapstructure:"output"`
	Interval    uint32 `mapstructure:"interval"`
	Workers     int    `mapstructure:"workers"`
	Dedup       bool   `mapstructure:"dedup"`
	SkipInvalid bool   `mapstructure:"skip-invalid"`
	SelectIndex bool   `mapstructure:"select-index"`
	Limit       int    `mapstructure:"limit"`
	JSON        bool   `mapstructure:"json"`
}

// commonFlags registers the flags every command accepts.
func commonFlags(fs *pflag.FlagSet) {
	fs.String("config", "", "config file (yaml, toml or json)")
	fs.String("log-level", "warn", "log level: debug, info, warn, error")
	fs.String("codec", "", "header codec: msgpack or json (build default msgpack, open reads it from the file)")
}

// loadConfig merges flags, environment and config file into a Config.
func loadConfig(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SEQIDX")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}
	if path, _ := fs.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) logger() (*seqidx.Logger, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return nil, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return seqidx.NewTextLogger(level), nil
}

// codec returns the configured codec, or nil if none was set.
func (c *Config) codec() (codec.Codec, error) {
	if c.Codec == "" {
		return nil, nil
	}
	cd, ok := codec.ByName(c.Codec)
	if !ok {
		return nil, errors.New("unknown codec " + c.Codec)
	}
	return cd, nil
}

// openOptions translates the config into index options.
func (c *Config) openOptions() ([]seqidx.Option, error) {
	logger, err := c.logger()
	if err != nil {
		return nil, err
	}
	cd, err := c.codec()
	if err != nil {
		return nil, err
	}
	opts := []seqidx.Option{seqidx.WithLogger(logger), seqidx.WithCodec(cd)}
	if c.SelectIndex {
		opts = append(opts, seqidx.WithSelectIndex())
	}
	return opts, nil
}
