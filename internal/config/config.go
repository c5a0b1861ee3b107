// Package config loads qrsheet settings from defaults, an optional YAML file
// and QRSHEET_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/hejijunhao/qrsheet/internal/logging"
	"github.com/hejijunhao/qrsheet/internal/output"
)

// Version is the binary version, overridden at build time with -ldflags.
var Version = "dev"

// EnvPrefix is prepended to every environment variable name.
const EnvPrefix = "QRSHEET"

// Config holds all qrsheet configuration.
type Config struct {
	Output OutputConfig `mapstructure:"output"`
	Sheets SheetsConfig `mapstructure:"sheets"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
}

// OutputConfig controls how scans are rendered locally.
type OutputConfig struct {
	Format string `mapstructure:"format"` // "json" or "csv"
	Pretty bool   `mapstructure:"pretty"`
	File   string `mapstructure:"file"` // append scans here when set
	// FileMaxBytes rotates File once it would grow past this size. 0 disables rotation.
	FileMaxBytes int64 `mapstructure:"file_max_bytes"`
}

// SheetsConfig holds the spreadsheet endpoint settings.
type SheetsConfig struct {
	Endpoint string            `mapstructure:"endpoint"`
	Timeout  time.Duration     `mapstructure:"timeout"`
	Retries  int               `mapstructure:"retries"`
	Headers  map[string]string `mapstructure:"headers"`
}

// ServerConfig holds HTTP service settings.
type ServerConfig struct {
	Addr            string `mapstructure:"addr"`
	MaxPayloadBytes int64  `mapstructure:"max_payload_bytes"`
	AsyncBuffer     int    `mapstructure:"async_buffer"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Output: OutputConfig{Format: string(output.FormatJSON)},
		Sheets: SheetsConfig{Timeout: 10 * time.Second, Retries: 3},
		Server: ServerConfig{Addr: ":8080", MaxPayloadBytes: 64 << 10, AsyncBuffer: 256},
		Log:    LogConfig{Level: "info"},
	}
}

// Load reads configuration. path names an optional YAML file; when empty,
// only defaults and the environment apply. A named file that cannot be read
// is an error.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The endpoint keeps its name from the original web deployment.
	if err := v.BindEnv("sheets.endpoint", EnvPrefix+"_SHEETS_ENDPOINT", "VITE_SHEETS_ENDPOINT"); err != nil {
		return Config{}, fmt.Errorf("config: bind env: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("output.format", d.Output.Format)
	v.SetDefault("output.pretty", d.Output.Pretty)
	v.SetDefault("output.file", d.Output.File)
	v.SetDefault("output.file_max_bytes", d.Output.FileMaxBytes)
	v.SetDefault("sheets.endpoint", d.Sheets.Endpoint)
	v.SetDefault("sheets.timeout", d.Sheets.Timeout)
	v.SetDefault("sheets.retries", d.Sheets.Retries)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.max_payload_bytes", d.Server.MaxPayloadBytes)
	v.SetDefault("server.async_buffer", d.Server.AsyncBuffer)
	v.SetDefault("log.level", d.Log.Level)
}

// Validate checks the configuration and returns every problem found.
func (c Config) Validate() error {
	var errs []error

	if _, err := output.ParseFormat(c.Output.Format); err != nil {
		errs = append(errs, fmt.Errorf("output.format: %w", err))
	}
	if c.Output.FileMaxBytes < 0 {
		errs = append(errs, fmt.Errorf("output.file_max_bytes must be >= 0, got %d", c.Output.FileMaxBytes))
	}
	if c.Sheets.Endpoint != "" {
		u, err := url.Parse(c.Sheets.Endpoint)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Errorf("sheets.endpoint: %q is not an http(s) URL", c.Sheets.Endpoint))
		}
	}
	if c.Sheets.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("sheets.timeout must be positive, got %v", c.Sheets.Timeout))
	}
	if c.Sheets.Retries < 0 {
		errs = append(errs, fmt.Errorf("sheets.retries must be >= 0, got %d", c.Sheets.Retries))
	}
	if c.Server.MaxPayloadBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_payload_bytes must be positive, got %d", c.Server.MaxPayloadBytes))
	}
	if c.Server.AsyncBuffer <= 0 {
		errs = append(errs, fmt.Errorf("server.async_buffer must be positive, got %d", c.Server.AsyncBuffer))
	}
	if !logging.KnownLevel(c.Log.Level) {
		errs = append(errs, fmt.Errorf("log.level: unknown level %q", c.Log.Level))
	}

	return errors.Join(errs...)
}
