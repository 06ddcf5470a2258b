// Package config loads tmpl settings from flags, the environment, an optional
// .env file and an optional .tmpl.yaml.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Keys understood by Load. Dotted keys map to TMPL_* variables with
// underscores, e.g. serve.backend is TMPL_SERVE_BACKEND.
const (
	KeyServer       = "server"
	KeyTimeout      = "timeout"
	KeyLogLevel     = "log.level"
	KeyLogFormat    = "log.format"
	KeyLogFile      = "log.file"
	KeyServeAddr    = "serve.addr"
	KeyServeBackend = "serve.backend"
	KeyServePath    = "serve.path"
	KeyServeDSN     = "serve.dsn"
	KeyServeOrigins = "serve.allow_origins"
)

// Defaults shared with flag definitions.
const (
	DefaultServer  = "http://127.0.0.1:3000"
	DefaultTimeout = 10 * time.Second
)

// Config is the resolved configuration.
type Config struct {
	Server  string        `json:"server"`
	Timeout time.Duration `json:"timeout"`
	Log     LogConfig     `json:"log"`
	Serve   ServeConfig   `json:"serve"`
}

// LogConfig selects where and how records are written.
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	File   string `json:"file"`
}

// ServeConfig configures the persistence service.
type ServeConfig struct {
	Addr         string   `json:"addr"`
	Backend      string   `json:"backend"`
	Path         string   `json:"path"`
	DSN          string   `json:"dsn"`
	AllowOrigins []string `json:"allow_origins"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyServer, DefaultServer)
	v.SetDefault(KeyTimeout, DefaultTimeout)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "text")
	v.SetDefault(KeyLogFile, "")
	v.SetDefault(KeyServeAddr, "0.0.0.0:3000")
	v.SetDefault(KeyServeBackend, "diskv")
	v.SetDefault(KeyServePath, "~/.tmpl.db")
	v.SetDefault(KeyServeDSN, "")
	v.SetDefault(KeyServeOrigins, []string{"*"})
}

// Load resolves the configuration through v, or the global viper when v is
// nil. A .env file in the working directory is applied to the environment
// first; a missing .env or .tmpl.yaml is not an error.
func Load(v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.GetViper()
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: load .env: %w", err)
	}

	SetDefaults(v)
	v.SetConfigName(".tmpl") // .yaml is implicit
	v.SetEnvPrefix("TMPL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("TMPL_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")
	if home, err := homedir.Dir(); err == nil {
		v.AddConfigPath(home)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read config file: %w", err)
		}
	}

	path, err := homedir.Expand(v.GetString(KeyServePath))
	if err != nil {
		return nil, fmt.Errorf("config: expand %s: %w", KeyServePath, err)
	}

	return &Config{
		Server:  v.GetString(KeyServer),
		Timeout: v.GetDuration(KeyTimeout),
		Log: LogConfig{
			Level:  v.GetString(KeyLogLevel),
			Format: v.GetString(KeyLogFormat),
			File:   v.GetString(KeyLogFile),
		},
		Serve: ServeConfig{
			Addr:         v.GetString(KeyServeAddr),
			Backend:      strings.ToLower(v.GetString(KeyServeBackend)),
			Path:         path,
			DSN:          v.GetString(KeyServeDSN),
			AllowOrigins: origins(v.GetStringSlice(KeyServeOrigins)),
		},
	}, nil
}

// origins accepts both a YAML list and a comma separated env value.
func origins(in []string) []string {
	var out []string
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}
