// Package config resolves client settings.
//
// Sources are applied in order, later ones winning: built-in defaults, the
// YAML file (<home>/config.yaml or -config), FRIDGE_* environment variables,
// and command-line flags.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/naveenspark/fridge/internal/logging"
	"github.com/naveenspark/fridge/pkg/client"
)

const DefaultAPIURL = "http://localhost:8080"

type Config struct {
	APIURL      string        `yaml:"api_url"`
	ConnectPath string        `yaml:"connect_path"`
	HTTPTimeout time.Duration `yaml:"http_timeout"`
	Home        string        `yaml:"home"`
	LogLevel    string        `yaml:"log_level"`
	HTTPDebug   bool          `yaml:"http_debug"`
	MetricsAddr string        `yaml:"metrics_addr"`
}

// Default returns the built-in settings. Home is ~/.fridge, or .fridge in
// the working directory when there is no home directory.
func Default() Config {
	home := ".fridge"
	if dir, err := os.UserHomeDir(); err == nil {
		home = filepath.Join(dir, ".fridge")
	}
	return Config{
		APIURL:      DefaultAPIURL,
		ConnectPath: client.DefaultConnectPath,
		HTTPTimeout: 30 * time.Second,
		Home:        home,
		LogLevel:    "info",
	}
}

func (c Config) StatePath() string { return filepath.Join(c.Home, "state.db") }
func (c Config) LogPath() string   { return filepath.Join(c.Home, "fridge.log") }

func (c Config) Validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid api url %q", c.APIURL)
	}
	if !strings.HasPrefix(c.ConnectPath, "/") {
		return fmt.Errorf("connect path %q must start with /", c.ConnectPath)
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("http timeout must be positive, got %s", c.HTTPTimeout)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Load resolves the configuration from args (without the program name) and
// getenv. It returns the arguments left after flags, i.e. the subcommand.
func Load(args []string, getenv func(string) string) (Config, []string, error) {
	fs := flag.NewFlagSet("fridge", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	apiURL := fs.String("api", "", "API base URL")
	configPath := fs.String("config", "", "path to config.yaml")
	debug := fs.Bool("debug", false, "log HTTP traffic at debug level")
	if err := fs.Parse(args); err != nil {
		return Config{}, nil, fmt.Errorf("config.Load: %w", err)
	}

	cfg := Default()
	if home := getenv("FRIDGE_HOME"); home != "" {
		cfg.Home = home
	}

	path, explicit := *configPath, *configPath != ""
	if path == "" {
		path = filepath.Join(cfg.Home, "config.yaml")
	}
	if err := readFile(path, &cfg); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return Config{}, nil, fmt.Errorf("config.Load: %w", err)
		}
	}

	if err := applyEnv(&cfg, getenv); err != nil {
		return Config{}, nil, fmt.Errorf("config.Load: %w", err)
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "api":
			cfg.APIURL = *apiURL
		case "debug":
			cfg.HTTPDebug = *debug
			if *debug {
				cfg.LogLevel = "debug"
			}
		}
	})

	cfg.APIURL = strings.TrimRight(cfg.APIURL, "/")
	if err := cfg.Validate(); err != nil {
		return Config{}, nil, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, fs.Args(), nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config, getenv func(string) string) error {
	if v := getenv("FRIDGE_API_URL"); v != "" {
		cfg.APIURL = v
	}
	if v := getenv("FRIDGE_CONNECT_PATH"); v != "" {
		cfg.ConnectPath = v
	}
	if v := getenv("FRIDGE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := getenv("FRIDGE_METRICS_ADDR"); v != "" {
		cfg.MetricsAddr = v
	}
	if v := getenv("FRIDGE_HTTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("FRIDGE_HTTP_TIMEOUT: %w", err)
		}
		cfg.HTTPTimeout = d
	}
	if v := getenv("FRIDGE_HTTP_DEBUG"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("FRIDGE_HTTP_DEBUG: %w", err)
		}
		cfg.HTTPDebug = b
	}
	return nil
}
