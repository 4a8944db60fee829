// Package config resolves server settings from an optional YAML file
// overlaid by command-line flags.
package config

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is read when -config is not given. A missing file is fine.
const DefaultPath = "armyroster.yaml"

// Config holds the resolved settings
type Config struct {
	Port               int
	DBPath             string
	DataDir            string
	LogLevel           string
	BaseURL            string
	Watch              bool
	DefaultPointsLimit float64
	NoKeyboard         bool
	ShowVersion        bool
}

// Default returns the settings used when neither file nor flags say otherwise
func Default() Config {
	return Config{
		Port:               8081,
		DBPath:             "roster.db",
		DataDir:            "data",
		LogLevel:           "info",
		Watch:              true,
		DefaultPointsLimit: 2000,
	}
}

// Addr returns the listen address
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// PublicURL returns the base URL used in share links
func (c Config) PublicURL() string {
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return fmt.Sprintf("http://localhost:%d", c.Port)
}

// FileConfig is the on-disk shape. Pointer fields distinguish unset from zero.
type FileConfig struct {
	Port               *int     `yaml:"port"`
	DB                 string   `yaml:"db"`
	DataDir            string   `yaml:"data_dir"`
	LogLevel           string   `yaml:"log_level"`
	BaseURL            string   `yaml:"base_url"`
	Watch              *bool    `yaml:"watch"`
	DefaultPointsLimit *float64 `yaml:"default_points_limit"`
}

type stringOpt struct {
	v   string
	set bool
}

func (o *stringOpt) String() string { return o.v }
func (o *stringOpt) Set(v string) error {
	o.v = strings.TrimSpace(v)
	o.set = true
	return nil
}

type intOpt struct {
	v   int
	set bool
}

func (o *intOpt) String() string { return strconv.Itoa(o.v) }
func (o *intOpt) Set(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return err
	}
	o.v = n
	o.set = true
	return nil
}

type boolOpt struct {
	v   bool
	set bool
}

func (o *boolOpt) String() string { return strconv.FormatBool(o.v) }
func (o *boolOpt) Set(v string) error {
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return err
	}
	o.v = b
	o.set = true
	return nil
}
func (o *boolOpt) IsBoolFlag() bool { return true }

// Load parses args, reads the config file and overlays the flags that were
// given explicitly. Usage output goes to usage.
func Load(args []string, usage io.Writer) (Config, error) {
	fs := flag.NewFlagSet("armyroster", flag.ContinueOnError)
	fs.SetOutput(usage)

	var (
		configPath stringOpt
		port       intOpt
		db         stringOpt
		dataDir    stringOpt
		logLevel   stringOpt
		baseURL    stringOpt
		noWatch    boolOpt
		noKeyboard boolOpt
		version    boolOpt
	)
	fs.Var(&configPath, "config", "path to config yaml (default "+DefaultPath+")")
	fs.Var(&port, "port", "HTTP server port (default 8081)")
	fs.Var(&db, "db", "SQLite database path (default \"roster.db\")")
	fs.Var(&dataDir, "data", "catalog and stat table directory (default \"data\")")
	fs.Var(&logLevel, "loglevel", "log level: debug, info, warn, error (default \"info\")")
	fs.Var(&baseURL, "baseurl", "public base URL used in share links")
	fs.Var(&noWatch, "nowatch", "do not reload the catalog when files change")
	fs.Var(&noKeyboard, "nokeyboard", "disable keyboard shortcuts")
	fs.Var(&version, "version", "show version and exit")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	cfg := Default()
	if version.set {
		cfg.ShowVersion = version.v
		return cfg, nil
	}

	path := configPath.v
	if path == "" {
		path = DefaultPath
	}
	fc, err := loadFileConfig(path, configPath.set)
	if err != nil {
		return Config{}, err
	}
	fc.apply(&cfg)

	if port.set {
		cfg.Port = port.v
	}
	if db.set {
		cfg.DBPath = db.v
	}
	if dataDir.set {
		cfg.DataDir = dataDir.v
	}
	if logLevel.set {
		cfg.LogLevel = logLevel.v
	}
	if baseURL.set {
		cfg.BaseURL = baseURL.v
	}
	if noWatch.set {
		cfg.Watch = !noWatch.v
	}
	cfg.NoKeyboard = noKeyboard.v

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (fc FileConfig) apply(cfg *Config) {
	if fc.Port != nil {
		cfg.Port = *fc.Port
	}
	if s := strings.TrimSpace(fc.DB); s != "" {
		cfg.DBPath = s
	}
	if s := strings.TrimSpace(fc.DataDir); s != "" {
		cfg.DataDir = s
	}
	if s := strings.TrimSpace(fc.LogLevel); s != "" {
		cfg.LogLevel = s
	}
	cfg.BaseURL = strings.TrimSpace(fc.BaseURL)
	if fc.Watch != nil {
		cfg.Watch = *fc.Watch
	}
	if fc.DefaultPointsLimit != nil {
		cfg.DefaultPointsLimit = *fc.DefaultPointsLimit
	}
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.DBPath == "" {
		return errors.New("missing database path")
	}
	if c.DefaultPointsLimit < 0 {
		return fmt.Errorf("default_points_limit must be non-negative, got %v", c.DefaultPointsLimit)
	}
	return nil
}

// loadFileConfig reads path. A missing file is only an error when the path
// was asked for explicitly.
func loadFileConfig(path string, required bool) (FileConfig, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("read config yaml %s: %w", path, err)
	}
	if len(bytes.TrimSpace(b)) == 0 {
		return FileConfig{}, nil
	}

	var fc FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil {
		return FileConfig{}, fmt.Errorf("parse config yaml %s: %w", path, err)
	}
	return fc, nil
}
