package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/goliatone/go-tplforge/internal/logger"
)

const (
	fileName  = "tplforge"
	envPrefix = "TPLFORGE"
)

// Keys shared by flags, env vars and the config file.
const (
	KeyTemplatesDir = "templates-dir"
	KeyExtension    = "extension"
	KeyLogLevel     = "log-level"
	KeyCreateDirs   = "create-dirs"
	KeyPerm         = "perm"
	KeyGlobals      = "globals"
)

// Config holds the resolved CLI configuration.
type Config struct {
	// TemplatesDir loads templates from disk instead of the embedded bundle.
	TemplatesDir string `mapstructure:"templates-dir"`
	// Extension is appended to template names that lack it.
	Extension string `mapstructure:"extension"`
	LogLevel  string `mapstructure:"log-level"`
	// CreateDirs lets generate create missing parent directories.
	CreateDirs bool `mapstructure:"create-dirs"`
	// Perm is the octal permission for generated files, e.g. "0644".
	Perm string `mapstructure:"perm"`
	// Globals are available to every template.
	Globals map[string]any `mapstructure:"globals"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyLogLevel, logger.DefaultLevel)
	v.SetDefault(KeyCreateDirs, true)
	v.SetDefault(KeyPerm, "0644")
}

// Load reads configuration into a Config. An explicit configFile must exist;
// otherwise tplforge.{yaml,json,toml} is searched in the working directory
// and in $HOME/.config/tplforge, and its absence is not an error.
// Environment variables (TPLFORGE_LOG_LEVEL, ...) override the file.
func Load(v *viper.Viper, configFile string) (Config, error) {
	SetDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(fileName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", fileName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("config: read: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: decode: %w", err)
	}
	return cfg, nil
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error

	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, fmt.Errorf("%s: %w", KeyLogLevel, err))
	}
	if _, err := c.FileMode(); err != nil {
		errs = append(errs, err)
	}
	if c.TemplatesDir != "" {
		info, err := os.Stat(c.TemplatesDir)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("%s: %w", KeyTemplatesDir, err))
		case !info.IsDir():
			errs = append(errs, fmt.Errorf("%s: %s is not a directory", KeyTemplatesDir, c.TemplatesDir))
		}
	}

	return errors.Join(errs...)
}

// FileMode parses Perm.
func (c Config) FileMode() (fs.FileMode, error) {
	raw := strings.TrimSpace(c.Perm)
	if raw == "" {
		return 0o644, nil
	}
	perm, err := strconv.ParseUint(raw, 8, 32)
	if err != nil || perm > 0o777 {
		return 0, fmt.Errorf("%s: invalid octal permission %q", KeyPerm, c.Perm)
	}
	return fs.FileMode(perm), nil
}
