package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gofhir/phenomapper/pkg/logger"
	"github.com/gofhir/phenomapper/terminology"
)

// envPrefix prefixes environment overrides, e.g. PHENOMAPPER_COMPLIANCE.
const envPrefix = "PHENOMAPPER"

// config resolves settings from flags, PHENOMAPPER_* variables, a .env
// file and an optional config file, in that order of precedence.
type config struct {
	v *viper.Viper
}

func newConfig() *config {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("log-level", "info")
	v.SetDefault("log-format", "console")
	return &config{v: v}
}

func (c *config) registerPersistent(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.String("config", "", "config file (yaml, json or toml)")
	f.String("env-file", ".env", "dotenv file to load before reading the environment")
	f.String("log-level", "info", "log level: debug, info, warn, error")
	f.String("log-format", "console", "log format: console, json")
	f.String("terminology", "", "directory of FHIR R4 CodeSystem-*.json files to load")
}

// load binds the flags of cmd and applies the logging settings.
func (c *config) load(cmd *cobra.Command) error {
	if err := c.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	envFile := c.v.GetString("env-file")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	if path := c.v.GetString("config"); path != "" {
		c.v.SetConfigFile(path)
		if err := c.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	level, err := logger.ParseLevel(c.v.GetString("log-level"))
	if err != nil {
		return err
	}
	logger.SetLevel(level)
	switch strings.ToLower(c.v.GetString("log-format")) {
	case "json":
		logger.SetOutput(os.Stderr)
	case "console", "":
		logger.SetOutput(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	default:
		return fmt.Errorf("unknown log format %q", c.v.GetString("log-format"))
	}
	return nil
}

// registry returns the built-in code systems plus any loaded from the
// terminology directory.
func (c *config) registry() (*terminology.Registry, error) {
	reg := terminology.NewBuiltinRegistry()
	dir := c.v.GetString("terminology")
	if dir == "" {
		return reg, nil
	}
	stats, err := reg.LoadFromDirectory(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load terminology from %s: %w", dir, err)
	}
	logger.Info("loaded %d code systems from %s (%d errors)", stats.CodeSystemsLoaded, dir, stats.Errors)
	return reg, nil
}
