// Package config loads typed configuration from the environment, with an
// optional .env file exported first. Every component declares its own config
// struct and loads it under its own prefix.
package config

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

var (
	envFile   string
	flagSetup sync.Once
)

// MustNew loads T under the given env prefix and panics on failure. Meant for
// process startup, where a missing required value should stop the boot.
func MustNew[T any](prefix string) *T {
	conf, err := New[T](prefix)
	if err != nil {
		panic(fmt.Sprintf("config: load %q: %v", prefix, err))
	}
	return conf
}

// New loads T under the given env prefix. An explicit -env flag names the
// dotenv file; otherwise ./.env is used when present.
func New[T any](prefix string) (*T, error) {
	path := envFlagPath()
	switch {
	case path != "":
		if err := exportDotenv(path); err != nil {
			return nil, fmt.Errorf("config: export %s: %w", path, err)
		}
	default:
		if err := exportDotenvIfExists(".env"); err != nil {
			return nil, fmt.Errorf("config: export .env: %w", err)
		}
	}

	var conf T
	if err := envconfig.Process(prefix, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

func envFlagPath() string {
	flagSetup.Do(func() {
		if flag.Lookup("env") == nil {
			flag.StringVar(&envFile, "env", "", "path to .env file")
		}
		if !flag.Parsed() {
			flag.Parse()
		}
	})
	return strings.TrimSpace(envFile)
}

func exportDotenvIfExists(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return nil
	}
	return exportDotenv(path)
}

// exportDotenv reads the file with viper and promotes every key into the
// process environment so envconfig can see it.
func exportDotenv(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return err
	}

	for key, value := range v.AllSettings() {
		if err := os.Setenv(strings.ToUpper(key), fmt.Sprint(value)); err != nil {
			return err
		}
	}
	return nil
}
