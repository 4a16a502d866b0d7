package cmd

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/sot/chandra-ecf/ecf"
)

// defaultDataDir is used when neither --data-dir, the config file nor
// $ECF_DATA_DIR name a directory.
const defaultDataDir = "data"

// defaultAddr is the listen address of `ecf serve`.
const defaultAddr = ":8080"

// Config represents the YAML config file.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	DataDir string            `yaml:"data_dir"`
	Shapes  map[string]string `yaml:"shapes"` // shape -> FITS file, overrides data_dir
	Serve   ServeConfig       `yaml:"serve"`
}

// ServeConfig configures the HTTP server.
type ServeConfig struct {
	Addr string `yaml:"addr"`
}

// loadConfig parses a YAML config file with strict field checking, so typos
// are reported instead of silently ignored.
func loadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %q: %w", path, err)
	}
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %q: %w", path, err)
	}
	return cfg, nil
}

// resolveConfig merges the config file, the environment and explicitly set
// flags. Flags win over the file, the file wins over $ECF_DATA_DIR.
func resolveConfig(cmd *cobra.Command) (Config, error) {
	var cfg Config
	if configPath != "" {
		var err error
		if cfg, err = loadConfig(configPath); err != nil {
			return Config{}, err
		}
	}
	for name := range cfg.Shapes {
		if _, err := ecf.ParseShape(name); err != nil {
			return Config{}, fmt.Errorf("config %q: %w", configPath, err)
		}
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = dataDir
	}
	if cfg.DataDir == "" {
		cfg.DataDir = os.Getenv("ECF_DATA_DIR")
	}
	if cfg.DataDir == "" {
		cfg.DataDir = defaultDataDir
	}
	if cfg.Serve.Addr == "" {
		cfg.Serve.Addr = defaultAddr
	}
	return cfg, nil
}
