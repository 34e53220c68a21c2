package main

import (
	"os"

	"github.com/pelletier/go-toml"
	"github.com/randomouscrap98/pacgotools/pac"
)

const DefaultConfigFile = "pacgotools.toml"

// Settings that can live in a config file instead of being passed every time.
// Command line flags always win over these.
type Config struct {
	OutputDir string            `toml:"output_dir"`
	Mmap      bool              `toml:"mmap"`
	Preview   pac.PreviewConfig `toml:"preview"`
}

func DefaultConfig() *Config {
	config := Config{
		OutputDir: pac.DefaultOutputDir,
	}
	config.Preview.ReasonableDefaults()
	return &config
}

// Load the toml config at path. A missing file is fine (you just get the
// defaults), a broken one is not.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config, nil
	}
	tree, err := toml.LoadFile(path)
	if err != nil {
		return nil, err
	}
	if err := tree.Unmarshal(config); err != nil {
		return nil, err
	}
	if config.OutputDir == "" {
		config.OutputDir = pac.DefaultOutputDir
	}
	config.Preview.ReasonableDefaults()
	return config, nil
}
