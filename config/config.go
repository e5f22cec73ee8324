package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Buffer  BufferConfig  `yaml:"buffer"`
	System  SystemConfig  `yaml:"system"`
}

type StorageConfig struct {
	Dir string `yaml:"dir"` // directory holding heap files, index files and the catalog
}

type BufferConfig struct {
	PoolSize  int `yaml:"pool_size"`
	ReplacerK int `yaml:"replacer_k"`
}

type SystemConfig struct {
	Debug bool `yaml:"debug"`
}

func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Dir: "faharasa_data",
		},
		Buffer: BufferConfig{
			PoolSize:  64,
			ReplacerK: 2,
		},
	}
}

// Load overlays the YAML file at configPath on the defaults. An empty
// path falls back to faharasa.yaml in the working directory, and a
// missing file just yields the defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	paths := []string{configPath}
	if configPath == "" {
		paths = []string{"faharasa.yaml"}
	}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			continue
		}

		if err := yaml.Unmarshal(data, cfg); err != nil {
			return cfg, err
		}
		break
	}

	return cfg, nil
}
