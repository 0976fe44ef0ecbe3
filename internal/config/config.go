// Package config loads the Embedding Oracle's configuration from a
// project's dot-directory: which external embedding backend to call
// (§4.4 treats the oracle as a swappable external collaborator). The
// RPC socket path and ignore rules stay hardcoded per §6.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/diffsec/codesearchd/internal/embedding"
)

// DotDir is the per-project configuration directory.
const DotDir = ".codesearchd"

// FileName is the config file's name within DotDir.
const FileName = "config.yaml"

// EmbeddingConfig mirrors embedding.Config with yaml tags for
// serialization.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`
	Model     string `yaml:"model,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty"`
	Dimension int    `yaml:"dimension,omitempty"`
}

// ToProviderConfig converts to the type embedding.NewProvider expects.
func (c EmbeddingConfig) ToProviderConfig() *embedding.Config {
	return &embedding.Config{
		Provider:  c.Provider,
		Model:     c.Model,
		Endpoint:  c.Endpoint,
		APIKeyEnv: c.APIKeyEnv,
		Dimension: c.Dimension,
	}
}

// Default returns the reference oracle's configuration (huggingface
// "BAAI/bge-small-en-v1.5", 384-dimensional, matching §3's
// "384 for the reference oracle").
func Default() EmbeddingConfig {
	d := embedding.DefaultConfig
	return EmbeddingConfig{
		Provider:  d.Provider,
		Model:     d.Model,
		APIKeyEnv: d.APIKeyEnv,
		Dimension: d.Dimension,
	}
}

// Load reads DotDir/FileName under root, or returns the default
// configuration if it does not exist.
func Load(root string) (EmbeddingConfig, error) {
	path := filepath.Join(root, DotDir, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return EmbeddingConfig{}, err
	}

	var cfg EmbeddingConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return EmbeddingConfig{}, err
	}
	if cfg.Provider == "" {
		return Default(), nil
	}
	return cfg, nil
}

// Save writes cfg to DotDir/FileName under root, creating the
// directory if needed.
func Save(root string, cfg EmbeddingConfig) error {
	dir := filepath.Join(root, DotDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, FileName), data, 0o644)
}
