// Package embedding implements the Embedding Oracle (§4.4): a pure
// batched function text(s) -> fixed-dimensional float32 vector(s).
// The only backend wired is the reference oracle: Hugging Face's
// Inference API serving "BAAI/bge-small-en-v1.5", 384-dimensional,
// matching the dimension the original Rust source's
// project_repository.rs hardcodes for its sqlite-vec `chunks` table.
package embedding

import (
	"context"
	"fmt"
	"os"
	"strconv"
)

// Provider is the interface the chunk-embedding pipeline depends on.
type Provider interface {
	// Name returns the provider name
	Name() string
	// Embed generates an embedding for a single text
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedBatch generates embeddings for multiple texts
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	// Dimension returns the embedding dimension
	Dimension() int
	// Close releases any resources
	Close() error
}

// Config configures the embedding oracle.
type Config struct {
	// Provider names the backend. Only "huggingface" is implemented.
	Provider string
	// Model is the model name
	Model string
	// Endpoint is carried through from configuration; the Hugging Face
	// oracle does not read it and always calls the public Inference API URL.
	Endpoint string
	// APIKeyEnv is the environment variable name for the API key
	APIKeyEnv string
	// Dimension is the embedding dimension (if known)
	Dimension int
	// BatchSize is the maximum batch size for batch operations
	BatchSize int
}

// DefaultConfig is the reference oracle's configuration.
var DefaultConfig = &Config{
	Provider:  "huggingface",
	Model:     "BAAI/bge-small-en-v1.5",
	APIKeyEnv: "HF_API_KEY",
	Dimension: 384,
	BatchSize: 64,
}

// NewProvider constructs the embedding oracle from config, applying
// defaults for any zero-valued field and honoring the
// CODESEARCHD_PROVIDER_BATCH_SIZE override.
func NewProvider(config *Config) (Provider, error) {
	if config.Provider != "" && config.Provider != "huggingface" {
		return nil, fmt.Errorf("unknown embedding provider: %s", config.Provider)
	}

	merged := *config
	if merged.Model == "" {
		merged.Model = DefaultConfig.Model
	}
	if merged.APIKeyEnv == "" {
		merged.APIKeyEnv = DefaultConfig.APIKeyEnv
	}
	if merged.Dimension == 0 {
		merged.Dimension = DefaultConfig.Dimension
	}
	if merged.BatchSize == 0 {
		merged.BatchSize = DefaultConfig.BatchSize
	}
	if envVal := os.Getenv("CODESEARCHD_PROVIDER_BATCH_SIZE"); envVal != "" {
		if size, err := strconv.Atoi(envVal); err == nil && size > 0 {
			merged.BatchSize = size
		}
	}

	return newHuggingFaceOracle(&merged)
}

// NewProviderWithDefaults constructs the oracle using DefaultConfig.
func NewProviderWithDefaults() (Provider, error) {
	cfg := *DefaultConfig
	return NewProvider(&cfg)
}

// GetAPIKey retrieves an API key from the environment.
func GetAPIKey(envVar string) (string, error) {
	key := os.Getenv(envVar)
	if key == "" {
		return "", fmt.Errorf("environment variable %s not set", envVar)
	}
	return key, nil
}
