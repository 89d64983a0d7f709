package flylsh

import (
	"fmt"
	"math/rand"
	"os"

	"gonum.org/v1/gonum/mat"
	"gopkg.in/yaml.v3"
)

// Config holds the construction parameters of an index, typically read from
// a YAML file.
type Config struct {
	HashLength    int     `yaml:"hash_length"`
	SamplingRatio float64 `yaml:"sampling_ratio"`
	EmbeddingSize int     `yaml:"embedding_size"`
	// Workers <= 0 means runtime.NumCPU().
	Workers int `yaml:"workers"`
	// Seed 0 seeds from the clock.
	Seed int64 `yaml:"seed"`
}

func DefaultConfig() Config {
	return Config{
		HashLength:    16,
		SamplingRatio: 0.1,
		EmbeddingSize: 64,
	}
}

func (c Config) Validate() error {
	if c.HashLength <= 0 {
		return &RangeError{Name: "hash_length", Value: float64(c.HashLength), Min: 1, Max: float64(maxInt)}
	}
	if !(c.SamplingRatio > 0 && c.SamplingRatio <= 1) {
		return &RangeError{Name: "sampling_ratio", Value: c.SamplingRatio, Min: 0, Max: 1}
	}
	if c.EmbeddingSize < c.HashLength {
		return &DimensionMismatchError{What: "embedding_size below hash_length", Expected: c.HashLength, Actual: c.EmbeddingSize}
	}
	return nil
}

// LoadConfig reads a YAML file on top of DefaultConfig and validates it.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// NewFromConfig builds an index from cfg. opts are applied after the options
// derived from cfg and take precedence.
func NewFromConfig(data mat.Matrix, cfg Config, opts ...Option) (*FlyIndex, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	all := []Option{WithWorkers(cfg.Workers)}
	if cfg.Seed != 0 {
		all = append(all, WithRand(rand.New(rand.NewSource(cfg.Seed))))
	}
	all = append(all, opts...)
	return New(data, cfg.HashLength, cfg.SamplingRatio, cfg.EmbeddingSize, all...)
}
