package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type ResolutionConfig struct {
	SimilarityThreshold float64 `toml:"similarity_threshold"`
	SemanticCutoff      float64 `toml:"semantic_cutoff"`
	PartialCutoff       float64 `toml:"partial_cutoff"`
}

type InferenceConfig struct {
	ConfidenceThreshold float64 `toml:"confidence_threshold"`
	TypeThreshold       float64 `toml:"type_threshold"`
	MaxPathDepth        int     `toml:"max_path_depth"`
	MaxPaths            int     `toml:"max_paths"`
	Commit              bool    `toml:"commit"`
}

type AnalysisConfig struct {
	Features      string  `toml:"features"` // "structural" or "embedding"
	Contamination float64 `toml:"contamination"`
	Clusters      int     `toml:"clusters"` // 0 estimates k
	Eps           float64 `toml:"eps"`
	MinPoints     int     `toml:"min_points"`
	Community     string  `toml:"community"` // "lpa" or "components"
	Seed          int64   `toml:"seed"`
}

type EmbeddingConfig struct {
	Dimension int    `toml:"embedding_dim"`
	CachePath string `toml:"cache_path"`
}

type MemgraphConfig struct {
	URI      string `toml:"uri"`
	User     string `toml:"user"`
	Password string `toml:"password"`
}

type Config struct {
	Resolution ResolutionConfig `toml:"resolution"`
	Inference  InferenceConfig  `toml:"inference"`
	Analysis   AnalysisConfig   `toml:"analysis"`
	Embedding  EmbeddingConfig  `toml:"embedding"`
	Memgraph   MemgraphConfig   `toml:"memgraph"`
}

func Default() *Config {
	return &Config{
		Resolution: ResolutionConfig{
			SimilarityThreshold: 0.8,
			SemanticCutoff:      0.8,
			PartialCutoff:       0.8,
		},
		Inference: InferenceConfig{
			ConfidenceThreshold: 0.5,
			TypeThreshold:       0.6,
			MaxPathDepth:        3,
			MaxPaths:            5,
		},
		Analysis: AnalysisConfig{
			Features:      "structural",
			Contamination: 0.1,
			Eps:           0.5,
			MinPoints:     3,
			Community:     "lpa",
			Seed:          42,
		},
		Embedding: EmbeddingConfig{Dimension: 100},
		Memgraph:  MemgraphConfig{URI: "bolt://localhost:7687"},
	}
}

// Load reads a TOML file on top of the defaults, so omitted keys keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	cfg := Default()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse TOML: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides the Memgraph connection settings from MEMGRAPH_URI,
// MEMGRAPH_USER and MEMGRAPH_PASSWORD when they are set.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("MEMGRAPH_URI"); v != "" {
		c.Memgraph.URI = v
	}
	if v := os.Getenv("MEMGRAPH_USER"); v != "" {
		c.Memgraph.User = v
	}
	if v := os.Getenv("MEMGRAPH_PASSWORD"); v != "" {
		c.Memgraph.Password = v
	}
}

// Validate reports every out-of-range option at once.
func (c *Config) Validate() error {
	var problems []string
	unit := func(name string, v float64) {
		if v < 0 || v > 1 {
			problems = append(problems, fmt.Sprintf("%s must be in [0,1], got %v", name, v))
		}
	}
	unit("resolution.similarity_threshold", c.Resolution.SimilarityThreshold)
	unit("resolution.semantic_cutoff", c.Resolution.SemanticCutoff)
	unit("resolution.partial_cutoff", c.Resolution.PartialCutoff)
	unit("inference.confidence_threshold", c.Inference.ConfidenceThreshold)
	unit("inference.type_threshold", c.Inference.TypeThreshold)
	unit("analysis.contamination", c.Analysis.Contamination)

	if c.Embedding.Dimension <= 0 {
		problems = append(problems, fmt.Sprintf("embedding.embedding_dim must be positive, got %d", c.Embedding.Dimension))
	}
	if c.Inference.MaxPathDepth <= 0 {
		problems = append(problems, fmt.Sprintf("inference.max_path_depth must be positive, got %d", c.Inference.MaxPathDepth))
	}
	if c.Inference.MaxPaths <= 0 {
		problems = append(problems, fmt.Sprintf("inference.max_paths must be positive, got %d", c.Inference.MaxPaths))
	}
	if c.Analysis.Clusters < 0 {
		problems = append(problems, fmt.Sprintf("analysis.clusters must not be negative, got %d", c.Analysis.Clusters))
	}
	if c.Analysis.Eps <= 0 || c.Analysis.MinPoints <= 0 {
		problems = append(problems, "analysis.eps and analysis.min_points must be positive")
	}
	switch c.Analysis.Features {
	case "structural", "embedding":
	default:
		problems = append(problems, fmt.Sprintf("analysis.features must be structural or embedding, got %q", c.Analysis.Features))
	}
	switch c.Analysis.Community {
	case "lpa", "components":
	default:
		problems = append(problems, fmt.Sprintf("analysis.community must be lpa or components, got %q", c.Analysis.Community))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
