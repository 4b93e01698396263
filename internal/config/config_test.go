package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, 0.8, cfg.Resolution.SimilarityThreshold)
	assert.Equal(t, 0.5, cfg.Inference.ConfidenceThreshold)
	assert.Equal(t, 0.1, cfg.Analysis.Contamination)
	assert.Equal(t, 100, cfg.Embedding.Dimension)
	assert.Equal(t, 3, cfg.Inference.MaxPathDepth)
}

func TestLoad_OverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[resolution]
similarity_threshold = 0.9

[inference]
commit = true
max_path_depth = 2

[embedding]
embedding_dim = 64

[memgraph]
uri = "bolt://graph:7687"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.9, cfg.Resolution.SimilarityThreshold)
	assert.Equal(t, 0.8, cfg.Resolution.PartialCutoff)
	assert.True(t, cfg.Inference.Commit)
	assert.Equal(t, 2, cfg.Inference.MaxPathDepth)
	assert.Equal(t, 5, cfg.Inference.MaxPaths)
	assert.Equal(t, 64, cfg.Embedding.Dimension)
	assert.Equal(t, "bolt://graph:7687", cfg.Memgraph.URI)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[resolution\n"), 0o644))
	_, err = Load(path)
	assert.Error(t, err)
}

func TestValidate_RejectsOutOfRange(t *testing.T) {
	cfg := Default()
	cfg.Resolution.SimilarityThreshold = 1.5
	cfg.Embedding.Dimension = 0
	cfg.Analysis.Features = "magic"

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "similarity_threshold")
	assert.Contains(t, err.Error(), "embedding_dim")
	assert.Contains(t, err.Error(), "features")
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("MEMGRAPH_URI", "bolt://env:7687")
	t.Setenv("MEMGRAPH_USER", "neo")
	t.Setenv("MEMGRAPH_PASSWORD", "")

	cfg := Default()
	cfg.Memgraph.Password = "keep"
	cfg.ApplyEnv()
	assert.Equal(t, "bolt://env:7687", cfg.Memgraph.URI)
	assert.Equal(t, "neo", cfg.Memgraph.User)
	assert.Equal(t, "keep", cfg.Memgraph.Password)
}
