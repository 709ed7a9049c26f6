package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pearll/pearll/types"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, "dqn", cfg.Agent.Name)
	assert.Equal(t, "CartPole", cfg.Agent.Env)
	assert.Equal(t, 1_000_000, cfg.Buffer.Size)
	assert.Equal(t, 32, cfg.Train.BatchSize)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoadFromYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pearll.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
agent:
  name: a2c
  env: Pendulum
  num_envs: 4
train:
  num_steps: 12345
optimizer:
  learning_rate: 0.0005
`), 0o644))

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "a2c", cfg.Agent.Name)
	assert.Equal(t, "Pendulum", cfg.Agent.Env)
	assert.Equal(t, 4, cfg.Agent.NumEnvs)
	assert.Equal(t, 12345, cfg.Train.NumSteps)
	assert.InDelta(t, 0.0005, cfg.Optimizer.LearningRate, 1e-12)
	// Untouched sections keep their defaults.
	assert.Equal(t, 32, cfg.Train.BatchSize)
}

func TestMissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/does/not/exist.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, "dqn", cfg.Agent.Name)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pearll.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agent:\n  name: a2c\n"), 0o644))

	t.Setenv("PEARLL_AGENT_NAME", "es")
	t.Setenv("PEARLL_TRAIN_BATCH_SIZE", "64")
	t.Setenv("PEARLL_REDIS_ENABLED", "true")
	t.Setenv("PEARLL_OPTIMIZER_LEARNING_RATE", "0.01")

	cfg, err := NewLoader().WithConfigPath(path).Load()
	require.NoError(t, err)

	assert.Equal(t, "es", cfg.Agent.Name)
	assert.Equal(t, 64, cfg.Train.BatchSize)
	assert.True(t, cfg.Redis.Enabled)
	assert.InDelta(t, 0.01, cfg.Optimizer.LearningRate, 1e-12)
}

func TestValidateRejectsBadConfig(t *testing.T) {
	t.Setenv("PEARLL_AGENT_NAME", "sarsa")
	_, err := NewLoader().Load()
	require.Error(t, err)
	assert.Equal(t, types.ErrBadConfig, types.GetErrorCode(err))
}

func TestCustomValidator(t *testing.T) {
	_, err := NewLoader().WithValidator(func(c *Config) error {
		return types.NewError(types.ErrBadConfig, "rejected by test")
	}).Load()
	require.Error(t, err)
	assert.Equal(t, types.ErrBadConfig, types.GetErrorCode(err))
}

func TestMalformedYAMLIsAnError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pearll.yaml")
	require.NoError(t, os.WriteFile(path, []byte("agent: [unclosed"), 0o644))

	_, err := NewLoader().WithConfigPath(path).Load()
	require.Error(t, err)
	assert.Equal(t, types.ErrBadConfig, types.GetErrorCode(err))
}
