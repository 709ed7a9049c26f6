// Package config loads the full pearll configuration from defaults, an
// optional YAML file and environment variable overrides, in that order
// of precedence.
package config

import (
	"strings"
	"time"

	"github.com/pearll/pearll/types"
)

// Config is the complete configuration of a training run.
type Config struct {
	// Agent selects what is trained and where.
	Agent AgentConfig `yaml:"agent" env:"AGENT"`

	// Train is the step/batch schedule.
	Train types.TrainSettings `yaml:"train" env:"TRAIN"`

	// Optimizer configures gradient steps.
	Optimizer types.OptimizerSettings `yaml:"optimizer" env:"OPTIMIZER"`

	// Explorer configures action exploration.
	Explorer types.ExplorerSettings `yaml:"explorer" env:"EXPLORER"`

	// Buffer configures experience storage.
	Buffer types.BufferSettings `yaml:"buffer" env:"BUFFER"`

	// Population configures evolutionary agents.
	Population types.PopulationSettings `yaml:"population" env:"POPULATION"`

	// Redis configures the optional remote replay buffer.
	Redis RedisConfig `yaml:"redis" env:"REDIS"`

	// Database configures the experiment run store.
	Database DatabaseConfig `yaml:"database" env:"DATABASE"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log" env:"LOG"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics" env:"METRICS"`
}

// AgentConfig selects the agent, environment and run bookkeeping.
type AgentConfig struct {
	// Name is the agent type: dqn, a2c, es, ga.
	Name string `yaml:"name" env:"NAME"`
	// Env is a registered environment name.
	Env string `yaml:"env" env:"ENV"`
	// Seed feeds every random stream of the run.
	Seed int64 `yaml:"seed" env:"SEED"`
	// NumEnvs is the number of vectorized environment copies.
	NumEnvs int `yaml:"num_envs" env:"NUM_ENVS"`
	// LogDir is the root directory run artifacts are written under.
	LogDir string `yaml:"log_dir" env:"LOG_DIR"`
	// CheckpointInterval is the number of steps between checkpoints,
	// 0 disables checkpointing.
	CheckpointInterval int `yaml:"checkpoint_interval" env:"CHECKPOINT_INTERVAL"`
}

// RedisConfig configures the remote replay buffer.
type RedisConfig struct {
	// Enabled switches the replay buffer from in-memory to Redis.
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Addr     string `yaml:"addr" env:"ADDR"`
	Password string `yaml:"password" env:"PASSWORD"`
	DB       int    `yaml:"db" env:"DB"`
	PoolSize int    `yaml:"pool_size" env:"POOL_SIZE"`
	// Key is the list key transitions are stored under.
	Key string `yaml:"key" env:"KEY"`
}

// DatabaseConfig configures the experiment store.
type DatabaseConfig struct {
	// Driver is currently sqlite.
	Driver string `yaml:"driver" env:"DRIVER"`
	// DSN is the driver-specific source name, a file path for sqlite.
	DSN             string        `yaml:"dsn" env:"DSN"`
	MaxOpenConns    int           `yaml:"max_open_conns" env:"MAX_OPEN_CONNS"`
	MaxIdleConns    int           `yaml:"max_idle_conns" env:"MAX_IDLE_CONNS"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" env:"CONN_MAX_LIFETIME"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level" env:"LEVEL"`
	// Format is json or console.
	Format string `yaml:"format" env:"FORMAT"`
	// OutputPaths are zap sink URLs.
	OutputPaths []string `yaml:"output_paths" env:"OUTPUT_PATHS"`
	// EnableCaller annotates entries with file and line.
	EnableCaller bool `yaml:"enable_caller" env:"ENABLE_CALLER"`
}

// MetricsConfig configures Prometheus exposure.
type MetricsConfig struct {
	Enabled bool `yaml:"enabled" env:"ENABLED"`
	// Addr is the listen address of the /metrics endpoint.
	Addr string `yaml:"addr" env:"ADDR"`
}

// DefaultConfig returns the configuration used when nothing else is
// provided: DQN on CartPole with in-memory storage.
func DefaultConfig() *Config {
	return &Config{
		Agent: AgentConfig{
			Name:               "dqn",
			Env:                "CartPole",
			Seed:               0,
			NumEnvs:            1,
			LogDir:             "runs",
			CheckpointInterval: 0,
		},
		Train:      types.DefaultTrainSettings(),
		Optimizer:  types.DefaultOptimizerSettings(),
		Explorer:   types.DefaultExplorerSettings(),
		Buffer:     types.DefaultBufferSettings(),
		Population: types.DefaultPopulationSettings(),
		Redis: RedisConfig{
			Addr:     "localhost:6379",
			PoolSize: 10,
			Key:      "pearll:replay",
		},
		Database: DatabaseConfig{
			Driver:          "sqlite",
			DSN:             "pearll.db",
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxLifetime: time.Hour,
		},
		Log: LogConfig{
			Level:       "info",
			Format:      "console",
			OutputPaths: []string{"stderr"},
		},
		Metrics: MetricsConfig{
			Enabled: false,
			Addr:    ":9090",
		},
	}
}

// Validate reports configuration errors in one pass.
func (c *Config) Validate() error {
	var errs []string

	switch c.Agent.Name {
	case "dqn", "a2c", "es", "ga":
	default:
		errs = append(errs, "agent.name must be one of dqn, a2c, es, ga")
	}
	if c.Agent.Env == "" {
		errs = append(errs, "agent.env must be set")
	}
	if c.Agent.NumEnvs <= 0 {
		errs = append(errs, "agent.num_envs must be positive")
	}
	if c.Train.NumSteps <= 0 {
		errs = append(errs, "train.num_steps must be positive")
	}
	if c.Train.BatchSize <= 0 {
		errs = append(errs, "train.batch_size must be positive")
	}
	if c.Optimizer.LearningRate <= 0 {
		errs = append(errs, "optimizer.learning_rate must be positive")
	}
	if c.Buffer.Size <= 0 {
		errs = append(errs, "buffer.size must be positive")
	}
	if c.Population.Size <= 0 {
		errs = append(errs, "population.size must be positive")
	}

	if len(errs) > 0 {
		return types.NewErrorf(types.ErrBadConfig, "invalid configuration: %s", strings.Join(errs, "; "))
	}
	return nil
}
