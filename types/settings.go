package types

// OptimizerSettings configures the gradient step applied by an updater.
// MaxGrad of 0 disables gradient clipping.
type OptimizerSettings struct {
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate" env:"LEARNING_RATE"`
	MaxGrad      float64 `json:"max_grad" yaml:"max_grad" env:"MAX_GRAD"`
}

// DefaultOptimizerSettings returns the settings used when nothing is
// configured: Adam-style learning rate of 1e-3, no clipping.
func DefaultOptimizerSettings() OptimizerSettings {
	return OptimizerSettings{LearningRate: 1e-3, MaxGrad: 0}
}

// ExplorerSettings configures action exploration.
type ExplorerSettings struct {
	// StartSteps is the number of initial steps with uniform random actions.
	StartSteps int `json:"start_steps" yaml:"start_steps" env:"START_STEPS"`
	// Scale is the noise scale for continuous exploration.
	Scale float64 `json:"scale" yaml:"scale" env:"SCALE"`
	// Epsilon is the initial random-action probability for discrete
	// epsilon-greedy exploration.
	Epsilon float64 `json:"epsilon" yaml:"epsilon" env:"EPSILON"`
	// EpsilonFloor is the value epsilon decays towards.
	EpsilonFloor float64 `json:"epsilon_floor" yaml:"epsilon_floor" env:"EPSILON_FLOOR"`
	// EpsilonDecaySteps is the number of steps over which epsilon decays
	// linearly from Epsilon to EpsilonFloor.
	EpsilonDecaySteps int `json:"epsilon_decay_steps" yaml:"epsilon_decay_steps" env:"EPSILON_DECAY_STEPS"`
}

// DefaultExplorerSettings returns the default exploration schedule.
func DefaultExplorerSettings() ExplorerSettings {
	return ExplorerSettings{
		StartSteps:        1000,
		Scale:             0.1,
		Epsilon:           1.0,
		EpsilonFloor:      0.05,
		EpsilonDecaySteps: 10000,
	}
}

// BufferSettings configures experience storage.
type BufferSettings struct {
	Size int `json:"size" yaml:"size" env:"SIZE"`
}

// DefaultBufferSettings returns a one-million transition replay capacity,
// matching the upstream default.
func DefaultBufferSettings() BufferSettings {
	return BufferSettings{Size: 1_000_000}
}

// TrainSettings configures a training run.
type TrainSettings struct {
	// NumSteps is the total number of environment steps to collect.
	NumSteps int `json:"num_steps" yaml:"num_steps" env:"NUM_STEPS"`
	// BatchSize is the number of transitions per gradient update.
	BatchSize int `json:"batch_size" yaml:"batch_size" env:"BATCH_SIZE"`
	// TrainFrequency is how many environment steps pass between fits.
	TrainFrequency int `json:"train_frequency" yaml:"train_frequency" env:"TRAIN_FREQUENCY"`
	// WarmupSteps is how many steps to collect before the first fit.
	WarmupSteps int `json:"warmup_steps" yaml:"warmup_steps" env:"WARMUP_STEPS"`
	// ActorEpochs and CriticEpochs are the gradient passes per fit.
	ActorEpochs  int `json:"actor_epochs" yaml:"actor_epochs" env:"ACTOR_EPOCHS"`
	CriticEpochs int `json:"critic_epochs" yaml:"critic_epochs" env:"CRITIC_EPOCHS"`
	// LogInterval is the number of steps between metric emissions.
	LogInterval int `json:"log_interval" yaml:"log_interval" env:"LOG_INTERVAL"`
}

// DefaultTrainSettings returns a small-but-sane training schedule.
func DefaultTrainSettings() TrainSettings {
	return TrainSettings{
		NumSteps:       50_000,
		BatchSize:      32,
		TrainFrequency: 4,
		WarmupSteps:    1000,
		ActorEpochs:    1,
		CriticEpochs:   1,
		LogInterval:    1000,
	}
}

// PopulationSettings configures evolutionary agents.
type PopulationSettings struct {
	// Size is the population size per generation.
	Size int `json:"size" yaml:"size" env:"SIZE"`
	// Generations is the number of generations to run.
	Generations int `json:"generations" yaml:"generations" env:"GENERATIONS"`
	// Std is the perturbation standard deviation.
	Std float64 `json:"std" yaml:"std" env:"STD"`
	// EpisodesPerEval is how many episodes each candidate is scored on.
	EpisodesPerEval int `json:"episodes_per_eval" yaml:"episodes_per_eval" env:"EPISODES_PER_EVAL"`
}

// DefaultPopulationSettings returns the default evolutionary schedule.
func DefaultPopulationSettings() PopulationSettings {
	return PopulationSettings{
		Size:            32,
		Generations:     100,
		Std:             0.1,
		EpisodesPerEval: 1,
	}
}
