package callbacks

import (
	"context"

	"go.uber.org/zap"

	"github.com/pearll/pearll/types"
)

// Model is the slice of a trainable model callbacks need: its flat
// parameters, for checkpointing and restore.
type Model interface {
	Parameters() []float64
	SetParameters([]float64) error
}

// TrainState is the per-step snapshot handed to callbacks.
type TrainState struct {
	RunID          string
	Agent          string
	Env            string
	Step           int
	Episode        int
	EpisodeReward  float64
	SmoothedReward float64
	LastTrain      types.TrainLog
	Model          Model
}

// Callback observes one training step. Returning false stops training
// without error; returning an error aborts it.
type Callback interface {
	OnStep(ctx context.Context, state *TrainState) (bool, error)
}

// EarlyStopping halts training once the smoothed episode reward reaches
// a target, after a minimum number of steps.
type EarlyStopping struct {
	RewardThreshold float64
	MinSteps        int

	logger *zap.Logger
}

// NewEarlyStopping creates the reward-threshold stopper.
func NewEarlyStopping(rewardThreshold float64, minSteps int, logger *zap.Logger) *EarlyStopping {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EarlyStopping{
		RewardThreshold: rewardThreshold,
		MinSteps:        minSteps,
		logger:          logger.With(zap.String("callback", "early_stopping")),
	}
}

// OnStep implements Callback.
func (c *EarlyStopping) OnStep(_ context.Context, state *TrainState) (bool, error) {
	if state.Step < c.MinSteps {
		return true, nil
	}
	if state.SmoothedReward >= c.RewardThreshold {
		c.logger.Info("reward threshold reached, stopping",
			zap.Int("step", state.Step),
			zap.Float64("smoothed_reward", state.SmoothedReward),
			zap.Float64("threshold", c.RewardThreshold),
		)
		return false, nil
	}
	return true, nil
}

// Recorder receives per-step training state, the seam between the loop
// and a metrics backend.
type Recorder interface {
	RecordStep(state *TrainState)
}

// Metrics forwards every step to a Recorder.
type Metrics struct {
	recorder Recorder
}

// NewMetrics creates the metrics-forwarding callback.
func NewMetrics(recorder Recorder) *Metrics {
	return &Metrics{recorder: recorder}
}

// OnStep implements Callback.
func (c *Metrics) OnStep(_ context.Context, state *TrainState) (bool, error) {
	if c.recorder != nil {
		c.recorder.RecordStep(state)
	}
	return true, nil
}
