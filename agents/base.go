package agents

import (
	"context"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pearll/pearll/buffers"
	"github.com/pearll/pearll/callbacks"
	"github.com/pearll/pearll/env"
	"github.com/pearll/pearll/explorers"
	"github.com/pearll/pearll/internal/metrics"
	"github.com/pearll/pearll/logging"
	"github.com/pearll/pearll/models"
	"github.com/pearll/pearll/types"
)

// rewardSmoothing is the exponential factor of the smoothed episode
// reward reported to callbacks and metrics.
const rewardSmoothing = 0.9

// Deps carries the optional collaborators of an agent. Zero values are
// fine: a nop logger is substituted, artifacts and metrics are skipped.
type Deps struct {
	Logger    *zap.Logger
	Writer    *logging.RunWriter
	Collector *metrics.Collector
	Callbacks []callbacks.Callback
	// Buffer overrides the default in-memory buffer, e.g. with a Redis
	// backed one.
	Buffer buffers.Buffer
	// RNG overrides the seed-derived random stream.
	RNG *rand.Rand
}

// driver is what a concrete gradient agent contributes to the shared
// training loop.
type driver interface {
	// selectAction picks the policy action before exploration, with the
	// log-probability and value estimate on-policy fits need.
	selectAction(obs []float64) (action []float64, logProb, value float64)
	// fitDue reports whether an update should run after this step.
	fitDue(step int) bool
	// fit performs one update phase from the buffer.
	fit() (types.TrainLog, error)
}

// Base is the shared training loop state of gradient agents.
type Base struct {
	name     string
	envLabel string
	runID    string
	env      env.Env
	model    *models.ActorCritic
	buffer   buffers.Buffer
	explorer explorers.Explorer
	train    types.TrainSettings

	logger    *zap.Logger
	writer    *logging.RunWriter
	collector *metrics.Collector
	callbacks []callbacks.Callback
	rng       *rand.Rand

	step           int
	episode        int
	episodeReward  float64
	smoothedReward float64
	haveSmoothed   bool
}

func newBase(name, envLabel string, e env.Env, model *models.ActorCritic, buffer buffers.Buffer,
	explorer explorers.Explorer, train types.TrainSettings, seed int64, deps Deps) *Base {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	rng := deps.RNG
	if rng == nil {
		rng = rand.New(rand.NewSource(seed))
	}
	if deps.Buffer != nil {
		buffer = deps.Buffer
	}
	return &Base{
		name:      name,
		envLabel:  envLabel,
		runID:     uuid.NewString(),
		env:       e,
		model:     model,
		buffer:    buffer,
		explorer:  explorer,
		train:     train,
		logger:    logger.With(zap.String("agent", name), zap.String("env", envLabel)),
		writer:    deps.Writer,
		collector: deps.Collector,
		callbacks: deps.Callbacks,
		rng:       rng,
	}
}

// RunID identifies this training run across artifacts and checkpoints.
func (b *Base) RunID() string { return b.runID }

// Model exposes the agent's networks, e.g. for evaluation after Learn.
func (b *Base) Model() *models.ActorCritic { return b.model }

// SmoothedReward is the exponentially smoothed episode reward.
func (b *Base) SmoothedReward() float64 { return b.smoothedReward }

// Episodes is the number of completed episodes.
func (b *Base) Episodes() int { return b.episode }

// Predict returns the greedy policy action for an observation.
func (b *Base) Predict(obs []float64) []float64 {
	return b.model.Policy.BestAction(obs)
}

// Evaluate runs full greedy episodes on the training environment and
// returns the mean episode reward.
func (b *Base) Evaluate(ctx context.Context, episodes int) (float64, error) {
	if episodes <= 0 {
		return 0, nil
	}
	var total float64
	for ep := 0; ep < episodes; ep++ {
		if err := ctx.Err(); err != nil {
			return 0, types.NewError(types.ErrRunAborted, "evaluation cancelled").WithCause(err)
		}
		obs := b.env.Reset()
		for {
			next, reward, done, _ := b.env.Step(b.Predict(obs))
			total += reward
			if done {
				break
			}
			obs = next
		}
	}
	return total / float64(episodes), nil
}

// learn is the shared collect-and-fit loop.
func (b *Base) learn(ctx context.Context, d driver) error {
	obs := b.env.Reset()
	lastTrain := types.TrainLog{}

	for b.step = 0; b.step < b.train.NumSteps; b.step++ {
		if err := ctx.Err(); err != nil {
			return types.NewError(types.ErrRunAborted, "training cancelled").WithCause(err)
		}

		action, logProb, value := d.selectAction(obs)
		executed := b.explorer.Act(action, b.step)
		next, reward, done, _ := b.env.Step(executed)

		if err := b.buffer.Add(types.Transition{
			Observation:     obs,
			Action:          executed,
			Reward:          reward,
			NextObservation: next,
			Done:            done,
			LogProb:         logProb,
			Value:           value,
		}); err != nil {
			return err
		}
		b.episodeReward += reward

		if done {
			b.finishEpisode()
			obs = b.env.Reset()
		} else {
			obs = next
		}

		if d.fitDue(b.step) {
			start := time.Now()
			trainLog, err := d.fit()
			if err != nil {
				return err
			}
			lastTrain = trainLog
			if b.collector != nil {
				b.collector.ObserveFitDuration(b.name, time.Since(start))
				b.collector.RecordBufferSize(b.name, b.envLabel, b.buffer.Size())
			}
		}

		if b.writer != nil && b.train.LogInterval > 0 && b.step%b.train.LogInterval == 0 {
			if err := b.writer.LogScalars(b.step, map[string]float64{
				"train/actor_loss":      lastTrain.ActorLoss,
				"train/critic_loss":     lastTrain.CriticLoss,
				"rollout/reward_smooth": b.smoothedReward,
			}); err != nil {
				b.logger.Warn("scalar logging failed", zap.Error(err))
			}
		}

		cont, err := b.runCallbacks(ctx, lastTrain)
		if err != nil {
			return err
		}
		if !cont {
			b.logger.Info("training stopped by callback", zap.Int("step", b.step))
			return nil
		}
	}
	b.logger.Info("training finished",
		zap.Int("steps", b.train.NumSteps),
		zap.Int("episodes", b.episode),
		zap.Float64("smoothed_reward", b.smoothedReward),
	)
	return nil
}

func (b *Base) finishEpisode() {
	b.episode++
	if b.haveSmoothed {
		b.smoothedReward = rewardSmoothing*b.smoothedReward + (1-rewardSmoothing)*b.episodeReward
	} else {
		b.smoothedReward = b.episodeReward
		b.haveSmoothed = true
	}
	if b.collector != nil {
		b.collector.RecordEpisode(b.name, b.envLabel, b.episodeReward)
	}
	if b.writer != nil {
		if err := b.writer.LogScalar(b.step, "rollout/episode_reward", b.episodeReward); err != nil {
			b.logger.Warn("scalar logging failed", zap.Error(err))
		}
	}
	b.logger.Debug("episode finished",
		zap.Int("episode", b.episode),
		zap.Float64("reward", b.episodeReward),
	)
	b.episodeReward = 0
}

func (b *Base) runCallbacks(ctx context.Context, lastTrain types.TrainLog) (bool, error) {
	if len(b.callbacks) == 0 && b.collector == nil {
		return true, nil
	}
	state := &callbacks.TrainState{
		RunID:          b.runID,
		Agent:          b.name,
		Env:            b.envLabel,
		Step:           b.step,
		Episode:        b.episode,
		EpisodeReward:  b.episodeReward,
		SmoothedReward: b.smoothedReward,
		LastTrain:      lastTrain,
		Model:          b.checkpointModel(),
	}
	if b.collector != nil {
		b.collector.RecordStep(state)
	}
	for _, cb := range b.callbacks {
		cont, err := cb.OnStep(ctx, state)
		if err != nil {
			return false, err
		}
		if !cont {
			return false, nil
		}
	}
	return true, nil
}

// checkpointModel picks the network that defines the agent: the actor
// when it has its own weights, the critic otherwise.
func (b *Base) checkpointModel() callbacks.Model {
	if b.model == nil {
		return nil
	}
	if b.model.ActorNet != nil {
		return b.model.ActorNet
	}
	return b.model.Critic
}
