package agents

import (
	"context"
	"math/rand"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/pearll/pearll/callbacks"
	"github.com/pearll/pearll/env"
	"github.com/pearll/pearll/logging"
	"github.com/pearll/pearll/models"
	"github.com/pearll/pearll/types"
)

// evaluator scores candidate parameter vectors by running full episodes
// with a greedy policy. Each candidate gets its own environment
// instance, so evaluation can fan out across goroutines.
type evaluator struct {
	maker    env.Maker
	policy   models.Policy
	net      *models.Network
	episodes int
	parallel bool
	baseSeed int64
}

// scoreAll returns the mean episode reward of every candidate.
func (ev *evaluator) scoreAll(ctx context.Context, candidates [][]float64, generation int) ([]float64, error) {
	fitness := make([]float64, len(candidates))
	score := func(i int) error {
		e := ev.maker()
		defer e.Close()
		e.Seed(ev.baseSeed + int64(generation)*int64(len(candidates)) + int64(i))

		clone := ev.net.Clone()
		if err := clone.SetParameters(candidates[i]); err != nil {
			return err
		}
		policy := models.Rebind(ev.policy, clone)

		var total float64
		for ep := 0; ep < ev.episodes; ep++ {
			obs := e.Reset()
			for {
				next, reward, done, _ := e.Step(policy.BestAction(obs))
				total += reward
				if done {
					break
				}
				obs = next
			}
		}
		fitness[i] = total / float64(ev.episodes)
		return nil
	}

	if ev.parallel {
		g, gctx := errgroup.WithContext(ctx)
		for i := range candidates {
			if err := gctx.Err(); err != nil {
				break
			}
			i := i
			g.Go(func() error { return score(i) })
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
		return fitness, nil
	}
	for i := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, types.NewError(types.ErrRunAborted, "evaluation cancelled").WithCause(err)
		}
		if err := score(i); err != nil {
			return nil, err
		}
	}
	return fitness, nil
}

// generationLoop is the bookkeeping shared by the evolutionary agents:
// run IDs, artifact logging, metrics and callback dispatch per
// generation.
type generationLoop struct {
	name     string
	envLabel string
	runID    string

	logger    *zap.Logger
	writer    *logging.RunWriter
	callbacks []callbacks.Callback

	bestFitness float64
	haveBest    bool
}

func newGenerationLoop(name, envLabel string, deps Deps) *generationLoop {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &generationLoop{
		name:      name,
		envLabel:  envLabel,
		runID:     uuid.NewString(),
		logger:    logger.With(zap.String("agent", name), zap.String("env", envLabel)),
		writer:    deps.Writer,
		callbacks: deps.Callbacks,
	}
}

// afterGeneration records one generation and reports whether training
// should continue.
func (l *generationLoop) afterGeneration(ctx context.Context, generation int, trainLog types.TrainLog, model callbacks.Model) (bool, error) {
	if !l.haveBest || trainLog.BestFitness > l.bestFitness {
		l.bestFitness = trainLog.BestFitness
		l.haveBest = true
	}
	l.logger.Info("generation finished",
		zap.Int("generation", generation),
		zap.Float64("best_fitness", trainLog.BestFitness),
		zap.Float64("mean_fitness", trainLog.MeanFitness),
	)
	if l.writer != nil {
		if err := l.writer.LogScalars(generation, map[string]float64{
			"population/best_fitness": trainLog.BestFitness,
			"population/mean_fitness": trainLog.MeanFitness,
		}); err != nil {
			l.logger.Warn("scalar logging failed", zap.Error(err))
		}
	}

	state := &callbacks.TrainState{
		RunID:          l.runID,
		Agent:          l.name,
		Env:            l.envLabel,
		Step:           generation,
		Episode:        generation,
		EpisodeReward:  trainLog.BestFitness,
		SmoothedReward: trainLog.MeanFitness,
		LastTrain:      trainLog,
		Model:          model,
	}
	for _, cb := range l.callbacks {
		cont, err := cb.OnStep(ctx, state)
		if err != nil {
			return false, err
		}
		if !cont {
			l.logger.Info("training stopped by callback", zap.Int("generation", generation))
			return false, nil
		}
	}
	return true, nil
}

// sampleNoise draws a population of N(0, std) perturbation vectors.
func sampleNoise(popSize, dim int, std float64, rng *rand.Rand) [][]float64 {
	noise := make([][]float64, popSize)
	for i := range noise {
		eps := make([]float64, dim)
		for j := range eps {
			eps[j] = rng.NormFloat64() * std
		}
		noise[i] = eps
	}
	return noise
}
