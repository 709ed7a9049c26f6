// Package pearll provides a top-level convenience entry point for
// training agents with minimal boilerplate.
//
// Usage:
//
//	import "github.com/pearll/pearll"
//
//	a, err := pearll.DQN("CartPole", pearll.WithSteps(10000))
//	a, err := pearll.A2C("Pendulum", pearll.WithSeed(7), pearll.WithLogger(logger))
//	err = a.Learn(ctx)
//
// The option set covers the common knobs; build agents from the agents
// package directly when you need full control over every setting.
package pearll

import (
	"math/rand"

	"go.uber.org/zap"

	"github.com/pearll/pearll/agents"
	"github.com/pearll/pearll/callbacks"
	"github.com/pearll/pearll/env"
)

// Option configures the agent created by the package-level constructors.
type Option func(*options)

type options struct {
	seed  int64
	steps int
	deps  agents.Deps
}

// WithSeed fixes the random seed for the environment and the agent.
func WithSeed(seed int64) Option {
	return func(o *options) { o.seed = seed }
}

// WithSteps overrides the number of environment steps (or generations,
// for the evolutionary agents).
func WithSteps(steps int) Option {
	return func(o *options) { o.steps = steps }
}

// WithLogger sets a custom zap logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) { o.deps.Logger = logger }
}

// WithCallbacks attaches training callbacks.
func WithCallbacks(cbs ...callbacks.Callback) Option {
	return func(o *options) { o.deps.Callbacks = append(o.deps.Callbacks, cbs...) }
}

func collect(opts []Option) options {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// DQN builds a deep Q-network agent on a registered environment.
func DQN(envName string, opts ...Option) (*agents.DQN, error) {
	o := collect(opts)
	e, err := env.Make(envName, o.seed)
	if err != nil {
		return nil, err
	}
	cfg := agents.DefaultDQNConfig()
	cfg.Seed = o.seed
	if o.steps > 0 {
		cfg.Train.NumSteps = o.steps
	}
	o.deps.RNG = rand.New(rand.NewSource(o.seed))
	return agents.NewDQN(e, envName, cfg, o.deps)
}

// A2C builds an advantage actor-critic agent on a registered environment.
func A2C(envName string, opts ...Option) (*agents.A2C, error) {
	o := collect(opts)
	e, err := env.Make(envName, o.seed)
	if err != nil {
		return nil, err
	}
	cfg := agents.DefaultA2CConfig()
	cfg.Seed = o.seed
	if o.steps > 0 {
		cfg.Train.NumSteps = o.steps
	}
	o.deps.RNG = rand.New(rand.NewSource(o.seed))
	return agents.NewA2C(e, envName, cfg, o.deps)
}

// ES builds an evolution-strategies agent on a registered environment.
func ES(envName string, opts ...Option) (*agents.ES, error) {
	o := collect(opts)
	maker, err := env.Lookup(envName)
	if err != nil {
		return nil, err
	}
	cfg := agents.DefaultESConfig()
	cfg.Seed = o.seed
	if o.steps > 0 {
		cfg.Population.Generations = o.steps
	}
	o.deps.RNG = rand.New(rand.NewSource(o.seed))
	return agents.NewES(maker, envName, cfg, o.deps)
}

// GA builds a genetic-algorithm agent on a registered environment.
func GA(envName string, opts ...Option) (*agents.GA, error) {
	o := collect(opts)
	maker, err := env.Lookup(envName)
	if err != nil {
		return nil, err
	}
	cfg := agents.DefaultGAConfig()
	cfg.Seed = o.seed
	if o.steps > 0 {
		cfg.Population.Generations = o.steps
	}
	o.deps.RNG = rand.New(rand.NewSource(o.seed))
	return agents.NewGA(maker, envName, cfg, o.deps)
}
