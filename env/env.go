package env

import (
	"sort"
	"sync"

	"github.com/pearll/pearll/types"
)

// Env is the single-environment interface. Implementations are not safe for
// concurrent use; VecEnv gives each copy its own goroutine.
type Env interface {
	// Reset starts a new episode and returns the initial observation.
	Reset() []float64
	// Step applies an action and returns the next observation, the reward,
	// whether the episode terminated, and auxiliary info.
	Step(action []float64) (obs []float64, reward float64, done bool, info map[string]any)
	// ObservationSpace and ActionSpace describe the env's interfaces.
	ObservationSpace() Space
	ActionSpace() Space
	// Seed reseeds the env's random source.
	Seed(seed int64)
	// Close releases any resources held by the env.
	Close() error
}

// Maker constructs a fresh environment instance.
type Maker func() Env

var (
	registryMu sync.RWMutex
	registry   = map[string]Maker{}
)

// Register adds an environment constructor under a name. Built-in envs
// register themselves in init; external envs may register at startup.
func Register(name string, maker Maker) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = maker
}

// Make builds a registered environment and seeds it.
func Make(name string, seed int64) (Env, error) {
	registryMu.RLock()
	maker, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, types.NewErrorf(types.ErrUnknownEnv, "no environment registered as %q", name)
	}
	e := maker()
	e.Seed(seed)
	return e, nil
}

// Lookup returns the registered Maker for a name, for callers that need
// to build many instances of the same environment.
func Lookup(name string) (Maker, error) {
	registryMu.RLock()
	maker, ok := registry[name]
	registryMu.RUnlock()
	if !ok {
		return nil, types.NewErrorf(types.ErrUnknownEnv, "no environment registered as %q", name)
	}
	return maker, nil
}

// Names lists the registered environment names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
