package env

import (
	"golang.org/x/sync/errgroup"
)

// VecEnv steps n copies of an environment as one batched environment.
// Finished episodes are reset automatically; the observation returned for a
// finished copy is the first observation of the new episode, with the
// terminal observation preserved in the step info under
// "terminal_observation".
type VecEnv struct {
	envs     []Env
	parallel bool
}

// NewVecEnv builds n environment copies with consecutive seeds derived from
// seed. With parallel true each copy is stepped in its own goroutine, which
// pays off for expensive environments.
func NewVecEnv(maker Maker, n int, seed int64, parallel bool) *VecEnv {
	if n <= 0 {
		n = 1
	}
	envs := make([]Env, n)
	for i := range envs {
		envs[i] = maker()
		envs[i].Seed(seed + int64(i))
	}
	return &VecEnv{envs: envs, parallel: parallel}
}

// N returns the number of environment copies.
func (v *VecEnv) N() int { return len(v.envs) }

// ObservationSpace returns the per-copy observation space.
func (v *VecEnv) ObservationSpace() Space { return v.envs[0].ObservationSpace() }

// ActionSpace returns the per-copy action space.
func (v *VecEnv) ActionSpace() Space { return v.envs[0].ActionSpace() }

// Reset resets every copy and returns the stacked initial observations.
func (v *VecEnv) Reset() [][]float64 {
	obs := make([][]float64, len(v.envs))
	for i, e := range v.envs {
		obs[i] = e.Reset()
	}
	return obs
}

// Step applies one action per copy. len(actions) must equal N.
func (v *VecEnv) Step(actions [][]float64) (obs [][]float64, rewards []float64, dones []bool, infos []map[string]any) {
	n := len(v.envs)
	obs = make([][]float64, n)
	rewards = make([]float64, n)
	dones = make([]bool, n)
	infos = make([]map[string]any, n)

	stepOne := func(i int) {
		o, r, d, info := v.envs[i].Step(actions[i])
		if d {
			if info == nil {
				info = map[string]any{}
			}
			info["terminal_observation"] = o
			o = v.envs[i].Reset()
		}
		obs[i], rewards[i], dones[i], infos[i] = o, r, d, info
	}

	if v.parallel {
		var g errgroup.Group
		for i := 0; i < n; i++ {
			i := i
			g.Go(func() error {
				stepOne(i)
				return nil
			})
		}
		_ = g.Wait()
	} else {
		for i := 0; i < n; i++ {
			stepOne(i)
		}
	}
	return obs, rewards, dones, infos
}

// Close closes every copy, returning the first error encountered.
func (v *VecEnv) Close() error {
	var first error
	for _, e := range v.envs {
		if err := e.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
