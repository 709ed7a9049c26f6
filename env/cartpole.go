package env

import (
	"math"
	"math/rand"
)

// CartPole physics constants, matching the standard benchmark.
const (
	cartPoleGravity      = 9.8
	cartPoleMassCart     = 1.0
	cartPoleMassPole     = 0.1
	cartPoleHalfLength   = 0.5
	cartPoleForceMag     = 10.0
	cartPoleTau          = 0.02
	cartPoleThetaLimit   = 12 * 2 * math.Pi / 360
	cartPoleXLimit       = 2.4
	cartPoleEpisodeSteps = 500
)

// CartPole is the classic cart-pole balancing task: push a cart left or
// right to keep the pole upright. Reward is +1 per step survived.
type CartPole struct {
	rng   *rand.Rand
	state [4]float64 // x, xDot, theta, thetaDot
	steps int
	done  bool

	obsSpace *Box
	actSpace *Discrete
}

// NewCartPole creates an unseeded CartPole environment.
func NewCartPole() *CartPole {
	high := []float64{
		2 * cartPoleXLimit,
		math.Inf(1),
		2 * cartPoleThetaLimit,
		math.Inf(1),
	}
	low := make([]float64, len(high))
	for i, h := range high {
		low[i] = -h
	}
	return &CartPole{
		rng:      rand.New(rand.NewSource(0)),
		obsSpace: NewBox(low, high),
		actSpace: NewDiscrete(2),
	}
}

func init() {
	Register("CartPole", func() Env { return NewCartPole() })
}

// Seed implements Env.
func (c *CartPole) Seed(seed int64) { c.rng = rand.New(rand.NewSource(seed)) }

// ObservationSpace implements Env.
func (c *CartPole) ObservationSpace() Space { return c.obsSpace }

// ActionSpace implements Env.
func (c *CartPole) ActionSpace() Space { return c.actSpace }

// Reset implements Env.
func (c *CartPole) Reset() []float64 {
	for i := range c.state {
		c.state[i] = c.rng.Float64()*0.1 - 0.05
	}
	c.steps = 0
	c.done = false
	return c.observation()
}

// Step implements Env.
func (c *CartPole) Step(action []float64) ([]float64, float64, bool, map[string]any) {
	if c.done {
		// Stepping a finished episode keeps returning the terminal state.
		return c.observation(), 0, true, nil
	}

	force := -cartPoleForceMag
	if len(action) > 0 && action[0] >= 0.5 {
		force = cartPoleForceMag
	}

	x, xDot, theta, thetaDot := c.state[0], c.state[1], c.state[2], c.state[3]
	cosTheta, sinTheta := math.Cos(theta), math.Sin(theta)
	totalMass := cartPoleMassCart + cartPoleMassPole
	poleMassLength := cartPoleMassPole * cartPoleHalfLength

	temp := (force + poleMassLength*thetaDot*thetaDot*sinTheta) / totalMass
	thetaAcc := (cartPoleGravity*sinTheta - cosTheta*temp) /
		(cartPoleHalfLength * (4.0/3.0 - cartPoleMassPole*cosTheta*cosTheta/totalMass))
	xAcc := temp - poleMassLength*thetaAcc*cosTheta/totalMass

	x += cartPoleTau * xDot
	xDot += cartPoleTau * xAcc
	theta += cartPoleTau * thetaDot
	thetaDot += cartPoleTau * thetaAcc
	c.state = [4]float64{x, xDot, theta, thetaDot}
	c.steps++

	fell := x < -cartPoleXLimit || x > cartPoleXLimit ||
		theta < -cartPoleThetaLimit || theta > cartPoleThetaLimit
	truncated := c.steps >= cartPoleEpisodeSteps
	c.done = fell || truncated

	var info map[string]any
	if truncated && !fell {
		info = map[string]any{"truncated": true}
	}
	return c.observation(), 1.0, c.done, info
}

// Close implements Env.
func (c *CartPole) Close() error { return nil }

func (c *CartPole) observation() []float64 {
	obs := make([]float64, 4)
	copy(obs, c.state[:])
	return obs
}
