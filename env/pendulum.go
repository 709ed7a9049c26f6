package env

import (
	"math"
	"math/rand"
)

// Pendulum physics constants, matching the standard benchmark.
const (
	pendulumMaxSpeed     = 8.0
	pendulumMaxTorque    = 2.0
	pendulumDT           = 0.05
	pendulumGravity      = 10.0
	pendulumMass         = 1.0
	pendulumLength       = 1.0
	pendulumEpisodeSteps = 200
)

// Pendulum is the classic underactuated swing-up task: apply torque to
// swing a pendulum upright and keep it there. Reward is the negative cost
// of angle offset, angular velocity and applied torque.
type Pendulum struct {
	rng      *rand.Rand
	theta    float64
	thetaDot float64
	steps    int

	obsSpace *Box
	actSpace *Box
}

// NewPendulum creates an unseeded Pendulum environment.
func NewPendulum() *Pendulum {
	return &Pendulum{
		rng: rand.New(rand.NewSource(0)),
		obsSpace: NewBox(
			[]float64{-1, -1, -pendulumMaxSpeed},
			[]float64{1, 1, pendulumMaxSpeed},
		),
		actSpace: UniformBox(-pendulumMaxTorque, pendulumMaxTorque, 1),
	}
}

func init() {
	Register("Pendulum", func() Env { return NewPendulum() })
}

// Seed implements Env.
func (p *Pendulum) Seed(seed int64) { p.rng = rand.New(rand.NewSource(seed)) }

// ObservationSpace implements Env.
func (p *Pendulum) ObservationSpace() Space { return p.obsSpace }

// ActionSpace implements Env.
func (p *Pendulum) ActionSpace() Space { return p.actSpace }

// Reset implements Env.
func (p *Pendulum) Reset() []float64 {
	p.theta = p.rng.Float64()*2*math.Pi - math.Pi
	p.thetaDot = p.rng.Float64()*2 - 1
	p.steps = 0
	return p.observation()
}

// Step implements Env.
func (p *Pendulum) Step(action []float64) ([]float64, float64, bool, map[string]any) {
	torque := 0.0
	if len(action) > 0 {
		torque = math.Max(-pendulumMaxTorque, math.Min(pendulumMaxTorque, action[0]))
	}

	cost := angleNormalize(p.theta)*angleNormalize(p.theta) +
		0.1*p.thetaDot*p.thetaDot + 0.001*torque*torque

	g, m, l, dt := pendulumGravity, pendulumMass, pendulumLength, pendulumDT
	newThetaDot := p.thetaDot +
		(3*g/(2*l)*math.Sin(p.theta)+3.0/(m*l*l)*torque)*dt
	newThetaDot = math.Max(-pendulumMaxSpeed, math.Min(pendulumMaxSpeed, newThetaDot))
	p.theta += newThetaDot * dt
	p.thetaDot = newThetaDot
	p.steps++

	done := p.steps >= pendulumEpisodeSteps
	var info map[string]any
	if done {
		info = map[string]any{"truncated": true}
	}
	return p.observation(), -cost, done, info
}

// Close implements Env.
func (p *Pendulum) Close() error { return nil }

func (p *Pendulum) observation() []float64 {
	return []float64{math.Cos(p.theta), math.Sin(p.theta), p.thetaDot}
}

// angleNormalize wraps an angle to [-pi, pi).
func angleNormalize(theta float64) float64 {
	m := math.Mod(theta+math.Pi, 2*math.Pi)
	if m < 0 {
		m += 2 * math.Pi
	}
	return m - math.Pi
}
