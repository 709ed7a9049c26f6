// Package agents wires environments, models, buffers, explorers,
// updaters and callbacks into complete training loops. Gradient agents
// (DQN, A2C) share the step-collect-fit loop of Base; evolutionary
// agents (ES, GA) run a generation loop over whole-parameter candidates.
package agents
