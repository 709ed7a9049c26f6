package types

// UpdateLog carries the diagnostics of a single updater invocation.
type UpdateLog struct {
	Loss    float64 `json:"loss"`
	KL      float64 `json:"kl,omitempty"`
	Entropy float64 `json:"entropy,omitempty"`
}

// TrainLog aggregates the diagnostics of one fit call of an agent.
type TrainLog struct {
	ActorLoss  float64 `json:"actor_loss,omitempty"`
	CriticLoss float64 `json:"critic_loss,omitempty"`
	KL         float64 `json:"kl,omitempty"`
	Entropy    float64 `json:"entropy,omitempty"`
	// Divergence diagnostics for evolutionary agents.
	BestFitness float64 `json:"best_fitness,omitempty"`
	MeanFitness float64 `json:"mean_fitness,omitempty"`
}
