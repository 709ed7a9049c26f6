package signalprocessing

// TDZero computes the one-step temporal-difference target
//
//	y_i = r_i + gamma * V(s'_i) * (1 - done_i)
//
// for a batch of transitions.
func TDZero(rewards, nextValues, dones []float64, gamma float64) []float64 {
	out := make([]float64, len(rewards))
	for i := range rewards {
		out[i] = rewards[i] + gamma*nextValues[i]*(1-dones[i])
	}
	return out
}

// TDLambda computes the infinite-step discounted return per environment for
// a rewards matrix of shape [envs][steps], bootstrapped with the value of
// the last observed state:
//
//	R_e = sum_t gamma^t r_{e,t} + gamma^T * V_e * (1 - done_e)
func TDLambda(rewards [][]float64, lastValues, lastDones []float64, gamma float64) []float64 {
	out := make([]float64, len(rewards))
	for e, rs := range rewards {
		discount := 1.0
		ret := 0.0
		for _, r := range rs {
			ret += discount * r
			discount *= gamma
		}
		ret += discount * lastValues[e] * (1 - lastDones[e])
		out[e] = ret
	}
	return out
}

// SoftQTarget computes the entropy-regularized soft Q-learning target
//
//	y_i = r_i + gamma * (1 - done_i) * (q_i - alpha * logProb_i)
func SoftQTarget(rewards, dones, qValues, logProbs []float64, gamma, alpha float64) []float64 {
	out := make([]float64, len(rewards))
	for i := range rewards {
		out[i] = rewards[i] + gamma*(1-dones[i])*(qValues[i]-alpha*logProbs[i])
	}
	return out
}

// GAE computes generalized advantage estimates and the matching returns for
// a single trajectory. oldValues holds V(s_t), newValues holds V(s_{t+1}).
//
//	delta_t = r_t + gamma * (1 - done_t) * V(s_{t+1}) - V(s_t)
//	A_t     = delta_t + gamma * lambda * (1 - done_t) * A_{t+1}
//	R_t     = A_t + V(s_t)
func GAE(rewards, oldValues, newValues, dones []float64, gamma, lambda float64) (advantages, returns []float64) {
	n := len(rewards)
	advantages = make([]float64, n)
	returns = make([]float64, n)
	next := 0.0
	for t := n - 1; t >= 0; t-- {
		nonTerminal := 1 - dones[t]
		delta := rewards[t] + gamma*nonTerminal*newValues[t] - oldValues[t]
		next = delta + gamma*lambda*nonTerminal*next
		advantages[t] = next
		returns[t] = next + oldValues[t]
	}
	return advantages, returns
}
