package signalprocessing

import "math"

// ForwardKL computes an unbiased per-sample estimate of KL(P || Q) from
// probability evaluations of samples drawn from Q. With r = p/q the
// estimator is r*log(r) - (r - 1); its expectation under Q is the forward
// KL divergence while the control variate (r - 1) keeps the variance low.
func ForwardKL(probsP, probsQ []float64) []float64 {
	out := make([]float64, len(probsP))
	for i := range probsP {
		r := probsP[i] / probsQ[i]
		out[i] = r*math.Log(r) - (r - 1)
	}
	return out
}

// ReverseKL computes an unbiased per-sample estimate of KL(Q || P) from
// probability evaluations of samples drawn from Q. With r = p/q the
// estimator is (r - 1) - log(r), which is non-negative for every sample.
func ReverseKL(probsP, probsQ []float64) []float64 {
	out := make([]float64, len(probsP))
	for i := range probsP {
		r := probsP[i] / probsQ[i]
		out[i] = (r - 1) - math.Log(r)
	}
	return out
}
