// Package signalprocessing contains the pure numeric building blocks shared
// by the RL and EC sides of the framework: return and advantage estimators,
// sample-based KL divergence estimators, and the selection, crossover and
// mutation operators used by evolutionary updaters.
//
// Everything in this package is a stateless function; stochastic operators
// take an explicit *rand.Rand so callers control reproducibility.
package signalprocessing
