// Package models provides the function approximators agents learn with.
// Networks are composed the pearll way: an encoder mapping observation
// (and optionally action) into a vector, an MLP torso, and a head giving
// the output its meaning (Q-values, state value, action logits, Gaussian
// policy mean).
//
// There is no autograd: dense layers carry their own backward pass and
// networks expose their weights as flat parameter vectors, which is also
// what the evolutionary updaters mutate.
package models
