// Package updaters turns batches of experience into parameter changes.
// Gradient updaters accumulate flat gradients through the models package
// and hand them to an Optimizer; evolutionary updaters rewrite flat
// parameter vectors directly. Every update reports what it did through a
// types.UpdateLog.
package updaters
