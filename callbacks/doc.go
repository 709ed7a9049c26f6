// Package callbacks hooks into the training loop. Agents invoke every
// registered callback once per environment step; a callback can observe
// training state, persist checkpoints, export metrics, or stop the run.
package callbacks
