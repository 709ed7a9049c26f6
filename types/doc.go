// Package types defines the shared data structures of the pearll framework:
// transitions and batches exchanged between environments, buffers and
// updaters, the settings structs used to configure components, and the
// structured error type used across packages.
package types
