// Package env provides the environment abstraction agents train against:
// observation/action spaces, a small registry of built-in classic-control
// environments, and a vectorized wrapper for stepping several environment
// copies at once.
package env
