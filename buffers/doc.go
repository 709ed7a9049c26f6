// Package buffers provides experience storage for agents: an off-policy
// replay ring buffer, an on-policy rollout buffer, and a Redis-backed
// replay buffer for runs where collection and learning happen in different
// processes.
package buffers
