// Package steps provides durable, memoized step execution for pipeline runs.
//
// Each step is identified by a (run id, step id) pair. The first terminal
// outcome of a step, success or failure, is persisted and every later
// execution of the same pair replays the stored outcome instead of running
// the step body again. Steps retry transient failures with exponential
// backoff before recording a failure.
package steps
