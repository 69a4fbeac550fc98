// Package store manages reelcast persistence backed by SQLite.
//
// It owns the five content entities (pipeline runs, ideas, scripts, videos,
// publish records) plus the step memoization records written by the step
// executor. Run counters are only ever updated through additive deltas so
// concurrent workflow functions cannot lose updates; terminal runs are sink
// states that reject further writes except the explicit operator override.
package store
