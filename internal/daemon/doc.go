// Package daemon hosts the long-running reelcast process: it enforces
// single-instance execution with a lock file, starts the workflow manager,
// and serves the operator HTTP API.
package daemon
