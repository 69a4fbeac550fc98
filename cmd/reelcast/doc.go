// Command reelcast is the operator CLI for the reelcast daemon. It talks to
// the daemon's HTTP API to trigger runs, inspect progress, and manage stuck
// runs.
package main
