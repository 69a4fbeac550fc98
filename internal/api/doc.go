// Package api defines the transport-facing view types shared by the daemon
// HTTP server and the CLI client, plus a thin read service over the store.
package api
