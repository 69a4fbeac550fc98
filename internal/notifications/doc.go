// Package notifications pushes run lifecycle updates to an ntfy topic so an
// operator can follow the pipeline without tailing logs. When no topic is
// configured every notification is a no-op.
package notifications
