// Package logging builds the slog loggers used across reelcast and provides
// attribute helpers plus context-derived structured fields (run id, stage,
// step id, correlation id).
package logging
