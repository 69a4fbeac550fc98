// Package services defines the shared error taxonomy and context annotations
// used by the content stage adapters and the workflow engine.
//
// Adapter clients live in subpackages (ideas, scripts, tts, videogen, render,
// youtube). Each wraps failures with one of the sentinel markers defined here
// so the step executor can decide whether an attempt is worth retrying.
package services
