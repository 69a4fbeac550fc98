package testsupport

import (
	"context"
	"testing"

	"reelcast/internal/config"
	"reelcast/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// NewRun creates a running pipeline run for tests using the provided store.
func NewRun(t testing.TB, st *store.Store) *store.PipelineRun {
	t.Helper()

	run, err := st.CreateRun(context.Background())
	if err != nil {
		t.Fatalf("store.CreateRun: %v", err)
	}
	return run
}
