// Package testutil provides shared test helpers for setting up memory stores.
package testutil

import (
	"testing"

	"github.com/halvorsen/muninn/internal/store"
)

// TestStore creates a store over a temporary directory that is removed with
// the test.
func TestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(t.TempDir(), store.DefaultConfig())
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return st
}
