package badger

import "testing"

// NewTestBackend opens an in-memory backend that is closed when the
// test finishes.
func NewTestBackend(t *testing.T) *Backend {
	t.Helper()

	backend, err := OpenBackend("", true)
	if err != nil {
		t.Fatalf("open in-memory backend: %v", err)
	}
	t.Cleanup(func() {
		if !backend.IsClosed() {
			_ = backend.Close()
		}
	})
	return backend
}
