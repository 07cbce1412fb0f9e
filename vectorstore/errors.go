package vectorstore

import "errors"

var (
	// ErrUnsupportedBackend indicates a config named a backend type
	// this build does not know.
	ErrUnsupportedBackend = errors.New("unsupported vector store backend")

	// ErrMissingConfig indicates a config variant is missing required
	// fields.
	ErrMissingConfig = errors.New("incomplete vector store config")

	// ErrLocalStoresUnavailable indicates a local backend was requested
	// in an execution context that cannot run local stores. This is a
	// deployment mistake, surfaced at construction time rather than on
	// first use.
	ErrLocalStoresUnavailable = errors.New("local vector stores are not available in this execution context")
)
