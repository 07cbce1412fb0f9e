package ai

import "errors"

var (
	// ErrLoaderRequired is returned when a model loader is not provided.
	ErrLoaderRequired = errors.New("model loader required")

	// ErrModelLoadTimeout indicates a single model load attempt ran
	// past its timeout. The underlying load is abandoned, not
	// cancelled; it may still complete in the background.
	ErrModelLoadTimeout = errors.New("model load attempt timed out")
)
