// Package ai defines the embedding abstraction for semantic icon
// search: the Embedder interface, the Provider that wraps a real
// model with retry/backoff, per-attempt timeouts, and a permanent
// fallback mode, and the deterministic fallback vectorizer used when
// the model cannot be loaded.
package ai
