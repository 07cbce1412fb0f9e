// Package openai provides the real embedding model behind the
// ai.Provider, talking to OpenAI-compatible embedding APIs (OpenAI,
// Ollama, LocalAI, vLLM) through the langchaingo client.
//
// This package implements the ai.Embedder interface. The ai.Provider
// wraps it with retry, timeout, and fallback behavior; nothing here
// retries on its own.
package openai
