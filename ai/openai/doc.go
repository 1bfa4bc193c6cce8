// Package openai provides a dense embedder backed by any OpenAI-compatible
// embeddings API (Ollama, LocalAI, vLLM), paired with the local BM25 sparse
// encoder into an ai.Provider.
package openai
