// Package ai defines the embedding provider abstractions used by the
// ingestion pipeline, plus their shared configuration and error taxonomy.
//
// A Provider pairs a DenseEmbedder (semantic vectors from an embedding
// service) with a SparseEmbedder (lexical BM25-style vectors computed
// locally). Concrete implementations live in subpackages: openai for local
// OpenAI-compatible services, remote for hosted HTTP endpoints, bm25 for the
// sparse side, and mock for tests.
package ai
