// Package storage defines the vector store abstraction the ingestion
// pipeline writes to, plus point serialization for the embedded backend.
// Implementations live in subpackages: badger for a local embedded store,
// qdrant for a remote vector database, uploads for raw document
// persistence.
package storage
