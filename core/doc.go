// Package core defines the domain model for document ingestion: documents,
// chunks, index points, ingestion results, and the structured error type that
// crosses every pipeline stage boundary.
//
// Types in this package are plain data. All behavior that touches I/O lives
// in the chunking, ai, extract, storage, and ingest packages.
package core
