// Package ingest orchestrates the document ingestion pipeline: extraction,
// deduplication, chunking, batched embedding, and transactional indexing
// into a vector store. Archives fan out across a worker pool with per-file
// failure isolation.
//
// Every failure is classified by the pipeline step it occurred in, and a
// partially indexed document is rolled back so the store never holds an
// incomplete version of a file.
package ingest
