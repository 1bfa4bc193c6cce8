// Package remote provides a dense embedder for hosted embedding endpoints
// speaking the OpenAI embeddings wire format over HTTPS. Requests carry
// bearer authentication and are funneled through a bounded worker pool so a
// large archive ingest cannot flood the service.
package remote
