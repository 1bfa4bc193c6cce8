// Package bm25 computes lexical sparse vectors locally, with no service
// dependency. Tokens are hashed to stable uint32 indices and weighted with
// the BM25 term-frequency saturation formula, so identical text always
// yields an identical sparse vector.
package bm25
