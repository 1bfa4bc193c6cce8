// Package chunking turns extracted document text into ordered, size-bounded
// chunks and groups them into token-bounded batches for embedding.
//
// The Splitter respects markdown structure: fenced code blocks are kept
// atomic, headers open new chunks, and paragraph boundaries carry a small
// character overlap into the next chunk for context continuity. The Batcher
// packs chunks under a token ceiling, truncating single oversized items.
// Both are pure CPU work with no I/O.
package chunking
