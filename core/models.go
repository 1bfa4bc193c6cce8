package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// pointIDNamespace is the fixed UUIDv5 namespace for point IDs.
// Changing it would re-key every existing collection.
var pointIDNamespace = uuid.MustParse("9f2c1f5e-6b4a-4d8e-9c3b-2a7d5e8f1c40")

// Document is one uploaded file after extraction, ready for chunking.
// ContentHash is computed once from the extracted text and never changes.
type Document struct {
	Library     string
	Version     string
	Filename    string
	Content     string
	ContentHash string
}

// NewDocument builds a Document and stamps its content hash.
func NewDocument(library, version, filename, content string) *Document {
	return &Document{
		Library:     library,
		Version:     version,
		Filename:    filename,
		Content:     content,
		ContentHash: ContentHash(content),
	}
}

// ContentHash returns the SHA-256 hex digest of the text's UTF-8 bytes.
// It is the deduplication key. Whitespace-sensitive: no normalization is
// applied beyond what extraction already produced.
func ContentHash(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Chunk is one ordered segment of a document. Index is zero-based and
// gap-free within the document; order is original document order.
type Chunk struct {
	Index        int
	Text         string
	SectionTitle string
}

// Batch is an ordered group of chunks submitted together to the embedding
// service. The batch scheduler guarantees the summed token estimate of a
// batch never exceeds the configured ceiling.
type Batch []Chunk

// TruncationKind says which limit cut a chunk.
type TruncationKind string

const (
	// TruncationCharacter marks a cut at the hard character ceiling.
	TruncationCharacter TruncationKind = "character"
	// TruncationToken marks a cut at the per-item token ceiling.
	TruncationToken TruncationKind = "token"
)

// TruncationWarning records a non-fatal cut applied to a chunk.
type TruncationWarning struct {
	ChunkIndex    int            `json:"chunk_index"`
	OriginalSize  int            `json:"original_size"`
	TruncatedSize int            `json:"truncated_size"`
	Kind          TruncationKind `json:"truncation_type"`
	SectionTitle  string         `json:"section_title,omitempty"`
}

// SparseVector is a BM25-style lexical embedding: parallel index/value pairs.
type SparseVector struct {
	Indices []uint32
	Values  []float32
}

// LinkedFile records that another upload carried byte-identical content.
type LinkedFile struct {
	Library  string `json:"library"`
	Version  string `json:"version"`
	FilePath string `json:"file_path"`
	Filename string `json:"filename"`
}

// Payload is the flat metadata carried by every index point.
type Payload struct {
	Content     string       `json:"content"`
	Library     string       `json:"library"`
	Version     string       `json:"version"`
	Title       string       `json:"title"`
	FilePath    string       `json:"file_path"`
	ChunkIndex  int          `json:"chunk_index"`
	TotalChunks int          `json:"total_chunks"`
	ContentHash string       `json:"content_hash"`
	LinkedFiles []LinkedFile `json:"linked_files,omitempty"`
}

// Point is one indexed unit in the vector store: a chunk's dense and sparse
// vectors plus its payload.
type Point struct {
	ID      string
	Dense   []float32
	Sparse  SparseVector
	Payload Payload
}

// pointIDHeadChars is how much chunk text participates in the ID derivation.
const pointIDHeadChars = 100

// PointID derives a deterministic point ID from the chunk's identifying
// tuple. Re-ingesting identical input yields identical IDs, making upserts
// idempotent. The result is a UUIDv5, which vector stores accept as-is.
func PointID(library, version, filename string, chunkIndex int, text string) string {
	head := text
	if len(head) > pointIDHeadChars {
		head = head[:pointIDHeadChars]
	}
	key := fmt.Sprintf("%s:%s:%s:%d:%s", library, version, filename, chunkIndex, head)
	return uuid.NewSHA1(pointIDNamespace, []byte(key)).String()
}

// ProcessingStep identifies the pipeline stage where a failure occurred.
type ProcessingStep string

const (
	StepExtraction ProcessingStep = "extraction"
	StepChunking   ProcessingStep = "chunking"
	StepBatching   ProcessingStep = "batching"
	StepEmbedding  ProcessingStep = "embedding"
	StepIndexing   ProcessingStep = "indexing"
)

// IngestionResult is the outcome of ingesting one document.
type IngestionResult struct {
	Library            string              `json:"library"`
	Version            string              `json:"version"`
	FilesProcessed     int                 `json:"files_processed"`
	ChunksIndexed      int                 `json:"chunks_indexed"`
	WasDuplicate       bool                `json:"was_duplicate"`
	LinkedTo           string              `json:"linked_to,omitempty"`
	TruncationWarnings []TruncationWarning `json:"truncation_warnings,omitempty"`
	DurationSeconds    float64             `json:"duration_seconds"`
}

// FileFailure is one failed file inside an archive, kept alongside the
// successes under partial-success mode.
type FileFailure struct {
	FileName string         `json:"file_name"`
	Step     ProcessingStep `json:"processing_step"`
	Err      string         `json:"error"`
}

// ArchiveResult aggregates per-file outcomes for a multi-file upload.
type ArchiveResult struct {
	Library            string              `json:"library"`
	Version            string              `json:"version"`
	FilesProcessed     int                 `json:"files_processed"`
	FilesFailed        int                 `json:"files_failed"`
	ChunksIndexed      int                 `json:"chunks_indexed"`
	Failures           []FileFailure       `json:"failures,omitempty"`
	TruncationWarnings []TruncationWarning `json:"truncation_warnings,omitempty"`
	DurationSeconds    float64             `json:"duration_seconds"`
}
