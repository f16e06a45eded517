package entity

import (
	"time"

	"github.com/google/uuid"
)

// DocumentChunk is one indexed slice of a source document.
type DocumentChunk struct {
	Id             uuid.UUID
	Source         string
	ChunkIndex     int
	Content        string
	EmbeddingValue []float32
	Metadata       map[string]interface{}
	CreatedAt      time.Time
}

// ScoredDocumentChunk pairs a chunk with its cosine similarity to a query.
type ScoredDocumentChunk struct {
	Chunk      *DocumentChunk
	Similarity float64 // 0.0 to 1.0 (1.0 = identical)
}
