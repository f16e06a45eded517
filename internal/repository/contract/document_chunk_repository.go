package contract

import (
	"context"

	"cybot-be/internal/entity"
	"cybot-be/internal/repository/specification"
)

type DocumentChunkRepository interface {
	// ReplaceSource atomically swaps every chunk of source for chunks.
	ReplaceSource(ctx context.Context, source string, chunks []*entity.DocumentChunk) error
	DeleteBySource(ctx context.Context, source string) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.DocumentChunk, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
	ListSources(ctx context.Context) ([]string, error)
	// SearchSimilar returns the limit chunks closest to embedding by cosine distance.
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.ScoredDocumentChunk, error)
}
