package rag

import (
	"context"
	"strings"

	"cybot-be/internal/entity"
	"cybot-be/internal/pkg/logger"
	"cybot-be/pkg/embedding"
)

const DefaultTopK = 2

// ChunkSearcher is the slice of the chunk repository the retriever needs.
type ChunkSearcher interface {
	SearchSimilar(ctx context.Context, embedding []float32, limit int) ([]*entity.ScoredDocumentChunk, error)
}

// Retriever turns a query into a context block from the indexed documents.
type Retriever struct {
	embedder embedding.EmbeddingProvider
	chunks   ChunkSearcher
	topK     int
	logger   logger.ILogger
}

func NewRetriever(embedder embedding.EmbeddingProvider, chunks ChunkSearcher, topK int, log logger.ILogger) *Retriever {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &Retriever{embedder: embedder, chunks: chunks, topK: topK, logger: log}
}

// FindContext never fails: retrieval errors and empty results yield NoMatch.
func (r *Retriever) FindContext(ctx context.Context, query string) string {
	emb, err := r.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		r.logger.Error("RAG", "Failed to embed query", map[string]interface{}{"error": err.Error()})
		return NoMatch
	}

	matches, err := r.chunks.SearchSimilar(ctx, emb.Embedding.Values, r.topK)
	if err != nil {
		r.logger.Error("RAG", "Similarity search failed", map[string]interface{}{"error": err.Error()})
		return NoMatch
	}

	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		if m == nil || m.Chunk == nil || strings.TrimSpace(m.Chunk.Content) == "" {
			continue
		}
		texts = append(texts, m.Chunk.Content)
	}
	if len(texts) == 0 {
		return NoMatch
	}

	r.logger.Debug("RAG", "Context retrieved", map[string]interface{}{"matches": len(texts)})
	return strings.Join(texts, "\n\n")
}
