package implementation

import (
	"context"
	"log"
	"os"
	"testing"

	"cybot-be/internal/entity"
	"cybot-be/internal/model"
	"cybot-be/internal/repository/specification"
	"cybot-be/pkg/database"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vector of the dimension the column is declared with
func unitVector(hot int) []float32 {
	v := make([]float32, 768)
	v[hot] = 1
	return v
}

func TestDocumentChunkRepository_Postgres(t *testing.T) {
	if err := godotenv.Load("../../../.env"); err != nil {
		log.Println("No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		t.Skip("Skipping integration test: DB_CONNECTION_STRING not set")
	}

	db, err := database.NewGormDBFromDSN(dsn, database.WithLogLevel("silent"))
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db, &model.DocumentChunk{}))

	ctx := context.Background()
	repo := NewDocumentChunkRepository(db)
	source := "it-" + uuid.NewString() + ".txt"
	t.Cleanup(func() { _ = repo.DeleteBySource(ctx, source) })

	chunks := []*entity.DocumentChunk{
		{Id: uuid.New(), Source: source, ChunkIndex: 0, Content: "Refunds take five days.", EmbeddingValue: unitVector(0), Metadata: map[string]interface{}{"source": source}},
		{Id: uuid.New(), Source: source, ChunkIndex: 1, Content: "Shipping is free.", EmbeddingValue: unitVector(1), Metadata: map[string]interface{}{"source": source}},
	}
	require.NoError(t, repo.ReplaceSource(ctx, source, chunks))

	t.Run("count and list", func(t *testing.T) {
		n, err := repo.Count(ctx, specification.BySource{Source: source})
		require.NoError(t, err)
		assert.EqualValues(t, 2, n)

		sources, err := repo.ListSources(ctx)
		require.NoError(t, err)
		assert.Contains(t, sources, source)
	})

	t.Run("content filter", func(t *testing.T) {
		found, err := repo.FindAll(ctx, specification.BySource{Source: source}, specification.ContentContains{Text: "refund"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, 0, found[0].ChunkIndex)
	})

	t.Run("similarity search", func(t *testing.T) {
		scored, err := repo.SearchSimilar(ctx, unitVector(1), 1)
		require.NoError(t, err)
		require.Len(t, scored, 1)
		if scored[0].Chunk.Source == source {
			assert.Equal(t, "Shipping is free.", scored[0].Chunk.Content)
			assert.InDelta(t, 1.0, scored[0].Similarity, 1e-6)
		}
	})

	t.Run("replace drops old chunks", func(t *testing.T) {
		require.NoError(t, repo.ReplaceSource(ctx, source, chunks[:1]))
		n, err := repo.Count(ctx, specification.BySource{Source: source})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)

		require.NoError(t, repo.DeleteBySource(ctx, source))
		n, err = repo.Count(ctx, specification.BySource{Source: source})
		require.NoError(t, err)
		assert.Zero(t, n)
	})
}
