package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"cybot-be/internal/dto"
	"cybot-be/internal/entity"
	"cybot-be/internal/pkg/logger"
	"cybot-be/internal/repository/contract"
	"cybot-be/internal/repository/specification"
	"cybot-be/pkg/document"
	"cybot-be/pkg/embedding"
	"cybot-be/pkg/utils"

	"github.com/google/uuid"
)

var ErrOutsideDocuments = errors.New("path is outside the documents directory")

// IndexBroadcaster is told when a source's chunks change.
type IndexBroadcaster interface {
	Broadcast(kind string, data map[string]interface{})
}

type IIndexerService interface {
	// IndexFile (re)builds every chunk of one document. A missing file
	// removes its chunks. Returns the number of chunks stored.
	IndexFile(ctx context.Context, path string) (int, error)
	// Discover lists indexable files under the documents directory.
	Discover(paths []string) (files []string, skipped []string, err error)
	ListSources(ctx context.Context) ([]*dto.DocumentSourceResponse, error)
	ListChunks(ctx context.Context, request *dto.ListChunksRequest) ([]*dto.DocumentChunkResponse, error)
}

const defaultChunkPage = 20

type indexerService struct {
	dir               string
	chunkSize         int
	chunkOverlap      int
	chunks            contract.DocumentChunkRepository
	embeddingProvider embedding.EmbeddingProvider
	broadcaster       IndexBroadcaster
	logger            logger.ILogger
}

func NewIndexerService(
	dir string,
	chunkSize, chunkOverlap int,
	chunks contract.DocumentChunkRepository,
	embeddingProvider embedding.EmbeddingProvider,
	broadcaster IndexBroadcaster,
	log logger.ILogger,
) IIndexerService {
	return &indexerService{
		dir:               dir,
		chunkSize:         chunkSize,
		chunkOverlap:      chunkOverlap,
		chunks:            chunks,
		embeddingProvider: embeddingProvider,
		broadcaster:       broadcaster,
		logger:            log,
	}
}

// source is the path relative to the documents directory, slash separated.
func (s *indexerService) source(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", err
	}
	root, err := filepath.Abs(s.dir)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(root, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("%w: %s", ErrOutsideDocuments, path)
	}
	return filepath.ToSlash(rel), nil
}

func (s *indexerService) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.dir, path)
}

func (s *indexerService) IndexFile(ctx context.Context, path string) (int, error) {
	path = s.resolve(path)
	source, err := s.source(path)
	if err != nil {
		return 0, err
	}

	text, err := document.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := s.chunks.DeleteBySource(ctx, source); err != nil {
			return 0, fmt.Errorf("delete chunks of %s: %w", source, err)
		}
		s.logger.Info("INDEXER", "Removed chunks of deleted document", map[string]interface{}{"source": source})
		s.notify(source, 0)
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	pieces := utils.SplitText(utils.CleanText(text), s.chunkSize, s.chunkOverlap)
	now := time.Now()
	chunks := make([]*entity.DocumentChunk, 0, len(pieces))
	for i, piece := range pieces {
		res, err := s.embeddingProvider.Generate(ctx, piece, embedding.TaskRetrievalDocument)
		if err != nil {
			return 0, fmt.Errorf("embed chunk %d of %s: %w", i, source, err)
		}
		chunks = append(chunks, &entity.DocumentChunk{
			Id:             uuid.New(),
			Source:         source,
			ChunkIndex:     i,
			Content:        piece,
			EmbeddingValue: res.Embedding.Values,
			Metadata:       map[string]interface{}{"source": filepath.Base(path)},
			CreatedAt:      now,
		})
	}

	if err := s.chunks.ReplaceSource(ctx, source, chunks); err != nil {
		return 0, fmt.Errorf("store chunks of %s: %w", source, err)
	}

	s.logger.Info("INDEXER", "Document indexed", map[string]interface{}{"source": source, "chunks": len(chunks)})
	s.notify(source, len(chunks))
	return len(chunks), nil
}

func (s *indexerService) notify(source string, n int) {
	if s.broadcaster != nil {
		s.broadcaster.Broadcast("documents_indexed", map[string]interface{}{"source": source, "chunks": n})
	}
}

func (s *indexerService) Discover(paths []string) ([]string, []string, error) {
	if len(paths) == 0 {
		paths = []string{s.dir}
	}

	var files, skipped []string
	for _, p := range paths {
		p = s.resolve(p)
		if _, err := s.source(p); err != nil && filepath.Clean(p) != filepath.Clean(s.dir) {
			skipped = append(skipped, p)
			continue
		}
		err := filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if document.Supported(path) {
				files = append(files, path)
			} else {
				skipped = append(skipped, path)
			}
			return nil
		})
		if errors.Is(err, fs.ErrNotExist) {
			skipped = append(skipped, p)
			continue
		}
		if err != nil {
			return nil, nil, err
		}
	}
	return files, skipped, nil
}

func (s *indexerService) ListSources(ctx context.Context) ([]*dto.DocumentSourceResponse, error) {
	sources, err := s.chunks.ListSources(ctx)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.DocumentSourceResponse, 0, len(sources))
	for _, src := range sources {
		n, err := s.chunks.Count(ctx, specification.BySource{Source: src})
		if err != nil {
			return nil, err
		}
		res = append(res, &dto.DocumentSourceResponse{Source: src, Chunks: n})
	}
	return res, nil
}

// ListChunks shows what was stored for a document, in chunk order.
func (s *indexerService) ListChunks(ctx context.Context, request *dto.ListChunksRequest) ([]*dto.DocumentChunkResponse, error) {
	limit := request.Limit
	if limit <= 0 {
		limit = defaultChunkPage
	}

	specs := []specification.Specification{}
	if request.Source != "" {
		specs = append(specs, specification.BySource{Source: request.Source})
	}
	if q := strings.TrimSpace(request.Query); q != "" {
		specs = append(specs, specification.ContentContains{Text: q})
	}
	specs = append(specs,
		specification.OrderBy{Field: "source"},
		specification.OrderBy{Field: "chunk_index"},
		specification.Pagination{Limit: limit, Offset: request.Offset},
	)

	chunks, err := s.chunks.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	res := make([]*dto.DocumentChunkResponse, 0, len(chunks))
	for _, c := range chunks {
		res = append(res, &dto.DocumentChunkResponse{
			Id:         c.Id.String(),
			Source:     c.Source,
			ChunkIndex: c.ChunkIndex,
			Content:    c.Content,
		})
	}
	return res, nil
}
