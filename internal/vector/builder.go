package vector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/sih-agent/backend/internal/storage/models"
	"github.com/sih-agent/backend/pkg/logger"
)

// Embedder is the external embedding collaborator: text in, fixed-dimension
// vector out. The same model identifier must be used at build time and at
// query time.
type Embedder interface {
	CreateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
	EmbeddingModel() string
	EmbeddingDim() int
}

// Build embeds every chunk and constructs the similarity index. One vector
// per chunk; a count mismatch from the embedder fails the whole build.
func Build(ctx context.Context, chunks []models.Chunk, embedder Embedder) (*Store, error) {
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no chunks to index")
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := embedder.CreateBatchEmbeddings(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return nil, fmt.Errorf("embedding count mismatch: got %d, expected %d",
			len(embeddings), len(chunks))
	}

	dim := embedder.EmbeddingDim()
	vectors := make([][]float32, len(embeddings))
	for i, embedding := range embeddings {
		if len(embedding) != dim {
			return nil, fmt.Errorf("chunk %s: embedding dimension %d, expected %d",
				chunks[i].ID, len(embedding), dim)
		}
		vectors[i] = normalize(embedding)
	}

	logger.Info("Index built",
		zap.Int("chunks", len(chunks)),
		zap.Int("dim", dim),
		zap.String("model", embedder.EmbeddingModel()),
	)

	return &Store{
		chunks:  chunks,
		vectors: vectors,
		dim:     dim,
		model:   embedder.EmbeddingModel(),
	}, nil
}
