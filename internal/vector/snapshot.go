package vector

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"go.uber.org/zap"

	"github.com/sih-agent/backend/internal/storage/sqlite"
	"github.com/sih-agent/backend/pkg/logger"
)

// ErrLoad marks an unusable snapshot: missing file, unreadable format, or an
// embedding model/dimension that does not match the running configuration.
var ErrLoad = errors.New("index snapshot unusable")

const (
	metaModel = "embedding_model"
	metaDim   = "embedding_dim"
	metaCount = "chunk_count"
)

// Save overwrites the snapshot at path with the store's chunks, vectors and
// embedding metadata. Builds are idempotent snapshots, never merges; only one
// build may write a given path at a time.
func (s *Store) Save(path string) error {
	client, err := sqlite.NewClient(path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot %s: %w", path, err)
	}
	defer client.Close()

	if err := client.InitSchema(); err != nil {
		return err
	}
	if err := client.Reset(); err != nil {
		return err
	}
	if err := client.InsertChunks(s.chunks, s.vectors); err != nil {
		return err
	}

	if err := client.SetMeta(metaModel, s.model); err != nil {
		return err
	}
	if err := client.SetMeta(metaDim, strconv.Itoa(s.dim)); err != nil {
		return err
	}
	if err := client.SetMeta(metaCount, strconv.Itoa(len(s.chunks))); err != nil {
		return err
	}

	logger.Info("Index snapshot saved",
		zap.String("path", path),
		zap.Int("chunks", len(s.chunks)),
	)
	return nil
}

// Load reconstructs an index from a snapshot previously written by Save.
// The snapshot must match the configured embedding model and dimensionality;
// any mismatch is ErrLoad, not silent degradation. Loading trusts the file:
// point it only at locally produced snapshots.
func Load(path, wantModel string, wantDim int) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrLoad, path, err)
	}

	client, err := sqlite.NewClient(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	defer client.Close()

	model, err := client.GetMeta(metaModel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	dimStr, err := client.GetMeta(metaDim)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	dim, err := strconv.Atoi(dimStr)
	if err != nil {
		return nil, fmt.Errorf("%w: bad dimension %q", ErrLoad, dimStr)
	}

	if model != wantModel {
		return nil, fmt.Errorf("%w: snapshot built with model %s, configured %s",
			ErrLoad, model, wantModel)
	}
	if dim != wantDim {
		return nil, fmt.Errorf("%w: snapshot dimension %d, configured %d",
			ErrLoad, dim, wantDim)
	}

	chunks, vectors, err := client.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoad, err)
	}
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("%w: chunk %s has dimension %d, expected %d",
				ErrLoad, chunks[i].ID, len(vec), dim)
		}
	}

	logger.Info("Index snapshot loaded",
		zap.String("path", path),
		zap.Int("chunks", len(chunks)),
		zap.Int("dim", dim),
	)

	return &Store{
		chunks:  chunks,
		vectors: vectors,
		dim:     dim,
		model:   model,
	}, nil
}
