package sqlite

import (
	"database/sql"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/sih-agent/backend/internal/storage/models"
	"github.com/sih-agent/backend/pkg/logger"
)

// Client persists index snapshots: chunk texts, provenance metadata and
// embedding vectors, plus a meta table recording the embedding model and
// dimensionality the snapshot was built with. Snapshots are trusted local
// artifacts; the file must never be pointed at untrusted input.
type Client struct {
	db *sql.DB
}

func NewClient(dbPath string) (*Client, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	logger.Info("Snapshot store opened", zap.String("path", dbPath))

	return &Client{db: db}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

func (c *Client) InitSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS index_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chunks (
		position INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT UNIQUE NOT NULL,
		doc_id TEXT NOT NULL,
		chunk_index INTEGER NOT NULL,
		text TEXT NOT NULL,
		metadata TEXT,
		embedding BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_chunks_doc ON chunks(doc_id);
	`

	if _, err := c.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// Reset clears all snapshot content. Builds overwrite, never merge.
func (c *Client) Reset() error {
	stmts := []string{
		`DELETE FROM chunks`,
		`DELETE FROM index_meta`,
		`DELETE FROM sqlite_sequence WHERE name = 'chunks'`,
	}
	for _, stmt := range stmts {
		if _, err := c.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to reset snapshot: %w", err)
		}
	}
	return nil
}

func (c *Client) SetMeta(key, value string) error {
	_, err := c.db.Exec(
		`INSERT INTO index_meta (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set meta %s: %w", key, err)
	}
	return nil
}

func (c *Client) GetMeta(key string) (string, error) {
	var value string
	err := c.db.QueryRow(`SELECT value FROM index_meta WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", fmt.Errorf("meta key %s not found", key)
	}
	if err != nil {
		return "", fmt.Errorf("failed to get meta %s: %w", key, err)
	}
	return value, nil
}

// InsertChunks writes chunks and their vectors in insertion order inside a
// single transaction.
func (c *Client) InsertChunks(chunks []models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d vs %d", len(chunks), len(vectors))
	}

	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		`INSERT INTO chunks (id, doc_id, chunk_index, text, metadata, embedding)
		 VALUES (?, ?, ?, ?, ?, ?)`,
	)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	start := time.Now()
	for i, chunk := range chunks {
		metadataJSON, err := json.Marshal(chunk.Metadata)
		if err != nil {
			return fmt.Errorf("failed to marshal metadata for %s: %w", chunk.ID, err)
		}
		if _, err := stmt.Exec(
			chunk.ID,
			chunk.DocID,
			chunk.ChunkIndex,
			chunk.Text,
			string(metadataJSON),
			encodeVector(vectors[i]),
		); err != nil {
			return fmt.Errorf("failed to insert chunk %s: %w", chunk.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit chunks: %w", err)
	}

	logger.Info("Chunks persisted",
		zap.Int("count", len(chunks)),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}

// LoadAll returns every chunk with its vector, ordered by insertion position.
func (c *Client) LoadAll() ([]models.Chunk, [][]float32, error) {
	rows, err := c.db.Query(
		`SELECT id, doc_id, chunk_index, text, metadata, embedding
		 FROM chunks ORDER BY position`,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query chunks: %w", err)
	}
	defer rows.Close()

	var chunks []models.Chunk
	var vectors [][]float32
	for rows.Next() {
		var chunk models.Chunk
		var metadataJSON string
		var blob []byte

		if err := rows.Scan(
			&chunk.ID,
			&chunk.DocID,
			&chunk.ChunkIndex,
			&chunk.Text,
			&metadataJSON,
			&blob,
		); err != nil {
			return nil, nil, fmt.Errorf("failed to scan chunk row: %w", err)
		}

		if metadataJSON != "" {
			if err := json.Unmarshal([]byte(metadataJSON), &chunk.Metadata); err != nil {
				return nil, nil, fmt.Errorf("failed to unmarshal metadata for %s: %w", chunk.ID, err)
			}
		}

		vector, err := decodeVector(blob)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to decode vector for %s: %w", chunk.ID, err)
		}

		chunks = append(chunks, chunk)
		vectors = append(vectors, vector)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("failed to read chunk rows: %w", err)
	}

	return chunks, vectors, nil
}

// Vectors are stored as little-endian float32 sequences.
func encodeVector(vector []float32) []byte {
	blob := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(blob[4*i:], math.Float32bits(v))
	}
	return blob
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(blob))
	}
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vector, nil
}
