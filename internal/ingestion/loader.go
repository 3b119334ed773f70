package ingestion

import (
	"bytes"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/sih-agent/backend/internal/storage/models"
	"github.com/sih-agent/backend/pkg/logger"
)

// LoadDirectory reads every JSON file in dir and converts it into documents.
// A file holding a JSON array yields one document per element; a file holding
// a single object yields one document for the whole file. Each element is
// re-serialized as indented JSON so all original fields stay searchable as
// text. Any file that is not valid JSON aborts the whole load: a partial
// corpus is worse than no corpus at build time.
func LoadDirectory(dir string) ([]models.Document, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to list json files: %w", err)
	}
	sort.Strings(paths)

	logger.Info("Loading scraped records", zap.String("dir", dir), zap.Int("files", len(paths)))

	var documents []models.Document
	for _, path := range paths {
		docs, err := loadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", filepath.Base(path), err)
		}
		documents = append(documents, docs...)
		logger.Debug("File loaded",
			zap.String("file", filepath.Base(path)),
			zap.Int("documents", len(docs)),
		)
	}

	logger.Info("Documents loaded", zap.Int("count", len(documents)))
	return documents, nil
}

func loadFile(path string) ([]models.Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	source := filepath.Base(path)

	// The array-vs-object decision is made once here; everything downstream
	// sees uniform documents.
	switch firstToken(raw) {
	case '[':
		var elements []json.RawMessage
		if err := json.Unmarshal(raw, &elements); err != nil {
			return nil, fmt.Errorf("invalid json array: %w", err)
		}
		docs := make([]models.Document, 0, len(elements))
		for i, element := range elements {
			content, err := canonicalJSON(element)
			if err != nil {
				return nil, fmt.Errorf("invalid json element %d: %w", i, err)
			}
			docs = append(docs, newDocument(content, source, i))
		}
		return docs, nil
	default:
		var value json.RawMessage
		if err := json.Unmarshal(raw, &value); err != nil {
			return nil, fmt.Errorf("invalid json: %w", err)
		}
		content, err := canonicalJSON(value)
		if err != nil {
			return nil, err
		}
		return []models.Document{newDocument(content, source, 0)}, nil
	}
}

func newDocument(content, source string, ordinal int) models.Document {
	return models.Document{
		ID:        documentID(source, ordinal),
		Content:   content,
		Metadata:  map[string]string{"source": source},
		CreatedAt: time.Now(),
	}
}

// canonicalJSON re-serializes a raw JSON value with two-space indentation.
func canonicalJSON(raw json.RawMessage) (string, error) {
	var value interface{}
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", err
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(value); err != nil {
		return "", err
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n")), nil
}

func firstToken(raw []byte) byte {
	trimmed := bytes.TrimLeft(raw, " \t\r\n")
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func documentID(source string, ordinal int) string {
	hash := md5.Sum([]byte(fmt.Sprintf("%s#%d", source, ordinal)))
	return fmt.Sprintf("%x", hash)
}
