package ingestion

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sih-agent/backend/internal/storage/models"
	"github.com/sih-agent/backend/pkg/logger"
)

const (
	DefaultChunkSize    = 1000
	DefaultChunkOverlap = 200
)

// separators, in preference order: paragraph break, line break, space,
// sentence period. A hard cut is the last resort.
var separators = []string{"\n\n", "\n", " ", "."}

// Splitter cuts document content into overlapping windows of at most
// chunkSize characters. Consecutive chunks from the same document overlap by
// backtracking the next start by overlap characters from the previous end, so
// the chunks cover the content with no gaps. Splitting is deterministic.
type Splitter struct {
	chunkSize int
	overlap   int
}

func NewSplitter(chunkSize, overlap int) *Splitter {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}
	if overlap < 0 {
		overlap = DefaultChunkOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{chunkSize: chunkSize, overlap: overlap}
}

// SplitDocuments chunks every document, each chunk inheriting its parent's
// metadata.
func (s *Splitter) SplitDocuments(docs []models.Document) []models.Chunk {
	var chunks []models.Chunk
	for _, doc := range docs {
		for i, text := range s.Split(doc.Content) {
			chunks = append(chunks, models.Chunk{
				ID:         fmt.Sprintf("%s_chunk_%d", doc.ID, i),
				DocID:      doc.ID,
				ChunkIndex: i,
				Text:       text,
				Metadata:   models.CloneMetadata(doc.Metadata),
			})
		}
	}

	logger.Info("Documents chunked",
		zap.Int("documents", len(docs)),
		zap.Int("chunks", len(chunks)),
	)
	return chunks
}

// Split cuts content into chunk texts. A chunk exceeds chunkSize only when a
// single unbroken run of characters (no separator anywhere inside the window
// or beyond it) is itself longer than chunkSize; such a run is kept whole.
func (s *Splitter) Split(content string) []string {
	spans := s.spans(content)
	out := make([]string, 0, len(spans))
	for _, sp := range spans {
		out = append(out, content[sp.start:sp.end])
	}
	return out
}

type span struct {
	start, end int
}

func (s *Splitter) spans(content string) []span {
	if content == "" {
		return nil
	}

	var out []span
	start := 0
	for start < len(content) {
		if len(content)-start <= s.chunkSize {
			out = append(out, span{start, len(content)})
			break
		}

		end := s.cutPoint(content, start)
		out = append(out, span{start, end})

		next := end - s.overlap
		if next <= start {
			// Overlap would stall the scan; give up the overlap for
			// this boundary instead of looping forever.
			next = end
		}
		// The backtrack counts bytes; land on a rune boundary so a chunk
		// never starts inside a multi-byte character.
		for next < len(content) && !utf8.RuneStart(content[next]) {
			next++
		}
		start = next
	}
	return out
}

// cutPoint returns the exclusive end offset of the chunk starting at start,
// honoring the separator preference order.
func (s *Splitter) cutPoint(content string, start int) int {
	window := content[start : start+s.chunkSize]

	for _, sep := range separators {
		if idx := strings.LastIndex(window, sep); idx > 0 {
			return start + idx + len(sep)
		}
	}

	// No separator inside the window: the window sits inside one oversized
	// atom. Extend to the atom's end (the next separator or end of input).
	end := start + s.chunkSize
	for end < len(content) && !separatorAt(content, end) {
		end++
	}
	return end
}

func separatorAt(content string, pos int) bool {
	for _, sep := range separators {
		if strings.HasPrefix(content[pos:], sep) {
			return true
		}
	}
	return false
}
