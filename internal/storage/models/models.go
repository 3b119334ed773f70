package models

import "time"

// Document is one retrievable unit of scraped content. Its content is the
// canonical JSON text of a single scraped record; metadata carries provenance,
// at minimum the originating file name under the "source" key.
type Document struct {
	ID        string
	Content   string
	Metadata  map[string]string
	CreatedAt time.Time
}

// Chunk is a bounded slice of a Document's content. It inherits the parent
// document's metadata unchanged.
type Chunk struct {
	ID         string
	DocID      string
	ChunkIndex int
	Text       string
	Metadata   map[string]string
}

// SearchResult pairs a retrieved chunk with its similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float32
}

// Chat roles.
const (
	RoleHuman     = "human"
	RoleAssistant = "assistant"
)

// ChatTurn is one utterance in a conversation.
type ChatTurn struct {
	Role string
	Text string
}

// CloneMetadata returns a copy of a metadata map so chunks never alias the
// parent document's map.
func CloneMetadata(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
