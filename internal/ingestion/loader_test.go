package ingestion

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestLoadDirectoryArrayFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "problem_statements.json",
		`[{"title":"Smart irrigation","theme":"Agriculture"},{"title":"Telemedicine kiosk","theme":"Health"}]`)

	docs, err := LoadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, docs, 2, "one document per array element")

	assert.Contains(t, docs[0].Content, "Smart irrigation")
	assert.Contains(t, docs[1].Content, "Telemedicine kiosk")
	for _, doc := range docs {
		assert.Equal(t, "problem_statements.json", doc.Metadata["source"])
	}
	assert.NotEqual(t, docs[0].ID, docs[1].ID)
}

func TestLoadDirectoryObjectFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "faqs.json", `{"q":"When is SIH 2025?","a":"September"}`)

	docs, err := LoadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1, "a single object maps to exactly one document")
	assert.Contains(t, docs[0].Content, "When is SIH 2025?")
	assert.Equal(t, "faqs.json", docs[0].Metadata["source"])
}

func TestLoadDirectoryInvalidJSONAborts(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.json", `{"ok":true}`)
	writeFile(t, dir, "broken.json", `{"unterminated`)

	docs, err := LoadDirectory(dir)
	require.Error(t, err, "a malformed file aborts the whole load")
	assert.Contains(t, err.Error(), "broken.json")
	assert.Nil(t, docs)
}

func TestLoadDirectoryEmpty(t *testing.T) {
	docs, err := LoadDirectory(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, docs)
}

func TestLoadDirectoryIgnoresNonJSON(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "notes.txt", "not json at all")
	writeFile(t, dir, "records.json", `[{"x":1}]`)

	docs, err := LoadDirectory(dir)
	require.NoError(t, err)
	assert.Len(t, docs, 1)
}

func TestLoadDirectoryIndentsContent(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "themes.json", `[{"name":"Smart Education","year":2025}]`)

	docs, err := LoadDirectory(dir)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Contains(t, docs[0].Content, "\n  \"name\": \"Smart Education\"",
		"array elements are re-serialized as indented JSON")
}
