package scraper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixtureHTML = `<!DOCTYPE html>
<html>
<head><title>Smart India Hackathon 2025</title><style>body{color:red}</style></head>
<body>
<nav>Home | About</nav>
<script>console.log("tracking")</script>
<h1>SIH 2025</h1>
<p>Registration opens in August 2025. Grand finale in September 2025.</p>
<table>
<thead><tr><th>PS Number</th><th>Title</th><th>Theme</th></tr></thead>
<tbody>
<tr><td>SIH1001</td><td>Smart irrigation system</td><td>Agriculture</td></tr>
<tr><td>SIH1002</td><td>Medical record portal</td><td>MedTech</td></tr>
</tbody>
</table>
<footer>Copyright</footer>
</body>
</html>`

func newFixtureServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(fixtureHTML))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestScrapePageExtractsContent(t *testing.T) {
	srv := newFixtureServer(t)
	s := New(srv.URL, 5*time.Second, 0)

	record, err := s.ScrapePage(context.Background(), "sih2025_homepage", "/")
	require.NoError(t, err)

	assert.Equal(t, "sih2025_homepage", record.Page)
	assert.Equal(t, "Smart India Hackathon 2025", record.Title)
	assert.Contains(t, record.Content, "Registration opens in August 2025")
	assert.Contains(t, record.Content, "Grand finale in September 2025")
	assert.NotContains(t, record.Content, "tracking", "script content must be stripped")
	assert.NotContains(t, record.Content, "color:red", "style content must be stripped")
	assert.NotContains(t, record.Content, "Copyright", "footer must be stripped")
	assert.False(t, record.ScrapedAt.IsZero())
}

func TestScrapePageExtractsTables(t *testing.T) {
	srv := newFixtureServer(t)
	s := New(srv.URL, 5*time.Second, 0)

	record, err := s.ScrapePage(context.Background(), "sih2025_problem_statements", "/sih2025PS")
	require.NoError(t, err)

	require.Len(t, record.Tables, 2)
	assert.Equal(t, map[string]string{
		"PS Number": "SIH1001",
		"Title":     "Smart irrigation system",
		"Theme":     "Agriculture",
	}, record.Tables[0])
	assert.Equal(t, "SIH1002", record.Tables[1]["PS Number"])
}

func TestScrapePageRetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(fixtureHTML))
	}))
	t.Cleanup(srv.Close)

	s := New(srv.URL, 5*time.Second, 0)
	s.retryConfig.InitialDelay = time.Millisecond
	s.retryConfig.MaxDelay = 2 * time.Millisecond

	record, err := s.ScrapePage(context.Background(), "sih2025_homepage", "/")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load())
	assert.Contains(t, record.Content, "Registration opens")
}

func TestScrapeAllWritesOneFilePerPage(t *testing.T) {
	srv := newFixtureServer(t)
	s := New(srv.URL, 5*time.Second, 0)
	outDir := t.TempDir()

	err := s.ScrapeAll(context.Background(), outDir)
	require.NoError(t, err)

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, len(Pages))

	data, err := os.ReadFile(filepath.Join(outDir, "sih2025_homepage.json"))
	require.NoError(t, err)

	var record PageRecord
	require.NoError(t, json.Unmarshal(data, &record))
	assert.Equal(t, "sih2025_homepage", record.Page)
	assert.True(t, strings.HasSuffix(record.URL, "/"))
	assert.Contains(t, record.Content, "Grand finale")
}

func TestScrapeAllFailsWhenNothingScraped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	s := New(srv.URL, 5*time.Second, 0)
	s.retryConfig.MaxAttempts = 1

	err := s.ScrapeAll(context.Background(), t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no pages could be scraped")
}

func TestUserAgentRotates(t *testing.T) {
	s := New("http://example.invalid", time.Second, 0)

	seen := make(map[string]bool)
	for i := 0; i < len(userAgents); i++ {
		seen[s.nextUserAgent()] = true
	}
	assert.Len(t, seen, len(userAgents))
}
