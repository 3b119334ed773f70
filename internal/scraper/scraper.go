package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"

	"github.com/sih-agent/backend/internal/metrics"
	"github.com/sih-agent/backend/pkg/logger"
	"github.com/sih-agent/backend/pkg/retry"
)

// Pages are the fixed sections of the hackathon portal worth indexing, keyed
// by the output file name they produce.
var Pages = map[string]string{
	"sih2025_homepage":           "/",
	"sih2025_problem_statements": "/sih2025PS",
	"sih2025_themes":             "/SIH_Themes",
	"sih2025_faqs":               "/faqs",
	"sih2025_contact":            "/contactUs",
	"sih2024_homepage":           "/sih2024",
	"sih2024_problem_statements": "/sih2024PS",
	"sih2023_problem_statements": "/sih2023PS",
}

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0 Safari/537.36",
}

var whitespace = regexp.MustCompile(`\s+`)

// PageRecord is what one scraped page serializes to. The loader later treats
// the whole record as opaque searchable text.
type PageRecord struct {
	Page      string              `json:"page"`
	URL       string              `json:"url"`
	Title     string              `json:"title"`
	Content   string              `json:"content"`
	Tables    []map[string]string `json:"tables,omitempty"`
	ScrapedAt time.Time           `json:"scraped_at"`
}

type Scraper struct {
	baseURL     string
	delay       time.Duration
	httpClient  *http.Client
	retryConfig retry.Config
	uaIndex     int
}

func New(baseURL string, timeout, delay time.Duration) *Scraper {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Scraper{
		baseURL: baseURL,
		delay:   delay,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		retryConfig: retry.Config{
			MaxAttempts:    3,
			InitialDelay:   time.Second,
			MaxDelay:       8 * time.Second,
			Multiplier:     2.0,
			JitterFraction: 0.1,
			Logger:         logger.GetLogger(),
		},
	}
}

// ScrapeAll fetches every known page and writes one JSON file per page into
// outDir. A page that keeps failing is skipped, not fatal: a partial scrape
// is still a usable corpus, unlike a partial load at index-build time.
func (s *Scraper) ScrapeAll(ctx context.Context, outDir string) error {
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	var written int
	for name, path := range Pages {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		record, err := s.ScrapePage(ctx, name, path)
		if err != nil {
			metrics.PagesScraped.WithLabelValues("error").Inc()
			logger.Warn("Page skipped", zap.String("page", name), zap.Error(err))
			continue
		}
		metrics.PagesScraped.WithLabelValues("ok").Inc()

		if err := writeRecord(outDir, name, record); err != nil {
			return err
		}
		written++

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.delay):
		}
	}

	logger.Info("Scrape finished",
		zap.Int("pages", len(Pages)),
		zap.Int("written", written),
	)
	if written == 0 {
		return fmt.Errorf("no pages could be scraped")
	}
	return nil
}

// ScrapePage fetches and extracts a single page.
func (s *Scraper) ScrapePage(ctx context.Context, name, path string) (*PageRecord, error) {
	fullURL, err := url.JoinPath(s.baseURL, path)
	if err != nil {
		return nil, fmt.Errorf("bad page path %s: %w", path, err)
	}

	doc, err := retry.DoWithResult(ctx, s.retryConfig, func() (*goquery.Document, error) {
		return s.fetch(ctx, fullURL)
	})
	if err != nil {
		return nil, err
	}

	record := &PageRecord{
		Page:      name,
		URL:       fullURL,
		Title:     extractTitle(doc),
		Content:   extractText(doc),
		Tables:    extractTables(doc),
		ScrapedAt: time.Now().UTC(),
	}

	logger.Debug("Page scraped",
		zap.String("page", name),
		zap.Int("content_len", len(record.Content)),
		zap.Int("table_rows", len(record.Tables)),
	)
	return record, nil
}

func (s *Scraper) fetch(ctx context.Context, fullURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.nextUserAgent())
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", fullURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d for %s", resp.StatusCode, fullURL)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}

func (s *Scraper) nextUserAgent() string {
	ua := userAgents[s.uaIndex%len(userAgents)]
	s.uaIndex++
	return ua
}

func extractTitle(doc *goquery.Document) string {
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	if title == "" {
		title = "Untitled"
	}
	return title
}

func extractText(doc *goquery.Document) string {
	body := doc.Find("body").Clone()
	body.Find("script, style, nav, footer, header, aside, table").Remove()

	text := body.Text()
	text = whitespace.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}

// extractTables flattens every data table into one record per row, keyed by
// the table's header cells. Problem-statement listings live in such tables.
func extractTables(doc *goquery.Document) []map[string]string {
	var rows []map[string]string

	doc.Find("table").Each(func(_ int, table *goquery.Selection) {
		var headers []string
		table.Find("thead th, tr th").Each(func(_ int, th *goquery.Selection) {
			headers = append(headers, cleanCell(th.Text()))
		})
		if len(headers) == 0 {
			return
		}

		table.Find("tbody tr").Each(func(_ int, tr *goquery.Selection) {
			cells := tr.Find("td")
			if cells.Length() == 0 {
				return
			}
			row := make(map[string]string, len(headers))
			cells.Each(func(i int, td *goquery.Selection) {
				if i < len(headers) {
					row[headers[i]] = cleanCell(td.Text())
				}
			})
			rows = append(rows, row)
		})
	})

	return rows
}

func cleanCell(text string) string {
	return strings.TrimSpace(whitespace.ReplaceAllString(text, " "))
}

func writeRecord(outDir, name string, record *PageRecord) error {
	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal page %s: %w", name, err)
	}

	path := filepath.Join(outDir, name+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
