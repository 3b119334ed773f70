package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sih-agent/backend/pkg/logger"
)

var (
	TurnsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sih_rag_turns_total",
			Help: "Conversation turns by outcome",
		},
		[]string{"status"},
	)

	RejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sih_rag_rejections_total",
			Help: "Rejected inputs by reason",
		},
		[]string{"reason"},
	)

	TurnDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sih_rag_turn_duration_seconds",
			Help:    "End-to-end turn processing duration in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sih_rag_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)

	RetrievalResults = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sih_rag_retrieval_results_count",
			Help:    "Number of chunks retrieved per query",
			Buckets: []float64{0, 1, 2, 4, 8, 16},
		},
	)

	DocumentsLoaded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sih_rag_documents_loaded_total",
			Help: "Documents loaded during ingestion",
		},
	)

	ChunksIndexed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sih_rag_chunks_indexed_total",
			Help: "Chunks embedded and indexed",
		},
	)

	PagesScraped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sih_rag_pages_scraped_total",
			Help: "Pages fetched by the scraper, by outcome",
		},
		[]string{"status"},
	)
)

func Init() {
	prometheus.MustRegister(TurnsTotal)
	prometheus.MustRegister(RejectionsTotal)
	prometheus.MustRegister(TurnDuration)
	prometheus.MustRegister(LLMTokensUsed)
	prometheus.MustRegister(RetrievalResults)
	prometheus.MustRegister(DocumentsLoaded)
	prometheus.MustRegister(ChunksIndexed)
	prometheus.MustRegister(PagesScraped)
}

// Serve exposes /metrics on addr when addr is non-empty. The listener is a
// debug surface, not part of the conversational interface.
func Serve(addr string) {
	if addr == "" {
		return
	}
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Warn("Metrics listener stopped", zap.Error(err))
		}
	}()
}
