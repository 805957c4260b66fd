package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	DocumentsIngested = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "lekton", Name: "documents_ingested_total", Help: "Number of successful document ingestions."},
	)
	SchemasIngested = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "lekton", Name: "schemas_ingested_total", Help: "Number of successful schema version ingestions."},
	)
	IngestRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "lekton", Name: "ingest_rejected_total", Help: "Number of rejected ingestions by reason."},
		[]string{"reason"},
	)
	DanglingLinks = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "lekton", Name: "dangling_links_total", Help: "Number of dangling internal links observed during ingestion."},
	)
	IndexDelivered = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "lekton", Name: "search_index_delivered_total", Help: "Number of documents delivered to the search index."},
	)
	IndexRetries = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "lekton", Name: "search_index_retries_total", Help: "Number of search index delivery retries."},
	)
	IndexFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: "lekton", Name: "search_index_failures_total", Help: "Number of documents dropped after exhausting index delivery retries."},
	)
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "lekton", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "lekton", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(DocumentsIngested)
	reg.MustRegister(SchemasIngested)
	reg.MustRegister(IngestRejected)
	reg.MustRegister(DanglingLinks)
	reg.MustRegister(IndexDelivered)
	reg.MustRegister(IndexRetries)
	reg.MustRegister(IndexFailures)
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
}
