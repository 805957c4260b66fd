package search

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/lekton/lekton/pkg/logger"
	"github.com/lekton/lekton/pkg/metrics"
)

// Indexer delivers documents to the search engine asynchronously. Ingestion
// must not block on the engine, so writes go through a bounded queue drained
// by a single worker that retries transient failures with exponential
// backoff.
type Indexer struct {
	searcher       Searcher
	queue          chan *SearchDocument
	maxRetries     uint64
	attemptTimeout time.Duration
	wg             sync.WaitGroup
}

// attemptTimeout bounds one delivery attempt; a hung engine connection must
// not stall the worker forever.
const defaultAttemptTimeout = 10 * time.Second

// NewIndexer starts the delivery worker. queueSize bounds the number of
// pending documents; maxRetries bounds delivery attempts per document.
func NewIndexer(searcher Searcher, queueSize int, maxRetries int) *Indexer {
	idx := &Indexer{
		searcher:       searcher,
		queue:          make(chan *SearchDocument, queueSize),
		maxRetries:     uint64(maxRetries),
		attemptTimeout: defaultAttemptTimeout,
	}
	idx.wg.Add(1)
	go idx.run()
	return idx
}

// Submit enqueues a document for indexing. It never blocks; when the queue
// is full the document is dropped and the failure is recorded.
func (idx *Indexer) Submit(doc *SearchDocument) {
	select {
	case idx.queue <- doc:
	default:
		logger.Errorf("index queue full, dropping document %s", doc.Slug)
		metrics.IndexFailures.Inc()
	}
}

// Close stops accepting documents and blocks until the queue has drained.
func (idx *Indexer) Close() {
	close(idx.queue)
	idx.wg.Wait()
}

func (idx *Indexer) run() {
	defer idx.wg.Done()
	for doc := range idx.queue {
		idx.deliver(doc)
	}
}

func (idx *Indexer) deliver(doc *SearchDocument) {
	attempt := 0
	op := func() error {
		attempt++
		ctx, cancel := context.WithTimeout(context.Background(), idx.attemptTimeout)
		err := idx.searcher.IndexDocument(ctx, doc)
		cancel()
		if err != nil {
			logger.Warnf("index delivery attempt %d for %s failed: %v", attempt, doc.Slug, err)
			metrics.IndexRetries.Inc()
		}
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = 100 * time.Millisecond
	bo.MaxInterval = 10 * time.Second
	if err := backoff.Retry(op, backoff.WithMaxRetries(bo, idx.maxRetries)); err != nil {
		logger.Errorf("giving up indexing document %s: %v", doc.Slug, err)
		metrics.IndexFailures.Inc()
		return
	}
	metrics.IndexDelivered.Inc()
}
