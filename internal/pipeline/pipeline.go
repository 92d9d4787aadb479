// Package pipeline runs the extraction → normalization → merge cycle for
// uploaded and watched report documents over a bounded worker pool.
// Individual records normalize independently; the unified store is the
// single accumulation point, so concurrent workers never interleave
// partial state.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"crime_pipeline/classify"
	"crime_pipeline/extract"
	"crime_pipeline/incident"
	"crime_pipeline/internal/config"
	"crime_pipeline/internal/events"
	"crime_pipeline/internal/store"
	"crime_pipeline/metrics"
)

type job struct {
	id   string
	path string
}

// Ingestor owns the report-processing worker pool. The classifier and store
// are injected once at construction; there is no ambient global state.
type Ingestor struct {
	cfg     config.Config
	store   *store.Store
	source  extract.Source
	clf     classify.Classifier
	metrics *metrics.Metrics
	bus     *events.Bus

	jobs    chan job
	running sync.Map // path -> struct{}
	wg      sync.WaitGroup
	started atomic.Bool
}

func New(cfg config.Config, st *store.Store, src extract.Source, clf classify.Classifier, m *metrics.Metrics, bus *events.Bus) *Ingestor {
	return &Ingestor{
		cfg:     cfg,
		store:   st,
		source:  src,
		clf:     clf,
		metrics: m,
		bus:     bus,
		jobs:    make(chan job, cfg.QueueSize),
	}
}

// Start launches the worker pool.
func (i *Ingestor) Start(ctx context.Context) {
	if !i.started.CompareAndSwap(false, true) {
		return
	}
	for w := 0; w < i.cfg.WorkerCount; w++ {
		i.wg.Add(1)
		go i.worker(ctx)
	}
}

// Stop waits for in-flight jobs after the context is cancelled.
func (i *Ingestor) Stop() {
	i.wg.Wait()
}

// EnqueueFile queues a report document for ingestion without blocking.
// A path already queued or processing is not queued again.
func (i *Ingestor) EnqueueFile(path string) bool {
	if _, exists := i.running.LoadOrStore(path, struct{}{}); exists {
		return false
	}
	j := job{id: uuid.NewString(), path: path}
	select {
	case i.jobs <- j:
		return true
	default:
		log.Printf("job queue full, dropping report %s", path)
		i.running.Delete(path)
		return false
	}
}

func (i *Ingestor) worker(ctx context.Context) {
	defer i.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case j, ok := <-i.jobs:
			if !ok {
				return
			}
			if err := i.processFile(ctx, j); err != nil {
				log.Printf("job=%s report=%s error: %v", j.id, filepath.Base(j.path), err)
			}
			i.running.Delete(j.path)
		}
	}
}

func (i *Ingestor) processFile(ctx context.Context, j job) error {
	data, err := os.ReadFile(j.path)
	if err != nil {
		return fmt.Errorf("read report: %w", err)
	}
	rec, added, err := i.IngestDocument(ctx, filepath.Base(j.path), data)
	if err != nil {
		return err
	}
	log.Printf("job=%s report=%s category=%s severity=%d added=%d",
		j.id, filepath.Base(j.path), derefOr(rec.Category, "-"), rec.Severity, added)
	return nil
}

// IngestDocument runs one document through the full cycle and merges the
// resulting record into the unified store. Documents with no recoverable
// text produce an all-null record, which is still merged; flagging such
// records for review is the caller's concern.
func (i *Ingestor) IngestDocument(ctx context.Context, name string, data []byte) (incident.Record, int, error) {
	text, err := i.source.ExtractText(data)
	i.metrics.RecordExtraction(err)
	if err != nil {
		// Degraded, not fatal: extraction proceeds on empty text and
		// yields an all-null field map.
		i.bus.Publish(events.ExtractionDegraded{Report: name, Reason: err.Error()})
		text = ""
	}

	fields := extract.Fields(text)
	rec := incident.Standardize(ctx, fields, i.clf)

	added, err := i.store.SaveBatch(ctx, store.SourcePDF, []incident.Record{rec})
	if err != nil {
		return rec, 0, fmt.Errorf("save record: %w", err)
	}
	i.metrics.RecordMerge(added, 1-added)
	i.bus.Publish(events.BatchMerged{Source: store.SourcePDF, Added: added, Dropped: 1 - added})
	return rec, added, nil
}

// IngestBatch merges an already-reconciled batch from an alternate source.
func (i *Ingestor) IngestBatch(ctx context.Context, source string, records []incident.Record) (int, error) {
	added, err := i.store.SaveBatch(ctx, source, records)
	if err != nil {
		return 0, err
	}
	i.metrics.RecordMerge(added, len(records)-added)
	i.bus.Publish(events.BatchMerged{Source: source, Added: added, Dropped: len(records) - added})
	return added, nil
}

// IsReport reports whether a path looks like an incident report document.
func IsReport(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

func derefOr(s *string, fallback string) string {
	if s == nil {
		return fallback
	}
	return *s
}
