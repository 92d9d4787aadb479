package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crime_pipeline/classify"
	"crime_pipeline/internal/config"
	"crime_pipeline/internal/events"
	"crime_pipeline/internal/store"
	"crime_pipeline/metrics"
)

const fakeReport = `Report Number: 2024-001
Date & Time: 2024-06-04 13:30:00
Category: Robbery
Detailed Description: Suspect took a phone.
Police District: Central
Resolution: None
Incident Location: 800 Market St
Coordinates: (37.7749, -122.4194)
`

type textSource struct {
	text string
	err  error
}

func (s textSource) ExtractText([]byte) (string, error) { return s.text, s.err }

func newTestIngestor(t *testing.T, src textSource, clf classify.Classifier) (*Ingestor, *metrics.Metrics) {
	t.Helper()
	cfg := config.Config{WorkerCount: 2, QueueSize: 8}
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	m := metrics.New()
	return New(cfg, st, src, clf, m, events.NewBus()), m
}

func TestIngestDocument(t *testing.T) {
	ing, m := newTestIngestor(t, textSource{text: fakeReport}, nil)

	rec, added, err := ing.IngestDocument(context.Background(), "r1.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	require.NotNil(t, rec.Category)
	assert.Equal(t, "ROBBERY", *rec.Category)
	assert.Equal(t, 4, rec.Severity)
	assert.Equal(t, "TUESDAY", *rec.DayOfWeek)

	snap := m.Snapshot()
	assert.EqualValues(t, 1, snap.ReportsExtracted)
	assert.EqualValues(t, 1, snap.RecordsMerged)
}

func TestIngestDocumentDuplicateDropped(t *testing.T) {
	ing, m := newTestIngestor(t, textSource{text: fakeReport}, nil)
	ctx := context.Background()

	_, added, err := ing.IngestDocument(ctx, "r1.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	_, added, err = ing.IngestDocument(ctx, "r1-copy.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, 0, added, "an identical report merges to nothing")
	assert.EqualValues(t, 1, m.Snapshot().DuplicatesDropped)
}

func TestIngestDocumentDegradedExtraction(t *testing.T) {
	ing, m := newTestIngestor(t, textSource{err: errors.New("unreadable")}, nil)

	rec, added, err := ing.IngestDocument(context.Background(), "bad.pdf", nil)
	require.NoError(t, err, "extraction failure degrades, it does not abort")
	assert.Equal(t, 1, added)
	assert.Nil(t, rec.Category)
	assert.Nil(t, rec.Dates)
	assert.Equal(t, 0, rec.Severity)
	assert.EqualValues(t, 1, m.Snapshot().ExtractionFailures)
}

func TestIngestDocumentUsesClassifier(t *testing.T) {
	clf := classify.Func(func(_ context.Context, text string) (string, error) {
		return "ARSON", nil
	})
	ing, _ := newTestIngestor(t, textSource{text: fakeReport}, clf)

	rec, _, err := ing.IngestDocument(context.Background(), "r1.pdf", nil)
	require.NoError(t, err)
	assert.Equal(t, "ARSON", *rec.Category)
	assert.Equal(t, 5, rec.Severity)
}

func TestEnqueueFileDeduplicatesInFlight(t *testing.T) {
	ing, _ := newTestIngestor(t, textSource{text: fakeReport}, nil)
	// Workers not started: the first enqueue parks in the queue and the
	// second must be rejected as already pending.
	assert.True(t, ing.EnqueueFile("/tmp/r1.pdf"))
	assert.False(t, ing.EnqueueFile("/tmp/r1.pdf"))
	assert.True(t, ing.EnqueueFile("/tmp/r2.pdf"))
}

func TestWorkersProcessQueuedFiles(t *testing.T) {
	ing, m := newTestIngestor(t, textSource{text: fakeReport}, nil)
	dir := t.TempDir()
	path := filepath.Join(dir, "r1.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	ing.Start(ctx)
	require.True(t, ing.EnqueueFile(path))

	require.Eventually(t, func() bool {
		return m.Snapshot().RecordsMerged == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	ing.Stop()
}

func TestIsReport(t *testing.T) {
	assert.True(t, IsReport("/inbox/a.pdf"))
	assert.True(t, IsReport("/inbox/a.PDF"))
	assert.False(t, IsReport("/inbox/a.csv"))
	assert.False(t, IsReport("/inbox/pdf"))
}
