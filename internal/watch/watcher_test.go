package watch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"crime_pipeline/internal/config"
	"crime_pipeline/internal/events"
	"crime_pipeline/internal/pipeline"
	"crime_pipeline/internal/store"
	"crime_pipeline/metrics"
)

type noopSource struct{}

func (noopSource) ExtractText([]byte) (string, error) { return "", nil }

func TestBackfillQueuesReportFiles(t *testing.T) {
	inbox := t.TempDir()
	for _, name := range []string{"a.pdf", "b.PDF", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(inbox, name), []byte("x"), 0o644))
	}

	cfg := config.Config{InboxDir: inbox, WorkerCount: 1, QueueSize: 8}
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	ing := pipeline.New(cfg, st, noopSource{}, nil, metrics.New(), events.NewBus())
	w := New(cfg, ing)

	queued, err := w.Backfill()
	require.NoError(t, err)
	assert.Equal(t, 2, queued, "only report documents are queued")

	queued, err = w.Backfill()
	require.NoError(t, err)
	assert.Equal(t, 0, queued, "already-queued paths are not re-queued")
}
