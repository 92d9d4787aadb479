package watch

import (
	"context"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"crime_pipeline/internal/config"
	"crime_pipeline/internal/pipeline"
)

// Watcher monitors INBOX_DIR for new report documents and hands them to the
// ingest pipeline.
type Watcher struct {
	cfg      config.Config
	ingestor *pipeline.Ingestor
}

func New(cfg config.Config, ing *pipeline.Ingestor) *Watcher {
	return &Watcher{cfg: cfg, ingestor: ing}
}

func (w *Watcher) Start(ctx context.Context) error {
	if !w.cfg.EnableWatcher {
		log.Println("watcher disabled")
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case evt := <-watcher.Events:
				if evt.Op&(fsnotify.Create|fsnotify.Rename) != 0 && pipeline.IsReport(evt.Name) {
					log.Printf("detected new report: %s", filepath.Base(evt.Name))
					w.ingestor.EnqueueFile(evt.Name)
				}
			case err := <-watcher.Errors:
				log.Printf("watcher error: %v", err)
			}
		}
	}()
	return watcher.Add(w.cfg.InboxDir)
}

// Backfill enqueues ingestion for report files already in the inbox.
func (w *Watcher) Backfill() (int, error) {
	entries, err := filepath.Glob(filepath.Join(w.cfg.InboxDir, "*"))
	if err != nil {
		return 0, err
	}
	queued := 0
	for _, e := range entries {
		if pipeline.IsReport(e) && w.ingestor.EnqueueFile(e) {
			queued++
		}
	}
	return queued, nil
}
