package app

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"time"

	"crime_pipeline/classify"
	"crime_pipeline/extract"
	"crime_pipeline/incident"
	"crime_pipeline/internal/config"
	"crime_pipeline/internal/events"
	"crime_pipeline/internal/httpapi"
	"crime_pipeline/internal/notify"
	"crime_pipeline/internal/pipeline"
	"crime_pipeline/internal/store"
	"crime_pipeline/internal/watch"
	"crime_pipeline/metrics"
)

// App wires the configuration, unified store, ingest pipeline, inbox
// watcher, and HTTP surface into a runnable service.
type App struct {
	cfg      config.Config
	store    *store.Store
	ingestor *pipeline.Ingestor
	watcher  *watch.Watcher
	bus      *events.Bus
	notifier *notify.Webhook
	mux      *http.ServeMux
}

func New(cfg config.Config) (*App, error) {
	for _, dir := range []string{cfg.InboxDir, cfg.WorkDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return nil, err
	}

	var clf classify.Classifier
	if cfg.ClassifierURL != "" {
		clf = classify.NewHTTPClassifier(cfg.ClassifierURL)
	}

	m := metrics.New()
	bus := events.NewBus()
	ing := pipeline.New(cfg, st, extract.NewPDFSource(), clf, m, bus)
	watcher := watch.New(cfg, ing)

	mux := http.NewServeMux()
	httpapi.NewRouter(cfg, st, ing, m, watcher.Backfill).Register(mux)

	return &App{
		cfg:      cfg,
		store:    st,
		ingestor: ing,
		watcher:  watcher,
		bus:      bus,
		notifier: notify.NewWebhook(cfg.NotifyURL),
		mux:      mux,
	}, nil
}

// Run starts the workers, watcher, and HTTP server, and blocks until the
// context is cancelled.
func (a *App) Run(ctx context.Context) error {
	go a.logEvents(ctx)

	a.ingestor.Start(ctx)
	if err := a.watcher.Start(ctx); err != nil {
		return err
	}
	a.loadCompetitionData(ctx)

	srv := &http.Server{
		Addr:              a.cfg.HTTPPort,
		Handler:           a.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("http listening on %s", a.cfg.HTTPPort)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("http shutdown: %v", err)
	}
	a.ingestor.Stop()
	return a.store.Close()
}

// loadCompetitionData merges the configured historical dataset into the
// unified store. Failures leave the store as-is; the service keeps running
// on whatever records it already holds.
func (a *App) loadCompetitionData(ctx context.Context) {
	if a.cfg.CompetitionCSV == "" {
		return
	}
	f, err := os.Open(a.cfg.CompetitionCSV)
	if err != nil {
		log.Printf("competition dataset unavailable (%s): %v", a.cfg.CompetitionCSV, err)
		return
	}
	defer f.Close()

	header, rows, err := incident.ReadRawCSV(f)
	if err != nil {
		log.Printf("competition dataset unreadable (%s): %v", a.cfg.CompetitionCSV, err)
		return
	}
	batch := incident.ReconcileBatch(header, rows)
	added, err := a.ingestor.IngestBatch(ctx, store.SourceCompetition, batch)
	if err != nil {
		log.Printf("competition dataset merge failed: %v", err)
		return
	}
	log.Printf("competition dataset merged: rows=%d added=%d", len(batch), added)
}

func (a *App) logEvents(ctx context.Context) {
	ch := a.bus.Subscribe()
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-ch:
			switch e := ev.(type) {
			case events.BatchMerged:
				log.Printf("merge source=%s added=%d dropped=%d", e.Source, e.Added, e.Dropped)
			case events.ExtractionDegraded:
				log.Printf("extraction degraded report=%s reason=%s", e.Report, e.Reason)
				msg := notify.Message{Text: "degraded extraction: " + e.Report + " (" + e.Reason + ")"}
				if err := a.notifier.Send(ctx, msg); err != nil {
					log.Printf("notify: %v", err)
				}
			}
		}
	}
}
