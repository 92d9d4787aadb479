package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"crime_pipeline/filter"
	"crime_pipeline/incident"
	"crime_pipeline/internal/config"
	"crime_pipeline/internal/pipeline"
	"crime_pipeline/internal/store"
	"crime_pipeline/metrics"
)

const maxUploadBytes = 25 * 1024 * 1024

// Router builds HTTP handlers for /api and /ops.
type Router struct {
	cfg      config.Config
	store    *store.Store
	ingestor *pipeline.Ingestor
	metrics  *metrics.Metrics
	backfill func() (int, error)
}

func NewRouter(cfg config.Config, st *store.Store, ing *pipeline.Ingestor, m *metrics.Metrics, backfill func() (int, error)) *Router {
	return &Router{cfg: cfg, store: st, ingestor: ing, metrics: m, backfill: backfill}
}

func (r *Router) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/reports", r.uploadReport)
	mux.HandleFunc("/api/records", r.records)
	mux.HandleFunc("/api/records/export", r.exportRecords)
	mux.HandleFunc("/api/insights", r.insights)
	mux.HandleFunc("/ops/status", r.status)
	mux.HandleFunc("/ops/health", r.health)
	mux.HandleFunc("/ops/backfill", r.runBackfill)
}

func (r *Router) uploadReport(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := req.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "bad multipart form", http.StatusBadRequest)
		return
	}
	file, header, err := req.FormFile("report")
	if err != nil {
		http.Error(w, "report file required", http.StatusBadRequest)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		http.Error(w, "read upload", http.StatusInternalServerError)
		return
	}

	rec, added, err := r.ingestor.IngestDocument(req.Context(), header.Filename, data)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]any{
		"filename": header.Filename,
		"record":   rec,
		"added":    added,
	})
}

func (r *Router) records(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	result, err := r.filteredRecords(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, result)
}

func (r *Router) exportRecords(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	result, err := r.filteredRecords(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="crime_records.csv"`)
	if err := incident.WriteCSV(w, result.Records); err != nil {
		log.Printf("write csv: %v", err)
	}
}

func (r *Router) insights(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	result, err := r.filteredRecords(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	counts := map[string]int{}
	for _, rec := range result.Records {
		if rec.Category != nil {
			counts[*rec.Category]++
		}
	}
	respondJSON(w, map[string]any{
		"total_before":    result.TotalBefore,
		"total_after":     result.TotalAfter,
		"category_counts": counts,
	})
}

func (r *Router) filteredRecords(req *http.Request) (filter.Result, error) {
	q := req.URL.Query()
	records, err := r.store.LoadRecords(req.Context(), sourceFromQuery(q))
	if err != nil {
		return filter.Result{}, fmt.Errorf("load records: %w", err)
	}
	return filter.Apply(records, criteriaFromQuery(q)), nil
}

func (r *Router) status(w http.ResponseWriter, req *http.Request) {
	ctx := req.Context()
	total, _ := r.store.CountRecords(ctx, "")
	pdf, _ := r.store.CountRecords(ctx, store.SourcePDF)
	comp, _ := r.store.CountRecords(ctx, store.SourceCompetition)
	respondJSON(w, map[string]any{
		"records":             total,
		"pdf_records":         pdf,
		"competition_records": comp,
		"workers":             r.cfg.WorkerCount,
		"metrics":             r.metrics.Snapshot(),
	})
}

func (r *Router) health(w http.ResponseWriter, req *http.Request) {
	if err := r.store.Health(req.Context()); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (r *Router) runBackfill(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	queued, err := r.backfill()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	respondJSON(w, map[string]any{"queued": queued})
}

func sourceFromQuery(q url.Values) string {
	switch strings.ToLower(q.Get("source")) {
	case store.SourcePDF:
		return store.SourcePDF
	case store.SourceCompetition:
		return store.SourceCompetition
	default:
		return ""
	}
}

// criteriaFromQuery translates query parameters into filter criteria.
// Unspecified parameters impose no constraint; contradictory ranges pass
// through untouched so the result reflects them literally.
func criteriaFromQuery(q url.Values) filter.Criteria {
	c := filter.Criteria{
		Categories:  nonEmptyValues(q["category"]),
		Districts:   nonEmptyValues(q["district"]),
		Resolutions: nonEmptyValues(q["resolution"]),
		DaysOfWeek:  nonEmptyValues(q["day_of_week"]),
		TimesOfDay:  nonEmptyValues(q["time_of_day"]),
	}
	c.Start = incident.ParseDateLenient(q.Get("start_date"))
	c.End = incident.ParseDateLenient(q.Get("end_date"))
	for _, v := range q["hour"] {
		if h, err := strconv.Atoi(v); err == nil {
			c.Hours = append(c.Hours, h)
		}
	}

	// Severity comes in one of two shapes: a min/max range when the data
	// carries several severity levels, or a single-value toggle when it
	// does not. The caller picks the shape; both are honored here.
	minRaw, maxRaw := q.Get("severity_min"), q.Get("severity_max")
	switch {
	case minRaw != "" || maxRaw != "":
		rangeCrit := filter.SeverityRange{Min: 0, Max: 5}
		if n, err := strconv.Atoi(minRaw); err == nil {
			rangeCrit.Min = n
		}
		if n, err := strconv.Atoi(maxRaw); err == nil {
			rangeCrit.Max = n
		}
		c.Severity = rangeCrit
	case q.Get("severity") != "":
		if n, err := strconv.Atoi(q.Get("severity")); err == nil {
			showAll, _ := strconv.ParseBool(q.Get("show_all"))
			c.Severity = filter.SeverityToggle{Value: n, IncludeOthers: showAll}
		}
	}
	return c
}

func nonEmptyValues(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func respondJSON(w http.ResponseWriter, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("write json: %v", err)
	}
}
