package handlers

import (
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vocalysis/backend/internal/audio"
	"github.com/vocalysis/backend/internal/batch"
	"github.com/vocalysis/backend/internal/pipeline"
	"github.com/vocalysis/backend/internal/queue"
	"github.com/vocalysis/backend/internal/report"
	"github.com/vocalysis/backend/internal/tempstore"
)

// Multipart field carrying the audio files.
const audioField = "audio_file"

// AnalyzeHandler receives audio uploads and runs them through the scoring
// pipeline, synchronously or via the job queue.
type AnalyzeHandler struct {
	analyzer    *pipeline.Analyzer
	uploads     *tempstore.Store
	batches     *batch.Store  // nil when redis is unavailable
	queueClient *queue.Client // nil when redis is unavailable
	maxMemory   int64
}

func NewAnalyzeHandler(analyzer *pipeline.Analyzer, uploads *tempstore.Store, batches *batch.Store, qc *queue.Client, maxMemoryMB int64) *AnalyzeHandler {
	return &AnalyzeHandler{
		analyzer:    analyzer,
		uploads:     uploads,
		batches:     batches,
		queueClient: qc,
		maxMemory:   maxMemoryMB << 20,
	}
}

// Analyze handles POST /api/v1/analyze.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.maxMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File[audioField]
	if len(files) == 0 {
		writeError(w, http.StatusBadRequest, "no audio file part in the request")
		return
	}

	batchID := uuid.NewString()
	staged, err := h.uploads.NewBatch(batchID)
	if err != nil {
		slog.Error("failed to create batch dir", "error", err)
		writeError(w, http.StatusInternalServerError, "could not stage upload")
		return
	}

	subs, valid := h.stageFiles(staged, files)
	if valid == 0 {
		staged.Remove()
		writeError(w, http.StatusBadRequest, "no valid audio files uploaded")
		return
	}

	if isAsync(r) {
		h.analyzeAsync(w, r, batchID, staged, subs)
		return
	}

	defer staged.Remove()

	table := h.analyzer.AnalyzeBatch(r.Context(), subs)
	h.storeResult(r, batchID, subs, table)

	if wantsCSV(r) {
		writeCSV(w, batchID, table)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"batch_id": batchID,
		"status":   batch.StatusReady,
		"rows":     table.Rows,
	})
}

// stageFiles saves every upload into the batch directory, keeping upload
// order. Files that cannot be accepted become pre-failed submissions so they
// still occupy their row.
func (h *AnalyzeHandler) stageFiles(staged *tempstore.Batch, files []*multipart.FileHeader) ([]pipeline.Submission, int) {
	subs := make([]pipeline.Submission, 0, len(files))
	valid := 0

	for _, fh := range files {
		name := tempstore.SanitizeFilename(fh.Filename)
		if name == "" {
			name = "upload-" + uuid.NewString()[:8]
		}

		if !audio.SupportedFormat(fh.Filename) {
			subs = append(subs, pipeline.Submission{Filename: name, Err: audio.ErrUnsupportedFormat})
			continue
		}

		f, err := fh.Open()
		if err != nil {
			subs = append(subs, pipeline.Submission{Filename: name, Err: fmt.Errorf("read upload: %w", err)})
			continue
		}

		path, err := staged.Save(fh.Filename, f)
		f.Close()
		if err != nil {
			subs = append(subs, pipeline.Submission{Filename: name, Err: fmt.Errorf("save upload: %w", err)})
			continue
		}

		subs = append(subs, pipeline.Submission{Filename: name, Path: path})
		valid++
	}

	return subs, valid
}

func (h *AnalyzeHandler) analyzeAsync(w http.ResponseWriter, r *http.Request, batchID string, staged *tempstore.Batch, subs []pipeline.Submission) {
	if h.batches == nil || h.queueClient == nil {
		staged.Remove()
		writeError(w, http.StatusServiceUnavailable, "async processing unavailable")
		return
	}

	names := make([]string, len(subs))
	for i, sub := range subs {
		names[i] = sub.Filename
	}

	b := &batch.Batch{
		ID:        batchID,
		Status:    batch.StatusReceived,
		CreatedAt: time.Now().UTC(),
		Files:     names,
	}
	if err := h.batches.Save(r.Context(), b); err != nil {
		staged.Remove()
		slog.Error("failed to save batch", "batch_id", batchID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not create batch")
		return
	}

	if err := h.queueClient.EnqueueBatchAnalyze(queue.BatchAnalyzePayload{
		BatchID: batchID,
		Files:   names,
	}); err != nil {
		staged.Remove()
		slog.Error("failed to enqueue batch", "batch_id", batchID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not enqueue batch")
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"batch_id": batchID,
		"status":   string(batch.StatusReceived),
	})
}

// storeResult parks a finished sync batch in redis so it can be exported as
// CSV later. Best effort: a dead redis only disables re-download.
func (h *AnalyzeHandler) storeResult(r *http.Request, batchID string, subs []pipeline.Submission, table *report.Table) {
	if h.batches == nil {
		return
	}
	names := make([]string, len(subs))
	for i, sub := range subs {
		names[i] = sub.Filename
	}
	b := &batch.Batch{
		ID:        batchID,
		Status:    batch.StatusReady,
		CreatedAt: time.Now().UTC(),
		Files:     names,
		Table:     table,
	}
	if err := h.batches.Save(r.Context(), b); err != nil {
		slog.Warn("failed to store batch result", "batch_id", batchID, "error", err)
	}
}

func isAsync(r *http.Request) bool {
	v := r.URL.Query().Get("async")
	if v == "" {
		v = r.FormValue("async")
	}
	return v == "1" || strings.EqualFold(v, "true")
}

func wantsCSV(r *http.Request) bool {
	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/csv")
}

func writeCSV(w http.ResponseWriter, batchID string, table *report.Table) {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "vocalysis-"+batchID+".csv"))
	if err := table.WriteCSV(w); err != nil {
		slog.Error("csv export failed", "batch_id", batchID, "error", err)
	}
}
