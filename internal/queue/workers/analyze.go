package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/hibiken/asynq"

	"github.com/vocalysis/backend/internal/audio"
	"github.com/vocalysis/backend/internal/batch"
	"github.com/vocalysis/backend/internal/pipeline"
	"github.com/vocalysis/backend/internal/queue"
	"github.com/vocalysis/backend/internal/tempstore"
)

// AnalyzeWorker runs the scoring pipeline for batches enqueued by the API
// process. Staged files are removed on every exit path.
type AnalyzeWorker struct {
	analyzer *pipeline.Analyzer
	batches  *batch.Store
	uploads  *tempstore.Store
}

func NewAnalyzeWorker(analyzer *pipeline.Analyzer, batches *batch.Store, uploads *tempstore.Store) *AnalyzeWorker {
	return &AnalyzeWorker{
		analyzer: analyzer,
		batches:  batches,
		uploads:  uploads,
	}
}

func (w *AnalyzeWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.BatchAnalyzePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	slog.Info("processing batch", "batch_id", payload.BatchID, "files", len(payload.Files))

	staged := w.uploads.OpenBatch(payload.BatchID)
	defer staged.Remove()

	b, err := w.batches.Get(ctx, payload.BatchID)
	if err != nil {
		return fmt.Errorf("get batch: %w", err)
	}
	b.Status = batch.StatusProcessing
	if err := w.batches.Save(ctx, b); err != nil {
		return fmt.Errorf("update batch status: %w", err)
	}

	// Rebuild the submissions from the staged dir. Files rejected at upload
	// time were never saved, so they pre-fail here the same way.
	subs := make([]pipeline.Submission, 0, len(payload.Files))
	for _, name := range payload.Files {
		sub := pipeline.Submission{
			Filename: name,
			Path:     filepath.Join(staged.Dir(), name),
		}
		if !audio.SupportedFormat(name) {
			sub.Err = audio.ErrUnsupportedFormat
		} else if _, err := os.Stat(sub.Path); err != nil {
			sub.Err = fmt.Errorf("staged file missing: %w", err)
		}
		subs = append(subs, sub)
	}

	table := w.analyzer.AnalyzeBatch(ctx, subs)

	if err := w.batches.MarkReady(ctx, payload.BatchID, table); err != nil {
		if ferr := w.batches.MarkFailed(ctx, payload.BatchID, err); ferr != nil {
			slog.Error("failed to mark batch failed", "batch_id", payload.BatchID, "error", ferr)
		}
		return fmt.Errorf("store results: %w", err)
	}

	slog.Info("batch processed", "batch_id", payload.BatchID, "rows", table.Len())
	return nil
}
