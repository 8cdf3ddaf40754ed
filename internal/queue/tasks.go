package queue

const (
	TypeBatchAnalyze = "batch:analyze"
)

// BatchAnalyzePayload points a worker at the staged files of one batch.
type BatchAnalyzePayload struct {
	BatchID string   `json:"batch_id"`
	Files   []string `json:"files"` // sanitized filenames, upload order
}
