package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// ErrorMarker replaces every score column of a failed row in CSV output.
const ErrorMarker = "ERROR"

// CSVHeader is the fixed export header: filename plus the six metrics.
var CSVHeader = []string{
	"filename", "confidence", "clarity", "ambition", "mood", "grammar", "professionalism",
}

// WriteCSV serializes the table: one header row, then one row per file in
// table order.
func (t *Table) WriteCSV(w io.Writer) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range t.Rows {
		record := make([]string, 0, len(CSVHeader))
		record = append(record, row.Filename)
		if row.Status == StatusOK {
			for _, v := range []float64{
				row.Scores.Confidence, row.Scores.Clarity, row.Scores.Ambition,
				row.Scores.Mood, row.Scores.Grammar, row.Scores.Professionalism,
			} {
				record = append(record, formatScore(v))
			}
		} else {
			for range CSVHeader[1:] {
				record = append(record, ErrorMarker)
			}
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row %q: %w", row.Filename, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}
