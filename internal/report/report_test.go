package report

import (
	"bytes"
	"encoding/csv"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vocalysis/backend/internal/scorer"
)

func sampleTable() *Table {
	t := NewTable(3)
	t.Set(0, Row{
		Filename: "first.wav",
		Status:   StatusOK,
		Scores: scorer.Scores{
			Confidence: 7.5, Clarity: 8.2, Ambition: 6.1,
			Mood: 5.5, Grammar: 9.0, Professionalism: 7.8,
		},
	})
	t.Set(1, ErrorRow("broken.mp3", errors.New("transcription failed")))
	t.Set(2, Row{
		Filename: "third.flac",
		Status:   StatusOK,
		Scores: scorer.Scores{
			Confidence: 3.0, Clarity: 4.4, Ambition: 5.0,
			Mood: 6.6, Grammar: 2.1, Professionalism: 3.7,
		},
	})
	return t
}

func TestTablePreservesUploadOrder(t *testing.T) {
	t.Parallel()

	table := sampleTable()
	require.Equal(t, 3, table.Len())
	require.Equal(t, "first.wav", table.Rows[0].Filename)
	require.Equal(t, "broken.mp3", table.Rows[1].Filename)
	require.Equal(t, "third.flac", table.Rows[2].Filename)
}

func TestErrorRowCarriesMessage(t *testing.T) {
	t.Parallel()

	row := ErrorRow("bad.wav", errors.New("unreadable audio"))
	require.Equal(t, StatusError, row.Status)
	require.Equal(t, "unreadable audio", row.Error)
}

func TestWriteCSVRoundTrips(t *testing.T) {
	t.Parallel()

	table := sampleTable()

	var buf bytes.Buffer
	require.NoError(t, table.WriteCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, table.Len()+1)
	require.Equal(t, CSVHeader, records[0])

	for i, row := range table.Rows {
		record := records[i+1]
		require.Equal(t, row.Filename, record[0])

		if row.Status != StatusOK {
			for _, cell := range record[1:] {
				require.Equal(t, ErrorMarker, cell)
			}
			continue
		}

		want := []float64{
			row.Scores.Confidence, row.Scores.Clarity, row.Scores.Ambition,
			row.Scores.Mood, row.Scores.Grammar, row.Scores.Professionalism,
		}
		for j, v := range want {
			got, err := strconv.ParseFloat(record[j+1], 64)
			require.NoError(t, err)
			require.InDelta(t, v, got, 0.05)
		}
	}
}

func TestWriteCSVEmptyTable(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewTable(0).WriteCSV(&buf))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1)
}
