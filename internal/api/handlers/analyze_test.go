package handlers

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/csv"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vocalysis/backend/internal/analysis/grammar"
	"github.com/vocalysis/backend/internal/analysis/stt"
	"github.com/vocalysis/backend/internal/pipeline"
	"github.com/vocalysis/backend/internal/report"
	"github.com/vocalysis/backend/internal/tempstore"
)

type stubSTT struct{ text string }

func (s *stubSTT) Transcribe(ctx context.Context, req stt.Request) (*stt.Result, error) {
	return &stt.Result{Text: s.text}, nil
}

func (s *stubSTT) Name() string { return "stub" }

type stubGrammar struct{}

func (s *stubGrammar) Check(ctx context.Context, text string) (*grammar.Result, error) {
	return &grammar.Result{}, nil
}

func (s *stubGrammar) Name() string { return "stub" }

func newTestHandler(t *testing.T) *AnalyzeHandler {
	t.Helper()

	uploads, err := tempstore.New(t.TempDir())
	require.NoError(t, err)

	analyzer := pipeline.New(pipeline.Options{
		STT:     &stubSTT{text: "a short practice answer"},
		Grammar: &stubGrammar{},
	})
	return NewAnalyzeHandler(analyzer, uploads, nil, nil, 32)
}

func toneWAV() []byte {
	samples := make([]int16, 16000)
	for i := range samples {
		samples[i] = int16(0.4 * 32767 * math.Sin(2*math.Pi*220*float64(i)/16000.0))
	}
	dataSize := len(samples) * 2
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1)
	binary.LittleEndian.PutUint16(out[22:], 1)
	binary.LittleEndian.PutUint32(out[24:], 16000)
	binary.LittleEndian.PutUint32(out[28:], 16000*2)
	binary.LittleEndian.PutUint16(out[32:], 2)
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[44+i*2:], uint16(s))
	}
	return out
}

func multipartBody(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for name, data := range files {
		fw, err := mw.CreateFormFile(audioField, name)
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestAnalyzeReturnsOneRowPerFile(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	body, contentType := multipartBody(t, map[string][]byte{
		"one.wav": toneWAV(),
		"two.wav": toneWAV(),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Analyze(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		BatchID string       `json:"batch_id"`
		Rows    []report.Row `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.BatchID)
	require.Len(t, resp.Rows, 2)
	for _, row := range resp.Rows {
		require.Equal(t, report.StatusOK, row.Status)
		require.GreaterOrEqual(t, row.Scores.Grammar, 1.0)
		require.LessOrEqual(t, row.Scores.Grammar, 10.0)
	}
}

func TestAnalyzeRejectsEmptyForm(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	body, contentType := multipartBody(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Analyze(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeRejectsAllUnsupported(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	body, contentType := multipartBody(t, map[string][]byte{
		"notes.txt": []byte("not audio"),
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Analyze(rec, req)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeMixedBatchKeepsErrorRow(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)

	// Ordered writer so the row order is predictable.
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(audioField, "good.wav")
	require.NoError(t, err)
	_, err = fw.Write(toneWAV())
	require.NoError(t, err)
	fw, err = mw.CreateFormFile(audioField, "bad.txt")
	require.NoError(t, err)
	_, err = fw.Write([]byte("not audio"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()

	h.Analyze(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rows []report.Row `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Rows, 2)
	require.Equal(t, "good.wav", resp.Rows[0].Filename)
	require.Equal(t, report.StatusOK, resp.Rows[0].Status)
	require.Equal(t, "bad.txt", resp.Rows[1].Filename)
	require.Equal(t, report.StatusError, resp.Rows[1].Status)
}

func TestAnalyzeCSVResponse(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	body, contentType := multipartBody(t, map[string][]byte{"clip.wav": toneWAV()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "text/csv")
	rec := httptest.NewRecorder()

	h.Analyze(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv", rec.Header().Get("Content-Type"))

	records, err := csv.NewReader(rec.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	require.Equal(t, report.CSVHeader, records[0])
	require.Equal(t, "clip.wav", records[1][0])
}

func TestAnalyzeAsyncUnavailableWithoutRedis(t *testing.T) {
	t.Parallel()

	h := newTestHandler(t)
	body, contentType := multipartBody(t, map[string][]byte{"clip.wav": toneWAV()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze?async=1", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Analyze(rec, req)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
