package stt

import (
	"context"
	"errors"
)

// ErrTranscriptionFailed wraps any backend failure so callers can classify a
// row as unrecoverable without knowing which backend ran.
var ErrTranscriptionFailed = errors.New("transcription failed")

// Request holds the parameters for audio transcription.
type Request struct {
	FilePath string `json:"file_path"`
	Language string `json:"language,omitempty"`
	Prompt   string `json:"prompt,omitempty"`
}

// Result holds the transcription output.
type Result struct {
	Text     string  `json:"text"`
	Language string  `json:"language"`
	Duration float64 `json:"duration"`
}

// Provider is the interface for speech-to-text backends.
type Provider interface {
	Transcribe(ctx context.Context, req Request) (*Result, error)
	Name() string
}
