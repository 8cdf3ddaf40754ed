// Package pipeline sequences one audio submission through decode, silence
// gating, transcription, grammar checking, sentiment and scoring, degrading
// per-adapter failures into warnings or error rows instead of aborting the
// batch.
package pipeline

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/vocalysis/backend/internal/analysis/grammar"
	"github.com/vocalysis/backend/internal/analysis/sentiment"
	"github.com/vocalysis/backend/internal/analysis/stt"
	"github.com/vocalysis/backend/internal/audio"
	"github.com/vocalysis/backend/internal/report"
	"github.com/vocalysis/backend/internal/scorer"
)

const (
	// WarnSilentAudio flags clips with no detectable speech.
	WarnSilentAudio = "audio is silent or contains no speech"

	defaultWorkers        = 4
	defaultAdapterTimeout = 120 * time.Second
)

// Submission is one uploaded audio file staged on disk. Err marks a file
// already rejected at upload time (bad format, failed save); the pipeline
// turns it into an error row without running any adapter.
type Submission struct {
	Filename string
	Path     string
	Err      error
}

// Options wires the adapters into an Analyzer. Sentiment may be nil; the
// scorer then uses the neutral midpoint for mood.
type Options struct {
	STT       stt.Provider
	Grammar   grammar.Checker
	Sentiment sentiment.Provider

	// Workers bounds batch concurrency; AdapterTimeout caps each external
	// call and is treated as an ordinary per-file failure.
	Workers        int
	AdapterTimeout time.Duration
}

// Analyzer runs the scoring pipeline.
type Analyzer struct {
	stt       stt.Provider
	grammar   grammar.Checker
	sentiment sentiment.Provider

	workers        int
	adapterTimeout time.Duration
}

func New(opts Options) *Analyzer {
	if opts.Workers <= 0 {
		opts.Workers = defaultWorkers
	}
	if opts.AdapterTimeout <= 0 {
		opts.AdapterTimeout = defaultAdapterTimeout
	}
	return &Analyzer{
		stt:            opts.STT,
		grammar:        opts.Grammar,
		sentiment:      opts.Sentiment,
		workers:        opts.Workers,
		adapterTimeout: opts.AdapterTimeout,
	}
}

// AnalyzeBatch scores every submission with bounded concurrency. The table
// always has one row per submission, in upload order; per-file failures
// become error rows.
func (a *Analyzer) AnalyzeBatch(ctx context.Context, subs []Submission) *report.Table {
	table := report.NewTable(len(subs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.workers)

	for i, sub := range subs {
		g.Go(func() error {
			table.Set(i, a.AnalyzeFile(gctx, sub))
			return nil
		})
	}
	g.Wait()

	return table
}

// AnalyzeFile runs the full pipeline for one submission.
func (a *Analyzer) AnalyzeFile(ctx context.Context, sub Submission) report.Row {
	if sub.Err != nil {
		return report.ErrorRow(sub.Filename, sub.Err)
	}

	var warnings []string

	features := a.extractFeatures(ctx, sub, &warnings)

	// Silence gate: no speech means no point calling the transcriber.
	if features == nil || !features.Silent() {
		return a.analyzeSpeech(ctx, sub, features, warnings)
	}

	warnings = append(warnings, WarnSilentAudio)
	return report.Row{
		Filename: sub.Filename,
		Status:   report.StatusOK,
		Scores:   scorer.Score(scorer.Input{Features: scorerFeatures(features)}),
		Warnings: warnings,
	}
}

func (a *Analyzer) analyzeSpeech(ctx context.Context, sub Submission, features *audio.FeatureSet, warnings []string) report.Row {
	transcript, err := a.transcribe(ctx, sub)
	if err != nil {
		slog.Warn("transcription failed", "file", sub.Filename, "error", err)
		row := report.ErrorRow(sub.Filename, err)
		row.Warnings = warnings
		return row
	}

	in := scorer.Input{
		Transcript: transcript,
		Features:   scorerFeatures(features),
	}

	if strings.TrimSpace(transcript) == "" {
		warnings = append(warnings, WarnSilentAudio)
	} else {
		in.GrammarIssues = a.checkGrammar(ctx, transcript, sub.Filename, &warnings)
		if polarity, ok := a.analyzeSentiment(ctx, transcript, sub.Filename, &warnings); ok {
			in.HasSentiment = true
			in.Polarity = polarity
		}
	}

	return report.Row{
		Filename:   sub.Filename,
		Status:     report.StatusOK,
		Scores:     scorer.Score(in),
		Transcript: transcript,
		Warnings:   warnings,
	}
}

// extractFeatures decodes the clip and measures it. Failure degrades to nil
// features plus a warning; the scorer substitutes neutral defaults.
func (a *Analyzer) extractFeatures(ctx context.Context, sub Submission, warnings *[]string) *audio.FeatureSet {
	wavPath, err := audio.DecodeToWAV(ctx, sub.Path, filepath.Dir(sub.Path))
	if err == nil {
		var clip *audio.Clip
		clip, err = audio.ReadWAV(wavPath)
		if err == nil {
			fs := audio.ExtractFeatures(clip)
			return &fs
		}
	}

	slog.Warn("feature extraction failed", "file", sub.Filename, "error", err)
	*warnings = append(*warnings, "feature extraction failed: "+err.Error())
	return nil
}

func (a *Analyzer) transcribe(ctx context.Context, sub Submission) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, a.adapterTimeout)
	defer cancel()

	result, err := a.stt.Transcribe(ctx, stt.Request{FilePath: sub.Path})
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// checkGrammar degrades any failure to zero issues with a warning flag.
func (a *Analyzer) checkGrammar(ctx context.Context, transcript, filename string, warnings *[]string) int {
	if a.grammar == nil {
		return 0
	}

	ctx, cancel := context.WithTimeout(ctx, a.adapterTimeout)
	defer cancel()

	result, err := a.grammar.Check(ctx, transcript)
	if err != nil {
		slog.Warn("grammar check failed", "file", filename, "error", err)
		*warnings = append(*warnings, "grammar check skipped: "+err.Error())
		return 0
	}
	return result.IssueCount
}

func (a *Analyzer) analyzeSentiment(ctx context.Context, transcript, filename string, warnings *[]string) (float64, bool) {
	if a.sentiment == nil {
		return 0, false
	}

	ctx, cancel := context.WithTimeout(ctx, a.adapterTimeout)
	defer cancel()

	result, err := a.sentiment.Analyze(ctx, transcript)
	if err != nil {
		slog.Warn("sentiment analysis failed", "file", filename, "error", err)
		*warnings = append(*warnings, "sentiment analysis skipped: "+err.Error())
		return 0, false
	}
	return result.Polarity, true
}

func scorerFeatures(f *audio.FeatureSet) *scorer.Features {
	if f == nil {
		return nil
	}
	return &scorer.Features{
		PitchRange: f.PitchRange,
		Jitter:     f.Jitter,
		Shimmer:    f.Shimmer,
		RMSStd:     f.RMSStd,
		Pace:       f.Pace,
	}
}
