// Package scorer maps transcription text, grammar issues, sentiment and
// acoustic features onto six 1-10 feedback metrics with fixed weights.
package scorer

import "strings"

const (
	// MinScore and MaxScore bound every metric.
	MinScore = 1.0
	MaxScore = 10.0

	// NeutralScore substitutes for any metric whose inputs are missing.
	NeutralScore = 5.5
)

// Filler words counted against the confidence metric.
var fillerWords = map[string]bool{
	"um": true, "uh": true, "like": true, "you know": true,
	"so": true, "actually": true, "basically": true,
}

// Features is the subset of acoustic measures the formulas consume. A nil
// *Features means extraction failed; every acoustic metric then falls back
// to NeutralScore.
type Features struct {
	PitchRange float64
	Jitter     float64
	Shimmer    float64
	RMSStd     float64
	Pace       float64
}

// Input carries everything one scoring run depends on.
type Input struct {
	Transcript    string
	GrammarIssues int
	// HasSentiment gates the mood formula; Polarity is in [-1,1].
	HasSentiment bool
	Polarity     float64
	Features     *Features
}

// Scores holds the six metrics, each in [MinScore, MaxScore].
type Scores struct {
	Confidence      float64 `json:"confidence"`
	Clarity         float64 `json:"clarity"`
	Ambition        float64 `json:"ambition"`
	Mood            float64 `json:"mood"`
	Grammar         float64 `json:"grammar"`
	Professionalism float64 `json:"professionalism"`
}

// Score computes all six metrics. It is a pure function: identical input
// always yields identical output. An empty transcript pins the
// content-dependent metrics to the minimum and leaves the acoustic ones at
// the neutral midpoint, since a clip with no speech has no meaningful
// delivery to rate.
func Score(in Input) Scores {
	words := strings.Fields(strings.ToLower(in.Transcript))
	if len(words) == 0 {
		return Scores{
			Confidence:      NeutralScore,
			Clarity:         NeutralScore,
			Ambition:        NeutralScore,
			Mood:            MinScore,
			Grammar:         MinScore,
			Professionalism: NeutralScore,
		}
	}

	var s Scores
	s.Clarity = clarityScore(in.Features)
	s.Confidence = confidenceScore(in.Features, words)
	s.Ambition = ambitionScore(in.Features)
	s.Mood = moodScore(in)
	s.Grammar = grammarScore(in.GrammarIssues, len(words))
	s.Professionalism = clamp((s.Clarity + s.Confidence) / 2)
	return s
}

// clarityScore rates vocal stability from jitter and shimmer.
func clarityScore(f *Features) float64 {
	if f == nil {
		return NeutralScore
	}
	jitter := norm(f.Jitter, 0, 5, true)
	shimmer := norm(f.Shimmer, 0, 0.1, true)
	return clamp((jitter + shimmer) / 2)
}

// confidenceScore rates volume stability and the filler word ratio per 100
// words.
func confidenceScore(f *Features, words []string) float64 {
	stability := NeutralScore
	if f != nil {
		stability = norm(f.RMSStd, 0, 0.1, true)
	}

	var fillers int
	for _, w := range words {
		if fillerWords[strings.Trim(w, ".,!?;:")] {
			fillers++
		}
	}
	ratio := float64(fillers) / (float64(len(words)) / 100.0)
	fillerScore := norm(ratio, 0, 10, true)

	return clamp((stability + fillerScore) / 2)
}

// ambitionScore rates vocal energy and drive from pitch range and pace.
func ambitionScore(f *Features) float64 {
	if f == nil {
		return NeutralScore
	}
	pitchRange := norm(f.PitchRange, 50, 250, false)
	pace := norm(f.Pace, 2, 6, false)
	return clamp((pitchRange + pace) / 2)
}

// moodScore maps sentiment polarity onto the scale.
func moodScore(in Input) float64 {
	if !in.HasSentiment {
		return NeutralScore
	}
	return clamp(norm(in.Polarity, -1, 1, false))
}

// grammarScore rates issue density per 100 words.
func grammarScore(issues, wordCount int) float64 {
	perHundred := float64(issues) / (float64(wordCount) / 100.0)
	return clamp(norm(perHundred, 0, 10, true))
}

// norm scales value into 0..10 between min and max, optionally reversed.
func norm(value, min, max float64, reverse bool) float64 {
	if value < min {
		value = min
	}
	if value > max {
		value = max
	}
	normalized := (value - min) / (max - min)
	if reverse {
		return (1 - normalized) * 10
	}
	return normalized * 10
}

func clamp(v float64) float64 {
	if v < MinScore {
		return MinScore
	}
	if v > MaxScore {
		return MaxScore
	}
	return v
}
