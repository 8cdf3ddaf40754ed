package sentiment

import "context"

// Result holds one sentiment reading. Polarity runs from -1 (negative) to
// +1 (positive).
type Result struct {
	Polarity float64 `json:"polarity"`
	Label    string  `json:"label"` // negative, neutral, positive
}

// Provider is the interface for sentiment-analysis backends.
type Provider interface {
	Analyze(ctx context.Context, text string) (*Result, error)
	Name() string
}

const analyzePrompt = `Rate the overall emotional tone of the speaker in the
following transcript. Respond with only a JSON object of the form
{"polarity":P,"label":"L"} where P is a number between -1.0 (very negative)
and 1.0 (very positive) and L is one of "negative", "neutral", "positive".`

func labelFor(polarity float64) string {
	switch {
	case polarity <= -0.25:
		return "negative"
	case polarity >= 0.25:
		return "positive"
	default:
		return "neutral"
	}
}
