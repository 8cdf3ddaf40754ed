package sentiment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseResultClampsPolarity(t *testing.T) {
	t.Parallel()

	result, err := parseResult(`{"polarity":3.5,"label":"positive"}`)
	require.NoError(t, err)
	require.InDelta(t, 1.0, result.Polarity, 0.001)
	require.Equal(t, "positive", result.Label)

	result, err = parseResult(`{"polarity":-2.0}`)
	require.NoError(t, err)
	require.InDelta(t, -1.0, result.Polarity, 0.001)
	require.Equal(t, "negative", result.Label)
}

func TestParseResultFillsLabel(t *testing.T) {
	t.Parallel()

	result, err := parseResult(`{"polarity":0.1}`)
	require.NoError(t, err)
	require.Equal(t, "neutral", result.Label)

	result, err = parseResult(`{"polarity":0.6}`)
	require.NoError(t, err)
	require.Equal(t, "positive", result.Label)
}

func TestParseResultRejectsGarbage(t *testing.T) {
	t.Parallel()

	_, err := parseResult("the speaker sounds upbeat")
	require.Error(t, err)
}
