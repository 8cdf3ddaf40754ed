package audio

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReadWAVDecodesPCM16(t *testing.T) {
	t.Parallel()

	samples := sineSamples(220, 0.5, 16000, 16000)
	path := filepath.Join(t.TempDir(), "tone.wav")
	require.NoError(t, os.WriteFile(path, makePCM16WAV(samples, 16000, 1), 0o644))

	clip, err := ReadWAV(path)
	require.NoError(t, err)
	require.Equal(t, 16000, clip.SampleRate)
	require.Len(t, clip.Samples, 16000)
	require.InDelta(t, 1.0, clip.Duration(), 0.001)
}

func TestReadWAVDownmixesStereo(t *testing.T) {
	t.Parallel()

	left := sineSamples(220, 0.5, 16000, 8000)
	interleaved := make([]int16, 0, len(left)*2)
	for _, s := range left {
		interleaved = append(interleaved, s, -s)
	}

	path := filepath.Join(t.TempDir(), "stereo.wav")
	require.NoError(t, os.WriteFile(path, makePCM16WAV(interleaved, 16000, 2), 0o644))

	clip, err := ReadWAV(path)
	require.NoError(t, err)
	require.Len(t, clip.Samples, 8000)

	// Opposite-phase channels cancel on downmix.
	var peak float64
	for _, s := range clip.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	require.Less(t, peak, 0.001)
}

func TestReadWAVRejectsGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "not-audio.wav")
	require.NoError(t, os.WriteFile(path, []byte("definitely not a riff file"), 0o644))

	_, err := ReadWAV(path)
	require.ErrorIs(t, err, ErrInvalidWAV)
}

func TestExtractFeaturesDetectsPitch(t *testing.T) {
	t.Parallel()

	clip := &Clip{Samples: sineFloat(220, 0.5, 16000, 48000), SampleRate: 16000}
	fs := ExtractFeatures(clip)

	require.False(t, fs.Silent())
	require.InDelta(t, 220.0, fs.PitchMean, 15.0)
	require.InDelta(t, 3.0, fs.Duration, 0.01)
	require.Greater(t, fs.RMSMean, 0.1)
	// A steady tone has near-zero jitter.
	require.Less(t, fs.Jitter, 2.0)
}

func TestExtractFeaturesSilentClip(t *testing.T) {
	t.Parallel()

	clip := &Clip{Samples: make([]float64, 32000), SampleRate: 16000}
	fs := ExtractFeatures(clip)

	require.True(t, fs.Silent())
	require.True(t, math.IsInf(fs.PeakDBFS, -1))
	require.Zero(t, fs.RMSMean)
}

func TestExtractFeaturesEmptyClip(t *testing.T) {
	t.Parallel()

	fs := ExtractFeatures(&Clip{SampleRate: 16000})
	require.True(t, fs.Silent())
	require.Zero(t, fs.Duration)
}

func TestSupportedFormat(t *testing.T) {
	t.Parallel()

	require.True(t, SupportedFormat("clip.wav"))
	require.True(t, SupportedFormat("CLIP.MP3"))
	require.True(t, SupportedFormat("talk.m4a"))
	require.True(t, SupportedFormat("talk.flac"))
	require.False(t, SupportedFormat("talk.ogg"))
	require.False(t, SupportedFormat("notes.txt"))
}

func sineSamples(freq, amplitude float64, sampleRate, n int) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(amplitude * 32767 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return out
}

func sineFloat(freq, amplitude float64, sampleRate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amplitude * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate))
	}
	return out
}

func makePCM16WAV(samples []int16, sampleRate int, channels int) []byte {
	bytesPerSample := 2
	dataSize := len(samples) * bytesPerSample
	fmtChunkSize := 16
	riffSize := 4 + (8 + fmtChunkSize) + (8 + dataSize)

	out := make([]byte, 12+8+fmtChunkSize+8+dataSize)
	off := 0

	copy(out[off:], []byte("RIFF"))
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(riffSize))
	off += 4
	copy(out[off:], []byte("WAVE"))
	off += 4

	copy(out[off:], []byte("fmt "))
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(fmtChunkSize))
	off += 4
	binary.LittleEndian.PutUint16(out[off:], 1)
	off += 2
	binary.LittleEndian.PutUint16(out[off:], uint16(channels))
	off += 2
	binary.LittleEndian.PutUint32(out[off:], uint32(sampleRate))
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(sampleRate*channels*bytesPerSample))
	off += 4
	binary.LittleEndian.PutUint16(out[off:], uint16(channels*bytesPerSample))
	off += 2
	binary.LittleEndian.PutUint16(out[off:], 16)
	off += 2

	copy(out[off:], []byte("data"))
	off += 4
	binary.LittleEndian.PutUint32(out[off:], uint32(dataSize))
	off += 4

	for _, s := range samples {
		binary.LittleEndian.PutUint16(out[off:], uint16(s))
		off += 2
	}

	return out
}
