package audio

import "math"

const (
	frameLength = 2048
	hopLength   = 512

	// Pitch search band for speech, in Hz.
	minPitchHz = 60.0
	maxPitchHz = 400.0

	// Clips whose peak stays below this are treated as containing no speech.
	silencePeakDBFS = -60.0
)

// FeatureSet holds the acoustic measures the scorer consumes. Values are in
// natural units: Hz for pitch, linear amplitude for energy, onsets/second for
// pace, seconds for duration.
type FeatureSet struct {
	PitchMean  float64 `json:"pitch_mean"`
	PitchRange float64 `json:"pitch_range"`
	Jitter     float64 `json:"jitter"`
	Shimmer    float64 `json:"shimmer"`
	RMSMean    float64 `json:"rms_mean"`
	RMSStd     float64 `json:"rms_std"`
	PeakDBFS   float64 `json:"peak_dbfs"`
	Pace       float64 `json:"pace"`
	Duration   float64 `json:"duration"`
}

// Silent reports whether the clip never rises above the speech floor.
func (f *FeatureSet) Silent() bool {
	return f.PeakDBFS <= silencePeakDBFS
}

// ExtractFeatures computes the FeatureSet from a decoded clip. The clip is
// analyzed in overlapping frames; pitch is estimated per frame by
// autocorrelation, jitter and shimmer as mean absolute frame-to-frame deltas
// of pitch and RMS.
func ExtractFeatures(clip *Clip) FeatureSet {
	fs := FeatureSet{
		Duration: clip.Duration(),
		PeakDBFS: math.Inf(-1),
	}
	if len(clip.Samples) == 0 || clip.SampleRate == 0 {
		return fs
	}

	var peak float64
	for _, s := range clip.Samples {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}
	fs.PeakDBFS = amplitudeToDBFS(peak)

	frames := frameRMS(clip.Samples)
	if len(frames) == 0 {
		return fs
	}
	fs.RMSMean = mean(frames)
	fs.RMSStd = stddev(frames, fs.RMSMean)
	fs.Shimmer = meanAbsDelta(frames)

	pitches := framePitches(clip)
	if len(pitches) > 0 {
		fs.PitchMean = mean(pitches)
		lo, hi := pitches[0], pitches[0]
		for _, p := range pitches {
			if p < lo {
				lo = p
			}
			if p > hi {
				hi = p
			}
		}
		fs.PitchRange = hi - lo
	}
	if len(pitches) > 1 {
		fs.Jitter = meanAbsDelta(pitches)
	}

	fs.Pace = onsetRate(frames, fs.RMSMean, float64(clip.SampleRate))

	return fs
}

func frameRMS(samples []float64) []float64 {
	var out []float64
	for start := 0; start+frameLength <= len(samples); start += hopLength {
		var sum float64
		for _, s := range samples[start : start+frameLength] {
			sum += s * s
		}
		out = append(out, math.Sqrt(sum/frameLength))
	}
	return out
}

// framePitches estimates one pitch per voiced frame; unvoiced frames are
// skipped the way librosa's piptrack drops zero-magnitude bins.
func framePitches(clip *Clip) []float64 {
	minLag := int(float64(clip.SampleRate) / maxPitchHz)
	maxLag := int(float64(clip.SampleRate) / minPitchHz)
	if maxLag >= frameLength {
		maxLag = frameLength - 1
	}
	if minLag < 1 {
		minLag = 1
	}

	var pitches []float64
	for start := 0; start+frameLength <= len(clip.Samples); start += hopLength {
		frame := clip.Samples[start : start+frameLength]
		if p, ok := autocorrelatePitch(frame, clip.SampleRate, minLag, maxLag); ok {
			pitches = append(pitches, p)
		}
	}
	return pitches
}

func autocorrelatePitch(frame []float64, sampleRate, minLag, maxLag int) (float64, bool) {
	var energy float64
	for _, s := range frame {
		energy += s * s
	}
	if energy == 0 {
		return 0, false
	}

	bestLag := 0
	bestCorr := 0.0
	for lag := minLag; lag <= maxLag; lag++ {
		var corr float64
		for i := 0; i+lag < len(frame); i++ {
			corr += frame[i] * frame[i+lag]
		}
		if corr > bestCorr {
			bestCorr = corr
			bestLag = lag
		}
	}

	// Voicing gate: the peak must carry a meaningful share of frame energy.
	if bestLag == 0 || bestCorr < 0.3*energy {
		return 0, false
	}
	return float64(sampleRate) / float64(bestLag), true
}

// onsetRate counts rising edges through an energy threshold, a rough stand-in
// for onset detection, normalized to onsets per second.
func onsetRate(frames []float64, meanRMS, sampleRate float64) float64 {
	if len(frames) == 0 || sampleRate == 0 {
		return 0
	}
	threshold := meanRMS * 1.2
	var onsets int
	above := false
	for _, r := range frames {
		if r > threshold && !above {
			onsets++
			above = true
		} else if r <= threshold {
			above = false
		}
	}
	duration := float64(len(frames)) * hopLength / sampleRate
	if duration == 0 {
		return 0
	}
	return float64(onsets) / duration
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func stddev(xs []float64, m float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		d := x - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(xs)))
}

func meanAbsDelta(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(xs); i++ {
		sum += math.Abs(xs[i] - xs[i-1])
	}
	return sum / float64(len(xs)-1)
}

func amplitudeToDBFS(amplitude float64) float64 {
	if amplitude <= 0 {
		return math.Inf(-1)
	}
	return 20.0 * math.Log10(amplitude)
}
