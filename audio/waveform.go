package audio

import (
	"math"
	"time"
)

// DefaultSampleRate is used when a rate is unknown or missing.
const DefaultSampleRate = 16000

// Waveform is a mono sequence of samples in [-1, 1]. Functions in this
// package never modify a Waveform they receive.
type Waveform struct {
	Samples    []float32
	SampleRate int
}

// Empty returns a waveform with no samples at the given rate.
func Empty(sampleRate int) Waveform {
	return Waveform{Samples: []float32{}, SampleRate: sampleRate}
}

func (w Waveform) Len() int { return len(w.Samples) }

func (w Waveform) IsEmpty() bool { return len(w.Samples) == 0 }

// Duration is zero when the rate is not positive.
func (w Waveform) Duration() time.Duration {
	if w.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(w.Samples)) / float64(w.SampleRate) * float64(time.Second))
}

// Peak returns the maximum absolute sample value.
func (w Waveform) Peak() float32 {
	return peak(w.Samples)
}

// IsSilent reports whether the waveform is empty or all zero.
func (w Waveform) IsSilent() bool {
	return w.Peak() == 0
}

// Slice returns the samples between start and end seconds, clamped to the
// waveform bounds. The result shares no memory with w.
func (w Waveform) Slice(start, end float64) Waveform {
	if w.SampleRate <= 0 || end <= start {
		return Empty(w.SampleRate)
	}
	from := clamp(int(math.Round(start*float64(w.SampleRate))), 0, len(w.Samples))
	to := clamp(int(math.Round(end*float64(w.SampleRate))), from, len(w.Samples))
	out := make([]float32, to-from)
	copy(out, w.Samples[from:to])
	return Waveform{Samples: out, SampleRate: w.SampleRate}
}

// Normalize divides by the maximum absolute value. Empty or all-zero input
// is returned as an unchanged copy.
func Normalize(samples []float32) []float32 {
	out := make([]float32, len(samples))
	copy(out, samples)
	p := peak(out)
	if p == 0 {
		return out
	}
	for i := range out {
		out[i] /= p
	}
	return out
}

// NormalizeWaveform is Normalize applied to w.Samples.
func NormalizeWaveform(w Waveform) Waveform {
	return Waveform{Samples: Normalize(w.Samples), SampleRate: w.SampleRate}
}

// Resample keeps every Nth sample where N = round(src/target), with N < 1
// treated as 1. The result is labelled with target even when no samples
// were dropped.
func Resample(w Waveform, target int) Waveform {
	if target <= 0 {
		target = DefaultSampleRate
	}
	step := 1
	if w.SampleRate > 0 {
		step = int(math.Round(float64(w.SampleRate) / float64(target)))
	}
	if step < 1 {
		step = 1
	}
	out := make([]float32, 0, (len(w.Samples)+step-1)/step)
	for i := 0; i < len(w.Samples); i += step {
		out = append(out, w.Samples[i])
	}
	return Waveform{Samples: out, SampleRate: target}
}

func peak(samples []float32) float32 {
	var p float32
	for _, s := range samples {
		if s < 0 {
			s = -s
		}
		if s > p {
			p = s
		}
	}
	return p
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
