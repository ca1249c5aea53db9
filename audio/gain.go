package audio

import "math"

// AdjustGain returns a copy of buf with a decibel offset applied.
// Negative values attenuate, positive amplify, 0 dB is the identity.
// Samples are clamped to [-1, 1] after amplification so the rendered
// 16-bit PCM never wraps. The input buffer is never mutated.
func AdjustGain(buf *Buffer, db int) *Buffer {
	factor := math.Pow(10, float64(db)/20)
	out := &Buffer{
		Samples: make([][2]float64, len(buf.Samples)),
		Rate:    buf.Rate,
	}
	for i, s := range buf.Samples {
		out.Samples[i] = [2]float64{
			clampSample(s[0] * factor),
			clampSample(s[1] * factor),
		}
	}
	return out
}

func clampSample(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
