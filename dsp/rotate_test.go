package dsp

import (
	"math"
	"testing"
)

// rmsEnergy returns the root-mean-square magnitude of z, discarding the
// first warm-up samples to let the matched FIR settle.
func rmsEnergy(z []complex64, warmup int) float64 {
	if warmup >= len(z) {
		return 0
	}
	z = z[warmup:]
	var sum float64
	for _, s := range z {
		re, im := float64(real(s)), float64(imag(s))
		sum += re*re + im*im
	}
	return math.Sqrt(sum / float64(len(z)))
}

func TestChannelOrthogonality(t *testing.T) {
	const n = 4096
	in := make([]complex64, n)
	for i := range in {
		theta := 2 * math.Pi * channelOffsetHz * float64(i) / CanonicalRate
		in[i] = complex(float32(math.Cos(theta)), float32(math.Sin(theta)))
	}

	sp := NewSplitter(CanonicalRate)
	a, b := sp.Process(in)

	feA := NewFrontend(MatchedFM)
	feB := NewFrontend(MatchedFM)
	outA := feA.Process(a)
	outB := feB.Process(b)

	warmup := len(Receiver) + 5
	rmsA := rmsEnergy(outA, warmup)
	rmsB := rmsEnergy(outB, warmup)

	if rmsB < 0.3 {
		t.Errorf("channel B (matched, should be ~DC) rms = %v, want a substantial tone", rmsB)
	}
	if rmsB > 0 {
		ratio := rmsA / rmsB
		dB := 20 * math.Log10(ratio)
		if dB > -40 {
			t.Errorf("channel A rejection = %.1f dB relative to channel B, want <= -40 dB", dB)
		}
	}
}
