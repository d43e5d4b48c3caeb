/*
NAME
  iq.go

DESCRIPTION
  iq.go FM-modulates a raw HDLC bit stream (as produced by Frame or
  Message) into a complex baseband IQ block, and provides the
  padding/superposition helpers the end-to-end scenarios (S1-S6) need
  to place one or more bursts within a longer synthesized stream.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package fixture

import (
	"math"
	"math/rand"

	"github.com/ausocean/ais/iq"
)

// FMOptions configures an FM-modulated IQ burst.
type FMOptions struct {
	// SampleRate is the rate, in Hz, the returned block is synthesized
	// at (e.g. dsp.CanonicalRate for a post-splitter single-channel
	// burst, or a dsp.SupportedRates entry for a whole-pipeline test).
	SampleRate float64

	// SymbolRate is the line symbol rate, 9600 for AIS.
	SymbolRate float64

	// DeviationHz is the peak frequency deviation per symbol.
	DeviationHz float64

	// OffsetHz shifts the burst's centre frequency, used to place it
	// at +/-25kHz ahead of the channel splitter (C3) rather than
	// already on a channel's own baseband.
	OffsetHz float64

	// NoiseStdDev, if non-zero, adds independent Gaussian noise of
	// this standard deviation to each I and Q sample.
	NoiseStdDev float64
}

// FMBurst frequency-modulates bits (a raw line-level bit stream, such
// as one returned by Frame or Message) into a complex baseband IQ
// block: each symbol holds a constant instantaneous frequency of
// OffsetHz+DeviationHz (bit true) or OffsetHz-DeviationHz (bit false),
// phase-integrated at SampleRate, matching what demod.FM and
// demod.PLLSampler expect to recover on the other end.
func FMBurst(bits []bool, opt FMOptions) iq.Block {
	samplesPerSymbol := opt.SampleRate / opt.SymbolRate
	n := int(float64(len(bits)) * samplesPerSymbol)
	out := make([]complex64, n)

	var phase float64
	for i := 0; i < n; i++ {
		symbol := int(float64(i) / samplesPerSymbol)
		if symbol >= len(bits) {
			symbol = len(bits) - 1
		}
		freq := opt.OffsetHz
		if bits[symbol] {
			freq += opt.DeviationHz
		} else {
			freq -= opt.DeviationHz
		}
		phase += 2 * math.Pi * freq / opt.SampleRate
		out[i] = complex64(complex(math.Cos(phase), math.Sin(phase)))
	}

	if opt.NoiseStdDev > 0 {
		addNoise(out, opt.NoiseStdDev)
	}

	return iq.Block{Samples: out}
}

// addNoise adds independent zero-mean Gaussian noise of the given
// standard deviation to the real and imaginary part of every sample.
func addNoise(samples []complex64, stdDev float64) {
	for i, s := range samples {
		n := complex(rand.NormFloat64()*stdDev, rand.NormFloat64()*stdDev)
		samples[i] = s + complex64(n)
	}
}

// Silence returns n zero-valued complex samples, used to pad a burst
// out to a longer test stream or to separate two bursts by a given
// gap.
func Silence(n int) []complex64 {
	return make([]complex64, n)
}

// Pad prepends lead and appends trail zero-valued samples around
// samples, used to place a synthesized burst at a specific offset
// within a longer block.
func Pad(samples []complex64, lead, trail int) []complex64 {
	out := make([]complex64, lead+len(samples)+trail)
	copy(out[lead:], samples)
	return out
}

// Mix sums two complex sample sequences sample-by-sample, treating a
// shorter sequence as zero-padded, used to superpose bursts from two
// simultaneous AIS channels before the combined stream reaches the
// channel splitter (C3), or to place two single-channel bursts at
// different symbol offsets within the same stream.
func Mix(a, b []complex64) []complex64 {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	out := make([]complex64, n)
	for i := range out {
		var av, bv complex64
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		out[i] = av + bv
	}
	return out
}
