/*
NAME
  freqoffset.go

DESCRIPTION
  freqoffset.go implements the frequency-offset estimator (C7): an
  FFT-based estimate of residual carrier offset from the squared
  (BPSK-stripped) signal, used to derotate the saved time-domain block
  before handing it to symbol timing recovery.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dsp

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// symbolRateHz is the AIS BPSK symbol rate; squaring the signal strips
// the ±1 modulation and leaves a tone at twice the carrier offset from
// symbolRateHz/2.
const symbolRateHz = 9600

// FreqOffsetEstimator estimates residual carrier offset over blocks of
// N complex samples (48 kHz, post front-end), per spec.md §4.7: square
// the signal, FFT it, search for the peak pair spaced by Δ =
// round(symbolRateHz·N/sampleRate), and derotate the original block by
// the corresponding cycles-per-sample correction.
type FreqOffsetEstimator struct {
	n          int
	sampleRate float64
	window     int // excluded from the search at each end of the spectrum
	phase      complex128
}

// NewFreqOffsetEstimator returns an estimator operating on blocks of n
// samples (4096 or 2048 per spec.md §4.7) at sampleRate (48 kHz).
func NewFreqOffsetEstimator(n int, sampleRate float64) *FreqOffsetEstimator {
	return &FreqOffsetEstimator{n: n, sampleRate: sampleRate, window: n / 16, phase: 1}
}

// BlockSize returns the estimator's fixed analysis block length.
func (e *FreqOffsetEstimator) BlockSize() int { return e.n }

// EstimateAndCorrect squares block, FFTs it, searches for the
// offset-indicating peak pair, and returns a new slice the same length
// as block derotated by the estimated offset, plus the offset in Hz.
// len(block) must equal e.n.
func (e *FreqOffsetEstimator) EstimateAndCorrect(block []complex64) ([]complex64, float64) {
	n := e.n
	sq := make([]complex128, n)
	for i, s := range block {
		c := complex128(s)
		sq[i] = c * c
	}
	spectrum := fft.FFT(sq)

	delta := int(math.Round(symbolRateHz / e.sampleRate * float64(n)))
	if delta < 1 {
		delta = 1
	}

	bestI, bestH := e.window, -1.0
	for i := e.window; i <= n-e.window-delta; i++ {
		h := cmplx.Abs(spectrum[(i+n/2)%n]) + cmplx.Abs(spectrum[(i+delta+n/2)%n])
		if h > bestH {
			bestH, bestI = h, i
		}
	}

	fz := float64(n)/2 - (float64(bestI) + float64(delta)/2)
	cyclesPerSample := fz / 2 / float64(n)
	rotStep := cmplx.Rect(1, 2*math.Pi*cyclesPerSample)

	out := make([]complex64, len(block))
	acc := e.phase
	for i, s := range block {
		acc *= rotStep
		out[i] = complex64(complex128(s) * acc)
	}
	e.phase = acc / complex(cmplx.Abs(acc), 0)

	offsetHz := cyclesPerSample * e.sampleRate
	return out, offsetHz
}

// Reset restarts the accumulated derotation phase, as done on stream
// restart.
func (e *FreqOffsetEstimator) Reset() { e.phase = 1 }
