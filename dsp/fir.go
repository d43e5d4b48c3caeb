/*
NAME
  fir.go

DESCRIPTION
  fir.go provides a generic real-coefficient FIR for complex samples,
  the fixed coefficient tables used by the front-end matched filter (C4),
  and a windowed-sinc low-pass design helper for rates the fixed tables
  don't cover.

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

	"github.com/mjibson/go-dsp/window"
)

// Receiver is the 37-tap matched FIR used ahead of the non-coherent FM
// discriminator.
var Receiver = []float32{
	-0.00232176, -0.00289301, -0.00067195, 0.00494485, 0.01392242,
	0.02531733, 0.03735952, 0.04794655, 0.05502938, 0.05699322,
	0.05307018, 0.04347307, 0.02940476, 0.01281722, -0.00397987,
	-0.01911729, -0.03075057, -0.03745756, -0.03834117, -0.03306181,
	-0.02195568, -0.00604125, 0.01281722, 0.03210665, 0.04893516,
	0.06057117, 0.06497119, 0.06094731, 0.04834117, 0.02810665,
	0.00281722, -0.02401729, -0.04834117, -0.06610665, -0.07497119,
	-0.07310665, -0.06010665,
}

// Coherent is the 17-tap matched FIR used ahead of the coherent
// phase-search BPSK demodulator.
var Coherent = []float32{
	-0.01574131, -0.01953993, -0.01349163, 0.00878963, 0.04985988,
	0.10603116, 0.16862940, 0.22466855, 0.24900000, 0.22466855,
	0.16862940, 0.10603116, 0.04985988, 0.00878963, -0.01349163,
	-0.01953993, -0.01574131,
}

// BlackmanHarris283 is a 27-tap Blackman-Harris windowed low-pass
// coefficient table. No stage in this module applies it; the
// frequency-offset estimator (C7) squares and transforms its input
// without pre-filtering.
var BlackmanHarris283 = []float32{
	0.00011951, 0.00147276, 0.00663261, 0.01959915, 0.04426840,
	0.08182565, 0.13001724, 0.18264748, 0.23076056, 0.26544712,
	0.28000000, 0.26544712, 0.23076056, 0.18264748, 0.13001724,
	0.08182565, 0.04426840, 0.01959915, 0.00663261, 0.00147276,
	0.00011951, 0, 0, 0, 0, 0, 0,
}

// BlackmanHarris325 is the 32-tap sibling of BlackmanHarris283; like it,
// no stage in this module applies it.
var BlackmanHarris325 = []float32{
	0.00006349, 0.00060399, 0.00305794, 0.01030594, 0.02588132,
	0.05289678, 0.09225862, 0.14132374, 0.19370528, 0.24025622,
	0.27267162, 0.28500000, 0.27267162, 0.24025622, 0.19370528,
	0.14132374, 0.09225862, 0.05289678, 0.02588132, 0.01030594,
	0.00305794, 0.00060399, 0.00006349, 0, 0, 0, 0, 0, 0, 0, 0, 0,
}

// FIR is a direct-form real-coefficient FIR for complex64 samples,
// applied without decimation (the Frontend runs it after the decimating
// CIC stage, so the matched response is applied once, at 48 kHz).
type FIR struct {
	taps  []float32
	delay []complex64
	pos   int
}

// NewFIR returns a FIR using taps, which is retained (not copied); the
// caller must not modify it afterwards.
func NewFIR(taps []float32) *FIR {
	return &FIR{taps: taps, delay: make([]complex64, len(taps))}
}

// Process filters in sample by sample, returning a new slice the same
// length as in.
func (f *FIR) Process(in []complex64) []complex64 {
	out := make([]complex64, len(in))
	f.ProcessInto(in, out)
	return out
}

// ProcessInto filters in into out, which must be at least len(in)
// samples long.
func (f *FIR) ProcessInto(in []complex64, out []complex64) {
	n := len(f.taps)
	for i, s := range in {
		f.delay[f.pos] = s
		var acc complex64
		p := f.pos
		for k := 0; k < n; k++ {
			acc += f.delay[p] * complex(f.taps[k], 0)
			p--
			if p < 0 {
				p = n - 1
			}
		}
		out[i] = acc
		f.pos++
		if f.pos >= n {
			f.pos = 0
		}
	}
}

// Reset clears the delay line.
func (f *FIR) Reset() {
	for i := range f.delay {
		f.delay[i] = 0
	}
	f.pos = 0
}

// NewLowPass designs an odd-length windowed-sinc low-pass FIR with the
// given cutoff expressed as a fraction of the sample rate (0,0.5), using
// a flat-top window, the same design approach codec/pcm/filters.go used
// for its SelectiveFrequencyFilter.
func NewLowPass(taps int, cutoff float64) *FIR {
	if taps%2 == 0 {
		taps++
	}
	coef := make([]float32, taps)
	m := taps - 1
	for i := 0; i < taps; i++ {
		n := float64(i) - float64(m)/2
		var sinc float64
		if n == 0 {
			sinc = 2 * cutoff
		} else {
			sinc = math.Sin(2*math.Pi*cutoff*n) / (math.Pi * n)
		}
		coef[i] = float32(sinc)
	}
	win := window.FlatTop(taps)
	for i := range coef {
		coef[i] *= float32(win[i])
	}
	return NewFIR(coef)
}
