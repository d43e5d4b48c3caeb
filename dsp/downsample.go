/*
NAME
  downsample.go

DESCRIPTION
  downsample.go implements the multi-rate downsampler (C2): it reduces
  an arbitrary supported input rate to the canonical 96 kHz complex
  stream through a cascade of CIC-5 decimate-by-2 stages and an optional
  decimate-by-3 polyphase stage, with a linear-interpolation upsampler
  interposed first for rates that aren't exactly reachable that way.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dsp

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
)

// CanonicalRate is the fixed output rate of the downsampler.
const CanonicalRate = 96000

// ErrUnsupportedRate is returned when no cascade covers a requested
// input sample rate.
var ErrUnsupportedRate = errors.New("dsp: unsupported input sample rate")

// SupportedRates lists the input rates the downsampler accepts, per
// spec.md §4.2.
var SupportedRates = []float64{
	12288000, 10000000, 6144000, 6000000, 3072000, 3000000, 2500000,
	2304000, 2000000, 1920000, 1536000, 1152000, 1100000, 1000000,
	912000, 900000, 768000, 384000, 288000, 250000, 240000, 192000,
	96000,
}

// IsSupportedRate reports whether rate appears in SupportedRates
// (within 1 Hz, to tolerate float round-trip).
func IsSupportedRate(rate float64) bool {
	for _, r := range SupportedRates {
		if math.Abs(r-rate) < 1 {
			return true
		}
	}
	return false
}

// decomposeRatio factors ratio into a CIC decimate-by-2 stage count and
// an optional decimate-by-3 polyphase stage: ratio must equal 2^cic or
// 2^cic*3. Returns ok=false if ratio doesn't factor that way.
func decomposeRatio(ratio int) (cic int, poly3 bool, ok bool) {
	if ratio <= 0 {
		return 0, false, false
	}
	r := ratio
	if r%3 == 0 {
		r /= 3
		poly3 = true
		if r%3 == 0 {
			return 0, false, false // only one ÷3 stage is supported
		}
	}
	for r%2 == 0 {
		r /= 2
		cic++
	}
	return cic, poly3, r == 1
}

// nearestStructuredRatio searches the small set of ratios reachable by
// a CIC-only or CIC+÷3 cascade (2^a or 2^a*3 for a in [0,8]) and returns
// the one closest to ratio by relative error.
func nearestStructuredRatio(ratio float64) int {
	best, bestErr := 1, math.Abs(ratio-1)
	for a := 0; a <= 8; a++ {
		for _, m := range [2]int{1, 3} {
			cand := (1 << a) * m
			err := math.Abs(ratio-float64(cand)) / ratio
			if err < bestErr {
				best, bestErr = cand, err
			}
		}
	}
	return best
}

// Downsampler reduces a complex input stream at a fixed input rate to
// CanonicalRate.
type Downsampler struct {
	inRate  float64
	interp  *LinearInterp // nil if no rate adjustment is needed
	cics    []*CIC5
	poly    *Poly3 // nil if the cascade has no ÷3 stage
	scratch []complex64
}

// NewDownsampler returns a Downsampler for inRate, selecting a cascade
// per spec.md §4.2. It returns ErrUnsupportedRate if inRate isn't one of
// SupportedRates.
func NewDownsampler(inRate float64) (*Downsampler, error) {
	if !IsSupportedRate(inRate) {
		return nil, errors.Wrapf(ErrUnsupportedRate, "%g Hz", inRate)
	}
	ratio := inRate / CanonicalRate
	rounded := int(math.Round(ratio))
	cic, poly3, ok := decomposeRatio(rounded) //nolint:ifshort
	var interp *LinearInterp
	if !ok || math.Abs(ratio-float64(rounded)) > 1e-6 {
		structured := nearestStructuredRatio(ratio)
		cic, poly3, ok = decomposeRatio(structured)
		if !ok {
			return nil, errors.Wrapf(ErrUnsupportedRate, "%g Hz has no reachable cascade", inRate)
		}
		targetRate := float64(structured) * CanonicalRate
		interp = NewLinearInterp(inRate, targetRate)
	}

	d := &Downsampler{inRate: inRate}
	d.interp = interp
	for i := 0; i < cic; i++ {
		d.cics = append(d.cics, NewCIC5())
	}
	if poly3 {
		d.poly = NewPoly3()
	}
	return d, nil
}

// Process runs in through the downsampler's cascade, returning the
// canonical-rate output. Per the rate invariant (spec.md §8), steady
// state output length is len(in)*CanonicalRate/inRate, within ±1 sample
// during the first call after construction or Reset.
func (d *Downsampler) Process(in []complex64) []complex64 {
	cur := in
	if d.interp != nil {
		cur = d.interp.Process(cur)
	}
	for _, c := range d.cics {
		cur = c.Process(cur)
	}
	if d.poly != nil {
		cur = d.poly.Process(cur)
	}
	return cur
}

// Reset clears all cascade stage state, as done on stream restart.
func (d *Downsampler) Reset() {
	if d.interp != nil {
		d.interp.Reset()
	}
	for _, c := range d.cics {
		c.Reset()
	}
	if d.poly != nil {
		d.poly.Reset()
	}
}

// String returns a human-readable description of the selected cascade,
// useful for diagnostics and log messages.
func (d *Downsampler) String() string {
	s := fmt.Sprintf("rate=%g", d.inRate)
	if d.interp != nil {
		s += fmt.Sprintf(" interp->%g", d.interp.outRate)
	}
	if n := len(d.cics); n > 0 {
		s += fmt.Sprintf(" cic5x%d", n)
	}
	if d.poly != nil {
		s += " poly3"
	}
	return s
}

// LinearInterp resamples a complex stream from inRate to outRate by
// linear interpolation between consecutive input samples, the
// "derived rate" path spec.md §4.2 calls for ahead of a structured
// cascade.
type LinearInterp struct {
	inRate, outRate float64
	step            float64 // input samples consumed per output sample
	pos             float64 // fractional read position into the pending buffer
	prev            complex64
	havePrev        bool
}

// NewLinearInterp returns a LinearInterp resampling from inRate to
// outRate.
func NewLinearInterp(inRate, outRate float64) *LinearInterp {
	return &LinearInterp{inRate: inRate, outRate: outRate, step: inRate / outRate}
}

// Process resamples in, returning approximately len(in)*outRate/inRate
// output samples. Index -1 (relative to in) is the last sample carried
// over from the previous call, so interpolation is continuous across
// call boundaries.
func (l *LinearInterp) Process(in []complex64) []complex64 {
	if len(in) == 0 {
		return nil
	}
	at := func(idx int) (complex64, bool) {
		switch {
		case idx == -1:
			if l.havePrev {
				return l.prev, true
			}
			return in[0], true
		case idx >= 0 && idx < len(in):
			return in[idx], true
		default:
			return 0, false
		}
	}

	var out []complex64
	for {
		i0 := int(math.Floor(l.pos))
		frac := float32(l.pos - math.Floor(l.pos))
		s0, ok0 := at(i0)
		s1, ok1 := at(i0 + 1)
		if !ok0 || !ok1 {
			break
		}
		out = append(out, s0+complex(frac, 0)*(s1-s0))
		l.pos += l.step
	}
	l.pos -= float64(len(in))
	l.prev = in[len(in)-1]
	l.havePrev = true
	return out
}

// Reset clears interpolation state, as done on stream restart.
func (l *LinearInterp) Reset() {
	l.pos = 0
	l.prev = 0
	l.havePrev = false
}
