/*
NAME
  coherent.go

DESCRIPTION
  coherent.go implements the coherent phase-search path of the
  demodulator (C5): a bank of 16 candidate BPSK reference phases scored
  by an exponential moving average of correlation magnitude, with a
  maximum-margin search around the current best phase and differential
  decoding.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package demod

import (
	"math"
	"math/cmplx"
)

// nPhases is the number of candidate reference phases; must be a power
// of two so index wraparound can use a bitmask.
const nPhases = 16

// emaWeight is the exponential moving average weight applied to each
// candidate phase's correlation-magnitude history.
const emaWeight = float32(0.85)

// phaseTable holds nPhases/2 reference phases, (2j+1)*pi/32 for j=0..7,
// spaced pi/16 apart; entry j scores candidate j with the a+b
// correlation and candidate nPhases-1-j with the a-b correlation.
var phaseTable = func() [nPhases / 2]complex64 {
	var t [nPhases / 2]complex64
	for j := range t {
		theta := (2*float64(j) + 1) * math.Pi / (2 * nPhases)
		t[j] = complex64(cmplx.Rect(1, theta))
	}
	return t
}()

// Coherent is the EMA-scored phase-search coherent BPSK demodulator.
// It produces one differentially-decoded soft bit (as ±1) per input
// sample; downstream symbol timing (the deinterleaved decoder bank)
// picks out the one-in-five samples that land on a true symbol
// boundary.
type Coherent struct {
	nDelay int
	bits   [nPhases]uint32
	ma     [nPhases]float32
	maxIdx int
	rot    int
}

// NewCoherent returns a Coherent demodulator with delay (the number of
// samples back used for differential decoding; 0 selects adjacent
// bits).
func NewCoherent(delay int) *Coherent {
	return &Coherent{nDelay: delay}
}

// Process demodulates in, returning one ±1 soft bit per input sample.
func (c *Coherent) Process(in []complex64) []float32 {
	out := make([]float32, len(in))
	for i, s := range in {
		out[i] = c.receive(s)
	}
	return out
}

// receive processes one input sample and returns its soft bit.
func (c *Coherent) receive(s complex64) float32 {
	re, im := real(s), imag(s)
	// Rotate by j^rot to fold both BPSK polarities onto the real axis.
	switch c.rot {
	case 1:
		re, im = -im, re
	case 2:
		re, im = -re, -im
	case 3:
		re, im = im, -re
	}
	c.rot = (c.rot + 1) & 3

	for j := 0; j < nPhases/2; j++ {
		a := re * real(phaseTable[j])
		b := im * imag(phaseTable[j])

		t := a + b
		c.bits[j] = (c.bits[j] << 1) | boolToBit(t > 0)
		c.ma[j] = emaWeight*c.ma[j] + (1-emaWeight)*absf32(t)
		c.ma[j] = sanitize(c.ma[j])

		t = a - b
		k := nPhases - 1 - j
		c.bits[k] = (c.bits[k] << 1) | boolToBit(t > 0)
		c.ma[k] = emaWeight*c.ma[k] + (1-emaWeight)*absf32(t)
		c.ma[k] = sanitize(c.ma[k])
	}

	// Maximum-margin search over the current best phase ± nSearch.
	const nSearch = 2
	idx := (c.maxIdx - nSearch + nPhases) & (nPhases - 1)
	maxVal := c.ma[idx]
	c.maxIdx = idx
	for p := 0; p < nSearch*2; p++ {
		idx = (idx + 1) & (nPhases - 1)
		if c.ma[idx] > maxVal {
			maxVal = c.ma[idx]
			c.maxIdx = idx
		}
	}

	b2 := (c.bits[c.maxIdx] >> uint(c.nDelay+1)) & 1
	b1 := (c.bits[c.maxIdx] >> uint(c.nDelay)) & 1
	if b1^b2 == 1 {
		return 1
	}
	return -1
}

// Reset clears all phase-search state, as done on stream restart.
func (c *Coherent) Reset() {
	c.bits = [nPhases]uint32{}
	c.ma = [nPhases]float32{}
	c.maxIdx = 0
	c.rot = 0
}

func boolToBit(b bool) uint32 {
	if b {
		return 1
	}
	return 0
}

func absf32(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

// sanitize guards against a stuck Inf/NaN propagating through the EMA
// forever once a bad sample reaches it.
func sanitize(f float32) float32 {
	if math.IsInf(float64(f), 0) || math.IsNaN(float64(f)) {
		return 0
	}
	return f
}
