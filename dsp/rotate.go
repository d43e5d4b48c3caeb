/*
NAME
  rotate.go

DESCRIPTION
  rotate.go implements the channel splitter (C3): given the canonical
  96 kHz complex stream, it produces the two down-shifted 25 kHz-offset
  streams for the AIS A (161.975 MHz) and B (162.025 MHz) channels by
  complex rotation.

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
)

// channelOffsetHz is the AIS channel spacing from the 96 kHz stream's
// centre frequency.
const channelOffsetHz = 25000

// Splitter separates a 96 kHz complex stream into the two AIS channel
// streams by rotating at ±channelOffsetHz. Each channel maintains its
// own rotating accumulator, renormalized to unit modulus once per
// block to bound floating-point drift.
type Splitter struct {
	rate  float64
	accA  complex128 // rotates at +channelOffsetHz (channel A, 161.975 MHz)
	accB  complex128 // rotates at -channelOffsetHz (channel B, 162.025 MHz)
	stepA complex128
	stepB complex128
}

// NewSplitter returns a Splitter for a stream sampled at rate (normally
// CanonicalRate).
func NewSplitter(rate float64) *Splitter {
	thetaA := 2 * math.Pi * channelOffsetHz / rate
	thetaB := -thetaA
	return &Splitter{
		rate:  rate,
		accA:  1,
		accB:  1,
		stepA: cmplx.Rect(1, thetaA),
		stepB: cmplx.Rect(1, thetaB),
	}
}

// Process rotates in into two equal-length output streams, a (channel
// A) and b (channel B).
func (s *Splitter) Process(in []complex64) (a, b []complex64) {
	a = make([]complex64, len(in))
	b = make([]complex64, len(in))
	s.ProcessInto(in, a, b)
	return a, b
}

// ProcessInto rotates in into a and b, which must each be at least
// len(in) samples long.
func (s *Splitter) ProcessInto(in, a, b []complex64) {
	for i, z := range in {
		s.accA *= s.stepA
		s.accB *= s.stepB
		zc := complex128(z)
		a[i] = complex64(zc * s.accA)
		b[i] = complex64(zc * s.accB)
	}
	// Renormalize once per block so floating-point drift in the
	// repeated complex multiply doesn't let |acc| wander from 1.
	s.accA /= complex(cmplx.Abs(s.accA), 0)
	s.accB /= complex(cmplx.Abs(s.accB), 0)
}

// Reset restarts both rotating accumulators at unit phase, as done on
// stream restart.
func (s *Splitter) Reset() {
	s.accA = 1
	s.accB = 1
}
