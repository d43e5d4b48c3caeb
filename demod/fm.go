/*
NAME
  fm.go

DESCRIPTION
  fm.go implements the non-coherent FM discriminator path of the
  demodulator (C5): a simple differential-phase detector producing a
  48 kHz real stream from the matched-filtered complex input.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package demod

import "math"

// FM is a non-coherent FM discriminator. Its only state is the
// previous input sample, which is reset only on an explicit stream
// restart (Reset), not on a training/tracking signal — the
// discriminator has no notion of lock.
type FM struct {
	prev complex64
}

// NewFM returns an FM discriminator with a zeroed previous-sample
// state.
func NewFM() *FM { return &FM{} }

// Process discriminates in, returning a real output the same length as
// in: for each sample y_n, atan2(Im(y_n*conj(y_{n-1})), Re(...)) / pi.
func (f *FM) Process(in []complex64) []float32 {
	out := make([]float32, len(in))
	for i, y := range in {
		p := complex128(y) * complex128(complex(real(f.prev), -imag(f.prev)))
		out[i] = float32(math.Atan2(imag(p), real(p)) / math.Pi)
		f.prev = y
	}
	return out
}

// Reset clears the discriminator's previous-sample state, as done on
// stream restart (not on a training/tracking transition).
func (f *FM) Reset() { f.prev = 0 }
