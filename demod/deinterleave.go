/*
NAME
  deinterleave.go

DESCRIPTION
  deinterleave.go implements the coherent symbol-timing path of C6:
  sample n of the 48 kHz coherent demodulator output is routed to
  decoder n mod N, giving N parallel decoders a fixed-phase 9.6 kHz
  view of the stream. The first decoder to lock a valid frame raises
  Reset on the shared signal bus; the losers revert to TRAINING.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package demod

// Deinterleaver fans a 48 kHz soft-bit stream out to N phase-offset
// sinks, one per candidate symbol-timing phase.
type Deinterleaver struct {
	sinks []func(float32)
}

// NewDeinterleaver returns a Deinterleaver that routes sample n to
// sinks[n%len(sinks)].
func NewDeinterleaver(sinks []func(float32)) *Deinterleaver {
	return &Deinterleaver{sinks: sinks}
}

// Process routes every sample in in to its phase sink. It does not
// return a value: each sink is expected to feed a decoder directly.
func (d *Deinterleaver) Process(in []float32) {
	n := len(d.sinks)
	if n == 0 {
		return
	}
	for i, v := range in {
		d.sinks[i%n](v)
	}
}
