/*
NAME
  frontend.go

DESCRIPTION
  frontend.go implements the front-end filter (C4): per-channel CIC-5
  decimation from 96 kHz to 48 kHz followed by a matched receiver FIR,
  selected by the demodulation mode the channel will feed.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dsp

// MatchedFilter selects which fixed FIR table a Frontend's matched
// filter stage uses, matched to the demodulator that will follow it.
type MatchedFilter int

const (
	// MatchedFM selects the Receiver table, for the non-coherent FM
	// discriminator.
	MatchedFM MatchedFilter = iota

	// MatchedCoherent selects the Coherent table, for the coherent
	// phase-search BPSK demodulator.
	MatchedCoherent
)

// Frontend decimates a 96 kHz channel stream to 48 kHz (CIC-5) and
// applies a matched receiver FIR ahead of the demodulator.
type Frontend struct {
	cic *CIC5
	fir *FIR
}

// NewFrontend returns a Frontend for the given matched-filter choice.
func NewFrontend(which MatchedFilter) *Frontend {
	taps := Receiver
	if which == MatchedCoherent {
		taps = Coherent
	}
	return &Frontend{cic: NewCIC5(), fir: NewFIR(taps)}
}

// Process decimates and filters in, returning the 48 kHz matched-filter
// output.
func (f *Frontend) Process(in []complex64) []complex64 {
	return f.fir.Process(f.cic.Process(in))
}

// Reset clears the CIC and FIR state, as done on stream restart.
func (f *Frontend) Reset() {
	f.cic.Reset()
	f.fir.Reset()
}
