/*
NAME
  signals.go

DESCRIPTION
  signals.go defines the narrow signal bus carried between the HDLC
  decoder (C8) and the symbol-timing/demodulator stages that feed it
  (C5/C6): training mode changes and frame-lock resets are modeled as
  tagged messages, not shared mutable booleans, so a downstream stage
  never has to poll upstream state.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package demod

// Signal is a one-way, synchronous, data-free message passed from the
// frame decoder back to the stages that feed it.
type Signal int

const (
	// StartTraining tells a PLL sampler or phase-search bank to favor
	// training gain over tracking gain; raised when the decoder falls
	// back to its TRAINING state.
	StartTraining Signal = iota

	// StopTraining tells a PLL sampler to switch to its lower tracking
	// gain; raised the moment a decoder leaves TRAINING for its
	// start-flag state, before the flag itself has been matched.
	StopTraining

	// Reset tells a deinterleaved decoder bank's non-winning decoders to
	// revert to TRAINING; raised the moment any one of them completes a
	// valid frame.
	Reset
)

// SignalBus delivers Signals from one C8 decoder instance to the
// stage(s) that feed it. A nil *SignalBus is valid and silently drops
// every Raise, which is the common case for a non-interleaved decoder
// that has nothing to notify.
type SignalBus struct {
	sinks []func(Signal)
}

// Subscribe registers fn to be called synchronously on every Raise.
func (b *SignalBus) Subscribe(fn func(Signal)) {
	b.sinks = append(b.sinks, fn)
}

// Raise delivers sig to every subscriber, in registration order.
func (b *SignalBus) Raise(sig Signal) {
	if b == nil {
		return
	}
	for _, fn := range b.sinks {
		fn(sig)
	}
}
