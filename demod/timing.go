/*
NAME
  timing.go

DESCRIPTION
  timing.go implements the non-coherent symbol-timing PLL sampler (C6):
  a scalar phase accumulator nudged by the sign transitions of the FM
  discriminator's output, emitting one symbol per overflow.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package demod

import "math"

// pllIncrement is the per-sample PLL phase increment: 5 samples per
// symbol at 48 kHz for a 9.6 kHz symbol rate, so 1/5 = 0.2.
const pllIncrement = float32(0.2)

// Gains applied to the PLL nudge on a sign transition, depending on
// whether the PLL is in its wide-capture training mode or its
// narrow-tracking mode once the decoder has left training.
const (
	pllGainTraining = float32(0.6)
	pllGainTracking = float32(0.05)
)

// PLLSampler recovers symbol timing from the FM discriminator's real
// output stream. It starts in training mode and switches to tracking
// mode when it receives StopTraining on its signal bus, switching back
// on StartTraining.
type PLLSampler struct {
	phase    float32
	prevSign bool
	training bool
}

// NewPLLSampler returns a PLLSampler starting in training mode.
func NewPLLSampler() *PLLSampler {
	return &PLLSampler{training: true}
}

// Receive implements the Signal consumer side of the signal bus: call
// Subscribe(s.Receive) on the decoder's SignalBus so the sampler tracks
// the decoder's training/tracking state.
func (s *PLLSampler) Receive(sig Signal) {
	switch sig {
	case StartTraining:
		s.training = true
	case StopTraining:
		s.training = false
	}
}

// Process samples in (the FM discriminator's output), returning the
// symbols emitted on PLL overflow, in order.
func (s *PLLSampler) Process(in []float32) []float32 {
	out := make([]float32, 0, len(in)/4)
	for _, v := range in {
		sign := v > 0
		if sign != s.prevSign {
			gain := pllGainTracking
			if s.training {
				gain = pllGainTraining
			}
			s.phase += gain * (0.5 - s.phase)
		}
		s.prevSign = sign

		s.phase += pllIncrement
		if s.phase >= 1 {
			out = append(out, v)
			s.phase -= float32(math.Floor(float64(s.phase)))
		}
	}
	return out
}

// Reset restarts the PLL's phase accumulator and sign-transition
// history, as done on stream restart.
func (s *PLLSampler) Reset() {
	s.phase = 0
	s.prevSign = false
}
