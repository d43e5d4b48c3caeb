/*
NAME
  polyphase.go

DESCRIPTION
  polyphase.go implements the 21-tap decimate-by-3 polyphase FIR used to
  reach sample rates not divisible by the CIC-5 cascade's powers of two
  (C2).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package dsp

// poly3Taps is the 21-tap symmetric FIR kernel for decimate-by-3, centred
// at tap 10. Taps at offsets 3, 6, 9 from the centre are exactly zero,
// a property of this particular half-band-like design; ProcessInto
// still sums all 21 taps.
var poly3Taps = [21]float32{
	-0.00101073661, 0, 0.00616649466, 0.01130778123, 0,
	-0.03044260089, -0.04750748661, 0, 0.12579695977, 0.26922914593,
	0.33292088503,
	0.26922914593, 0.12579695977, 0, -0.04750748661, -0.03044260089,
	0, 0.01130778123, 0.00616649466, 0, -0.00101073661,
}

// Poly3 is a 21-tap decimate-by-3 polyphase FIR for complex samples. Its
// delay line is the filter's only persistent state.
type Poly3 struct {
	delay [21]complex64
}

// NewPoly3 returns a Poly3 stage with a zeroed delay line.
func NewPoly3() *Poly3 { return &Poly3{} }

// Process decimates in by 3, returning a new slice of len(in)/3 output
// samples.
func (p *Poly3) Process(in []complex64) []complex64 {
	out := make([]complex64, len(in)/3)
	p.ProcessInto(in, out)
	return out
}

// ProcessInto decimates in by 3 into out, which must be at least
// len(in)/3 samples long.
func (p *Poly3) ProcessInto(in []complex64, out []complex64) {
	j := 0
	for i := 0; i+2 < len(in); i += 3 {
		// Shift three new samples into the delay line, oldest first, so
		// delay[0] ends up holding in[i+2] (the most recent sample) and
		// delay[20] holds the oldest retained sample.
		copy(p.delay[3:], p.delay[:18])
		p.delay[2] = in[i]
		p.delay[1] = in[i+1]
		p.delay[0] = in[i+2]

		var acc complex64
		for k := 0; k < 21; k++ {
			acc += p.delay[k] * complex(poly3Taps[k], 0)
		}
		out[j] = acc
		j++
	}
}

// Reset clears the delay line, as done on stream restart.
func (p *Poly3) Reset() { *p = Poly3{} }
