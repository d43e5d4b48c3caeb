/*
NAME
  bits.go

DESCRIPTION
  bits.go synthesizes the raw, line-level HDLC bit stream an AIS
  transmitter sends for a given payload: training preamble, opening
  flag, bit-stuffed payload, and closing flag, NRZI-encoded the way
  ais.Decoder expects to receive it. Generalizes the synthesis helpers
  protocol/ais/hdlc_test.go builds by hand for a single test case into
  a reusable fixture for every package's tests.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package fixture synthesizes golden test vectors for the AIS
// receiver's signal-processing and protocol layers, at whatever level
// a test needs: raw HDLC bit streams for protocol/ais, FM-modulated
// complex IQ bursts for the full dsp/demod/protocol pipeline, and
// stereo-WAV-encoded IQ files for fixtures worth checking in.
package fixture

import "github.com/ausocean/ais/protocol/ais"

// trainingAlternations is the number of 0/1 transitions fixture.Frame
// emits in its preamble, comfortably above the decoder's
// minTrainingAlternations requirement.
const trainingAlternations = 8

// flagBits is the HDLC flag pattern 01111110 in decoded-bit form, used
// both as the opening and closing flag.
var flagBits = []bool{false, true, true, true, true, true, true, false}

// StuffBits inserts a 0 after every run of five consecutive 1 bits,
// the standard HDLC bit-stuffing a transmitter applies so the flag
// pattern never appears inside real data.
func StuffBits(bits []bool) []bool {
	out := make([]bool, 0, len(bits)+len(bits)/5)
	run := 0
	for _, b := range bits {
		out = append(out, b)
		if b {
			run++
			if run == 5 {
				out = append(out, false)
				run = 0
			}
		} else {
			run = 0
		}
	}
	return out
}

// NRZIEncode converts a sequence of NRZI-decoded bits b (b =
// NOT(d^prev_d)) into the raw line bits d an ais.Decoder's Process
// expects to receive, the inverse of the decoder's own NRZI step.
func NRZIEncode(bits []bool) []bool {
	d := make([]bool, len(bits))
	prev := false
	for i, b := range bits {
		cur := prev != !b // d = prev XOR NOT(b)
		d[i] = cur
		prev = cur
	}
	return d
}

// Frame lays payload's bits (FCS already appended) out as the raw
// line-level bit stream a transmitter would send for it: a training
// preamble, the opening HDLC flag, the bit-stuffed payload, and the
// closing flag. The result is ready to feed straight into
// ais.Decoder.Process.
func Frame(payload *ais.BitBuffer) []bool {
	raw := make([]bool, payload.Len())
	for i := range raw {
		raw[i] = payload.Bit(i)
	}
	stuffed := StuffBits(raw)

	decoded := make([]bool, 0, 2*trainingAlternations+2*len(flagBits)+len(stuffed))
	for i := 0; i < 2*trainingAlternations; i++ {
		decoded = append(decoded, i%2 == 1)
	}
	decoded = append(decoded, flagBits...)
	decoded = append(decoded, stuffed...)
	decoded = append(decoded, flagBits...)

	return NRZIEncode(decoded)
}

// Message computes payload's FCS in place and returns the raw
// line-level bit stream for the resulting frame, via Frame. payload
// must hold the message's data bits only; Message appends the FCS.
func Message(payload *ais.BitBuffer) []bool {
	ais.AppendFCS(payload)
	return Frame(payload)
}
