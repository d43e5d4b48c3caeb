package ais

import (
	"testing"
	"time"

	"github.com/ausocean/ais/demod"
)

// stuffBits inserts a 0 after every run of 5 consecutive 1 bits, the
// standard HDLC bit-stuffing transmitters apply so a flag pattern never
// appears inside real data.
func stuffBits(bits []bool) []bool {
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

// nrziEncode converts a sequence of NRZI-decoded bits B (B =
// NOT(d^prev_d)) back into the raw line bits d the decoder's Process
// expects, the inverse of the decoder's own NRZI step.
func nrziEncode(bs []bool) []bool {
	d := make([]bool, len(bs))
	prev := false
	for i, b := range bs {
		cur := prev != !b // d = prev XOR NOT(B)
		d[i] = cur
		prev = cur
	}
	return d
}

func TestDecoderSingleFrame(t *testing.T) {
	// Training preamble (>=4 alternations) then the 01111110 start flag,
	// ending the decoder in DATAFCS with an empty frame.
	preambleAndFlag := []bool{
		false, true, false, true, false, true, // 4 alternations by bit index 5
		true,                   // repeat -> transition to STARTFLAG@3
		true, true, true, true, // advance position 3->7
		false, // close start flag, enter DATAFCS
	}

	payload := NewBitBuffer(168)
	appendUint(payload, 1, 6)          // type 1
	appendUint(payload, 0, 2)          // repeat 0
	appendUint(payload, 227006760, 30) // MMSI
	for i := 0; i < 168-38; i++ {
		payload.AppendBit(i%7 == 0)
	}
	wantBits := payload.Len()
	AppendFCS(payload)

	var raw []bool
	for i := 0; i < payload.Len(); i++ {
		raw = append(raw, payload.Bit(i))
	}
	stuffed := stuffBits(raw)

	closingFlag := []bool{false, true, true, true, true, true, true}

	var bSeq []bool
	bSeq = append(bSeq, preambleAndFlag...)
	bSeq = append(bSeq, stuffed...)
	bSeq = append(bSeq, closingFlag...)

	dSeq := nrziEncode(bSeq)

	clock := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	bus := &demod.SignalBus{}
	dec := NewDecoder(ChannelA, bus, func() time.Time { return clock })

	var got []Message
	dec.Process(dSeq, func(m Message) { got = append(got, m) })

	if len(got) != 1 {
		t.Fatalf("decoded %d messages, want 1", len(got))
	}
	msg := got[0]
	if msg.Type() != 1 {
		t.Errorf("Type() = %d, want 1", msg.Type())
	}
	if msg.MMSI() != 227006760 {
		t.Errorf("MMSI() = %d, want 227006760", msg.MMSI())
	}
	if msg.Bits() != wantBits {
		t.Errorf("Bits() = %d, want %d", msg.Bits(), wantBits)
	}
	if msg.Channel != ChannelA {
		t.Errorf("Channel = %c, want A", msg.Channel)
	}
	if !msg.Time.Equal(clock) {
		t.Errorf("Time = %v, want %v", msg.Time, clock)
	}
}

// TestDecoderType5QuickStop decodes a full 424-bit type 5 (static and
// voyage data) frame with the default QuickStopTable enabled, verifying
// the quick-stop heuristic doesn't abort a frame whose length matches
// its own claimed type (regression for a table that mistakenly aborted
// every non-168-bit type at position 168).
func TestDecoderType5QuickStop(t *testing.T) {
	preambleAndFlag := []bool{
		false, true, false, true, false, true,
		true,
		true, true, true, true,
		false,
	}

	payload := NewBitBuffer(424)
	appendUint(payload, 5, 6)          // type 5
	appendUint(payload, 0, 2)          // repeat 0
	appendUint(payload, 227006760, 30) // MMSI
	for i := 0; i < 424-38; i++ {
		payload.AppendBit(i%7 == 0)
	}
	AppendFCS(payload)

	raw := make([]bool, payload.Len())
	for i := range raw {
		raw[i] = payload.Bit(i)
	}
	stuffed := stuffBits(raw)
	closingFlag := []bool{false, true, true, true, true, true, true}

	var bSeq []bool
	bSeq = append(bSeq, preambleAndFlag...)
	bSeq = append(bSeq, stuffed...)
	bSeq = append(bSeq, closingFlag...)

	dec := NewDecoder(ChannelA, nil, nil)
	if dec.QuickStop == nil {
		t.Fatal("NewDecoder should wire DefaultQuickStopTable by default")
	}

	var got []Message
	dec.Process(nrziEncode(bSeq), func(m Message) { got = append(got, m) })

	if len(got) != 1 {
		t.Fatalf("decoded %d messages, want 1 (quick-stop wrongly aborted a valid type 5 frame)", len(got))
	}
	if got[0].Type() != 5 {
		t.Errorf("Type() = %d, want 5", got[0].Type())
	}
}

func TestDecoderBadCRCProducesNoMessage(t *testing.T) {
	preambleAndFlag := []bool{false, true, false, true, false, true, true, true, true, true, true, false}

	payload := NewBitBuffer(64)
	for i := 0; i < 40; i++ {
		payload.AppendBit(i%2 == 0)
	}
	AppendFCS(payload)
	// Corrupt one payload bit after computing the FCS so CRC fails.
	raw := make([]bool, payload.Len())
	for i := range raw {
		raw[i] = payload.Bit(i)
	}
	raw[0] = !raw[0]

	stuffed := stuffBits(raw)
	closingFlag := []bool{false, true, true, true, true, true, true}

	var bSeq []bool
	bSeq = append(bSeq, preambleAndFlag...)
	bSeq = append(bSeq, stuffed...)
	bSeq = append(bSeq, closingFlag...)

	dec := NewDecoder(ChannelA, nil, nil)
	var got []Message
	dec.Process(nrziEncode(bSeq), func(m Message) { got = append(got, m) })

	if len(got) != 0 {
		t.Fatalf("decoded %d messages from a corrupted frame, want 0", len(got))
	}
}

func TestDecoderResetReturnsToTraining(t *testing.T) {
	dec := NewDecoder(ChannelA, nil, nil)
	dec.st = stateDataFCS
	dec.position = 12
	dec.Reset()
	if dec.st != stateTraining {
		t.Errorf("st after Reset = %v, want stateTraining", dec.st)
	}
}
