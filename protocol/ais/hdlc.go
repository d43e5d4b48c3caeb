/*
NAME
  hdlc.go

DESCRIPTION
  hdlc.go implements the AIS HDLC decoder (C8): NRZI decoding,
  training-sequence detection, start-flag synchronization, bit
  destuffing, quick-stop and CRC validation, and delivery of the
  completed frame to a sink.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ais

import (
	"time"

	"github.com/ausocean/ais/demod"
)

// state is the decoder's HDLC synchronization state.
type state int

const (
	stateTraining state = iota
	stateStartFlag
	stateDataFCS
)

// Decoder limits and the start-flag pattern it looks for.
const (
	minTrainingAlternations = 4
	maxFrameBits            = 1024
	startFlagBits           = 8 // 01111110
)

// Decoder implements the HDLC/AIS frame decoder (C8). One Decoder
// tracks one sample-timing phase; a deinterleaved coherent receiver
// runs several in parallel (demod.Deinterleaver) and relies on Reset
// signals to stop the losers once one locks a frame.
type Decoder struct {
	Channel        Channel
	QuickStop      QuickStopTable // nil disables the quick-stop heuristic
	Bus            *demod.SignalBus
	now            func() time.Time

	st          state
	prevNRZI    bool
	lastBit     bool
	alternation int
	position    int // meaning depends on st: start-flag progress or frame bit count (unused in training, which counts in alternation)
	oneCount    int
	frame       *BitBuffer
}

// NewDecoder returns a Decoder for the given channel. now, if non-nil,
// supplies the frame completion timestamp (defaults to time.Now); tests
// pass a fixed clock.
func NewDecoder(channel Channel, bus *demod.SignalBus, now func() time.Time) *Decoder {
	if now == nil {
		now = time.Now
	}
	return &Decoder{
		Channel:   channel,
		QuickStop: DefaultQuickStopTable,
		Bus:       bus,
		now:       now,
		frame:     NewBitBuffer(maxFrameBits),
	}
}

// Process feeds d a stream of raw (pre-NRZI) symbol-timing bits,
// invoking emit for every frame that passes CRC.
func (d *Decoder) Process(bits []bool, emit func(Message)) {
	for _, raw := range bits {
		d.receive(raw, emit)
	}
}

func (d *Decoder) receive(raw bool, emit func(Message)) {
	b := !(raw != d.prevNRZI) // NOT(d XOR prev_d)
	d.prevNRZI = raw

	switch d.st {
	case stateTraining:
		if b != d.lastBit {
			d.alternation++
		} else if d.alternation >= minTrainingAlternations {
			if b {
				d.enter(stateStartFlag, 3)
			} else {
				d.enter(stateStartFlag, 1)
			}
		} else {
			d.enter(stateTraining, 0)
		}

	case stateStartFlag:
		if d.position == startFlagBits-1 {
			if !b {
				d.enter(stateDataFCS, 0)
			} else {
				d.enter(stateTraining, 0)
			}
		} else if b {
			d.position++
		} else {
			d.enter(stateTraining, 0)
		}

	case stateDataFCS:
		d.frame.AppendBit(b)
		d.position++

		if b {
			if d.oneCount == 5 {
				// Sixth consecutive 1: 01111110 would only appear here if
				// this is the closing flag, since five real 1s would
				// always have been destuffed by a 0 before a sixth.
				if d.tryFinish(d.position-7, emit) {
					d.Bus.Raise(demod.Reset)
				}
				d.enter(stateTraining, 0)
			} else {
				d.oneCount++
			}
		} else {
			if d.oneCount == 5 {
				// Bit-destuff: this 0 was inserted by the transmitter
				// solely to break up a run of five 1s, discard it.
				d.frame.Truncate(d.position - 1)
				d.position--
			}
			d.oneCount = 0
		}

		if d.st == stateDataFCS && (d.position >= maxFrameBits || d.quickStopped()) {
			d.enter(stateTraining, 0)
		}
	}

	d.lastBit = b
}

// quickStopped reports whether the frame-so-far can be abandoned early
// per the quick-stop heuristic. Positions 8 (invalid type field) and 38
// (impossible MMSI) catch garbage too early to key off a fixed message
// length; every other checkpoint is table-driven.
func (d *Decoder) quickStopped() bool {
	if d.QuickStop == nil || d.position < 8 {
		return false
	}
	msgType := int(d.frame.Field(0, 6))

	switch d.position {
	case 8:
		return msgType == 0 || msgType > 27
	case 38:
		return d.frame.Field(8, 30) > 999999999
	}
	return d.QuickStop.Overruns(d.position, msgType)
}

// tryFinish validates the frame once a closing flag has been found at
// bit count length (the frame length excluding the flag itself), and
// delivers it to emit on success.
func (d *Decoder) tryFinish(length int, emit func(Message)) bool {
	if length <= 16 || !CRC16(d.frame, length) {
		return false
	}
	payload := NewBitBuffer(length - 16)
	for i := 0; i < length-16; i++ {
		payload.AppendBit(d.frame.Bit(i))
	}
	emit(Message{Payload: payload, Channel: d.Channel, Time: d.now()})
	return true
}

// enter transitions to state s, resetting the per-state counters and
// raising the appropriate signal on the decoder's signal bus.
func (d *Decoder) enter(s state, position int) {
	d.st = s
	d.position = position
	d.oneCount = 0
	switch s {
	case stateTraining:
		d.alternation = 0
		d.frame.Reset()
		d.Bus.Raise(demod.StartTraining)
	case stateStartFlag:
		d.Bus.Raise(demod.StopTraining)
	}
}

// Reset reverts the decoder to TRAINING, as happens when it receives a
// Reset signal from a sibling decoder in a deinterleaved bank that has
// just locked a frame.
func (d *Decoder) Reset() { d.enter(stateTraining, 0) }
