/*
NAME
  quickstop.go

DESCRIPTION
  quickstop.go implements the HDLC decoder's "quick stop" heuristic
  (C8): at a handful of canonical bit positions, a frame whose claimed
  message type has already overrun that type's fixed ITU-R M.1371
  payload length can never complete as a valid message of that type, so
  the decoder abandons it and returns to TRAINING instead of running it
  out to a CRC failure. Ported from original_source/Library/AIS.cpp's
  Decoder::canStop.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ais

// QuickStopTable maps a bit position (post-destuffing, counted from the
// start of the frame) to the set of message types whose fixed payload
// length has already been overrun by that position. A decoder
// configured with a QuickStopTable aborts the frame back to TRAINING
// the moment its position reaches one of these checkpoints with a type
// field naming one of the listed types, rather than waiting for the
// full 1024-bit overrun or a failed CRC. Two further checkpoints (8 and
// 38 bits, an invalid type field and an impossible MMSI respectively)
// aren't expressible as a type list and are checked directly in
// Decoder.quickStopped.
type QuickStopTable map[int][]int

// Overruns reports whether msgType's fixed payload length has already
// been exceeded at the given bit position, i.e. whether the frame
// should abort there. A position absent from the table never aborts.
func (t QuickStopTable) Overruns(position, msgType int) bool {
	for _, got := range t[position] {
		if got == msgType {
			return true
		}
	}
	return false
}

// DefaultQuickStopTable is populated from original_source/Library/AIS.cpp's
// canStop: each key is a fixed message length plus the 24-bit trailer
// (16 FCS bits + 8 bits to detect the closing flag), and its values are
// the message types whose own fixed length that checkpoint represents.
var DefaultQuickStopTable = QuickStopTable{
	96:  {10},
	168: {16},
	184: {15, 20, 23},
	192: {1, 2, 3, 4, 7, 9, 11, 18, 22, 24, 25, 27},
	336: {19},
	385: {21},
	448: {5},
}
