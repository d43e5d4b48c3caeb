/*
NAME
  message.go

DESCRIPTION
  message.go defines the decoded AIS message record emitted by the HDLC
  decoder (C8) once a frame passes CRC, plus the accessors the NMEA
  packager (C9) and callers use to read its ITU-R M.1371 header fields.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ais

import "time"

// Channel identifies which AIS VHF channel a message was received on.
type Channel byte

// Supported channel letters. C and D are the simplex aid-to-navigation
// channels some receivers also decode (SUPPLEMENTED FEATURES #4).
const (
	ChannelA Channel = 'A'
	ChannelB Channel = 'B'
	ChannelC Channel = 'C'
	ChannelD Channel = 'D'
)

// Message is one decoded, CRC-valid AIS frame: the raw payload bits
// plus the header fields common to every ITU-R M.1371 message type and
// the metadata the receiver attaches.
type Message struct {
	// Payload is the frame's data bits, excluding the 16-bit FCS.
	Payload *BitBuffer

	// Channel is the VHF channel the frame was received on.
	Channel Channel

	// Time is the wall-clock time the frame's last bit was decoded.
	Time time.Time
}

// Type returns the message's ITU-R M.1371 type field (bits 0-5).
func (m Message) Type() int { return int(m.Payload.Field(0, 6)) }

// Repeat returns the message's repeat indicator (bits 6-7).
func (m Message) Repeat() int { return int(m.Payload.Field(6, 2)) }

// MMSI returns the message's source MMSI (bits 8-37).
func (m Message) MMSI() uint32 { return m.Payload.Field(8, 30) }

// Bits returns the number of payload bits in the message.
func (m Message) Bits() int { return m.Payload.Len() }
