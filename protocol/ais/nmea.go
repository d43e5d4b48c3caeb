/*
NAME
  nmea.go

DESCRIPTION
  nmea.go implements the NMEA packager (C9): six-bit ASCII armoring of
  a decoded message's payload, fragmentation across multiple AIVDM
  sentences when the payload doesn't fit in one, and the XOR checksum
  every NMEA 0183 sentence carries.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ais

import "fmt"

// maxLettersPerSentence is the maximum number of six-bit armored
// characters one AIVDM sentence carries before the payload must be
// fragmented across more than one sentence.
const maxLettersPerSentence = 56

// sixBitASCII armors a 6-bit value (0-63) into its NMEA payload
// character.
func sixBitASCII(v int) byte {
	if v < 40 {
		return byte(v + 48)
	}
	return byte(v + 56)
}

// xorChecksum computes the NMEA 0183 checksum: the XOR of every byte in
// s.
func xorChecksum(s string) byte {
	var c byte
	for i := 0; i < len(s); i++ {
		c ^= s[i]
	}
	return c
}

// Packager turns decoded Messages into one or more AIVDM sentence
// strings. It owns the rolling group-message ID NMEA uses to associate
// the sentences of a multi-sentence payload.
type Packager struct {
	messageID int
}

// NewPackager returns a Packager with its group-message ID counter at
// 0.
func NewPackager() *Packager { return &Packager{} }

// NewPackagerFrom returns a Packager with its group-message ID counter
// starting at start (taken mod 10), for a receiver configured to begin
// its cycling counter somewhere other than 0.
func NewPackagerFrom(start int) *Packager {
	start %= 10
	if start < 0 {
		start += 10
	}
	return &Packager{messageID: start}
}

// Pack renders msg as one or more "!AIVDM,..." sentence lines. The
// group-message ID (used only when more than one sentence is needed)
// cycles 0-9 and advances once per call.
func (p *Packager) Pack(msg Message) []string {
	nBits := msg.Payload.Len()
	nLetters := (nBits + 5) / 6
	nSentences := (nLetters + maxLettersPerSentence - 1) / maxLettersPerSentence
	if nSentences == 0 {
		nSentences = 1
	}

	sentences := make([]string, 0, nSentences)
	letter := 0
	for s := 0; s < nSentences; s++ {
		var groupField string
		if nSentences > 1 {
			groupField = fmt.Sprintf("%d", p.messageID)
		}

		body := fmt.Sprintf("AIVDM,%d,%d,%s,%c,", nSentences, s+1, groupField, msg.Channel)
		for i := 0; letter < nLetters && i < maxLettersPerSentence; i, letter = i+1, letter+1 {
			body += string(sixBitASCII(msg.Payload.SixBitLetter(letter)))
		}

		fillBits := 0
		if s == nSentences-1 {
			fillBits = nLetters*6 - nBits
		}
		body += fmt.Sprintf(",%d", fillBits)

		sentence := fmt.Sprintf("!%s*%02X", body, xorChecksum(body))
		sentences = append(sentences, sentence)
	}

	p.messageID = (p.messageID + 1) % 10
	return sentences
}
