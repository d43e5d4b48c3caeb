/*
NAME
  crc.go

DESCRIPTION
  crc.go implements the CRC-16-CCITT frame check used to validate a
  decoded HDLC frame before its payload is accepted (C8).

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ais

// crcPoly is the reflected form of the CRC-16-CCITT polynomial 0x1021.
const crcPoly = uint16(0x8408)

// crcResidue is the expected residue of a valid frame (payload + FCS)
// run through CRC16: the complement of 0x0F47.
const crcResidue = ^uint16(0x0F47)

// CRC16 runs the reflected CRC-16-CCITT over the first nbits bits of b
// (the frame's data bits followed by its 16-bit FCS) and reports
// whether the residue matches a valid frame.
func CRC16(b *BitBuffer, nbits int) bool {
	crc := uint16(0xFFFF)
	for i := 0; i < nbits; i++ {
		var bit uint16
		if b.Bit(i) {
			bit = 1
		}
		if (bit^crc)&1 != 0 {
			crc = (crc >> 1) ^ crcPoly
		} else {
			crc = crc >> 1
		}
	}
	return crc == crcResidue
}

// ComputeFCS computes the 16-bit frame check sequence for the first
// nbits payload bits of b, in the same reflected CRC-16-CCITT the
// decoder validates against. The returned value's bits must be
// appended to the frame LSB-first (bit 0 first) for CRC16 to then
// validate the combined payload+FCS bit stream; AppendFCS does this.
func ComputeFCS(b *BitBuffer, nbits int) uint16 {
	crc := uint16(0xFFFF)
	for i := 0; i < nbits; i++ {
		var bit uint16
		if b.Bit(i) {
			bit = 1
		}
		if (bit^crc)&1 != 0 {
			crc = (crc >> 1) ^ crcPoly
		} else {
			crc = crc >> 1
		}
	}
	return ^crc
}

// AppendFCS computes the FCS over b's current nbits payload bits and
// appends its 16 bits LSB-first, the wire order CRC16 expects.
func AppendFCS(b *BitBuffer) {
	fcs := ComputeFCS(b, b.Len())
	for i := 0; i < 16; i++ {
		b.AppendBit(fcs&(1<<uint(i)) != 0)
	}
}
