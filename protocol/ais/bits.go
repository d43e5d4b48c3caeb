/*
NAME
  bits.go

DESCRIPTION
  bits.go provides the MSB-first bit buffer the HDLC decoder (C8)
  appends destuffed data bits into, and the field-extraction helpers the
  NMEA packager (C9) and AisMessage accessors read back out of it.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package ais

// BitBuffer is a growable, MSB-first bit buffer: bit i of the logical
// sequence is stored in byte i/8, bit position 7-(i%8). This is a clean
// big-endian packing chosen to match spec.md's field-bit numbering
// (type occupies bits 0-5, repeat bits 6-7, MMSI bits 8-37, ...)
// directly, rather than replicating any particular wire-level byte
// trick.
type BitBuffer struct {
	bytes []byte
	nBits int
}

// NewBitBuffer returns an empty BitBuffer with capacity for at least
// capBits bits preallocated.
func NewBitBuffer(capBits int) *BitBuffer {
	return &BitBuffer{bytes: make([]byte, 0, (capBits+7)/8)}
}

// Len returns the number of bits appended so far.
func (b *BitBuffer) Len() int { return b.nBits }

// AppendBit appends one bit to the buffer.
func (b *BitBuffer) AppendBit(bit bool) {
	byteIdx := b.nBits / 8
	if byteIdx >= len(b.bytes) {
		b.bytes = append(b.bytes, 0)
	}
	if bit {
		b.bytes[byteIdx] |= 1 << uint(7-b.nBits%8)
	}
	b.nBits++
}

// Truncate drops the buffer back to n bits, used for bit-destuffing
// (the stuffed 0 is never appended) and frame-length bookkeeping.
func (b *BitBuffer) Truncate(n int) {
	b.nBits = n
	b.bytes = b.bytes[:(n+7)/8]
}

// Reset empties the buffer for reuse.
func (b *BitBuffer) Reset() {
	b.bytes = b.bytes[:0]
	b.nBits = 0
}

// Bit returns bit i.
func (b *BitBuffer) Bit(i int) bool {
	return b.bytes[i/8]&(1<<uint(7-i%8)) != 0
}

// Field reads the nbits-bit unsigned field starting at bit offset start,
// MSB first, as a uint32. nbits must be <= 32.
func (b *BitBuffer) Field(start, nbits int) uint32 {
	var v uint32
	for i := 0; i < nbits; i++ {
		v <<= 1
		if b.Bit(start + i) {
			v |= 1
		}
	}
	return v
}

// SignedField reads the nbits-bit two's-complement field starting at
// bit offset start, MSB first.
func (b *BitBuffer) SignedField(start, nbits int) int32 {
	v := b.Field(start, nbits)
	if v&(1<<uint(nbits-1)) != 0 {
		v |= ^uint32(0) << uint(nbits)
	}
	return int32(v)
}

// SixBitLetter returns the 6-bit value at six-bit-character index pos
// (bit offset pos*6), zero-padding past the end of the buffer the way
// the NMEA packager's last partial sentence does.
func (b *BitBuffer) SixBitLetter(pos int) int {
	start := pos * 6
	var v int
	for i := 0; i < 6; i++ {
		v <<= 1
		bitIdx := start + i
		if bitIdx < b.nBits && b.Bit(bitIdx) {
			v |= 1
		}
	}
	return v
}
