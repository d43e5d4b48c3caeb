/*
NAME
  adapter.go

DESCRIPTION
  adapter.go provides the sample source adapter (C1): conversion of raw
  device sample formats into normalized complex float32 IQ blocks.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package sample converts raw device sample formats (unsigned 8-bit,
// signed 8/16-bit, 32-bit float and f_s/4-shifted real) into normalized
// complex float32 IQ blocks. It is adapted from codec/pcm's Buffer and
// byte-conversion helpers, generalized from 16-bit mono PCM to complex
// IQ samples in several raw wire formats.
package sample

import (
	"fmt"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"

	"github.com/ausocean/ais/iq"
)

// Format identifies the wire format of a RawBlock's bytes.
type Format int

// Supported raw sample formats.
const (
	// CU8 is unsigned 8-bit interleaved I/Q, as produced by RTL-SDR
	// dongles.
	CU8 Format = iota

	// CS8 is signed 8-bit interleaved I/Q, as produced by HackRF.
	CS8

	// CS16 is signed 16-bit little-endian interleaved I/Q.
	CS16

	// CF32 is little-endian float32 interleaved I/Q (passthrough).
	CF32

	// F32FS4 is a real float32 stream pre-shifted to f_s/4: four
	// consecutive floats r0,r1,r2,r3 are interpreted as the complex
	// sequence (r0,0), (0,r1), (-r2,0), (0,-r3).
	F32FS4
)

// ErrUnsupportedFormat is returned when a RawBlock names a format the
// adapter doesn't recognise.
var ErrUnsupportedFormat = errors.New("sample: unsupported raw format")

// bytesPerComplexSample returns the number of raw bytes that decode to
// one complex output sample for the given format.
func bytesPerComplexSample(f Format) (int, error) {
	switch f {
	case CU8, CS8:
		return 2, nil
	case CS16:
		return 4, nil
	case CF32:
		return 8, nil
	case F32FS4:
		return 4, nil
	default:
		return 0, errors.Wrapf(ErrUnsupportedFormat, "format %d", f)
	}
}

// BytesPerSample returns the number of raw bytes that decode to one
// complex sample in the given format, so a caller chunking a raw byte
// stream (a file, a socket) can align reads to whole samples.
func BytesPerSample(f Format) (int, error) {
	return bytesPerComplexSample(f)
}

// RawBlock is a block of raw bytes from a sample source, tagged with the
// wire format they're encoded in.
type RawBlock struct {
	Format Format
	Data   []byte
	Tag    iq.Tag
}

// Adapter converts RawBlocks of a fixed format into normalized iq.Block
// values. An Adapter reuses its output buffer between calls; callers
// must not retain or mutate the returned Block's Samples after the next
// call to Convert.
type Adapter struct {
	format     Format
	buf        []complex64
	estimateDB bool
}

// Option configures an Adapter at construction.
type Option func(*Adapter)

// WithLevelEstimate enables per-block RMS signal-level estimation; the
// returned Block's Tag will carry HasLevel and LevelDB.
func WithLevelEstimate() Option {
	return func(a *Adapter) { a.estimateDB = true }
}

// NewAdapter returns an Adapter for the given raw wire format.
func NewAdapter(format Format, opts ...Option) (*Adapter, error) {
	if _, err := bytesPerComplexSample(format); err != nil {
		return nil, err
	}
	a := &Adapter{format: format}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// Convert normalizes raw.Data into a complex float32 block in [-1,1).
// The tag on raw is copied through, augmented with a level estimate if
// the adapter was built WithLevelEstimate.
func (a *Adapter) Convert(raw RawBlock) (iq.Block, error) {
	bps, err := bytesPerComplexSample(raw.Format)
	if err != nil {
		return iq.Block{}, err
	}
	if len(raw.Data)%bps != 0 {
		return iq.Block{}, fmt.Errorf("sample: raw block length %d not a multiple of %d bytes", len(raw.Data), bps)
	}
	n := len(raw.Data) / bps
	if cap(a.buf) < n {
		a.buf = make([]complex64, n)
	}
	a.buf = a.buf[:n]

	switch raw.Format {
	case CU8:
		for i := 0; i < n; i++ {
			re := (float32(raw.Data[2*i]) - 128) / 128.0
			im := (float32(raw.Data[2*i+1]) - 128) / 128.0
			a.buf[i] = complex(re, im)
		}
	case CS8:
		for i := 0; i < n; i++ {
			re := float32(int8(raw.Data[2*i])) / 128.0
			im := float32(int8(raw.Data[2*i+1])) / 128.0
			a.buf[i] = complex(re, im)
		}
	case CS16:
		for i := 0; i < n; i++ {
			re := int16(uint16(raw.Data[4*i]) | uint16(raw.Data[4*i+1])<<8)
			im := int16(uint16(raw.Data[4*i+2]) | uint16(raw.Data[4*i+3])<<8)
			a.buf[i] = complex(float32(re)/32768.0, float32(im)/32768.0)
		}
	case CF32:
		for i := 0; i < n; i++ {
			re := readFloat32LE(raw.Data[8*i:])
			im := readFloat32LE(raw.Data[8*i+4:])
			a.buf[i] = complex(re, im)
		}
	case F32FS4:
		for i := 0; i < n; i++ {
			r := readFloat32LE(raw.Data[4*i:])
			switch i % 4 {
			case 0:
				a.buf[i] = complex(r, 0)
			case 1:
				a.buf[i] = complex(0, r)
			case 2:
				a.buf[i] = complex(-r, 0)
			case 3:
				a.buf[i] = complex(0, -r)
			}
		}
	default:
		return iq.Block{}, errors.Wrapf(ErrUnsupportedFormat, "format %d", raw.Format)
	}

	out := iq.Block{Samples: a.buf, Tag: raw.Tag}
	if a.estimateDB {
		out.Tag.Mode |= iq.HasLevel
		out.Tag.LevelDB = levelDB(a.buf)
	}
	return out, nil
}

// levelDB estimates the RMS signal level of samples, in dB relative to
// full scale (a unit-magnitude complex sinusoid).
func levelDB(samples []complex64) float64 {
	if len(samples) == 0 {
		return math.Inf(-1)
	}
	sq := make([]float64, len(samples))
	for i, s := range samples {
		re, im := float64(real(s)), float64(imag(s))
		sq[i] = re*re + im*im
	}
	mean := stat.Mean(sq, nil)
	if mean <= 0 {
		return math.Inf(-1)
	}
	return 10 * math.Log10(mean)
}

func readFloat32LE(b []byte) float32 {
	bits := uint32(b[0]) | uint32(b[1])<<8 | uint32(b[2])<<16 | uint32(b[3])<<24
	return math.Float32frombits(bits)
}
