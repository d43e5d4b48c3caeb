/*
NAME
  block.go

DESCRIPTION
  block.go defines the sample block and tag types that flow through the
  receiver's signal-processing graph.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package iq provides the complex-sample block and tag types shared by
// every stage of the AIS receiver's signal-processing pipeline.
package iq

import "time"

// Mode is a bitmask indicating which fields of a Tag are live. A stage
// that doesn't populate a field must leave the corresponding bit unset
// so that downstream stages don't read stale zero values as real data.
type Mode uint8

// Tag fields, in the order they're populated along the pipeline.
const (
	HasTimestamp Mode = 1 << iota
	HasIndex
	HasLevel
	HasPPM
)

// Tag carries per-block metadata alongside a Block's samples. It is a
// small value type and is copied, not shared, as blocks move downstream;
// stages that derive new tag fields (C1 writes LevelDB, C7 writes PPM)
// copy the tag and set the corresponding Mode bit.
type Tag struct {
	Mode Mode

	// Time is the wall-clock time the block was captured.
	Time time.Time

	// Index is the monotonic sample index of the block's first sample,
	// counted from pipeline start.
	Index uint64

	// LevelDB is the most recently estimated signal level, in dB
	// relative to full scale.
	LevelDB float64

	// PPM is the most recently estimated carrier frequency offset, in
	// parts per million.
	PPM float64
}

// Block is an immutable slice of complex samples plus its Tag. A Block
// is produced by one stage, read-only by every downstream stage, and
// never mutated or shared concurrently; a stage that needs to transform
// the samples allocates its own output Block.
type Block struct {
	Samples []complex64
	Tag     Tag
}

// Len returns the number of samples in the block.
func (b Block) Len() int { return len(b.Samples) }
