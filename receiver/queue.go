/*
NAME
  queue.go

DESCRIPTION
  queue.go implements the driver-to-pipeline drop-on-full queue: the
  hand-off point between a RawSource's PushRaw (which must never block
  on the pipeline falling behind) and the pipeline goroutine that
  drains it. Modeled on revid/pipeline.go's channel-based hand-off
  between input and lexer; deliberately a small generic type rather
  than an import of ausocean/utils/pool, since pool.Buffer is a
  byte-oriented ring buffer and this queue carries typed RawBlocks.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package receiver

import (
	"errors"

	"github.com/ausocean/ais/sample"
)

// ErrQueueFull is returned by blockQueue.push when the queue is at
// capacity; the caller's block is dropped rather than the push
// blocking and backing up the source.
var ErrQueueFull = errors.New("receiver: queue full, block dropped")

// blockQueue is a fixed-capacity, single-producer/single-consumer
// drop-on-full queue of pending raw sample blocks.
type blockQueue struct {
	ch chan sample.RawBlock
}

// newBlockQueue returns a blockQueue with room for capacity blocks.
func newBlockQueue(capacity uint) *blockQueue {
	return &blockQueue{ch: make(chan sample.RawBlock, capacity)}
}

// push enqueues b, reporting ErrQueueFull instead of blocking if the
// queue is already full.
func (q *blockQueue) push(b sample.RawBlock) error {
	select {
	case q.ch <- b:
		return nil
	default:
		return ErrQueueFull
	}
}

// pop returns the channel the pipeline goroutine ranges over to drain
// the queue.
func (q *blockQueue) pop() <-chan sample.RawBlock { return q.ch }
