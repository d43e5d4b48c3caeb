/*
NAME
  source.go

DESCRIPTION
  source.go defines RawSource, the push interface a sample source
  drives the receiver's pipeline with, and ManualSource, a
  software-driven implementation for tests and offline replay.
  Adapted from device.AVDevice: generalized from io.Reader pull
  semantics to a push interface, since an SDR driver's own
  callback/buffer model hands samples to its caller rather than
  waiting to be read from.

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

// RawSource is the push interface a sample source (an SDR driver, a
// fixture file, a network relay) drives a Receiver with. A source
// calls PushRaw once per block of raw device-format bytes it produces;
// the Receiver converts, queues and processes it asynchronously.
type RawSource interface {
	// Name returns a human-readable name for the source, used in log
	// messages.
	Name() string

	// PushRaw delivers one block of raw bytes in the source's declared
	// wire format. PushRaw must not block on anything but the
	// receiver's own queue backpressure.
	PushRaw(raw sample.RawBlock) error
}

// ManualSource is a RawSource driven entirely by test or offline-replay
// code calling PushRaw directly, the push-interface analog of
// device.ManualInput (which instead exposed an io.Writer over an
// io.Pipe for a pull-style AVDevice).
type ManualSource struct {
	name string
	recv func(sample.RawBlock) error
}

// NewManualSource returns a ManualSource named name whose PushRaw calls
// recv directly. Receiver.New wires recv to its own internal queue.
func NewManualSource(name string, recv func(sample.RawBlock) error) *ManualSource {
	return &ManualSource{name: name, recv: recv}
}

// Name returns the source's configured name.
func (m *ManualSource) Name() string { return m.name }

// PushRaw forwards raw to the configured receive function.
func (m *ManualSource) PushRaw(raw sample.RawBlock) error {
	if m.recv == nil {
		return errors.New("receiver: ManualSource has no receiver wired")
	}
	return m.recv(raw)
}
