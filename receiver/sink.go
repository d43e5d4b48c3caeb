/*
NAME
  sink.go

DESCRIPTION
  sink.go defines the push interfaces a Receiver delivers decoded AIS
  messages and (optionally) internal errors to.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package receiver

import "github.com/ausocean/ais/protocol/ais"

// MessageSink receives decoded AIS messages and their packaged NMEA
// sentences, in the order their closing flags were decoded. Receive
// must not block the receiver's pipeline goroutine for long; a sink
// that needs to do slow I/O (disk, network) should queue internally.
type MessageSink interface {
	Receive(msg ais.Message, sentences []string)
}

// ErrorSink optionally receives the errors a Receiver would otherwise
// only log, for a caller that wants to count or surface them (a
// diagnostic tool tracking CRC-failure rate, say). The per-frame CRC
// failures spec.md §7 calls the common case are not reported here;
// ErrorSink only sees queue-drop and raw-block conversion errors;
// construction errors are returned by New.
type ErrorSink interface {
	ReceiveError(err error)
}

// MessageSinkFunc adapts a function to a MessageSink.
type MessageSinkFunc func(msg ais.Message, sentences []string)

// Receive calls f.
func (f MessageSinkFunc) Receive(msg ais.Message, sentences []string) { f(msg, sentences) }
