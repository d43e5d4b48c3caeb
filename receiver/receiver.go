/*
NAME
  receiver.go

DESCRIPTION
  receiver.go implements the top-level Receiver: it wires a RawSource's
  PushRaw calls through the sample adapter (C1), the multi-rate
  downsampler (C2), the channel splitter (C3, dual-channel mode only)
  and one or two per-channel signal chains, delivering decoded AIS
  messages and their packaged NMEA sentences to a MessageSink.

AUTHORS
  Saxon A. Nelson-Milton <saxon@ausocean.org>
  Alan Noble <alan@ausocean.org>
  Dan Kortschak <dan@ausocean.org>
  Trek Hopton <trek@ausocean.org>
  Scott Barnard <scott@ausocean.org>

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package receiver assembles the AIS signal-processing and protocol
// packages (sample, dsp, demod, protocol/ais) into a complete push-driven
// SDR receiver: raw device bytes in, decoded messages and NMEA 0183
// AIVDM sentences out.
package receiver

import (
	"fmt"
	"sync"
	"time"

	"github.com/ausocean/utils/bitrate"

	"github.com/ausocean/ais/dsp"
	"github.com/ausocean/ais/protocol/ais"
	"github.com/ausocean/ais/receiver/config"
	"github.com/ausocean/ais/sample"
)

// Receiver assembles the full C1-C9 signal chain for one RawSource,
// delivering every decoded message to a MessageSink.
type Receiver struct {
	cfg  config.Config
	sink MessageSink
	errs ErrorSink

	adapter *sample.Adapter
	down    *dsp.Downsampler
	split   *dsp.Splitter // nil in ChannelSingle mode
	chans   []*channel

	queue *blockQueue
	err   chan error

	bitrate bitrate.Calculator

	running bool
	wg      sync.WaitGroup
	stop    chan struct{}
	mu      sync.Mutex
}

// New returns a Receiver for the given configuration, delivering
// decoded messages to sink. now, if non-nil, is used as the decoded
// frame timestamp source (tests pass a fixed clock); it defaults to
// time.Now.
func New(cfg config.Config, sink MessageSink, now func() time.Time) (*Receiver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("receiver: invalid config: %w", err)
	}
	if sink == nil {
		return nil, fmt.Errorf("receiver: sink must not be nil")
	}
	nChans := 1
	if cfg.ChannelMode == config.ChannelDual {
		nChans = 2
	}
	if len(cfg.ChannelLetters) != nChans {
		return nil, fmt.Errorf("receiver: ChannelLetters has %d entries, want %d", len(cfg.ChannelLetters), nChans)
	}

	adapter, err := sample.NewAdapter(cfg.SampleFormat, sample.WithLevelEstimate())
	if err != nil {
		return nil, fmt.Errorf("receiver: %w", err)
	}

	down, err := dsp.NewDownsampler(cfg.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("receiver: %w", err)
	}

	r := &Receiver{
		cfg:     cfg,
		sink:    sink,
		adapter: adapter,
		down:    down,
		queue:   newBlockQueue(cfg.QueueCapacity),
		err:     make(chan error),
		stop:    make(chan struct{}),
		running: true,
	}

	emit := func(letterIdx int) func(ais.Message, []string) {
		return func(m ais.Message, sentences []string) {
			n := 0
			for _, s := range sentences {
				n += len(s)
			}
			r.bitrate.Report(n)
			r.sink.Receive(m, sentences)
		}
	}

	if cfg.ChannelMode == config.ChannelDual {
		r.split = dsp.NewSplitter(dsp.CanonicalRate)
	}
	for i := 0; i < nChans; i++ {
		letter := ais.Channel(cfg.ChannelLetters[i][0])
		quickStop := cfg.QuickStopEnabled
		r.chans = append(r.chans, newChannel(letter, cfg.DemodMode, cfg.PhaseSearchDelay, cfg.PhaseSearchHistory, quickStop, cfg.MessageIDStart, emit(i), now))
	}

	go r.handleErrors()
	r.wg.Add(1)
	go r.run()

	return r, nil
}

// SetErrorSink installs an ErrorSink that additionally receives
// queue-drop and raw-block conversion errors the receiver would
// otherwise only log. It is not required for normal operation.
func (r *Receiver) SetErrorSink(e ErrorSink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errs = e
}

// PushRaw enqueues raw for the receiver's pipeline goroutine, which
// converts it via the sample adapter and processes it. PushRaw never
// blocks on the pipeline falling behind; if the queue is full, the
// block is dropped and ErrQueueFull is reported to the error sink.
func (r *Receiver) PushRaw(raw sample.RawBlock) error {
	if err := r.queue.push(raw); err != nil {
		r.reportError(err)
		return err
	}
	return nil
}

// Bitrate returns the receiver's most recently computed output
// bitrate, in bits per second.
func (r *Receiver) Bitrate() int {
	return r.bitrate.Bitrate()
}

// Update applies the given config variable updates, per
// receiver/config's Variables table.
func (r *Receiver) Update(vars map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cfg.Update(vars)
}

// Reset clears every stage's persistent filter and decoder state, as
// done after a prolonged signal dropout or an explicit operator
// command.
func (r *Receiver) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.down.Reset()
	if r.split != nil {
		r.split.Reset()
	}
	for _, c := range r.chans {
		c.reset()
	}
}

// Stop halts the receiver's pipeline goroutine. A stopped Receiver
// must not be reused.
func (r *Receiver) Stop() {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return
	}
	r.running = false
	r.mu.Unlock()
	close(r.stop)
	r.wg.Wait()
}

// run drains the block queue, converting and running each raw block
// through the downsampler, splitter (if configured) and every
// configured channel, until Stop is called.
func (r *Receiver) run() {
	defer r.wg.Done()

	for {
		select {
		case <-r.stop:
			return
		case raw := <-r.queue.pop():
			block, err := r.adapter.Convert(raw)
			if err != nil {
				r.reportError(fmt.Errorf("receiver: converting raw block: %w", err))
				continue
			}
			canonical := r.down.Process(block.Samples)

			if r.split != nil {
				a, b := r.split.Process(canonical)
				r.chans[0].process(a)
				r.chans[1].process(b)
			} else {
				r.chans[0].process(canonical)
			}
		}
	}
}

// handleErrors logs every error the pipeline reports, forwarding it to
// the configured ErrorSink, if any.
func (r *Receiver) handleErrors() {
	for err := range r.err {
		if err == nil {
			continue
		}
		if r.cfg.Logger != nil {
			r.cfg.Logger.Error("receiver error", "error", err.Error())
		}
		r.mu.Lock()
		sink := r.errs
		r.mu.Unlock()
		if sink != nil {
			sink.ReceiveError(err)
		}
	}
}

// reportError sends err to the error-handling goroutine without
// blocking the caller if nothing is currently listening.
func (r *Receiver) reportError(err error) {
	select {
	case r.err <- err:
	default:
		if r.cfg.Logger != nil {
			r.cfg.Logger.Warning("dropped error, handler busy", "error", err.Error())
		}
	}
}
