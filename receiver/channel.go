/*
NAME
  channel.go

DESCRIPTION
  channel.go runs the per-AIS-channel signal chain (C4-C9) for one of
  the splitter's two output streams, or for the receiver's single
  stream in ChannelSingle mode: front-end filtering, frequency-offset
  estimation and derotation, demodulation (FM or coherent
  phase-search), symbol timing, HDLC framing and NMEA packaging.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package receiver

import (
	"time"

	"github.com/ausocean/ais/demod"
	"github.com/ausocean/ais/dsp"
	"github.com/ausocean/ais/protocol/ais"
	"github.com/ausocean/ais/receiver/config"
)

// freqOffsetBlockSize is the analysis block length the C7 estimator
// operates on; spec.md §4.7 allows 4096 or 2048, 4096 gives finer
// frequency resolution at the cost of more latency per estimate.
const freqOffsetBlockSize = 4096

// demodModeCoherent is the raw DemodMode value, config.DemodCoherent,
// that newChannel compares its mode argument against.
const demodModeCoherent = config.DemodCoherent

// channel runs C4-C9 for one physical AIS channel: the output of the
// splitter (dual-channel mode) or of the downsampler directly
// (single-channel mode, already pre-tuned upstream).
type channel struct {
	letter ais.Channel

	front *dsp.Frontend
	freq  *dsp.FreqOffsetEstimator
	fbuf  []complex64 // accumulates Frontend output up to freqOffsetBlockSize

	bus  *demod.SignalBus
	pack *ais.Packager
	emit func(ais.Message, []string)

	// Non-coherent FM path (used when mode is DemodFM).
	fm  *demod.FM
	pll *demod.PLLSampler
	dec *ais.Decoder

	// Coherent phase-search path (used when mode is DemodCoherent).
	deint         *demod.Deinterleaver
	coh           *demod.Coherent
	phaseDecoders []*ais.Decoder
}

// newChannel returns a channel chain for letter, configured per mode,
// phaseDelay/phaseHistory (coherent path only), quickStop and
// messageIDStart, delivering every decoded message and its packaged
// NMEA sentences to emit. now, if non-nil, supplies decoded-frame
// timestamps (tests pass a fixed clock); it defaults to time.Now.
func newChannel(letter ais.Channel, mode uint8, phaseDelay, phaseHistory uint, quickStop bool, messageIDStart uint, emit func(ais.Message, []string), now func() time.Time) *channel {
	if now == nil {
		now = time.Now
	}

	c := &channel{
		letter: letter,
		bus:    &demod.SignalBus{},
		pack:   ais.NewPackagerFrom(int(messageIDStart)),
		emit:   emit,
	}
	wrap := func(m ais.Message) { c.emit(m, c.pack.Pack(m)) }

	matched := dsp.MatchedFM
	if mode == demodModeCoherent {
		matched = dsp.MatchedCoherent
	}
	c.front = dsp.NewFrontend(matched)
	c.freq = dsp.NewFreqOffsetEstimator(freqOffsetBlockSize, dsp.CanonicalRate/2)

	switch mode {
	case demodModeCoherent:
		c.coh = demod.NewCoherent(int(phaseDelay))
		n := int(phaseHistory)
		if n < 1 {
			n = 1
		}
		c.phaseDecoders = make([]*ais.Decoder, n)
		sinks := make([]func(float32), n)
		for i := 0; i < n; i++ {
			dec := ais.NewDecoder(letter, c.bus, now)
			if !quickStop {
				dec.QuickStop = nil
			}
			c.phaseDecoders[i] = dec
			c.bus.Subscribe(func(sig demod.Signal) {
				if sig == demod.Reset {
					dec.Reset()
				}
			})
			sinks[i] = func(v float32) {
				dec.Process([]bool{v > 0}, wrap)
			}
		}
		c.deint = demod.NewDeinterleaver(sinks)
	default:
		c.fm = demod.NewFM()
		c.pll = demod.NewPLLSampler()
		c.bus.Subscribe(c.pll.Receive)
		dec := ais.NewDecoder(letter, c.bus, now)
		if !quickStop {
			dec.QuickStop = nil
		}
		c.dec = dec
	}

	return c
}

// process runs front-end filtering, frequency-offset correction and
// demodulation over in (the splitter or adapter's output for this
// channel), delivering every decoded message through to emit.
func (c *channel) process(in []complex64) {
	filtered := c.front.Process(in)
	c.fbuf = append(c.fbuf, filtered...)

	for len(c.fbuf) >= freqOffsetBlockSize {
		block := c.fbuf[:freqOffsetBlockSize]
		derotated, _ := c.freq.EstimateAndCorrect(block)
		c.fbuf = append([]complex64(nil), c.fbuf[freqOffsetBlockSize:]...)

		if c.coh != nil {
			soft := c.coh.Process(derotated)
			c.deint.Process(soft)
		} else {
			disc := c.fm.Process(derotated)
			symbols := c.pll.Process(disc)
			bits := make([]bool, len(symbols))
			for i, v := range symbols {
				bits[i] = v > 0
			}
			c.dec.Process(bits, func(m ais.Message) { c.emit(m, c.pack.Pack(m)) })
		}
	}
}

// reset clears every stage's persistent state, as done on receiver
// restart.
func (c *channel) reset() {
	c.front.Reset()
	c.freq.Reset()
	c.fbuf = c.fbuf[:0]
	if c.fm != nil {
		c.fm.Reset()
	}
	if c.pll != nil {
		c.pll.Reset()
	}
	if c.dec != nil {
		c.dec.Reset()
	}
	for _, d := range c.phaseDecoders {
		d.Reset()
	}
	if c.coh != nil {
		c.coh.Reset()
	}
}
