/*
NAME
  Config.go

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

// Package config contains the configuration settings for the AIS receiver.
package config

import (
	"github.com/ausocean/utils/logging"

	"github.com/ausocean/ais/sample"
)

// Enums to define channel and demodulator modes.
const (
	// Indicates no option has been set.
	NothingDefined = iota

	// Channel modes.
	ChannelSingle
	ChannelDual

	// Demodulator modes.
	DemodFM
	DemodCoherent
)

// Config provides parameters relevant to a receiver instance. A new config
// must be passed to the constructor. Default values for these fields are
// defined as consts in variables.go.
type Config struct {
	// SampleRate is the raw input sample rate in Hz, as delivered by the
	// configured RawSource. It must be one of dsp.SupportedRates;
	// receiver.New fails with dsp.ErrUnsupportedRate for any other
	// non-zero rate. Validate defaults it to dsp.CanonicalRate if unset.
	SampleRate float64

	// SampleFormat names the wire format of raw bytes from the source.
	SampleFormat sample.Format

	// FixedPointDownsampler is parsed and stored, but the receiver does
	// not read it: the C2 downsampler always runs the floating-point CIC5
	// cascade, and the dsp.CIC5Fixed packed-lane path is not wired in.
	FixedPointDownsampler bool

	// ChannelMode selects whether the receiver splits the input into the
	// two marine AIS channels (A at 161.975MHz, B at 162.025MHz) or
	// processes a single pre-tuned channel.
	ChannelMode uint8

	// ChannelLetters names the AIS channel (protocol/ais.Channel) that
	// each split output corresponds to, in splitter output order
	// (low-side offset first). Must have one entry for ChannelSingle, two
	// for ChannelDual.
	ChannelLetters []string

	// DemodMode selects the C5 demodulator: DemodFM for the plain FM
	// discriminator, DemodCoherent for the phase-search bank.
	DemodMode uint8

	// PhaseSearchDelay is the coherent demodulator's correlation delay in
	// samples, passed to demod.NewCoherent. Only used when DemodMode is
	// DemodCoherent.
	PhaseSearchDelay uint

	// PhaseSearchHistory is the number of deinterleaved decoder instances
	// run per channel in coherent mode, each fed every N-th sample of the
	// 48 kHz demodulator output; with the default of 5 each decoder sees
	// one fixed sample-timing phase of the 9.6 kHz symbol stream.
	PhaseSearchHistory uint

	// QuickStopEnabled turns on the HDLC decoder's quick-stop optimisation,
	// aborting a frame early once its claimed message type has overrun
	// that type's fixed length per QuickStopTable.
	QuickStopEnabled bool

	// MessageIDStart sets the first NMEA sentence group ID used by the
	// packager's cycling counter (0-9).
	MessageIDStart uint

	// QueueCapacity is the number of blocks the driver-to-pipeline
	// drop-on-full queue can hold before it starts dropping.
	QueueCapacity uint

	// Logger holds an implementation of the Logger interface. This must
	// be set for the receiver to work correctly.
	Logger logging.Logger

	// LogLevel is the receiver's logging verbosity level. Valid values
	// are defined by enums from the logging package: logging.Debug,
	// logging.Info, logging.Warning, logging.Error, logging.Fatal.
	LogLevel int8

	// Suppress holds logger suppression state.
	Suppress bool
}

// Validate replaces unset or bad field values with their defaults,
// logging each replacement; it always returns nil. A non-zero
// SampleRate is left as given for receiver.New to check.
func (c *Config) Validate() error {
	for _, v := range Variables {
		if v.Validate != nil {
			v.Validate(c)
		}
	}
	return nil
}

// Update takes a map of configuration variable names and their
// corresponding values, parses the string values converting into the
// correct type, and then sets the config struct fields as appropriate.
func (c *Config) Update(vars map[string]string) {
	for _, value := range Variables {
		if v, ok := vars[value.Name]; ok && value.Update != nil {
			value.Update(c, v)
		}
	}
}

func (c *Config) LogInvalidField(name string, def interface{}) {
	c.Logger.Info(name+" bad or unset, defaulting", name, def)
}
