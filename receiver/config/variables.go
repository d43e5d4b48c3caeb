/*
DESCRIPTION
  variables.go contains a list of structs that provide a variable Name, type
  in a string format, a function for updating the variable in the Config
  struct from a string, and finally, a validation function to check the
  validity of the corresponding field value in the Config.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ausocean/utils/logging"

	"github.com/ausocean/ais/dsp"
	"github.com/ausocean/ais/sample"
)

// Config map Keys.
const (
	KeyChannelLetters       = "ChannelLetters"
	KeyChannelMode          = "ChannelMode"
	KeyDemodMode            = "DemodMode"
	KeyFixedPointDownsamp   = "FixedPointDownsampler"
	KeyLogging              = "logging"
	KeyMessageIDStart       = "MessageIDStart"
	KeyPhaseSearchDelay     = "PhaseSearchDelay"
	KeyPhaseSearchHistory   = "PhaseSearchHistory"
	KeyQueueCapacity        = "QueueCapacity"
	KeyQuickStopEnabled     = "QuickStopEnabled"
	KeySampleFormat         = "SampleFormat"
	KeySampleRate           = "SampleRate"
	KeySuppress             = "Suppress"
)

// Config map parameter types.
const (
	typeBool  = "bool"
	typeFloat = "float"
	typeUint  = "uint"
)

// Default variable values.
const (
	defaultChannelMode        = ChannelDual
	defaultDemodMode          = DemodCoherent
	defaultVerbosity          = logging.Error
	defaultPhaseSearchDelay   = 6
	defaultPhaseSearchHistory = 5
	defaultQueueCapacity      = 64
)

// defaultChannelLetters is used when ChannelLetters is unset or has the
// wrong length for ChannelMode.
var defaultChannelLetters = map[uint8][]string{
	ChannelSingle: {"A"},
	ChannelDual:   {"A", "B"},
}

// Variables describes the variables that can be used for receiver control.
// These structs provide the name and type of variable, a function for
// updating this variable in a Config, and a function for validating the
// value of the variable.
var Variables = []struct {
	Name     string
	Type     string
	Update   func(*Config, string)
	Validate func(*Config)
}{
	{
		Name: KeySampleRate,
		Type: typeFloat,
		Update: func(c *Config, v string) {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				c.Logger.Warning("invalid SampleRate param", "value", v)
				return
			}
			c.SampleRate = f
		},
		Validate: func(c *Config) {
			if c.SampleRate == 0 {
				c.LogInvalidField(KeySampleRate, dsp.CanonicalRate)
				c.SampleRate = dsp.CanonicalRate
			}
		},
	},
	{
		Name: KeySampleFormat,
		Type: "enum:cu8,cs8,cs16,cf32,f32fs4",
		Update: func(c *Config, v string) {
			switch strings.ToLower(v) {
			case "cu8":
				c.SampleFormat = sample.CU8
			case "cs8":
				c.SampleFormat = sample.CS8
			case "cs16":
				c.SampleFormat = sample.CS16
			case "cf32":
				c.SampleFormat = sample.CF32
			case "f32fs4":
				c.SampleFormat = sample.F32FS4
			default:
				c.Logger.Warning("invalid SampleFormat param", "value", v)
			}
		},
	},
	{
		Name:   KeyFixedPointDownsamp,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.FixedPointDownsampler = parseBool(KeyFixedPointDownsamp, v, c) },
	},
	{
		Name: KeyChannelMode,
		Type: "enum:single,dual",
		Update: func(c *Config, v string) {
			switch strings.ToLower(v) {
			case "single":
				c.ChannelMode = ChannelSingle
			case "dual":
				c.ChannelMode = ChannelDual
			default:
				c.Logger.Warning("invalid ChannelMode param", "value", v)
			}
		},
		Validate: func(c *Config) {
			switch c.ChannelMode {
			case ChannelSingle, ChannelDual:
			default:
				c.LogInvalidField(KeyChannelMode, defaultChannelMode)
				c.ChannelMode = defaultChannelMode
			}
		},
	},
	{
		Name: KeyChannelLetters,
		Type: "string", // comma-separated list, e.g. "A,B"
		Update: func(c *Config, v string) {
			v = strings.ReplaceAll(v, " ", "")
			if v == "" {
				c.ChannelLetters = nil
				return
			}
			c.ChannelLetters = strings.Split(v, ",")
		},
		Validate: func(c *Config) {
			want := 1
			if c.ChannelMode == ChannelDual {
				want = 2
			}
			if len(c.ChannelLetters) != want {
				c.LogInvalidField(KeyChannelLetters, defaultChannelLetters[c.ChannelMode])
				c.ChannelLetters = defaultChannelLetters[c.ChannelMode]
			}
		},
	},
	{
		Name: KeyDemodMode,
		Type: "enum:fm,coherent",
		Update: func(c *Config, v string) {
			switch strings.ToLower(v) {
			case "fm":
				c.DemodMode = DemodFM
			case "coherent":
				c.DemodMode = DemodCoherent
			default:
				c.Logger.Warning("invalid DemodMode param", "value", v)
			}
		},
		Validate: func(c *Config) {
			switch c.DemodMode {
			case DemodFM, DemodCoherent:
			default:
				c.LogInvalidField(KeyDemodMode, defaultDemodMode)
				c.DemodMode = defaultDemodMode
			}
		},
	},
	{
		Name:   KeyPhaseSearchDelay,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.PhaseSearchDelay = parseUint(KeyPhaseSearchDelay, v, c) },
		Validate: func(c *Config) {
			if c.PhaseSearchDelay == 0 {
				c.LogInvalidField(KeyPhaseSearchDelay, defaultPhaseSearchDelay)
				c.PhaseSearchDelay = defaultPhaseSearchDelay
			}
		},
	},
	{
		Name:   KeyPhaseSearchHistory,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.PhaseSearchHistory = parseUint(KeyPhaseSearchHistory, v, c) },
		Validate: func(c *Config) {
			if c.PhaseSearchHistory == 0 {
				c.LogInvalidField(KeyPhaseSearchHistory, defaultPhaseSearchHistory)
				c.PhaseSearchHistory = defaultPhaseSearchHistory
			}
		},
	},
	{
		Name:   KeyQuickStopEnabled,
		Type:   typeBool,
		Update: func(c *Config, v string) { c.QuickStopEnabled = parseBool(KeyQuickStopEnabled, v, c) },
	},
	{
		Name:   KeyMessageIDStart,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.MessageIDStart = parseUint(KeyMessageIDStart, v, c) % 10 },
	},
	{
		Name:   KeyQueueCapacity,
		Type:   typeUint,
		Update: func(c *Config, v string) { c.QueueCapacity = parseUint(KeyQueueCapacity, v, c) },
		Validate: func(c *Config) {
			if c.QueueCapacity == 0 {
				c.LogInvalidField(KeyQueueCapacity, defaultQueueCapacity)
				c.QueueCapacity = defaultQueueCapacity
			}
		},
	},
	{
		Name: KeyLogging,
		Type: "enum:Debug,Info,Warning,Error,Fatal",
		Update: func(c *Config, v string) {
			switch v {
			case "Debug":
				c.LogLevel = logging.Debug
			case "Info":
				c.LogLevel = logging.Info
			case "Warning":
				c.LogLevel = logging.Warning
			case "Error":
				c.LogLevel = logging.Error
			case "Fatal":
				c.LogLevel = logging.Fatal
			default:
				c.Logger.Warning("invalid Logging param", "value", v)
			}
		},
		Validate: func(c *Config) {
			switch c.LogLevel {
			case logging.Debug, logging.Info, logging.Warning, logging.Error, logging.Fatal:
			default:
				c.LogInvalidField("LogLevel", defaultVerbosity)
				c.LogLevel = defaultVerbosity
			}
		},
	},
	{
		Name: KeySuppress,
		Type: typeBool,
		Update: func(c *Config, v string) {
			c.Suppress = parseBool(KeySuppress, v, c)
			if jl, ok := c.Logger.(*logging.JSONLogger); ok {
				jl.SetSuppress(c.Suppress)
			}
		},
	},
}

func parseUint(n, v string, c *Config) uint {
	_v, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		c.Logger.Warning(fmt.Sprintf("expected unsigned int for param %s", n), "value", v)
	}
	return uint(_v)
}

func parseBool(n, v string, c *Config) (b bool) {
	switch strings.ToLower(v) {
	case "true":
		b = true
	case "false":
		b = false
	default:
		c.Logger.Warning(fmt.Sprintf("expect bool for param %s", n), "value", v)
	}
	return
}
