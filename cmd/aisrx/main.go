/*
NAME
  aisrx

DESCRIPTION
  aisrx is a standalone daemon wiring an AIS receiver to a raw IQ file
  or stream on one end, and a line-delimited NMEA 0183 AIVDM output on
  the other. Configuration is reloaded live from a key=value vars file
  watched with fsnotify, the same way netsender-driven daemons pick up
  cloud variable changes, but sourced from disk instead of the cloud.

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

// Package main implements aisrx, a file/stream-driven AIS receiver daemon.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/fsnotify/fsnotify"
	"github.com/pkg/errors"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"
	"github.com/ausocean/utils/pool"

	"github.com/ausocean/ais/protocol/ais"
	"github.com/ausocean/ais/receiver"
	"github.com/ausocean/ais/receiver/config"
	"github.com/ausocean/ais/sample"
)

// Current software version.
const version = "v0.1.0"

// Logging configuration.
const (
	logPath      = "/var/log/aisrx/aisrx.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 10
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = false
)

// Misc constants.
const (
	pkg             = "aisrx: "
	blockSamples    = 16384
	nmeaPoolStart   = 4096
	nmeaPoolChunks  = 64
	nmeaWriteWindow = time.Second
	watchdogSlack   = 2 // watchdog pings happen at 1/watchdogSlack of the systemd interval
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "show version")
		in          = flag.String("in", "-", "raw IQ input file, or - for stdin")
		out         = flag.String("out", "-", "NMEA output file, or - for stdout")
		cfgPath     = flag.String("config", "", "key=value config vars file, hot-reloaded on change")
		rate        = flag.Float64("rate", 96000, "input sample rate in Hz")
		format      = flag.String("format", "cu8", "input sample format: cu8, cs8, cs16, cf32, f32fs4")
		chanMode    = flag.String("channel-mode", "dual", "single or dual")
		chanLetters = flag.String("channels", "A,B", "comma-separated AIS channel letters, one per split output")
		demod       = flag.String("demod", "coherent", "fm or coherent")
	)
	flag.Parse()
	if *showVersion {
		fmt.Println(version)
		os.Exit(0)
	}

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)
	log.Info("starting aisrx", "version", version)

	cfg := config.Config{Logger: log, SampleRate: *rate}
	applyFlagConfig(&cfg, *format, *chanMode, *chanLetters, *demod)
	if err := cfg.Validate(); err != nil {
		log.Fatal(pkg+"invalid config", "error", err.Error())
	}

	nmeaBuf := pool.NewBuffer(nmeaPoolStart, nmeaPoolChunks, nmeaWriteWindow)
	sink := &nmeaSink{buf: nmeaBuf, log: log}

	rx, err := receiver.New(cfg, sink, nil)
	if err != nil {
		log.Fatal(pkg+"could not create receiver", "error", err.Error())
	}

	outWriter, closeOut, err := openOutput(*out)
	if err != nil {
		log.Fatal(pkg+"could not open output", "error", err.Error())
	}
	defer closeOut()
	go drainNMEA(nmeaBuf, outWriter, log)

	if *cfgPath != "" {
		go watchConfig(*cfgPath, rx, log)
	}

	go watchdog(log)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	done := make(chan struct{})
	go func() {
		if err := pushFromInput(*in, cfg, rx, log); err != nil {
			log.Warning(pkg+"input ended", "error", err.Error())
		}
		close(done)
	}()

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)

	select {
	case <-sig:
		log.Info("received shutdown signal")
	case <-done:
		log.Info("input exhausted")
	}

	rx.Stop()
	log.Info("aisrx stopped")
}

// applyFlagConfig maps the command-line flags onto cfg using the same
// variable parsers receiver/config.Variables uses for cloud updates, so
// flag values and hot-reloaded vars are interpreted identically.
func applyFlagConfig(cfg *config.Config, format, chanMode, chanLetters, demod string) {
	cfg.Update(map[string]string{
		config.KeySampleFormat:   format,
		config.KeyChannelMode:    chanMode,
		config.KeyChannelLetters: chanLetters,
		config.KeyDemodMode:      demod,
	})
}

// watchConfig watches path for writes and pushes its key=value lines to
// rx.Update on every change, the local-file analog of a netsender client
// polling for cloud variable changes.
func watchConfig(path string, rx *receiver.Receiver, log logging.Logger) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		log.Error(pkg+"could not create config watcher", "error", err.Error())
		return
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		log.Error(pkg+"could not watch config file", "path", path, "error", err.Error())
		return
	}

	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			vars, err := readVarsFile(path)
			if err != nil {
				log.Warning(pkg+"could not read config file", "error", err.Error())
				continue
			}
			log.Info("reloading config", "path", path)
			rx.Update(vars)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			log.Warning(pkg+"config watcher error", "error", err.Error())
		}
	}
}

// readVarsFile parses path as newline-separated key=value pairs.
func readVarsFile(path string) (map[string]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	vars := make(map[string]string)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		kv := strings.SplitN(line, "=", 2)
		if len(kv) != 2 {
			continue
		}
		vars[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
	}
	return vars, sc.Err()
}

// watchdog pings systemd's service watchdog, if one is configured, at
// half the required interval.
func watchdog(log logging.Logger) {
	interval, err := daemon.SdWatchdogEnabled(false)
	if err != nil || interval == 0 {
		return
	}
	t := time.NewTicker(interval / watchdogSlack)
	defer t.Stop()
	for range t.C {
		if _, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog); err != nil {
			log.Warning(pkg+"watchdog notify failed", "error", err.Error())
		}
	}
}

// openOutput opens path for NMEA output, or stdout if path is "-".
func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "aisrx: opening output %s", path)
	}
	return f, func() { f.Close() }, nil
}

// pushFromInput opens path (or stdin) as a raw sample stream and pushes
// it to rx in blockSamples-sample chunks until EOF.
func pushFromInput(path string, cfg config.Config, rx *receiver.Receiver, log logging.Logger) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return errors.Wrapf(err, "aisrx: opening input %s", path)
		}
		defer f.Close()
		r = f
	}

	bps, err := sample.BytesPerSample(cfg.SampleFormat)
	if err != nil {
		return err
	}
	chunk := make([]byte, blockSamples*bps)

	for {
		n, err := io.ReadFull(r, chunk)
		if n > 0 {
			raw := sample.RawBlock{Format: cfg.SampleFormat, Data: append([]byte(nil), chunk[:n]...)}
			if perr := rx.PushRaw(raw); perr != nil {
				log.Warning(pkg+"push failed", "error", perr.Error())
			}
		}
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// nmeaSink packages every decoded message's sentences into nmeaBuf for
// drainNMEA to write out, decoupling decode latency from output I/O
// latency the same way revid's senders decouple encoding from network
// writes via a pool.Buffer.
type nmeaSink struct {
	buf *pool.Buffer
	log logging.Logger
}

func (s *nmeaSink) Receive(msg ais.Message, sentences []string) {
	for _, sentence := range sentences {
		if _, err := s.buf.Write([]byte(sentence + "\r\n")); err != nil {
			if err == pool.ErrDropped {
				s.log.Warning(pkg + "dropped NMEA sentence, output stalled")
				continue
			}
			s.log.Error(pkg+"unexpected pool buffer error", "error", err.Error())
		}
	}
}

// drainNMEA reads chunks out of buf and writes them to w until buf
// closes.
func drainNMEA(buf *pool.Buffer, w io.Writer, log logging.Logger) {
	tmp := make([]byte, nmeaPoolStart)
	for {
		c, err := buf.Next(nmeaWriteWindow)
		switch err {
		case nil:
		case pool.ErrTimeout:
			continue
		case io.EOF:
			return
		default:
			log.Error(pkg+"unexpected pool next error", "error", err.Error())
			return
		}

		if cap(tmp) < c.Len() {
			tmp = make([]byte, c.Len())
		}
		n, err := io.ReadFull(buf, tmp[:c.Len()])
		if err != nil {
			log.Error(pkg+"unexpected pool read error", "error", err.Error())
			return
		}
		if _, err := w.Write(tmp[:n]); err != nil {
			log.Error(pkg+"output write error", "error", err.Error())
			return
		}
	}
}
