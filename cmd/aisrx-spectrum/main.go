/*
NAME
  aisrx-spectrum

DESCRIPTION
  aisrx-spectrum is a diagnostic tool: it reads one block of raw IQ
  samples, runs the same squared-signal FFT the C7 frequency-offset
  estimator uses internally, and plots the resulting magnitude spectrum
  to a PNG, so the BPSK-squaring peak used to estimate residual carrier
  offset can be inspected by eye when a receiver isn't locking.

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

// Package main implements aisrx-spectrum, a C7 spectrum-dump diagnostic.
package main

import (
	"flag"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/mjibson/go-dsp/fft"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ausocean/ais/sample"
)

func main() {
	var (
		in     = flag.String("in", "-", "raw IQ input file, or - for stdin")
		out    = flag.String("out", "spectrum.png", "output PNG path")
		rate   = flag.Float64("rate", 48000, "sample rate in Hz of the input block")
		format = flag.String("format", "cf32", "input sample format: cu8, cs8, cs16, cf32, f32fs4")
		n      = flag.Int("n", 4096, "FFT block size")
		square = flag.Bool("square", true, "square the signal before FFT, as the frequency-offset estimator does")
	)
	flag.Parse()

	if err := run(*in, *out, *format, *rate, *n, *square); err != nil {
		fmt.Fprintln(os.Stderr, "aisrx-spectrum:", err)
		os.Exit(1)
	}
}

func run(in, out, format string, rate float64, n int, square bool) error {
	f, err := parseFormat(format)
	if err != nil {
		return err
	}

	block, err := readBlock(in, f, n)
	if err != nil {
		return err
	}

	spectrum := make([]complex128, n)
	for i, s := range block {
		c := complex128(s)
		if square {
			c *= c
		}
		spectrum[i] = c
	}
	mag := fft.FFT(spectrum)

	pts := make(plotter.XYs, n)
	for i := range pts {
		// Centre DC, matching the estimator's own (i+n/2)%n indexing.
		shifted := (i + n/2) % n
		freq := (float64(i) - float64(n)/2) * rate / float64(n)
		db := 20 * math.Log10(absComplex(mag[shifted])+1e-12)
		pts[i].X = freq
		pts[i].Y = db
	}

	p, err := plot.New()
	if err != nil {
		return err
	}
	p.Title.Text = "AIS frequency-offset estimator spectrum"
	p.X.Label.Text = "Frequency (Hz)"
	p.Y.Label.Text = "Magnitude (dB)"

	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	p.Add(line)
	p.Add(plotter.NewGrid())

	return p.Save(8*vg.Inch, 4*vg.Inch, out)
}

func absComplex(c complex128) float64 {
	re, im := real(c), imag(c)
	return math.Sqrt(re*re + im*im)
}

func parseFormat(s string) (sample.Format, error) {
	switch s {
	case "cu8":
		return sample.CU8, nil
	case "cs8":
		return sample.CS8, nil
	case "cs16":
		return sample.CS16, nil
	case "cf32":
		return sample.CF32, nil
	case "f32fs4":
		return sample.F32FS4, nil
	default:
		return 0, fmt.Errorf("unknown format %q", s)
	}
}

// readBlock reads exactly n samples' worth of raw bytes from path (or
// stdin) and converts them via sample.Adapter.
func readBlock(path string, f sample.Format, n int) ([]complex64, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		r = file
	}

	bps, err := sample.BytesPerSample(f)
	if err != nil {
		return nil, err
	}
	raw := make([]byte, n*bps)
	if _, err := io.ReadFull(r, raw); err != nil {
		return nil, fmt.Errorf("reading %d-sample block: %w", n, err)
	}

	adapter, err := sample.NewAdapter(f)
	if err != nil {
		return nil, err
	}
	block, err := adapter.Convert(sample.RawBlock{Format: f, Data: raw})
	if err != nil {
		return nil, err
	}
	return append([]complex64(nil), block.Samples...), nil
}
