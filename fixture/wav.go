/*
NAME
  wav.go

DESCRIPTION
  wav.go reads and writes IQ test vectors stored as stereo WAV files
  (I on the left channel, Q on the right), the natural on-disk artifact
  for a golden fixture worth checking in rather than re-synthesizing
  every test run.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package fixture

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	aiswav "github.com/ausocean/ais/codec/wav"
	"github.com/ausocean/ais/iq"
)

// pcmScale is the full-scale divisor for the 16-bit PCM samples
// WriteWAV/LoadWAV exchange with the normalized [-1,1) float range the
// rest of the pipeline (sample.Adapter, FMBurst) works in.
const pcmScale = 1 << 15

// WriteWAV encodes block's samples as a stereo 16-bit PCM WAV file at
// sampleRate, I on the left channel and Q on the right. It reuses
// codec/wav's header encoder, the same one the teacher's audio capture
// path writes with. Components at or beyond full scale are clamped to
// the int16 range.
func WriteWAV(path string, block iq.Block, sampleRate int) error {
	toPCM := func(v float32) int16 {
		x := v * pcmScale
		if x > 32767 {
			return 32767
		}
		if x < -32768 {
			return -32768
		}
		return int16(x)
	}
	audioBytes := make([]byte, 0, len(block.Samples)*4)
	for _, s := range block.Samples {
		i := toPCM(real(s))
		q := toPCM(imag(s))
		audioBytes = append(audioBytes, byte(i), byte(i>>8), byte(q), byte(q>>8))
	}

	w := &aiswav.WAV{Metadata: aiswav.Metadata{
		AudioFormat: aiswav.PCMFormat,
		Channels:    2,
		SampleRate:  sampleRate,
		BitDepth:    16,
	}}
	if _, err := w.Write(audioBytes); err != nil {
		return fmt.Errorf("fixture: encoding %s: %w", path, err)
	}

	return os.WriteFile(path, w.Audio, 0o644)
}

// LoadWAV reads a stereo 16-bit PCM WAV file back into a complex IQ
// block (I from the left channel, Q from the right, normalized to
// [-1,1)) and its sample rate. It decodes with go-audio/wav rather than
// WriteWAV's header encoder, so it accepts any stereo 16-bit PCM WAV,
// not only ones this package wrote; files with another channel count
// or bit depth are rejected with an error.
func LoadWAV(path string) (iq.Block, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return iq.Block{}, 0, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return iq.Block{}, 0, fmt.Errorf("fixture: %s is not a valid WAV file", path)
	}
	if err := dec.FwdToPCM(); err != nil {
		return iq.Block{}, 0, fmt.Errorf("fixture: seeking to PCM data in %s: %w", path, err)
	}
	if dec.NumChans != 2 {
		return iq.Block{}, 0, fmt.Errorf("fixture: %s has %d channels, want 2 (I/Q)", path, dec.NumChans)
	}
	if dec.BitDepth != 16 {
		return iq.Block{}, 0, fmt.Errorf("fixture: %s has %d-bit samples, want 16", path, dec.BitDepth)
	}

	const chunkFrames = 2048
	buf := &audio.IntBuffer{Format: dec.Format(), Data: make([]int, chunkFrames*2)}

	var samples []complex64
	for {
		n, err := dec.PCMBuffer(buf)
		if err != nil && err != io.EOF {
			return iq.Block{}, 0, fmt.Errorf("fixture: reading PCM from %s: %w", path, err)
		}
		for i := 0; i+1 < n; i += 2 {
			re := float32(buf.Data[i]) / pcmScale
			im := float32(buf.Data[i+1]) / pcmScale
			samples = append(samples, complex(re, im))
		}
		if err == io.EOF || n == 0 {
			break
		}
	}

	return iq.Block{Samples: samples}, int(dec.SampleRate), nil
}
