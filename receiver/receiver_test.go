/*
NAME
  receiver_test.go

DESCRIPTION
  receiver_test.go exercises the receiver package against the
  end-to-end scenarios: a single clean Type 1 position report, a
  multi-sentence Type 5 static report, a bit-stuffed payload, a
  CRC-damaged frame, two channels each carrying one burst, and the
  same burst replayed at three different input sample rates.

LICENSE
  Copyright (C) 2024 the Australian Ocean Lab (AusOcean). All Rights Reserved.

  The Software and all intellectual property rights associated
  therewith, including but not limited to copyrights, trademarks,
  patents, and trade secrets, are and will remain the exclusive
  property of the Australian Ocean Lab (AusOcean).
*/

package receiver

import (
	"math"
	"math/cmplx"
	"sync"
	"testing"
	"time"

	"github.com/ausocean/ais/demod"
	"github.com/ausocean/ais/dsp"
	"github.com/ausocean/ais/fixture"
	"github.com/ausocean/ais/protocol/ais"
	"github.com/ausocean/ais/receiver/config"
	"github.com/ausocean/ais/sample"
)

func fixedClock() func() time.Time {
	t := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}

func type1Payload(mmsi uint32) *ais.BitBuffer {
	b := ais.NewBitBuffer(168)
	appendUint(b, 1, 6)   // message type
	appendUint(b, 0, 2)   // repeat indicator
	appendUint(b, mmsi, 30)
	for i := 0; i < 168-38; i++ {
		b.AppendBit(i%7 == 0)
	}
	return b
}

func appendUint(b *ais.BitBuffer, v uint32, nbits int) {
	for i := nbits - 1; i >= 0; i-- {
		b.AppendBit(v&(1<<uint(i)) != 0)
	}
}

func cf32Bytes(samples []complex64) []byte {
	out := make([]byte, len(samples)*8)
	for i, s := range samples {
		putFloat32LE(out[8*i:], real(s))
		putFloat32LE(out[8*i+4:], imag(s))
	}
	return out
}

func putFloat32LE(b []byte, f float32) {
	bits := math.Float32bits(f)
	b[0] = byte(bits)
	b[1] = byte(bits >> 8)
	b[2] = byte(bits >> 16)
	b[3] = byte(bits >> 24)
}

// fmOptionsAt returns the FM burst synthesis options for the symbol
// rate and FM deviation spec.md §4.6 and §4.7 assume throughout, at
// the given baseband sample rate.
func fmOptionsAt(sampleRate float64) fixture.FMOptions {
	return fixture.FMOptions{
		SampleRate:  sampleRate,
		SymbolRate:  9600,
		DeviationHz: 2400,
	}
}

// collectingSink records every message/sentence pair Receive is
// called with, safe for concurrent calls from a receiver's pipeline
// goroutine.
type collectingSink struct {
	mu        sync.Mutex
	messages  []ais.Message
	sentences [][]string
}

func (s *collectingSink) Receive(msg ais.Message, sentences []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, msg)
	s.sentences = append(s.sentences, sentences)
}

func (s *collectingSink) wait(t *testing.T, n int, timeout time.Duration) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		got := len(s.messages)
		s.mu.Unlock()
		if got >= n {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d message(s)", n)
}

func testConfig(t *testing.T, sampleRate float64, mode uint8, letters []string) config.Config {
	cfg := config.Config{
		SampleRate:   sampleRate,
		SampleFormat: sample.CF32,
		ChannelMode:  mode,
		ChannelLetters: letters,
		DemodMode:    config.DemodFM,
		QuickStopEnabled: true,
		QueueCapacity: 16,
		Logger:       (*testLogger)(t),
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	return cfg
}

// TestReceiverType1PositionReport is scenario S1: a single, clean Type
// 1 position report on channel A decodes to exactly one message with
// the expected MMSI.
func TestReceiverType1PositionReport(t *testing.T) {
	cfg := testConfig(t, dsp.CanonicalRate, config.ChannelSingle, []string{"A"})
	sink := &collectingSink{}
	r, err := New(cfg, sink, fixedClock())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Stop()

	payload := type1Payload(227006760)
	bits := fixture.Message(payload)
	burst := fixture.FMBurst(bits, fmOptionsAt(dsp.CanonicalRate))
	padded := fixture.Pad(burst.Samples, 2000, 2000)

	if err := r.PushRaw(sample.RawBlock{Format: sample.CF32, Data: cf32Bytes(padded)}); err != nil {
		t.Fatalf("PushRaw: %v", err)
	}

	sink.wait(t, 1, 2*time.Second)
	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.messages) != 1 {
		t.Fatalf("got %d messages, want 1", len(sink.messages))
	}
	got := sink.messages[0]
	if got.Type() != 1 {
		t.Errorf("Type() = %d, want 1", got.Type())
	}
	if got.MMSI() != 227006760 {
		t.Errorf("MMSI() = %d, want 227006760", got.MMSI())
	}
	if got.Channel != ais.ChannelA {
		t.Errorf("Channel = %c, want A", got.Channel)
	}
}

// TestPackagerMultiSentence is scenario S2: a 424-bit payload packages
// into two sentences sharing a group ID, the final one with 2 fill
// bits (6*ceil(424/6) - 424 = 2).
func TestPackagerMultiSentence(t *testing.T) {
	payload := ais.NewBitBuffer(424)
	for i := 0; i < 424; i++ {
		payload.AppendBit(i%5 == 0)
	}
	msg := ais.Message{Payload: payload, Channel: ais.ChannelB}

	p := ais.NewPackager()
	sentences := p.Pack(msg)
	if len(sentences) != 2 {
		t.Fatalf("got %d sentences, want 2", len(sentences))
	}

	group := func(s string) string {
		// "!AIVDM,2,k,<group>,B,..." - the group field is the 4th comma
		// field.
		n, field := 0, ""
		for i := 1; i < len(s); i++ {
			if s[i] == ',' {
				n++
				if n == 4 {
					break
				}
				field = ""
				continue
			}
			if n == 3 {
				field += string(s[i])
			}
		}
		return field
	}
	if group(sentences[0]) != group(sentences[1]) {
		t.Errorf("group IDs differ: %q vs %q", group(sentences[0]), group(sentences[1]))
	}

	lastField := func(s string) string {
		star := 0
		for i := len(s) - 1; i >= 0; i-- {
			if s[i] == '*' {
				star = i
				break
			}
		}
		comma := 0
		for i := star - 1; i >= 0; i-- {
			if s[i] == ',' {
				comma = i
				break
			}
		}
		return s[comma+1 : star]
	}
	if got := lastField(sentences[1]); got != "2" {
		t.Errorf("fill bits = %q, want \"2\"", got)
	}
}

// TestBitStuffedPayloadRoundTrips is scenario S3: a payload containing
// five consecutive 1-bits mid-stream decodes back to exactly the
// original payload bits once stuffed, NRZI-encoded and fed through
// the HDLC decoder.
func TestBitStuffedPayloadRoundTrips(t *testing.T) {
	payload := ais.NewBitBuffer(64)
	for i := 0; i < 10; i++ {
		payload.AppendBit(false)
	}
	for i := 0; i < 5; i++ {
		payload.AppendBit(true)
	}
	for i := 0; i < 10; i++ {
		payload.AppendBit(i%2 == 0)
	}

	want := make([]bool, payload.Len())
	for i := range want {
		want[i] = payload.Bit(i)
	}

	bits := fixture.Message(payload)

	var got *ais.Message
	dec := ais.NewDecoder(ais.ChannelA, &demod.SignalBus{}, fixedClock())
	dec.Process(bits, func(m ais.Message) { got = &m })

	if got == nil {
		t.Fatal("no frame decoded")
	}
	if got.Payload.Len() != len(want) {
		t.Fatalf("decoded %d bits, want %d", got.Payload.Len(), len(want))
	}
	for i, b := range want {
		if got.Payload.Bit(i) != b {
			t.Fatalf("bit %d = %v, want %v", i, got.Payload.Bit(i), b)
		}
	}
}

// TestCRCFailureYieldsNoMessage is scenario S4: flipping one payload
// bit after FCS computation invalidates the frame; no message is
// emitted and the decoder returns to training.
func TestCRCFailureYieldsNoMessage(t *testing.T) {
	payload := type1Payload(227006760)
	ais.AppendFCS(payload)

	corrupted := ais.NewBitBuffer(payload.Len())
	for i := 0; i < payload.Len(); i++ {
		bit := payload.Bit(i)
		if i == 40 {
			bit = !bit
		}
		corrupted.AppendBit(bit)
	}
	bits := fixture.Frame(corrupted)

	emitted := false
	dec := ais.NewDecoder(ais.ChannelA, &demod.SignalBus{}, fixedClock())
	dec.Process(bits, func(m ais.Message) { emitted = true })

	if emitted {
		t.Fatal("corrupted frame was accepted")
	}
}

// shiftChannel rotates baseband samples by the per-sample phase step
// theta, the inverse of the Splitter's own rotation, so a burst
// synthesized at baseband appears at the correct channel offset in a
// canonical 96kHz stream: Splitter demodulates channel A by rotating
// +channelOffsetHz and channel B by -channelOffsetHz, so placing a
// channel-A burst onto the canonical stream requires the opposite,
// -channelOffsetHz, rotation (and the opposite for channel B).
func shiftChannel(samples []complex64, rate, offsetHz float64) []complex64 {
	out := make([]complex64, len(samples))
	theta := 2 * math.Pi * offsetHz / rate
	for i, s := range samples {
		rot := cmplx.Rect(1, -theta*float64(i))
		out[i] = complex64(complex128(s) * rot)
	}
	return out
}

// TestReceiverDualChannel is scenario S5: two Type 1 bursts, one
// placed on channel A (+25kHz) and one on channel B (-25kHz), offset
// by 512 symbols, decode to exactly two messages, one per channel.
func TestReceiverDualChannel(t *testing.T) {
	cfg := testConfig(t, dsp.CanonicalRate, config.ChannelDual, []string{"A", "B"})
	sink := &collectingSink{}
	r, err := New(cfg, sink, fixedClock())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer r.Stop()

	bitsA := fixture.Message(type1Payload(227006760))
	bitsB := fixture.Message(type1Payload(235009876))

	burstA := fixture.FMBurst(bitsA, fmOptionsAt(dsp.CanonicalRate))
	burstB := fixture.FMBurst(bitsB, fmOptionsAt(dsp.CanonicalRate))

	samplesPerSymbol := dsp.CanonicalRate / 9600
	offset := int(512 * samplesPerSymbol)

	paddedA := fixture.Pad(burstA.Samples, 1000, 1000)
	paddedB := fixture.Pad(burstB.Samples, 1000+offset, 1000)

	canonical := fixture.Mix(shiftChannel(paddedA, dsp.CanonicalRate, 25000), shiftChannel(paddedB, dsp.CanonicalRate, -25000))

	if err := r.PushRaw(sample.RawBlock{Format: sample.CF32, Data: cf32Bytes(canonical)}); err != nil {
		t.Fatalf("PushRaw: %v", err)
	}

	sink.wait(t, 2, 3*time.Second)
	sink.mu.Lock()
	defer sink.mu.Unlock()

	if len(sink.messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(sink.messages))
	}
	byChannel := map[ais.Channel]ais.Message{}
	for _, m := range sink.messages {
		byChannel[m.Channel] = m
	}
	if m, ok := byChannel[ais.ChannelA]; !ok || m.MMSI() != 227006760 {
		t.Errorf("channel A message missing or wrong MMSI: %+v", m)
	}
	if m, ok := byChannel[ais.ChannelB]; !ok || m.MMSI() != 235009876 {
		t.Errorf("channel B message missing or wrong MMSI: %+v", m)
	}
}

// TestReceiverRateMigration is scenario S6: the same logical burst,
// synthesized independently at three different supported input rates,
// decodes to the same message fields at every rate.
func TestReceiverRateMigration(t *testing.T) {
	rates := []float64{1536000, 768000, dsp.CanonicalRate}

	for _, rate := range rates {
		rate := rate
		t.Run("", func(t *testing.T) {
			cfg := testConfig(t, rate, config.ChannelSingle, []string{"A"})
			sink := &collectingSink{}
			r, err := New(cfg, sink, fixedClock())
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			defer r.Stop()

			bits := fixture.Message(type1Payload(227006760))
			burst := fixture.FMBurst(bits, fmOptionsAt(rate))
			padded := fixture.Pad(burst.Samples, 2000, 2000)

			if err := r.PushRaw(sample.RawBlock{Format: sample.CF32, Data: cf32Bytes(padded)}); err != nil {
				t.Fatalf("PushRaw: %v", err)
			}

			sink.wait(t, 1, 3*time.Second)
			sink.mu.Lock()
			defer sink.mu.Unlock()
			if len(sink.messages) != 1 {
				t.Fatalf("rate %g: got %d messages, want 1", rate, len(sink.messages))
			}
			if got := sink.messages[0].MMSI(); got != 227006760 {
				t.Errorf("rate %g: MMSI() = %d, want 227006760", rate, got)
			}
		})
	}
}
