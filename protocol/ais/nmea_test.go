package ais

import (
	"strconv"
	"strings"
	"testing"
)

func TestSixBitASCII(t *testing.T) {
	if got := sixBitASCII(0); got != '0' {
		t.Errorf("sixBitASCII(0) = %c, want '0'", got)
	}
	if got := sixBitASCII(39); got != 'W' {
		t.Errorf("sixBitASCII(39) = %c, want 'W'", got)
	}
	if got := sixBitASCII(40); got != '`' {
		t.Errorf("sixBitASCII(40) = %c, want '`'", got)
	}
	if got := sixBitASCII(63); got != 'w' {
		t.Errorf("sixBitASCII(63) = %c, want 'w'", got)
	}
}

// TestNMEAChecksumLaw verifies invariant 7 (spec.md §8): for any
// generated sentence "<body>*XX", xor(body) == parse_hex(XX).
func TestNMEAChecksumLaw(t *testing.T) {
	b := NewBitBuffer(168)
	appendUint(b, 1, 6)
	appendUint(b, 0, 2)
	appendUint(b, 227006760, 30)
	for i := 0; i < 168-38; i++ {
		b.AppendBit(i%3 == 0)
	}

	p := NewPackager()
	sentences := p.Pack(Message{Payload: b, Channel: ChannelA})
	for _, s := range sentences {
		checkNMEAChecksum(t, s)
	}
}

func checkNMEAChecksum(t *testing.T, sentence string) {
	t.Helper()
	if !strings.HasPrefix(sentence, "!") {
		t.Fatalf("sentence %q missing leading !", sentence)
	}
	star := strings.LastIndexByte(sentence, '*')
	if star < 0 {
		t.Fatalf("sentence %q missing checksum delimiter", sentence)
	}
	body := sentence[1:star]
	wantHex := sentence[star+1:]
	want, err := strconv.ParseUint(wantHex, 16, 8)
	if err != nil {
		t.Fatalf("sentence %q has unparseable checksum %q: %v", sentence, wantHex, err)
	}
	if got := xorChecksum(body); got != byte(want) {
		t.Errorf("sentence %q: xor(body) = %02X, want %02X", sentence, got, want)
	}
}

// TestNMEAFillBitsSingleSentence verifies fill_bits = 6*n_letters - n_bits
// (spec.md §4.9) is applied to a single-sentence payload whose bit length
// isn't a multiple of 6, not just to the last sentence of a multi-sentence
// group. A 272-bit payload (e.g. a type 21 aid-to-navigation report) needs
// 46 six-bit letters = 276 bits, so it should report 4 fill bits while
// still fitting in one sentence.
func TestNMEAFillBitsSingleSentence(t *testing.T) {
	b := NewBitBuffer(272)
	for i := 0; i < 272; i++ {
		b.AppendBit(i%7 == 0)
	}
	p := NewPackager()
	sentences := p.Pack(Message{Payload: b, Channel: ChannelA})
	if len(sentences) != 1 {
		t.Fatalf("len(sentences) = %d, want 1 for a 272-bit payload", len(sentences))
	}
	checkNMEAChecksum(t, sentences[0])

	star := strings.LastIndexByte(sentences[0], '*')
	fields := strings.Split(sentences[0][:star], ",")
	fillBits := fields[len(fields)-1]
	if fillBits != "4" {
		t.Errorf("fill_bits = %s, want 4", fillBits)
	}
}

func TestNMEAFragmentation(t *testing.T) {
	// A 312-bit payload needs ceil(312/6)=52 letters, which fits in one
	// sentence (<=56); a much longer payload should split.
	b := NewBitBuffer(1024)
	for i := 0; i < 56*6+10; i++ {
		b.AppendBit(i%5 == 0)
	}
	p := NewPackager()
	sentences := p.Pack(Message{Payload: b, Channel: ChannelB})
	if len(sentences) != 2 {
		t.Fatalf("len(sentences) = %d, want 2 for a payload needing 2 fragments", len(sentences))
	}
	for _, s := range sentences {
		checkNMEAChecksum(t, s)
		if !strings.Contains(s, ",B,") {
			t.Errorf("sentence %q missing channel field B", s)
		}
	}
}
