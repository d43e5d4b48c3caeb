package dsp

import (
	"math"
	"testing"
)

func TestCIC5DCGain(t *testing.T) {
	c := NewCIC5()
	in := make([]complex64, 64)
	for i := range in {
		in[i] = complex(float32(0.5), float32(-0.25))
	}
	out := c.Process(in)
	if len(out) != 32 {
		t.Fatalf("len(out) = %d, want 32", len(out))
	}
	// After the initial transient settles, a constant input should
	// produce a constant output at unity DC gain.
	want := complex(float32(0.5), float32(-0.25))
	got := out[len(out)-1]
	if math.Abs(float64(real(got)-real(want))) > 1e-3 || math.Abs(float64(imag(got)-imag(want))) > 1e-3 {
		t.Errorf("steady-state output = %v, want ~%v", got, want)
	}
}

func TestCIC5Reset(t *testing.T) {
	c := NewCIC5()
	c.Process([]complex64{1, 2, 3, 4})
	c.Reset()
	if c.h != ([5]complex64{}) {
		t.Fatalf("Reset() left non-zero register file: %v", c.h)
	}
}

func TestOffsetBinary16ZeroLevel(t *testing.T) {
	if got := offsetBinary16(0); got != 32768 {
		t.Errorf("offsetBinary16(0) = %d, want 32768", got)
	}
	if got := UnpackComplex64(offsetBinary16(0) | offsetBinary16(0)<<16); got != 0 {
		t.Errorf("round trip of zero level = %v, want 0", got)
	}
}

func TestCIC5FixedContaminationMask(t *testing.T) {
	c := NewCIC5Fixed()
	// A run of zero-level samples should stay at the zero level through
	// every stage: the shift-and-mask must not let bits leak between the
	// I and Q lanes.
	packed := make([]uint32, 64)
	for i := range packed {
		packed[i] = PackCU8(128, 128)
	}
	for stage := 0; stage < 5; stage++ {
		packed = c.Process(packed, stage)
	}
	for _, z := range packed {
		got := UnpackComplex64(z)
		if re, im := real(got), imag(got); re < -0.01 || re > 0.01 || im < -0.01 || im > 0.01 {
			t.Fatalf("zero-level sample drifted to %v after 5 stages", got)
		}
	}
}

func TestPackCU8RoundTrip(t *testing.T) {
	got := UnpackComplex64(PackCU8(255, 0))
	if re := real(got); re < 0.9 || re > 1.01 {
		t.Errorf("PackCU8(255,0) real part = %v, want ~1", re)
	}
	if im := imag(got); im < -1.01 || im > -0.9 {
		t.Errorf("PackCU8(255,0) imag part = %v, want ~-1", im)
	}
}
