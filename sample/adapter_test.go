package sample

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestConvertCU8(t *testing.T) {
	a, err := NewAdapter(CU8)
	if err != nil {
		t.Fatal(err)
	}
	raw := RawBlock{Format: CU8, Data: []byte{0, 128, 255, 1}}
	b, err := a.Convert(raw)
	if err != nil {
		t.Fatal(err)
	}
	want := []complex64{
		complex(float32(-1), float32(0)),
		complex(float32(127)/128, float32(-127)/128),
	}
	if diff := cmp.Diff(want, b.Samples, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("Convert() mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertCS16(t *testing.T) {
	a, err := NewAdapter(CS16)
	if err != nil {
		t.Fatal(err)
	}
	raw := RawBlock{Format: CS16, Data: []byte{0x00, 0x40, 0x00, 0xC0}} // 16384, -16384
	b, err := a.Convert(raw)
	if err != nil {
		t.Fatal(err)
	}
	want := []complex64{complex(float32(0.5), float32(-0.5))}
	if diff := cmp.Diff(want, b.Samples, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("Convert() mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertF32FS4(t *testing.T) {
	a, err := NewAdapter(F32FS4)
	if err != nil {
		t.Fatal(err)
	}
	data := make([]byte, 16)
	putFloat32LE(data[0:4], 1.0)
	putFloat32LE(data[4:8], 2.0)
	putFloat32LE(data[8:12], 3.0)
	putFloat32LE(data[12:16], 4.0)
	b, err := a.Convert(RawBlock{Format: F32FS4, Data: data})
	if err != nil {
		t.Fatal(err)
	}
	want := []complex64{
		complex(float32(1), float32(0)),
		complex(float32(0), float32(2)),
		complex(float32(-3), float32(0)),
		complex(float32(0), float32(-4)),
	}
	if diff := cmp.Diff(want, b.Samples); diff != "" {
		t.Errorf("Convert() mismatch (-want +got):\n%s", diff)
	}
}

func TestConvertUnsupportedFormat(t *testing.T) {
	a, err := NewAdapter(CF32)
	if err != nil {
		t.Fatal(err)
	}
	_, err = a.Convert(RawBlock{Format: Format(99), Data: []byte{0, 0, 0, 0, 0, 0, 0, 0}})
	if err == nil {
		t.Fatal("Convert() with unknown format: want error, got nil")
	}
}

func TestLevelEstimate(t *testing.T) {
	a, err := NewAdapter(CF32, WithLevelEstimate())
	if err != nil {
		t.Fatal(err)
	}
	data := make([]byte, 8)
	putFloat32LE(data[0:4], 1.0)
	putFloat32LE(data[4:8], 0.0)
	b, err := a.Convert(RawBlock{Format: CF32, Data: data})
	if err != nil {
		t.Fatal(err)
	}
	if b.Tag.LevelDB < -0.001 || b.Tag.LevelDB > 0.001 {
		t.Errorf("LevelDB = %v, want ~0 (unit magnitude tone is 0 dBFS)", b.Tag.LevelDB)
	}
}

func putFloat32LE(b []byte, f float32) {
	bits := math.Float32bits(f)
	b[0] = byte(bits)
	b[1] = byte(bits >> 8)
	b[2] = byte(bits >> 16)
	b[3] = byte(bits >> 24)
}
