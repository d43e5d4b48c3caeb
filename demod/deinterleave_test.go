package demod

import "testing"

func TestDeinterleaverRoutesByPhase(t *testing.T) {
	const n = 5
	var got [n][]float32
	sinks := make([]func(float32), n)
	for i := 0; i < n; i++ {
		i := i
		sinks[i] = func(v float32) { got[i] = append(got[i], v) }
	}
	d := NewDeinterleaver(sinks)

	in := make([]float32, 17)
	for i := range in {
		in[i] = float32(i)
	}
	d.Process(in)

	for phase := 0; phase < n; phase++ {
		for k, v := range got[phase] {
			want := float32(phase + k*n)
			if v != want {
				t.Errorf("phase %d sample %d = %v, want %v", phase, k, v, want)
			}
		}
	}
}

func TestDeinterleaverNoSinks(t *testing.T) {
	d := NewDeinterleaver(nil)
	d.Process([]float32{1, 2, 3}) // must not panic
}
