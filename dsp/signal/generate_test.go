package signal

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-echo/dsp/core"
)

func TestSine(t *testing.T) {
	g := NewGenerator(core.WithSampleRate(1000))

	out, err := g.Sine(250, 1, 8)
	if err != nil {
		t.Fatalf("Sine: %v", err)
	}

	// 250 Hz at 1 kHz: one cycle every 4 samples, 0 1 0 -1 ...
	want := []float64{0, 1, 0, -1, 0, 1, 0, -1}
	for i, v := range out {
		if math.Abs(v-want[i]) > 1e-12 {
			t.Fatalf("sample %d: got %f, want %f", i, v, want[i])
		}
	}

	if _, err := g.Sine(440, 1, 0); err == nil {
		t.Fatal("expected error for zero samples")
	}
}

func TestImpulse(t *testing.T) {
	g := NewGenerator()

	out, err := g.Impulse(3, 8)
	if err != nil {
		t.Fatalf("Impulse: %v", err)
	}

	for i, v := range out {
		want := 0.0
		if i == 3 {
			want = 1.0
		}

		if v != want {
			t.Fatalf("sample %d: got %f, want %f", i, v, want)
		}
	}

	if _, err := g.Impulse(8, 8); err == nil {
		t.Fatal("expected error for out-of-range offset")
	}
}

func TestWhiteNoiseDeterministic(t *testing.T) {
	a := NewGeneratorWithOptions(nil, WithSeed(7))
	b := NewGeneratorWithOptions(nil, WithSeed(7))

	na, err := a.WhiteNoise(0.5, 256)
	if err != nil {
		t.Fatalf("WhiteNoise: %v", err)
	}

	nb, _ := b.WhiteNoise(0.5, 256)

	for i := range na {
		if na[i] != nb[i] {
			t.Fatalf("sample %d: same seed diverged", i)
		}

		if math.Abs(na[i]) > 0.5 {
			t.Fatalf("sample %d: %f exceeds amplitude", i, na[i])
		}
	}

	if _, err := a.WhiteNoise(-1, 10); err == nil {
		t.Fatal("expected error for negative amplitude")
	}
}

func TestNormalize(t *testing.T) {
	out, err := Normalize([]float64{0.1, -0.4, 0.2}, 1.0)
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}

	if math.Abs(out[1]+1) > 1e-12 {
		t.Fatalf("peak should scale to -1, got %f", out[1])
	}

	silent, err := Normalize([]float64{0, 0, 0}, 1.0)
	if err != nil {
		t.Fatalf("Normalize silent: %v", err)
	}

	for _, v := range silent {
		if v != 0 {
			t.Fatal("silence should stay silent")
		}
	}

	if _, err := Normalize(nil, 1); err == nil {
		t.Fatal("expected error for empty input")
	}
}
