package core

import (
	"math"
	"testing"
)

func TestClampLimitsToRange(t *testing.T) {
	cases := []struct {
		value, min, max, want float64
	}{
		{0.5, 0, 1, 0.5},
		{-2, 0, 1, 0},
		{3, 0, 1, 1},
		{0.5, 1, 0, 0.5}, // swapped bounds
		{math.Inf(1), 0, 1, 1},
		{math.Inf(-1), 0, 1, 0},
	}

	for _, c := range cases {
		got := Clamp(c.value, c.min, c.max)
		if got != c.want {
			t.Errorf("Clamp(%v, %v, %v) = %v, want %v", c.value, c.min, c.max, got, c.want)
		}
	}
}

func TestClampOrKeepsFallbackForNaN(t *testing.T) {
	got := ClampOr(math.NaN(), 0, 1, 0.42)
	if got != 0.42 {
		t.Errorf("ClampOr(NaN) = %v, want fallback 0.42", got)
	}

	got = ClampOr(5, 0, 1, 0.42)
	if got != 1 {
		t.Errorf("ClampOr(5) = %v, want 1", got)
	}

	got = ClampOr(math.Inf(-1), -0.9, 0.9, 0)
	if got != -0.9 {
		t.Errorf("ClampOr(-Inf) = %v, want -0.9", got)
	}
}

func TestNearlyEqual(t *testing.T) {
	if !NearlyEqual(1.0, 1.0+1e-13, 1e-12) {
		t.Error("values within eps reported unequal")
	}

	if NearlyEqual(1.0, 1.1, 1e-12) {
		t.Error("distant values reported equal")
	}

	if !NearlyEqual(0, 0, 0) {
		t.Error("zero/zero with default eps reported unequal")
	}
}

func TestFlushDenormals(t *testing.T) {
	if got := FlushDenormals(1e-31); got != 0 {
		t.Errorf("FlushDenormals(1e-31) = %v, want 0", got)
	}

	if got := FlushDenormals(1e-20); got != 1e-20 {
		t.Errorf("FlushDenormals(1e-20) = %v, want unchanged", got)
	}
}

func TestApplyProcessorOptions(t *testing.T) {
	cfg := ApplyProcessorOptions(WithSampleRate(44100), WithBlockSize(256))
	if cfg.SampleRate != 44100 || cfg.BlockSize != 256 {
		t.Errorf("unexpected config: %+v", cfg)
	}

	// Invalid values keep defaults.
	cfg = ApplyProcessorOptions(WithSampleRate(-1), WithBlockSize(0))
	def := DefaultProcessorConfig()
	if cfg != def {
		t.Errorf("invalid options changed config: %+v", cfg)
	}
}
