package effects

import (
	"math"
	"testing"
)

func TestMultiTapAddRemove(t *testing.T) {
	m, err := NewMultiTapDelay(44100)
	if err != nil {
		t.Fatalf("NewMultiTapDelay: %v", err)
	}

	if m.TapCount() != 0 {
		t.Fatalf("expected empty delay, got %d taps", m.TapCount())
	}

	for i := 0; i < maxTapCount; i++ {
		if !m.AddTap(0.1+float64(i)*0.05, 0.8, 0) {
			t.Fatalf("tap %d rejected below the limit", i)
		}
	}

	if m.AddTap(0.1, 1, 0) {
		t.Fatal("tap beyond the limit should be rejected")
	}

	m.RemoveTap(0)
	if m.TapCount() != maxTapCount-1 {
		t.Fatalf("expected %d taps after removal, got %d", maxTapCount-1, m.TapCount())
	}

	// Out-of-range indices are ignored.
	m.RemoveTap(-1)
	m.RemoveTap(100)
	if m.TapCount() != maxTapCount-1 {
		t.Fatal("out-of-range removal changed the tap set")
	}

	m.ClearTaps()
	if m.TapCount() != 0 {
		t.Fatalf("expected no taps after clear, got %d", m.TapCount())
	}
}

func TestMultiTapPanGains(t *testing.T) {
	m, err := NewMultiTapDelay(44100)
	if err != nil {
		t.Fatalf("NewMultiTapDelay: %v", err)
	}

	m.AddTap(0.1, 1, 0)

	tap := m.TapAt(0)
	if tap == nil {
		t.Fatal("expected tap at index 0")
	}

	if math.Abs(tap.gainL-panGainScale) > 1e-12 || math.Abs(tap.gainR-panGainScale) > 1e-12 {
		t.Fatalf("center pan: expected equal gains %f, got %f / %f", panGainScale, tap.gainL, tap.gainR)
	}

	m.SetTapPan(0, 1)
	if tap.gainL != 0 || math.Abs(tap.gainR-2*panGainScale) > 1e-12 {
		t.Fatalf("hard right: got %f / %f", tap.gainL, tap.gainR)
	}

	m.SetTapPan(0, -1)
	if math.Abs(tap.gainL-2*panGainScale) > 1e-12 || tap.gainR != 0 {
		t.Fatalf("hard left: got %f / %f", tap.gainL, tap.gainR)
	}

	if got := m.TapAt(5); got != nil {
		t.Fatal("expected nil for out-of-range tap index")
	}
}

func TestMultiTapImpulseTiming(t *testing.T) {
	const sampleRate = 1000.0

	m, err := NewMultiTapDelay(sampleRate,
		WithMultiTapFeedback(0),
		WithMultiTapMix(1),
	)
	if err != nil {
		t.Fatalf("NewMultiTapDelay: %v", err)
	}

	m.AddTap(0.05, 1.0, 0)
	m.AddTap(0.1, 0.5, 0)

	first := int(math.Round(0.05 * sampleRate))
	second := int(math.Round(0.1 * sampleRate))

	for i := 0; i < 2*second; i++ {
		input := 0.0
		if i == 0 {
			input = 1.0
		}

		left, right := m.ProcessSample(input)

		var want float64
		switch i {
		case first:
			want = 1.0 * panGainScale
		case second:
			want = 0.5 * panGainScale
		}

		if math.Abs(left-want) > 1e-12 || math.Abs(right-want) > 1e-12 {
			t.Fatalf("sample %d: got %f/%f, want %f on both channels", i, left, right, want)
		}
	}
}

func TestMultiTapSyncTapsToTempo(t *testing.T) {
	m, err := NewMultiTapDelay(44100)
	if err != nil {
		t.Fatalf("NewMultiTapDelay: %v", err)
	}

	m.SyncTapsToTempo(120, []string{"1/4", "1/8", "bogus", "1/8T"})

	if m.TapCount() != 3 {
		t.Fatalf("expected 3 taps (unknown division skipped), got %d", m.TapCount())
	}

	wantDelays := []float64{0.5, 0.25, 60.0 / 120 / 3}
	wantLevels := []float64{1.0, 0.8, 0.64}
	wantPans := []float64{0.5, -0.5, 0.5}

	for i := 0; i < m.TapCount(); i++ {
		tap := m.TapAt(i)

		if math.Abs(tap.Delay()-wantDelays[i]) > 1e-9 {
			t.Fatalf("tap %d: delay %f, want %f", i, tap.Delay(), wantDelays[i])
		}

		if math.Abs(tap.Level()-wantLevels[i]) > 1e-9 {
			t.Fatalf("tap %d: level %f, want %f", i, tap.Level(), wantLevels[i])
		}

		if math.Abs(tap.Pan()-wantPans[i]) > 1e-9 {
			t.Fatalf("tap %d: pan %f, want %f", i, tap.Pan(), wantPans[i])
		}
	}
}

func TestMultiTapProcessLengthMismatch(t *testing.T) {
	m, err := NewMultiTapDelay(44100)
	if err != nil {
		t.Fatalf("NewMultiTapDelay: %v", err)
	}

	if err := m.Process(make([]float64, 10), make([]float64, 10), make([]float64, 9)); err == nil {
		t.Fatal("expected error for mismatched buffer lengths")
	}

	if err := m.Process(make([]float64, 10), make([]float64, 10), make([]float64, 10)); err != nil {
		t.Fatalf("equal lengths should process: %v", err)
	}
}

func TestMultiTapFeedbackBounded(t *testing.T) {
	m, err := NewMultiTapDelay(44100,
		WithMultiTapFeedback(0.9),
		WithMultiTapMix(1),
	)
	if err != nil {
		t.Fatalf("NewMultiTapDelay: %v", err)
	}

	m.SyncTapsToTempo(240, []string{"1/8", "1/8.", "1/4", "1/4T"})

	for i := 0; i < 44100*4; i++ {
		input := 0.0
		if i == 0 {
			input = 1.0
		}

		left, right := m.ProcessSample(input)
		if math.IsNaN(left) || math.IsInf(left, 0) || math.IsNaN(right) || math.IsInf(right, 0) {
			t.Fatalf("sample %d: output is not finite: %f / %f", i, left, right)
		}

		if math.Abs(left) > 100 || math.Abs(right) > 100 {
			t.Fatalf("sample %d: output %f/%f diverging", i, left, right)
		}
	}
}
