package effects

import (
	"math"
	"testing"
)

func TestTempoSyncDivisionTiming(t *testing.T) {
	cases := []struct {
		bpm      float64
		division string
		want     float64
	}{
		{120, "1/4", 0.5},
		{120, "1/8", 0.25},
		{120, "1/16", 0.125},
		{120, "1/2", 1.0},
		{120, "1/4.", 0.75},
		{120, "1/4T", 1.0 / 3},
		{60, "1/4", 1.0},
		{240, "1/8", 0.125},
	}

	for _, tc := range cases {
		d, err := NewTempoSyncDelay(44100,
			WithTempoBPM(tc.bpm),
			WithTempoDivision(tc.division),
		)
		if err != nil {
			t.Fatalf("NewTempoSyncDelay: %v", err)
		}

		if got := d.Time(); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("%f BPM %s: time %f, want %f", tc.bpm, tc.division, got, tc.want)
		}
	}
}

func TestTempoSyncSwing(t *testing.T) {
	d, err := NewTempoSyncDelay(44100,
		WithTempoBPM(120),
		WithTempoDivision("1/4"),
	)
	if err != nil {
		t.Fatalf("NewTempoSyncDelay: %v", err)
	}

	d.SetSwing(1)
	if got, want := d.Time(), 0.5*(1+swingAdjustmentSpan); math.Abs(got-want) > 1e-9 {
		t.Fatalf("full swing: time %f, want %f", got, want)
	}

	// Dotted divisions amplify swing.
	d.SetDivision("1/4.")
	d.SetSwing(0.5)
	if got, want := d.Time(), 0.75*(1+0.5*swingAdjustmentSpan*dottedSwingBoost); math.Abs(got-want) > 1e-9 {
		t.Fatalf("dotted swing: time %f, want %f", got, want)
	}

	// Triplets ignore swing entirely.
	d.SetDivision("1/4T")
	d.SetSwing(1)
	if got, want := d.Time(), 1.0/3; math.Abs(got-want) > 1e-9 {
		t.Fatalf("triplet swing: time %f, want %f", got, want)
	}
}

func TestTempoSyncUnknownDivisionIgnored(t *testing.T) {
	d, err := NewTempoSyncDelay(44100, WithTempoDivision("1/8"))
	if err != nil {
		t.Fatalf("NewTempoSyncDelay: %v", err)
	}

	d.SetDivision("1/7")
	if got := d.Division(); got != "1/8" {
		t.Fatalf("unknown division should be ignored, got %q", got)
	}
}

func TestTempoSyncTempoClamped(t *testing.T) {
	d, err := NewTempoSyncDelay(44100)
	if err != nil {
		t.Fatalf("NewTempoSyncDelay: %v", err)
	}

	d.SetTempo(1000)
	if got := d.Tempo(); got != maxTempoBPM {
		t.Fatalf("expected tempo clamped to %f, got %f", maxTempoBPM, got)
	}

	d.SetTempo(5)
	if got := d.Tempo(); got != minTempoBPM {
		t.Fatalf("expected tempo clamped to %f, got %f", minTempoBPM, got)
	}
}

func TestTapTempoMedian(t *testing.T) {
	d, err := NewTempoSyncDelay(44100, WithTempoDivision("1/4"))
	if err != nil {
		t.Fatalf("NewTempoSyncDelay: %v", err)
	}

	// Even taps at 0.5 s => 120 BPM.
	if got := d.TapTempo([]float64{0, 0.5, 1.0, 1.5, 2.0}); math.Abs(got-120) > 1e-9 {
		t.Fatalf("even taps: got %f BPM, want 120", got)
	}

	if got := d.Time(); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("tap tempo should retime the delay, got %f", got)
	}

	// One wild interval does not move the median.
	if got := d.TapTempo([]float64{0, 0.5, 1.0, 1.5, 20.0}); math.Abs(got-120) > 1e-9 {
		t.Fatalf("outlier taps: got %f BPM, want 120", got)
	}
}

func TestTapTempoRejectsImplausibleTaps(t *testing.T) {
	d, err := NewTempoSyncDelay(44100, WithTempoBPM(100))
	if err != nil {
		t.Fatalf("NewTempoSyncDelay: %v", err)
	}

	for _, taps := range [][]float64{
		nil,
		{1.0},
		{0, 0.01},
		{0, 10, 20},
	} {
		if got := d.TapTempo(taps); got != 0 {
			t.Fatalf("taps %v: expected rejection, got %f BPM", taps, got)
		}

		if got := d.Tempo(); got != 100 {
			t.Fatalf("taps %v: tempo should stay at 100, got %f", taps, got)
		}
	}
}

func TestTempoSyncHumanizeStaysFinite(t *testing.T) {
	d, err := NewTempoSyncDelay(44100,
		WithTempoBPM(120),
		WithTempoDivision("1/8"),
		WithTempoFeedback(0.6),
		WithTempoMix(0.5),
		WithTempoHumanize(1),
	)
	if err != nil {
		t.Fatalf("NewTempoSyncDelay: %v", err)
	}

	if got := d.Humanize(); got != 1 {
		t.Fatalf("expected humanize 1, got %f", got)
	}

	for i := 0; i < 44100; i++ {
		out := d.ProcessSample(math.Sin(2 * math.Pi * 440 * float64(i) / 44100))
		if math.IsNaN(out) || math.IsInf(out, 0) {
			t.Fatalf("sample %d: output is not finite: %f", i, out)
		}
	}
}

func TestTempoSyncImpulseTiming(t *testing.T) {
	const sampleRate = 1000.0

	d, err := NewTempoSyncDelay(sampleRate,
		WithTempoBPM(120),
		WithTempoDivision("1/8"),
		WithTempoFeedback(0),
		WithTempoMix(1),
	)
	if err != nil {
		t.Fatalf("NewTempoSyncDelay: %v", err)
	}

	want := int(math.Round(0.25 * sampleRate))

	for i := 0; i < 2*want; i++ {
		input := 0.0
		if i == 0 {
			input = 1.0
		}

		out := d.ProcessSample(input)

		if i == want {
			if math.Abs(out-1) > 1e-12 {
				t.Fatalf("sample %d: expected echo 1.0, got %f", i, out)
			}
		} else if math.Abs(out) > 1e-12 {
			t.Fatalf("sample %d: expected silence, got %f", i, out)
		}
	}
}
