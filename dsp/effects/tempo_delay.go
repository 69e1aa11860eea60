package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-echo/dsp/core"
)

const (
	defaultTempoBPM      = 120.0
	defaultTempoDivision = "1/4"

	// Swing shifts the delay by up to half its nominal length. Dotted
	// divisions amplify the shift; triplets already imply their own feel
	// and skip swing entirely.
	swingAdjustmentSpan = 0.5
	dottedSwingBoost    = 1.5

	// Humanize adds a slow sinusoidal jitter to the read offset,
	// independent of the tape wow/flutter mechanism.
	humanizeRateHz    = 0.3
	humanizeMaxJitter = 0.002 // seconds at humanize = 1
)

// TempoSyncOption mutates tempo-synced delay construction parameters.
type TempoSyncOption func(*tempoSyncConfig)

type tempoSyncConfig struct {
	bpm      float64
	division string
	swing    float64
	humanize float64
	feedback float64
	mix      float64
	maxTime  float64
}

func defaultTempoSyncConfig() tempoSyncConfig {
	return tempoSyncConfig{
		bpm:      defaultTempoBPM,
		division: defaultTempoDivision,
		feedback: defaultDelayFeedback,
		mix:      defaultDelayMix,
		maxTime:  defaultMaxDelayTime,
	}
}

// WithTempoBPM sets the initial tempo in [20, 300] BPM.
func WithTempoBPM(bpm float64) TempoSyncOption {
	return func(cfg *tempoSyncConfig) {
		cfg.bpm = core.ClampOr(bpm, minTempoBPM, maxTempoBPM, cfg.bpm)
	}
}

// WithTempoDivision sets the initial note division (e.g. "1/8", "1/4.",
// "1/8T"). Unknown divisions are ignored.
func WithTempoDivision(division string) TempoSyncOption {
	return func(cfg *tempoSyncConfig) {
		if _, ok := DivisionBeats(division); ok {
			cfg.division = division
		}
	}
}

// WithTempoSwing sets the swing amount in [0, 1].
func WithTempoSwing(swing float64) TempoSyncOption {
	return func(cfg *tempoSyncConfig) {
		cfg.swing = core.ClampOr(swing, 0, 1, cfg.swing)
	}
}

// WithTempoHumanize sets the humanize jitter amount in [0, 1].
func WithTempoHumanize(humanize float64) TempoSyncOption {
	return func(cfg *tempoSyncConfig) {
		cfg.humanize = core.ClampOr(humanize, 0, 1, cfg.humanize)
	}
}

// WithTempoFeedback sets the feedback amount in [0, 0.9].
func WithTempoFeedback(feedback float64) TempoSyncOption {
	return func(cfg *tempoSyncConfig) {
		cfg.feedback = core.ClampOr(feedback, 0, maxDelayFeedback, cfg.feedback)
	}
}

// WithTempoMix sets the wet amount in [0, 1].
func WithTempoMix(mix float64) TempoSyncOption {
	return func(cfg *tempoSyncConfig) {
		cfg.mix = core.ClampOr(mix, 0, 1, cfg.mix)
	}
}

// WithTempoMaxDelayTime fixes the maximum delay time in seconds. Long
// divisions at slow tempos clamp against this.
func WithTempoMaxDelayTime(seconds float64) TempoSyncOption {
	return func(cfg *tempoSyncConfig) {
		cfg.maxTime = core.ClampOr(seconds, minMaxDelayTime, maxMaxDelayTime, cfg.maxTime)
	}
}

// TempoSyncDelay derives its delay time from a tempo and a note division:
//
//	delay = (60 / bpm) * divisionBeats * (1 + swingAdjustment)
//
// Swing is skipped for triplet divisions and amplified for dotted ones.
// A humanize control adds a small continuous jitter to the read offset, and
// TapTempo derives the tempo from tapped timestamps. Not safe for
// concurrent use.
type TempoSyncDelay struct {
	delay *Delay

	bpm      float64
	division string
	swing    float64
	humanize float64
}

// NewTempoSyncDelay creates a tempo-synced delay with practical defaults.
func NewTempoSyncDelay(sampleRate float64, opts ...TempoSyncOption) (*TempoSyncDelay, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("tempo-synced delay sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultTempoSyncConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	base, err := NewDelay(sampleRate,
		WithMaxDelayTime(cfg.maxTime),
		WithDelayFeedback(cfg.feedback),
		WithDelayMix(cfg.mix),
	)
	if err != nil {
		return nil, err
	}

	t := &TempoSyncDelay{
		delay:    base,
		bpm:      cfg.bpm,
		division: cfg.division,
		swing:    cfg.swing,
	}
	t.updateTime()
	t.SetHumanize(cfg.humanize)

	return t, nil
}

// SetTempo sets the tempo, clamped to [20, 300] BPM.
func (t *TempoSyncDelay) SetTempo(bpm float64) {
	t.bpm = core.ClampOr(bpm, minTempoBPM, maxTempoBPM, t.bpm)
	t.updateTime()
}

// SetDivision sets the note division; unknown division strings are ignored.
func (t *TempoSyncDelay) SetDivision(division string) {
	if _, ok := DivisionBeats(division); !ok {
		return
	}

	t.division = division
	t.updateTime()
}

// SetSwing sets the swing amount, clamped to [0, 1].
func (t *TempoSyncDelay) SetSwing(swing float64) {
	t.swing = core.ClampOr(swing, 0, 1, t.swing)
	t.updateTime()
}

// SetHumanize sets the humanize jitter amount, clamped to [0, 1].
func (t *TempoSyncDelay) SetHumanize(humanize float64) {
	t.humanize = core.ClampOr(humanize, 0, 1, t.humanize)

	depthSamples := t.humanize * humanizeMaxJitter * t.delay.SampleRate()
	t.delay.SetModulation(humanizeRateHz, depthSamples)
}

// SetFeedback sets the feedback amount, clamped to [0, 0.9].
func (t *TempoSyncDelay) SetFeedback(feedback float64) {
	t.delay.SetFeedback(feedback)
}

// SetMix sets the wet amount, clamped to [0, 1].
func (t *TempoSyncDelay) SetMix(mix float64) {
	t.delay.SetMix(mix)
}

// TapTempo derives the tempo from tap timestamps in seconds: the median of
// consecutive intervals inside the plausible window [0.1 s, 4 s]. On success
// the tempo is applied and the derived BPM returned; 0 means the taps held
// no plausible interval and nothing changed.
func (t *TempoSyncDelay) TapTempo(taps []float64) float64 {
	bpm := tapTempoBPM(taps)
	if bpm <= 0 {
		return 0
	}

	t.SetTempo(bpm)

	return t.bpm
}

// ProcessSample processes one sample.
func (t *TempoSyncDelay) ProcessSample(input float64) float64 {
	return t.delay.ProcessSample(input)
}

// ProcessInPlace applies the delay to buf in place.
func (t *TempoSyncDelay) ProcessInPlace(buf []float64) {
	t.delay.ProcessInPlace(buf)
}

// Reset clears the delay state.
func (t *TempoSyncDelay) Reset() {
	t.delay.Reset()
}

// SampleRate returns the sample rate in Hz.
func (t *TempoSyncDelay) SampleRate() float64 { return t.delay.SampleRate() }

// Tempo returns the tempo in BPM.
func (t *TempoSyncDelay) Tempo() float64 { return t.bpm }

// Division returns the note division.
func (t *TempoSyncDelay) Division() string { return t.division }

// Swing returns the swing amount in [0, 1].
func (t *TempoSyncDelay) Swing() float64 { return t.swing }

// Humanize returns the humanize jitter amount in [0, 1].
func (t *TempoSyncDelay) Humanize() float64 { return t.humanize }

// Feedback returns the feedback amount in [0, 0.9].
func (t *TempoSyncDelay) Feedback() float64 { return t.delay.Feedback() }

// Mix returns the wet amount in [0, 1].
func (t *TempoSyncDelay) Mix() float64 { return t.delay.Mix() }

// Time returns the derived delay time in seconds.
func (t *TempoSyncDelay) Time() float64 { return t.delay.Time() }

func (t *TempoSyncDelay) updateTime() {
	beats, ok := DivisionBeats(t.division)
	if !ok {
		return
	}

	adjustment := t.swing * swingAdjustmentSpan

	switch {
	case isTripletDivision(t.division):
		adjustment = 0
	case isDottedDivision(t.division):
		adjustment *= dottedSwingBoost
	}

	t.delay.SetTime(60 / t.bpm * beats * (1 + adjustment))
}
