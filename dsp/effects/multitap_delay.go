package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-echo/dsp/core"
	"github.com/cwbudde/algo-echo/dsp/delay"
)

const (
	maxTapCount = 16

	defaultMultiTapFeedback = 0.3
	defaultMultiTapMix      = 0.5

	// Constant-power pan: gains are sqrt(2)/2 * (1 -/+ pan).
	panGainScale = math.Sqrt2 / 2

	// Default preset used by SyncTapsToTempo: each later tap is quieter,
	// and taps alternate sides.
	tempoTapLevelDecay = 0.8
	tempoTapPanSpread  = 0.5
)

// Tap is one delay voice of a MultiTapDelay: an independent delay line with
// its own timing, level, and stereo position. Every tap is written with the
// same shared feedback signal, so each accumulates its own feedback history.
type Tap struct {
	line *delay.Line

	delaySeconds float64
	delaySamples int
	level        float64
	pan          float64
	gainL        float64
	gainR        float64
}

// Delay returns the tap delay time in seconds.
func (t *Tap) Delay() float64 { return t.delaySeconds }

// Level returns the tap level in [0, 1].
func (t *Tap) Level() float64 { return t.level }

// Pan returns the tap pan position in [-1, 1].
func (t *Tap) Pan() float64 { return t.pan }

func (t *Tap) updatePanGains() {
	t.gainL = panGainScale * (1 - t.pan)
	t.gainR = panGainScale * (1 + t.pan)
}

// MultiTapOption mutates multi-tap delay construction parameters.
type MultiTapOption func(*multiTapConfig)

type multiTapConfig struct {
	feedback float64
	mix      float64
	maxTime  float64
}

func defaultMultiTapConfig() multiTapConfig {
	return multiTapConfig{
		feedback: defaultMultiTapFeedback,
		mix:      defaultMultiTapMix,
		maxTime:  defaultMaxDelayTime,
	}
}

// WithMultiTapFeedback sets the shared feedback amount in [0, 0.9].
func WithMultiTapFeedback(feedback float64) MultiTapOption {
	return func(cfg *multiTapConfig) {
		cfg.feedback = core.ClampOr(feedback, 0, maxDelayFeedback, cfg.feedback)
	}
}

// WithMultiTapMix sets the wet amount in [0, 1].
func WithMultiTapMix(mix float64) MultiTapOption {
	return func(cfg *multiTapConfig) {
		cfg.mix = core.ClampOr(mix, 0, 1, cfg.mix)
	}
}

// WithMultiTapMaxDelayTime fixes the per-tap maximum delay time in seconds.
func WithMultiTapMaxDelayTime(seconds float64) MultiTapOption {
	return func(cfg *multiTapConfig) {
		cfg.maxTime = core.ClampOr(seconds, minMaxDelayTime, maxMaxDelayTime, cfg.maxTime)
	}
}

// MultiTapDelay renders an ordered set of taps from a mono input into a
// stereo output. Each tap owns its own delay line; after all taps are read,
// one feedback sample computed from the combined output is written into
// every tap line. Insertion order defines rendering order; all taps sum.
//
// Adding and removing taps allocates and must stay off the audio thread;
// the per-sample path is allocation free. Not safe for concurrent use.
type MultiTapDelay struct {
	sampleRate float64
	maxTime    float64
	feedback   float64
	mix        float64

	taps            []*Tap
	maxDelaySamples int
	lineSize        int
}

// NewMultiTapDelay creates an empty multi-tap delay; add taps with AddTap or
// SyncTapsToTempo.
func NewMultiTapDelay(sampleRate float64, opts ...MultiTapOption) (*MultiTapDelay, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("multi-tap delay sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultMultiTapConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	size := int(math.Ceil(cfg.maxTime*sampleRate)) + lineGuardSamples

	return &MultiTapDelay{
		sampleRate:      sampleRate,
		maxTime:         cfg.maxTime,
		feedback:        cfg.feedback,
		mix:             cfg.mix,
		taps:            make([]*Tap, 0, maxTapCount),
		maxDelaySamples: size - lineGuardSamples,
		lineSize:        size,
	}, nil
}

// AddTap appends a tap with the given delay time in seconds, level in
// [0, 1], and pan in [-1, 1]. All values are clamped. It reports whether the
// tap was added; false means the tap limit was reached.
func (m *MultiTapDelay) AddTap(delaySeconds, level, pan float64) bool {
	if len(m.taps) >= maxTapCount {
		return false
	}

	line, err := delay.New(m.lineSize)
	if err != nil {
		return false
	}

	tap := &Tap{line: line}
	m.taps = append(m.taps, tap)

	idx := len(m.taps) - 1
	m.SetTapDelay(idx, delaySeconds)
	m.SetTapLevel(idx, level)
	m.SetTapPan(idx, pan)

	return true
}

// RemoveTap removes the tap at index; out-of-range indices are ignored.
func (m *MultiTapDelay) RemoveTap(index int) {
	if index < 0 || index >= len(m.taps) {
		return
	}

	m.taps = append(m.taps[:index], m.taps[index+1:]...)
}

// ClearTaps removes every tap.
func (m *MultiTapDelay) ClearTaps() {
	m.taps = m.taps[:0]
}

// TapCount returns the number of taps.
func (m *MultiTapDelay) TapCount() int { return len(m.taps) }

// TapAt returns the tap at index, or nil when out of range.
func (m *MultiTapDelay) TapAt(index int) *Tap {
	if index < 0 || index >= len(m.taps) {
		return nil
	}

	return m.taps[index]
}

// SetTapDelay sets the delay time of one tap in seconds, clamped to
// (0, max delay time]. Out-of-range indices are ignored.
func (m *MultiTapDelay) SetTapDelay(index int, seconds float64) {
	if index < 0 || index >= len(m.taps) {
		return
	}

	tap := m.taps[index]
	tap.delaySeconds = core.ClampOr(seconds, minDelayTimeSeconds, m.maxTime, tap.delaySeconds)
	tap.delaySamples = int(core.Clamp(math.Round(tap.delaySeconds*m.sampleRate), 1, float64(m.maxDelaySamples)))
}

// SetTapLevel sets the level of one tap, clamped to [0, 1].
// Out-of-range indices are ignored.
func (m *MultiTapDelay) SetTapLevel(index int, level float64) {
	if index < 0 || index >= len(m.taps) {
		return
	}

	tap := m.taps[index]
	tap.level = core.ClampOr(level, 0, 1, tap.level)
}

// SetTapPan sets the pan of one tap, clamped to [-1, 1], and recomputes the
// constant-power channel gains. Out-of-range indices are ignored.
func (m *MultiTapDelay) SetTapPan(index int, pan float64) {
	if index < 0 || index >= len(m.taps) {
		return
	}

	tap := m.taps[index]
	tap.pan = core.ClampOr(pan, -1, 1, tap.pan)
	tap.updatePanGains()
}

// SetFeedback sets the shared feedback amount, clamped to [0, 0.9].
func (m *MultiTapDelay) SetFeedback(feedback float64) {
	m.feedback = core.ClampOr(feedback, 0, maxDelayFeedback, m.feedback)
}

// SetMix sets the wet amount, clamped to [0, 1].
func (m *MultiTapDelay) SetMix(mix float64) {
	m.mix = core.ClampOr(mix, 0, 1, m.mix)
}

// SyncTapsToTempo replaces all taps with one tap per note division, timed to
// the given tempo. Levels decrease per tap and pans alternate sides — a
// musical starting preset, not a constraint. Unknown division strings are
// skipped.
func (m *MultiTapDelay) SyncTapsToTempo(bpm float64, divisions []string) {
	bpm = core.ClampOr(bpm, minTempoBPM, maxTempoBPM, 120)

	m.ClearTaps()

	level := 1.0
	side := 1.0

	for _, division := range divisions {
		beats, ok := DivisionBeats(division)
		if !ok {
			continue
		}

		if !m.AddTap(60/bpm*beats, level, tempoTapPanSpread*side) {
			break
		}

		level *= tempoTapLevelDecay
		side = -side
	}
}

// ProcessSample renders one mono input sample into a stereo output pair.
func (m *MultiTapDelay) ProcessSample(input float64) (left, right float64) {
	var sumL, sumR float64

	for _, tap := range m.taps {
		d := tap.line.Read(tap.delaySamples)
		sumL += d * tap.level * tap.gainL
		sumR += d * tap.level * tap.gainR
	}

	// One feedback sample from the combined stereo output feeds every tap,
	// so the taps share a single regeneration path. The average over taps
	// keeps the loop gain below unity regardless of how many taps sum.
	mono := (sumL + sumR) * 0.5
	if n := len(m.taps); n > 0 {
		mono /= float64(n)
	}

	fb := core.FlushDenormals(input + m.feedback*mono)

	for _, tap := range m.taps {
		tap.line.Write(fb)
	}

	dry := 1 - m.mix

	return input*dry + sumL*m.mix, input*dry + sumR*m.mix
}

// Process renders a mono input buffer into left/right output buffers.
// All three buffers must have equal length.
func (m *MultiTapDelay) Process(input, outLeft, outRight []float64) error {
	if len(input) != len(outLeft) || len(input) != len(outRight) {
		return fmt.Errorf("multi-tap delay: buffers must have equal length: in=%d left=%d right=%d",
			len(input), len(outLeft), len(outRight))
	}

	for i := range input {
		outLeft[i], outRight[i] = m.ProcessSample(input[i])
	}

	return nil
}

// Reset clears every tap line.
func (m *MultiTapDelay) Reset() {
	for _, tap := range m.taps {
		tap.line.Reset()
	}
}

// SampleRate returns the sample rate in Hz.
func (m *MultiTapDelay) SampleRate() float64 { return m.sampleRate }

// Feedback returns the shared feedback amount in [0, 0.9].
func (m *MultiTapDelay) Feedback() float64 { return m.feedback }

// Mix returns the wet amount in [0, 1].
func (m *MultiTapDelay) Mix() float64 { return m.mix }

// MaxTime returns the fixed per-tap maximum delay time in seconds.
func (m *MultiTapDelay) MaxTime() float64 { return m.maxTime }
