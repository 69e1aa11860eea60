package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-echo/dsp/core"
	"github.com/cwbudde/algo-echo/dsp/delay"
)

const (
	defaultDelayTimeSeconds = 0.25
	defaultDelayFeedback    = 0.35
	defaultDelayMix         = 0.25
	defaultMaxDelayTime     = 2.0

	minDelayTimeSeconds = 0.001
	maxDelayFeedback    = 0.9
	minMaxDelayTime     = 0.01
	maxMaxDelayTime     = 30.0
	maxModulationRateHz = 20.0

	// Guard samples beyond the maximum delay so fractional reads always
	// have interpolation neighbors.
	lineGuardSamples = 4
)

// DelayOption mutates delay construction parameters.
type DelayOption func(*delayConfig)

type delayConfig struct {
	timeSeconds float64
	feedback    float64
	mix         float64
	maxTime     float64
	modRateHz   float64
	modDepth    float64
}

func defaultDelayConfig() delayConfig {
	return delayConfig{
		timeSeconds: defaultDelayTimeSeconds,
		feedback:    defaultDelayFeedback,
		mix:         defaultDelayMix,
		maxTime:     defaultMaxDelayTime,
	}
}

// WithDelayTime sets the initial delay time in seconds.
func WithDelayTime(seconds float64) DelayOption {
	return func(cfg *delayConfig) {
		cfg.timeSeconds = core.ClampOr(seconds, minDelayTimeSeconds, cfg.maxTime, cfg.timeSeconds)
	}
}

// WithDelayFeedback sets the initial feedback amount in [0, 0.9].
func WithDelayFeedback(feedback float64) DelayOption {
	return func(cfg *delayConfig) {
		cfg.feedback = core.ClampOr(feedback, 0, maxDelayFeedback, cfg.feedback)
	}
}

// WithDelayMix sets the initial wet amount in [0, 1].
func WithDelayMix(mix float64) DelayOption {
	return func(cfg *delayConfig) {
		cfg.mix = core.ClampOr(mix, 0, 1, cfg.mix)
	}
}

// WithMaxDelayTime fixes the maximum delay time in seconds. The delay line
// is allocated once for this capacity; delay-time changes after construction
// only move the read offset and never reallocate.
func WithMaxDelayTime(seconds float64) DelayOption {
	return func(cfg *delayConfig) {
		cfg.maxTime = core.ClampOr(seconds, minMaxDelayTime, maxMaxDelayTime, cfg.maxTime)
	}
}

// WithDelayModulation sets the initial read-offset modulation: an LFO rate
// in Hz and a depth in samples. Zero rate or depth disables modulation.
func WithDelayModulation(rateHz, depthSamples float64) DelayOption {
	return func(cfg *delayConfig) {
		cfg.modRateHz = core.ClampOr(rateHz, 0, maxModulationRateHz, cfg.modRateHz)
		cfg.modDepth = core.ClampOr(depthSamples, 0, math.MaxFloat64, cfg.modDepth)
	}
}

// Delay is a feedback delay with dry/wet mix and optional sinusoidal
// modulation of the read offset (the mechanism chorus wobble and tape
// wow/flutter are built from).
//
// The delay line is allocated once at construction, sized by the maximum
// delay time, so no processing-path operation ever reallocates. Not safe for
// concurrent use.
type Delay struct {
	sampleRate  float64
	maxTime     float64
	timeSeconds float64
	feedback    float64
	mix         float64

	modRateHz float64
	modDepth  float64
	lfoPhase  float64

	delaySamples    float64
	maxDelaySamples float64
	line            *delay.Line
}

// NewDelay creates a delay with practical defaults.
func NewDelay(sampleRate float64, opts ...DelayOption) (*Delay, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("delay sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultDelayConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	size := int(math.Ceil(cfg.maxTime*sampleRate)) + lineGuardSamples

	line, err := delay.New(size)
	if err != nil {
		return nil, err
	}

	d := &Delay{
		sampleRate:      sampleRate,
		maxTime:         cfg.maxTime,
		feedback:        cfg.feedback,
		mix:             cfg.mix,
		maxDelaySamples: float64(size - lineGuardSamples),
		line:            line,
	}
	d.SetTime(cfg.timeSeconds)
	d.SetModulation(cfg.modRateHz, cfg.modDepth)

	return d, nil
}

// SetTime sets the delay time in seconds, clamped to
// (0, max delay time]. Only the logical read offset changes; the buffer is
// never reallocated.
func (d *Delay) SetTime(seconds float64) {
	d.timeSeconds = core.ClampOr(seconds, minDelayTimeSeconds, d.maxTime, d.timeSeconds)
	d.delaySamples = core.Clamp(math.Round(d.timeSeconds*d.sampleRate), 1, d.maxDelaySamples)
}

// SetFeedback sets the feedback amount, clamped to [0, 0.9]. The ceiling
// keeps every feedback topology bounded.
func (d *Delay) SetFeedback(feedback float64) {
	d.feedback = core.ClampOr(feedback, 0, maxDelayFeedback, d.feedback)
}

// SetMix sets the wet amount, clamped to [0, 1]. Dry is 1 - mix.
func (d *Delay) SetMix(mix float64) {
	d.mix = core.ClampOr(mix, 0, 1, d.mix)
}

// SetModulation sets the read-offset LFO rate in Hz and depth in samples.
// Either value at zero disables modulation.
func (d *Delay) SetModulation(rateHz, depthSamples float64) {
	d.modRateHz = core.ClampOr(rateHz, 0, maxModulationRateHz, d.modRateHz)
	d.modDepth = core.ClampOr(depthSamples, 0, d.maxDelaySamples, d.modDepth)
}

// Reset clears the delay line and the modulation phase.
func (d *Delay) Reset() {
	d.line.Reset()
	d.lfoPhase = 0
}

// ProcessSample processes one sample.
func (d *Delay) ProcessSample(input float64) float64 {
	var delayed float64
	if d.modRateHz > 0 && d.modDepth > 0 {
		delayed = d.line.ReadFractional(d.modulatedDelaySamples())
	} else {
		delayed = d.line.Read(int(d.delaySamples))
	}

	d.advancePhase()
	d.line.Write(core.FlushDenormals(input + d.feedback*delayed))

	return input*(1-d.mix) + delayed*d.mix
}

// ProcessInPlace applies the delay to buf in place.
func (d *Delay) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = d.ProcessSample(buf[i])
	}
}

// SampleRate returns the sample rate in Hz.
func (d *Delay) SampleRate() float64 { return d.sampleRate }

// Time returns the delay time in seconds.
func (d *Delay) Time() float64 { return d.timeSeconds }

// MaxTime returns the fixed maximum delay time in seconds.
func (d *Delay) MaxTime() float64 { return d.maxTime }

// Feedback returns the feedback amount in [0, 0.9].
func (d *Delay) Feedback() float64 { return d.feedback }

// Mix returns the wet amount in [0, 1].
func (d *Delay) Mix() float64 { return d.mix }

// Modulation returns the LFO rate in Hz and depth in samples.
func (d *Delay) Modulation() (rateHz, depthSamples float64) {
	return d.modRateHz, d.modDepth
}

// CurrentDelaySamples returns the unmodulated read offset in samples.
func (d *Delay) CurrentDelaySamples() float64 { return d.delaySamples }

func (d *Delay) modulatedDelaySamples() float64 {
	offset := d.modDepth * math.Sin(2*math.Pi*d.lfoPhase)
	return core.Clamp(d.delaySamples+offset, 1, d.maxDelaySamples)
}

func (d *Delay) advancePhase() {
	if d.modRateHz <= 0 {
		return
	}

	d.lfoPhase += d.modRateHz / d.sampleRate
	if d.lfoPhase >= 1 {
		d.lfoPhase -= 1
	}
}
