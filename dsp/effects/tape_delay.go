package effects

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-echo/dsp/core"
	"github.com/cwbudde/algo-echo/dsp/delay"
)

const (
	defaultTapeSaturation = 0.3
	defaultTapeDamping    = 0.4
	defaultTapeNoiseLevel = 0.0002
	defaultTapeSpeed      = 1.0
	defaultWowRateHz      = 0.5
	defaultWowDepth       = 0.002
	defaultFlutterRateHz  = 8.0
	defaultFlutterDepth   = 0.0005

	minTapeSpeed      = 0.25
	maxTapeSpeed      = 4.0
	maxTapeNoiseLevel = 0.01
	maxWowDepth       = 0.05
	maxFlutterDepth   = 0.02

	// Damping maps [0, 1] onto a one-pole smoothing coefficient;
	// the floor keeps the filter from freezing entirely.
	dampingCoeffSpan = 0.85
)

// TapeDelayOption mutates tape delay construction parameters.
type TapeDelayOption func(*tapeDelayConfig)

type tapeDelayConfig struct {
	timeSeconds float64
	feedback    float64
	mix         float64
	maxTime     float64
	saturation  float64
	damping     float64
	noiseLevel  float64
	tapeSpeed   float64
	seed        int64
}

func defaultTapeDelayConfig() tapeDelayConfig {
	return tapeDelayConfig{
		timeSeconds: defaultDelayTimeSeconds,
		feedback:    defaultDelayFeedback,
		mix:         defaultDelayMix,
		maxTime:     defaultMaxDelayTime,
		saturation:  defaultTapeSaturation,
		damping:     defaultTapeDamping,
		noiseLevel:  defaultTapeNoiseLevel,
		tapeSpeed:   defaultTapeSpeed,
		seed:        1,
	}
}

// WithTapeDelayTime sets the initial delay time in seconds.
func WithTapeDelayTime(seconds float64) TapeDelayOption {
	return func(cfg *tapeDelayConfig) {
		cfg.timeSeconds = core.ClampOr(seconds, minDelayTimeSeconds, cfg.maxTime, cfg.timeSeconds)
	}
}

// WithTapeFeedback sets the initial feedback amount in [0, 0.9].
func WithTapeFeedback(feedback float64) TapeDelayOption {
	return func(cfg *tapeDelayConfig) {
		cfg.feedback = core.ClampOr(feedback, 0, maxDelayFeedback, cfg.feedback)
	}
}

// WithTapeMix sets the initial wet amount in [0, 1].
func WithTapeMix(mix float64) TapeDelayOption {
	return func(cfg *tapeDelayConfig) {
		cfg.mix = core.ClampOr(mix, 0, 1, cfg.mix)
	}
}

// WithTapeMaxDelayTime fixes the maximum delay time in seconds. The tape
// speed floor is budgeted in, so slowing the transport never exceeds
// capacity.
func WithTapeMaxDelayTime(seconds float64) TapeDelayOption {
	return func(cfg *tapeDelayConfig) {
		cfg.maxTime = core.ClampOr(seconds, minMaxDelayTime, maxMaxDelayTime, cfg.maxTime)
	}
}

// WithTapeSaturation sets the input saturation amount in [0, 1].
func WithTapeSaturation(saturation float64) TapeDelayOption {
	return func(cfg *tapeDelayConfig) {
		cfg.saturation = core.ClampOr(saturation, 0, 1, cfg.saturation)
	}
}

// WithTapeDamping sets the high-frequency damping of repeats in [0, 1].
func WithTapeDamping(damping float64) TapeDelayOption {
	return func(cfg *tapeDelayConfig) {
		cfg.damping = core.ClampOr(damping, 0, 1, cfg.damping)
	}
}

// WithTapeNoise sets the additive noise floor level in [0, 0.01].
func WithTapeNoise(level float64) TapeDelayOption {
	return func(cfg *tapeDelayConfig) {
		cfg.noiseLevel = core.ClampOr(level, 0, maxTapeNoiseLevel, cfg.noiseLevel)
	}
}

// WithTapeSpeed sets the transport speed in [0.25, 4]. The effective delay
// time is the configured time divided by the speed.
func WithTapeSpeed(speed float64) TapeDelayOption {
	return func(cfg *tapeDelayConfig) {
		cfg.tapeSpeed = core.ClampOr(speed, minTapeSpeed, maxTapeSpeed, cfg.tapeSpeed)
	}
}

// WithTapeSeed sets the deterministic seed of the noise source.
func WithTapeSeed(seed int64) TapeDelayOption {
	return func(cfg *tapeDelayConfig) {
		cfg.seed = seed
	}
}

// TapeDelay is a feedback delay voiced like an analog tape echo: the input
// is soft-saturated before it enters the feedback path, repeats lose high
// frequencies through a one-pole damper, a low-level noise floor rides the
// loop, and two independent sine phases (slow wow, fast flutter) modulate
// the read position. Changing the tape speed scales the effective delay
// time inversely. Not safe for concurrent use.
type TapeDelay struct {
	sampleRate  float64
	maxTime     float64
	timeSeconds float64
	feedback    float64
	mix         float64

	saturation float64
	damping    float64
	noiseLevel float64
	tapeSpeed  float64

	wowRateHz    float64
	wowDepth     float64
	flutterRate  float64
	flutterDepth float64
	wowPhase     float64
	flutterPhase float64

	delaySamples    float64
	maxDelaySamples float64
	toneState       float64
	line            *delay.Line
	rng             *rand.Rand
	seed            int64
}

// NewTapeDelay creates a tape-style delay with practical defaults.
func NewTapeDelay(sampleRate float64, opts ...TapeDelayOption) (*TapeDelay, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("tape delay sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultTapeDelayConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	// Capacity covers the slowest transport speed so SetTapeSpeed never
	// needs more room than was allocated.
	size := int(math.Ceil(cfg.maxTime/minTapeSpeed*sampleRate)) + lineGuardSamples

	line, err := delay.New(size)
	if err != nil {
		return nil, err
	}

	t := &TapeDelay{
		sampleRate:      sampleRate,
		maxTime:         cfg.maxTime,
		feedback:        cfg.feedback,
		mix:             cfg.mix,
		saturation:      cfg.saturation,
		damping:         cfg.damping,
		noiseLevel:      cfg.noiseLevel,
		tapeSpeed:       cfg.tapeSpeed,
		wowRateHz:       defaultWowRateHz,
		wowDepth:        defaultWowDepth,
		flutterRate:     defaultFlutterRateHz,
		flutterDepth:    defaultFlutterDepth,
		maxDelaySamples: float64(size - lineGuardSamples),
		line:            line,
		rng:             rand.New(rand.NewSource(cfg.seed)),
		seed:            cfg.seed,
	}
	t.SetTime(cfg.timeSeconds)

	return t, nil
}

// SetTime sets the delay time in seconds, clamped to (0, max delay time].
// The effective read offset also depends on the tape speed.
func (t *TapeDelay) SetTime(seconds float64) {
	t.timeSeconds = core.ClampOr(seconds, minDelayTimeSeconds, t.maxTime, t.timeSeconds)
	t.updateDelaySamples()
}

// SetFeedback sets the feedback amount, clamped to [0, 0.9].
func (t *TapeDelay) SetFeedback(feedback float64) {
	t.feedback = core.ClampOr(feedback, 0, maxDelayFeedback, t.feedback)
}

// SetMix sets the wet amount, clamped to [0, 1].
func (t *TapeDelay) SetMix(mix float64) {
	t.mix = core.ClampOr(mix, 0, 1, t.mix)
}

// SetSaturation sets the input saturation amount, clamped to [0, 1].
func (t *TapeDelay) SetSaturation(saturation float64) {
	t.saturation = core.ClampOr(saturation, 0, 1, t.saturation)
}

// SetDamping sets high-frequency damping of the repeats, clamped to [0, 1].
func (t *TapeDelay) SetDamping(damping float64) {
	t.damping = core.ClampOr(damping, 0, 1, t.damping)
}

// SetNoiseLevel sets the additive noise floor, clamped to [0, 0.01].
func (t *TapeDelay) SetNoiseLevel(level float64) {
	t.noiseLevel = core.ClampOr(level, 0, maxTapeNoiseLevel, t.noiseLevel)
}

// SetTapeSpeed sets the transport speed, clamped to [0.25, 4]. The
// effective delay time scales as time/speed.
func (t *TapeDelay) SetTapeSpeed(speed float64) {
	t.tapeSpeed = core.ClampOr(speed, minTapeSpeed, maxTapeSpeed, t.tapeSpeed)
	t.updateDelaySamples()
}

// SetWow sets the slow transport modulation: rate in Hz and depth as a
// fraction of the base delay, clamped to [0, 0.05].
func (t *TapeDelay) SetWow(rateHz, depth float64) {
	t.wowRateHz = core.ClampOr(rateHz, 0, maxModulationRateHz, t.wowRateHz)
	t.wowDepth = core.ClampOr(depth, 0, maxWowDepth, t.wowDepth)
}

// SetFlutter sets the fast transport modulation: rate in Hz and depth as a
// fraction of the base delay, clamped to [0, 0.02].
func (t *TapeDelay) SetFlutter(rateHz, depth float64) {
	t.flutterRate = core.ClampOr(rateHz, 0, maxModulationRateHz, t.flutterRate)
	t.flutterDepth = core.ClampOr(depth, 0, maxFlutterDepth, t.flutterDepth)
}

// Reset clears the delay line, filter and modulation state, and reseeds the
// noise source.
func (t *TapeDelay) Reset() {
	t.line.Reset()
	t.toneState = 0
	t.wowPhase = 0
	t.flutterPhase = 0
	t.rng = rand.New(rand.NewSource(t.seed))
}

// ProcessSample processes one sample.
func (t *TapeDelay) ProcessSample(input float64) float64 {
	var delayed float64
	if t.wowDepth > 0 || t.flutterDepth > 0 {
		delayed = t.line.ReadFractional(t.modulatedDelaySamples())
	} else {
		delayed = t.line.Read(int(t.delaySamples))
	}

	t.advancePhases()

	// One-pole damper: repeats lose top end on every pass.
	alpha := 1 - dampingCoeffSpan*t.damping
	t.toneState += alpha * (delayed - t.toneState)
	damped := t.toneState

	saturated := t.saturate(input)
	noise := (t.rng.Float64()*2 - 1) * t.noiseLevel

	t.line.Write(core.FlushDenormals(saturated + t.feedback*damped + noise))

	return input*(1-t.mix) + damped*t.mix
}

// ProcessInPlace applies the tape delay to buf in place.
func (t *TapeDelay) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = t.ProcessSample(buf[i])
	}
}

// SampleRate returns the sample rate in Hz.
func (t *TapeDelay) SampleRate() float64 { return t.sampleRate }

// Time returns the configured delay time in seconds (before speed scaling).
func (t *TapeDelay) Time() float64 { return t.timeSeconds }

// Feedback returns the feedback amount in [0, 0.9].
func (t *TapeDelay) Feedback() float64 { return t.feedback }

// Mix returns the wet amount in [0, 1].
func (t *TapeDelay) Mix() float64 { return t.mix }

// Saturation returns the input saturation amount in [0, 1].
func (t *TapeDelay) Saturation() float64 { return t.saturation }

// Damping returns the high-frequency damping amount in [0, 1].
func (t *TapeDelay) Damping() float64 { return t.damping }

// NoiseLevel returns the additive noise floor level.
func (t *TapeDelay) NoiseLevel() float64 { return t.noiseLevel }

// TapeSpeed returns the transport speed in [0.25, 4].
func (t *TapeDelay) TapeSpeed() float64 { return t.tapeSpeed }

// Wow returns the wow rate in Hz and depth fraction.
func (t *TapeDelay) Wow() (rateHz, depth float64) {
	return t.wowRateHz, t.wowDepth
}

// Flutter returns the flutter rate in Hz and depth fraction.
func (t *TapeDelay) Flutter() (rateHz, depth float64) {
	return t.flutterRate, t.flutterDepth
}

// CurrentDelaySamples returns the effective unmodulated read offset in
// samples, after tape speed scaling.
func (t *TapeDelay) CurrentDelaySamples() float64 { return t.delaySamples }

func (t *TapeDelay) updateDelaySamples() {
	effective := t.timeSeconds / t.tapeSpeed
	t.delaySamples = core.Clamp(math.Round(effective*t.sampleRate), 1, t.maxDelaySamples)
}

func (t *TapeDelay) modulatedDelaySamples() float64 {
	base := t.delaySamples
	offset := base * (t.wowDepth*math.Sin(2*math.Pi*t.wowPhase) +
		t.flutterDepth*math.Sin(2*math.Pi*t.flutterPhase))

	return core.Clamp(base+offset, 1, t.maxDelaySamples)
}

func (t *TapeDelay) advancePhases() {
	t.wowPhase += t.wowRateHz / t.sampleRate
	if t.wowPhase >= 1 {
		t.wowPhase -= 1
	}

	t.flutterPhase += t.flutterRate / t.sampleRate
	if t.flutterPhase >= 1 {
		t.flutterPhase -= 1
	}
}

func (t *TapeDelay) saturate(x float64) float64 {
	if t.saturation <= 0 {
		return x
	}

	k := 1 + 3*t.saturation
	return mathTanh(x*k) / k
}
