package effects

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/cwbudde/algo-echo/dsp/core"
)

const (
	defaultDistortionDrive = 0.5
	defaultDistortionMix   = 1.0
	defaultBitDepth        = 8
	defaultHoldProbability = 0.0

	minBitDepth = 1
	maxBitDepth = 16

	// All variants share one drive-to-gain convention so presets translate
	// between kinds.
	driveGainScale = 5.0

	minHardClipThreshold = 0.05
	fuzzClipThreshold    = 0.8
)

// DistortionKind selects the waveshaping function used by Distortion.
type DistortionKind int

const (
	DistortionNone DistortionKind = iota
	DistortionSoftClip
	DistortionHardClip
	DistortionTube
	DistortionFuzz
	DistortionBitCrush
	DistortionWaveshaper
)

// DistortionOption mutates distortion construction parameters.
type DistortionOption func(*distortionConfig)

type distortionConfig struct {
	kind            DistortionKind
	drive           float64
	mix             float64
	bitDepth        int
	holdProbability float64
	seed            int64
}

func defaultDistortionConfig() distortionConfig {
	return distortionConfig{
		kind:            DistortionSoftClip,
		drive:           defaultDistortionDrive,
		mix:             defaultDistortionMix,
		bitDepth:        defaultBitDepth,
		holdProbability: defaultHoldProbability,
		seed:            1,
	}
}

// WithDistortionKind selects the waveshaping kind.
func WithDistortionKind(kind DistortionKind) DistortionOption {
	return func(cfg *distortionConfig) {
		if kind >= DistortionNone && kind <= DistortionWaveshaper {
			cfg.kind = kind
		}
	}
}

// WithDistortionDrive sets the drive in [0, 1].
func WithDistortionDrive(drive float64) DistortionOption {
	return func(cfg *distortionConfig) {
		cfg.drive = core.ClampOr(drive, 0, 1, cfg.drive)
	}
}

// WithDistortionMix sets the dry/wet mix in [0, 1].
func WithDistortionMix(mix float64) DistortionOption {
	return func(cfg *distortionConfig) {
		cfg.mix = core.ClampOr(mix, 0, 1, cfg.mix)
	}
}

// WithBitDepth sets the bit-crush quantization depth in [1, 16].
func WithBitDepth(bitDepth int) DistortionOption {
	return func(cfg *distortionConfig) {
		cfg.bitDepth = int(core.Clamp(float64(bitDepth), minBitDepth, maxBitDepth))
	}
}

// WithHoldProbability sets the bit-crush sample-hold probability in [0, 1],
// emulating sample-rate reduction.
func WithHoldProbability(p float64) DistortionOption {
	return func(cfg *distortionConfig) {
		cfg.holdProbability = core.ClampOr(p, 0, 1, cfg.holdProbability)
	}
}

// WithDistortionSeed sets the deterministic seed of the sample-hold source.
func WithDistortionSeed(seed int64) DistortionOption {
	return func(cfg *distortionConfig) {
		cfg.seed = seed
	}
}

// Distortion is a per-sample waveshaper applied to feedback paths and full
// signals alike. Every kind is a pure function of the current sample except
// bit-crush, which carries one sample of hold state. Not safe for concurrent
// use.
type Distortion struct {
	sampleRate float64

	kind            DistortionKind
	drive           float64
	mix             float64
	bitDepth        int
	holdProbability float64

	quantLevels float64
	holdValue   float64
	rng         *rand.Rand
	seed        int64
}

// NewDistortion creates a distortion unit with practical defaults.
func NewDistortion(sampleRate float64, opts ...DistortionOption) (*Distortion, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("distortion sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultDistortionConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	d := &Distortion{
		sampleRate:      sampleRate,
		kind:            cfg.kind,
		drive:           cfg.drive,
		mix:             cfg.mix,
		bitDepth:        cfg.bitDepth,
		holdProbability: cfg.holdProbability,
		seed:            cfg.seed,
		rng:             rand.New(rand.NewSource(cfg.seed)),
	}
	d.updateQuantLevels()

	return d, nil
}

// SetKind selects the waveshaping kind. Unknown values are ignored.
func (d *Distortion) SetKind(kind DistortionKind) {
	if kind >= DistortionNone && kind <= DistortionWaveshaper {
		d.kind = kind
	}
}

// SetDrive sets the drive, clamped to [0, 1].
func (d *Distortion) SetDrive(drive float64) {
	d.drive = core.ClampOr(drive, 0, 1, d.drive)
}

// SetMix sets the dry/wet mix, clamped to [0, 1].
func (d *Distortion) SetMix(mix float64) {
	d.mix = core.ClampOr(mix, 0, 1, d.mix)
}

// SetBitDepth sets the bit-crush depth, clamped to [1, 16].
func (d *Distortion) SetBitDepth(bitDepth int) {
	d.bitDepth = int(core.Clamp(float64(bitDepth), minBitDepth, maxBitDepth))
	d.updateQuantLevels()
}

// SetHoldProbability sets the bit-crush sample-hold probability,
// clamped to [0, 1].
func (d *Distortion) SetHoldProbability(p float64) {
	d.holdProbability = core.ClampOr(p, 0, 1, d.holdProbability)
}

// Reset clears the sample-hold state and reseeds the hold source.
func (d *Distortion) Reset() {
	d.holdValue = 0
	d.rng = rand.New(rand.NewSource(d.seed))
}

// ProcessSample applies distortion to one sample: drive, waveshape, then
// blend with the dry input by mix.
func (d *Distortion) ProcessSample(input float64) float64 {
	if d.kind == DistortionNone {
		return input
	}

	x := input * (1 + d.drive*driveGainScale)
	wet := d.shapeSample(x)

	return input*(1-d.mix) + wet*d.mix
}

// ProcessInPlace applies distortion to buf in place.
func (d *Distortion) ProcessInPlace(buf []float64) {
	for i := range buf {
		buf[i] = d.ProcessSample(buf[i])
	}
}

// SampleRate returns the sample rate in Hz.
func (d *Distortion) SampleRate() float64 { return d.sampleRate }

// Kind returns the active waveshaping kind.
func (d *Distortion) Kind() DistortionKind { return d.kind }

// Drive returns the drive in [0, 1].
func (d *Distortion) Drive() float64 { return d.drive }

// Mix returns the dry/wet mix in [0, 1].
func (d *Distortion) Mix() float64 { return d.mix }

// BitDepth returns the bit-crush quantization depth.
func (d *Distortion) BitDepth() int { return d.bitDepth }

// HoldProbability returns the bit-crush sample-hold probability.
func (d *Distortion) HoldProbability() float64 { return d.holdProbability }

func (d *Distortion) shapeSample(x float64) float64 {
	switch d.kind {
	case DistortionSoftClip:
		return d.softClip(x)
	case DistortionHardClip:
		return d.hardClip(x)
	case DistortionTube:
		return d.tube(x)
	case DistortionFuzz:
		return d.fuzz(x)
	case DistortionBitCrush:
		return d.bitCrush(x)
	case DistortionWaveshaper:
		return clampUnit(x - x*x*x/3)
	default:
		return x
	}
}

func (d *Distortion) softClip(x float64) float64 {
	k := 1 + 10*d.drive
	return mathTanh(x*k) / k
}

func (d *Distortion) hardClip(x float64) float64 {
	threshold := math.Max(1-d.drive, minHardClipThreshold)
	return core.Clamp(x, -threshold, threshold)
}

// tube models rectification asymmetry: the negative half-cycle saturates
// harder than the positive one. Both halves normalize to unity slope at the
// origin so drive=0 approximates the identity.
func (d *Distortion) tube(x float64) float64 {
	if x >= 0 {
		k := 1 + 2*d.drive
		return mathTanh(x*k) / k
	}

	k := 1 + 4*d.drive
	return mathTanh(x*k) / k
}

func (d *Distortion) fuzz(x float64) float64 {
	// Soft knee first, then a hard ceiling at the fuzz threshold.
	x = mathTanh(x * (1 + 2*d.drive))
	return core.Clamp(x, -fuzzClipThreshold, fuzzClipThreshold)
}

func (d *Distortion) bitCrush(x float64) float64 {
	x = clampUnit(x)

	var quantized float64
	if d.quantLevels < 1 {
		// One-bit depth degenerates to sign quantization: two levels.
		quantized = math.Copysign(1, x)
	} else {
		quantized = math.Round(x*d.quantLevels) / d.quantLevels
	}

	// Probabilistically hold the previous output to emulate sample-rate
	// reduction.
	if d.holdProbability > 0 && d.rng.Float64() < d.holdProbability {
		return d.holdValue
	}

	d.holdValue = quantized

	return quantized
}

func (d *Distortion) updateQuantLevels() {
	d.quantLevels = math.Exp2(float64(d.bitDepth)-1) - 1
}

func clampUnit(x float64) float64 {
	return core.Clamp(x, -1, 1)
}
