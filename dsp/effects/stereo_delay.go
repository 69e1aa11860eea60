package effects

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-echo/dsp/core"
	"github.com/cwbudde/algo-echo/dsp/delay"
)

const (
	defaultStereoFeedback      = 0.35
	defaultStereoMix           = 0.3
	defaultStereoCrossFeedback = 0.0
	defaultFeedbackIntensity   = 0.5

	// Cross-feedback is capped well below the primary feedback ceiling:
	// both channels re-inject into each other, so the loop gain compounds.
	maxCrossFeedback = 0.5

	maxStereoWidth = 1.0
)

// StereoDelayOption mutates stereo delay construction parameters.
type StereoDelayOption func(*stereoDelayConfig)

type stereoDelayConfig struct {
	timeLeft      float64
	timeRight     float64
	feedback      float64
	mix           float64
	maxTime       float64
	pingPong      bool
	crossFeedback float64
	width         float64
	crossOpts     []DistortionOption
}

func defaultStereoDelayConfig() stereoDelayConfig {
	return stereoDelayConfig{
		timeLeft:      defaultDelayTimeSeconds,
		timeRight:     defaultDelayTimeSeconds,
		feedback:      defaultStereoFeedback,
		mix:           defaultStereoMix,
		maxTime:       defaultMaxDelayTime,
		crossFeedback: defaultStereoCrossFeedback,
	}
}

// WithStereoDelayTimes sets the initial left and right delay times in
// seconds.
func WithStereoDelayTimes(left, right float64) StereoDelayOption {
	return func(cfg *stereoDelayConfig) {
		cfg.timeLeft = core.ClampOr(left, minDelayTimeSeconds, cfg.maxTime, cfg.timeLeft)
		cfg.timeRight = core.ClampOr(right, minDelayTimeSeconds, cfg.maxTime, cfg.timeRight)
	}
}

// WithStereoFeedback sets the per-channel feedback amount in [0, 0.9].
func WithStereoFeedback(feedback float64) StereoDelayOption {
	return func(cfg *stereoDelayConfig) {
		cfg.feedback = core.ClampOr(feedback, 0, maxDelayFeedback, cfg.feedback)
	}
}

// WithStereoMix sets the shared wet amount in [0, 1].
func WithStereoMix(mix float64) StereoDelayOption {
	return func(cfg *stereoDelayConfig) {
		cfg.mix = core.ClampOr(mix, 0, 1, cfg.mix)
	}
}

// WithStereoMaxDelayTime fixes the per-channel maximum delay time in
// seconds.
func WithStereoMaxDelayTime(seconds float64) StereoDelayOption {
	return func(cfg *stereoDelayConfig) {
		cfg.maxTime = core.ClampOr(seconds, minMaxDelayTime, maxMaxDelayTime, cfg.maxTime)
	}
}

// WithPingPong enables swapping the delayed channels, bouncing echoes
// between sides.
func WithPingPong(enabled bool) StereoDelayOption {
	return func(cfg *stereoDelayConfig) {
		cfg.pingPong = enabled
	}
}

// WithCrossFeedback sets the amount of each channel's feedback injected
// into the other channel, in [0, 0.5].
func WithCrossFeedback(amount float64) StereoDelayOption {
	return func(cfg *stereoDelayConfig) {
		cfg.crossFeedback = core.ClampOr(amount, 0, maxCrossFeedback, cfg.crossFeedback)
	}
}

// WithStereoWidth sets the mid/side width enhancement in [0, 1];
// the side component is scaled by 1 + width.
func WithStereoWidth(width float64) StereoDelayOption {
	return func(cfg *stereoDelayConfig) {
		cfg.width = core.ClampOr(width, 0, maxStereoWidth, cfg.width)
	}
}

// WithCrossDistortion configures the shared distortion unit applied to the
// cross-feedback path.
func WithCrossDistortion(opts ...DistortionOption) StereoDelayOption {
	return func(cfg *stereoDelayConfig) {
		cfg.crossOpts = append(cfg.crossOpts, opts...)
	}
}

// StereoDelay owns two independent delay lines and processes stereo pairs.
// Ping-pong swaps the delayed channels, mid/side width enhancement widens
// the wet image, and cross-feedback bleeds each channel's feedback into the
// other — optionally through a shared distortion unit. Only the cross path
// is distorted, never the primary feedback, which keeps the regeneration
// musical instead of saturating on every pass. Not safe for concurrent use.
type StereoDelay struct {
	sampleRate float64
	maxTime    float64

	timeLeft  float64
	timeRight float64
	feedback  float64
	mix       float64

	pingPong      bool
	crossFeedback float64
	width         float64

	crossDistortionOn bool
	feedbackIntensity float64
	crossDistortion   *Distortion

	delaySamplesL   float64
	delaySamplesR   float64
	maxDelaySamples float64
	lineL           *delay.Line
	lineR           *delay.Line
}

// NewStereoDelay creates a stereo delay with practical defaults.
func NewStereoDelay(sampleRate float64, opts ...StereoDelayOption) (*StereoDelay, error) {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return nil, fmt.Errorf("stereo delay sample rate must be > 0 and finite: %f", sampleRate)
	}

	cfg := defaultStereoDelayConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	size := int(math.Ceil(cfg.maxTime*sampleRate)) + lineGuardSamples

	lineL, err := delay.New(size)
	if err != nil {
		return nil, err
	}

	lineR, err := delay.New(size)
	if err != nil {
		return nil, err
	}

	crossDistortion, err := NewDistortion(sampleRate, cfg.crossOpts...)
	if err != nil {
		return nil, err
	}

	s := &StereoDelay{
		sampleRate:        sampleRate,
		maxTime:           cfg.maxTime,
		feedback:          cfg.feedback,
		mix:               cfg.mix,
		pingPong:          cfg.pingPong,
		crossFeedback:     cfg.crossFeedback,
		width:             cfg.width,
		feedbackIntensity: defaultFeedbackIntensity,
		crossDistortion:   crossDistortion,
		maxDelaySamples:   float64(size - lineGuardSamples),
		lineL:             lineL,
		lineR:             lineR,
	}
	s.SetTimeLeft(cfg.timeLeft)
	s.SetTimeRight(cfg.timeRight)

	return s, nil
}

// SetTimeLeft sets the left delay time in seconds, clamped to
// (0, max delay time].
func (s *StereoDelay) SetTimeLeft(seconds float64) {
	s.timeLeft = core.ClampOr(seconds, minDelayTimeSeconds, s.maxTime, s.timeLeft)
	s.delaySamplesL = core.Clamp(math.Round(s.timeLeft*s.sampleRate), 1, s.maxDelaySamples)
}

// SetTimeRight sets the right delay time in seconds, clamped to
// (0, max delay time].
func (s *StereoDelay) SetTimeRight(seconds float64) {
	s.timeRight = core.ClampOr(seconds, minDelayTimeSeconds, s.maxTime, s.timeRight)
	s.delaySamplesR = core.Clamp(math.Round(s.timeRight*s.sampleRate), 1, s.maxDelaySamples)
}

// SetFeedback sets the per-channel feedback amount, clamped to [0, 0.9].
func (s *StereoDelay) SetFeedback(feedback float64) {
	s.feedback = core.ClampOr(feedback, 0, maxDelayFeedback, s.feedback)
}

// SetMix sets the shared wet amount, clamped to [0, 1].
func (s *StereoDelay) SetMix(mix float64) {
	s.mix = core.ClampOr(mix, 0, 1, s.mix)
}

// SetPingPong toggles swapping the delayed channels.
func (s *StereoDelay) SetPingPong(enabled bool) {
	s.pingPong = enabled
}

// SetCrossFeedback sets the cross-channel feedback amount, clamped to
// [0, 0.5].
func (s *StereoDelay) SetCrossFeedback(amount float64) {
	s.crossFeedback = core.ClampOr(amount, 0, maxCrossFeedback, s.crossFeedback)
}

// SetWidth sets the mid/side width enhancement, clamped to [0, 1].
func (s *StereoDelay) SetWidth(width float64) {
	s.width = core.ClampOr(width, 0, maxStereoWidth, s.width)
}

// SetCrossDistortionEnabled toggles distortion on the cross-feedback path.
func (s *StereoDelay) SetCrossDistortionEnabled(enabled bool) {
	s.crossDistortionOn = enabled
}

// SetFeedbackIntensity sets the blend between clean and distorted
// cross-feedback, clamped to [0, 1].
func (s *StereoDelay) SetFeedbackIntensity(intensity float64) {
	s.feedbackIntensity = core.ClampOr(intensity, 0, 1, s.feedbackIntensity)
}

// CrossDistortion returns the shared distortion unit of the cross-feedback
// path for kind/drive/mix configuration.
func (s *StereoDelay) CrossDistortion() *Distortion {
	return s.crossDistortion
}

// Reset clears both delay lines and the distortion state.
func (s *StereoDelay) Reset() {
	s.lineL.Reset()
	s.lineR.Reset()
	s.crossDistortion.Reset()
}

// ProcessSample processes one stereo pair and returns the left and right
// outputs.
func (s *StereoDelay) ProcessSample(inLeft, inRight float64) (outLeft, outRight float64) {
	delayedL := s.lineL.Read(int(s.delaySamplesL))
	delayedR := s.lineR.Read(int(s.delaySamplesR))

	// Ping-pong routes left-channel energy to the right output and back.
	if s.pingPong {
		delayedL, delayedR = delayedR, delayedL
	}

	if s.width > 0 {
		mid := (delayedL + delayedR) * 0.5
		side := (delayedL - delayedR) * 0.5 * (1 + s.width)
		delayedL = mid + side
		delayedR = mid - side
	}

	dry := 1 - s.mix
	outLeft = inLeft*dry + delayedL*s.mix
	outRight = inRight*dry + delayedR*s.mix

	fbL := inLeft + s.feedback*delayedL
	fbR := inRight + s.feedback*delayedR

	crossL := fbL + s.crossFeedback*fbR
	crossR := fbR + s.crossFeedback*fbL

	if s.crossDistortionOn {
		crossL = (1-s.feedbackIntensity)*crossL + s.feedbackIntensity*s.crossDistortion.ProcessSample(crossL)
		crossR = (1-s.feedbackIntensity)*crossR + s.feedbackIntensity*s.crossDistortion.ProcessSample(crossR)
	}

	s.lineL.Write(core.FlushDenormals(crossL))
	s.lineR.Write(core.FlushDenormals(crossR))

	return outLeft, outRight
}

// ProcessMonoSample duplicates a mono input to both channels and returns
// the stereo output pair.
func (s *StereoDelay) ProcessMonoSample(input float64) (outLeft, outRight float64) {
	return s.ProcessSample(input, input)
}

// ProcessStereoInPlace applies the stereo delay to paired left/right
// buffers in place. Both buffers must have the same length.
func (s *StereoDelay) ProcessStereoInPlace(left, right []float64) error {
	if len(left) != len(right) {
		return fmt.Errorf("stereo delay: left and right buffers must have equal length: %d != %d",
			len(left), len(right))
	}

	for i := range left {
		left[i], right[i] = s.ProcessSample(left[i], right[i])
	}

	return nil
}

// SampleRate returns the sample rate in Hz.
func (s *StereoDelay) SampleRate() float64 { return s.sampleRate }

// TimeLeft returns the left delay time in seconds.
func (s *StereoDelay) TimeLeft() float64 { return s.timeLeft }

// TimeRight returns the right delay time in seconds.
func (s *StereoDelay) TimeRight() float64 { return s.timeRight }

// Feedback returns the per-channel feedback amount in [0, 0.9].
func (s *StereoDelay) Feedback() float64 { return s.feedback }

// Mix returns the shared wet amount in [0, 1].
func (s *StereoDelay) Mix() float64 { return s.mix }

// PingPong reports whether the delayed channels are swapped.
func (s *StereoDelay) PingPong() bool { return s.pingPong }

// CrossFeedback returns the cross-channel feedback amount in [0, 0.5].
func (s *StereoDelay) CrossFeedback() float64 { return s.crossFeedback }

// Width returns the mid/side width enhancement in [0, 1].
func (s *StereoDelay) Width() float64 { return s.width }

// CrossDistortionEnabled reports whether the cross-feedback path is
// distorted.
func (s *StereoDelay) CrossDistortionEnabled() bool { return s.crossDistortionOn }

// FeedbackIntensity returns the clean/distorted cross-feedback blend in
// [0, 1].
func (s *StereoDelay) FeedbackIntensity() float64 { return s.feedbackIntensity }
