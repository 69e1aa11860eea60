package effectchain

import (
	"github.com/cwbudde/algo-echo/dsp/effects"
)

// delayRuntime handles the "delay" node type.
type delayRuntime struct {
	fx *effects.Delay
}

func (r *delayRuntime) Configure(_ Context, p Params) error {
	r.fx.SetTime(p.GetNum("time", 0.25))
	r.fx.SetFeedback(p.GetNum("feedback", 0.35))
	r.fx.SetMix(p.GetNum("mix", 0.25))
	r.fx.SetModulation(p.GetNum("modRate", 0), p.GetNum("modDepth", 0))

	return nil
}

func (r *delayRuntime) Process(block []float64) {
	r.fx.ProcessInPlace(block)
}

func (r *delayRuntime) Reset() {
	r.fx.Reset()
}

func (r *delayRuntime) Set(name string, value float64) {
	switch name {
	case "time":
		r.fx.SetTime(value)
	case "feedback":
		r.fx.SetFeedback(value)
	case "mix":
		r.fx.SetMix(value)
	}
}

// tapeDelayRuntime handles the "tape-delay" node type.
type tapeDelayRuntime struct {
	fx *effects.TapeDelay
}

func (r *tapeDelayRuntime) Configure(_ Context, p Params) error {
	r.fx.SetTime(p.GetNum("time", 0.25))
	r.fx.SetFeedback(p.GetNum("feedback", 0.35))
	r.fx.SetMix(p.GetNum("mix", 0.25))
	r.fx.SetSaturation(p.GetNum("saturation", 0.3))
	r.fx.SetDamping(p.GetNum("damping", 0.4))
	r.fx.SetNoiseLevel(p.GetNum("noise", 0.0002))
	r.fx.SetTapeSpeed(p.GetNum("speed", 1))
	r.fx.SetWow(p.GetNum("wowRate", 0.5), p.GetNum("wowDepth", 0.002))
	r.fx.SetFlutter(p.GetNum("flutterRate", 8), p.GetNum("flutterDepth", 0.0005))

	return nil
}

func (r *tapeDelayRuntime) Process(block []float64) {
	r.fx.ProcessInPlace(block)
}

func (r *tapeDelayRuntime) Reset() {
	r.fx.Reset()
}

func (r *tapeDelayRuntime) Set(name string, value float64) {
	switch name {
	case "time":
		r.fx.SetTime(value)
	case "feedback":
		r.fx.SetFeedback(value)
	case "mix":
		r.fx.SetMix(value)
	case "saturation":
		r.fx.SetSaturation(value)
	case "damping":
		r.fx.SetDamping(value)
	case "speed":
		r.fx.SetTapeSpeed(value)
	}
}

// tempoDelayRuntime handles the "tempo-delay" node type.
type tempoDelayRuntime struct {
	fx *effects.TempoSyncDelay
}

func (r *tempoDelayRuntime) Configure(_ Context, p Params) error {
	r.fx.SetTempo(p.GetNum("bpm", 120))
	r.fx.SetDivision(p.GetStr("division", "1/4"))
	r.fx.SetSwing(p.GetNum("swing", 0))
	r.fx.SetHumanize(p.GetNum("humanize", 0))
	r.fx.SetFeedback(p.GetNum("feedback", 0.35))
	r.fx.SetMix(p.GetNum("mix", 0.25))

	return nil
}

func (r *tempoDelayRuntime) Process(block []float64) {
	r.fx.ProcessInPlace(block)
}

func (r *tempoDelayRuntime) Reset() {
	r.fx.Reset()
}

func (r *tempoDelayRuntime) Set(name string, value float64) {
	switch name {
	case "bpm":
		r.fx.SetTempo(value)
	case "swing":
		r.fx.SetSwing(value)
	case "humanize":
		r.fx.SetHumanize(value)
	case "feedback":
		r.fx.SetFeedback(value)
	case "mix":
		r.fx.SetMix(value)
	}
}

// distortionRuntime handles the "distortion" node type.
type distortionRuntime struct {
	fx *effects.Distortion
}

func (r *distortionRuntime) Configure(_ Context, p Params) error {
	r.fx.SetKind(distortionKindByName(p.GetStr("kind", "softclip")))
	r.fx.SetDrive(p.GetNum("drive", 0.5))
	r.fx.SetMix(p.GetNum("mix", 1))
	r.fx.SetBitDepth(int(p.GetNum("bitDepth", 8)))
	r.fx.SetHoldProbability(p.GetNum("holdProbability", 0))

	return nil
}

func (r *distortionRuntime) Process(block []float64) {
	r.fx.ProcessInPlace(block)
}

func (r *distortionRuntime) Reset() {
	r.fx.Reset()
}

func (r *distortionRuntime) Set(name string, value float64) {
	switch name {
	case "drive":
		r.fx.SetDrive(value)
	case "mix":
		r.fx.SetMix(value)
	case "bitDepth":
		r.fx.SetBitDepth(int(value))
	case "holdProbability":
		r.fx.SetHoldProbability(value)
	}
}

func distortionKindByName(name string) effects.DistortionKind {
	switch name {
	case "none":
		return effects.DistortionNone
	case "softclip":
		return effects.DistortionSoftClip
	case "hardclip":
		return effects.DistortionHardClip
	case "tube":
		return effects.DistortionTube
	case "fuzz":
		return effects.DistortionFuzz
	case "bitcrush":
		return effects.DistortionBitCrush
	case "waveshaper":
		return effects.DistortionWaveshaper
	default:
		return effects.DistortionSoftClip
	}
}
