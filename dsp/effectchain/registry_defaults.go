package effectchain

import (
	"github.com/cwbudde/algo-echo/dsp/effects"
)

// DefaultRegistry returns a Registry pre-populated with all built-in mono
// effect runtimes. The stereo effects (stereo delay, multi-tap delay) render
// mono-to-stereo or stereo-to-stereo and are driven directly rather than
// through the mono block chain.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister("delay", func(ctx Context) (Runtime, error) {
		fx, err := effects.NewDelay(ctx.SampleRate)
		if err != nil {
			return nil, err
		}

		return &delayRuntime{fx: fx}, nil
	})
	r.MustRegister("tape-delay", func(ctx Context) (Runtime, error) {
		fx, err := effects.NewTapeDelay(ctx.SampleRate)
		if err != nil {
			return nil, err
		}

		return &tapeDelayRuntime{fx: fx}, nil
	})
	r.MustRegister("tempo-delay", func(ctx Context) (Runtime, error) {
		fx, err := effects.NewTempoSyncDelay(ctx.SampleRate)
		if err != nil {
			return nil, err
		}

		return &tempoDelayRuntime{fx: fx}, nil
	})
	r.MustRegister("distortion", func(ctx Context) (Runtime, error) {
		fx, err := effects.NewDistortion(ctx.SampleRate)
		if err != nil {
			return nil, err
		}

		return &distortionRuntime{fx: fx}, nil
	})

	return r
}
