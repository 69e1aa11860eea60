package effects_test

import (
	"fmt"

	"github.com/cwbudde/algo-echo/dsp/effects"
)

func ExampleNewDelay() {
	d, err := effects.NewDelay(1000,
		effects.WithDelayTime(0.005),
		effects.WithDelayFeedback(0),
		effects.WithDelayMix(1),
	)
	if err != nil {
		panic(err)
	}

	// A unit impulse comes back 5 samples later at full wet.
	buf := []float64{1, 0, 0, 0, 0, 0, 0, 0}
	d.ProcessInPlace(buf)

	for _, v := range buf {
		fmt.Printf("%.1f ", v)
	}

	fmt.Println()
	// Output: 0.0 0.0 0.0 0.0 0.0 1.0 0.0 0.0
}

func ExampleNewTempoSyncDelay() {
	d, err := effects.NewTempoSyncDelay(44100,
		effects.WithTempoBPM(120),
		effects.WithTempoDivision("1/8."),
	)
	if err != nil {
		panic(err)
	}

	fmt.Printf("delay: %.3f s\n", d.Time())

	d.TapTempo([]float64{0, 0.5, 1.0, 1.5})
	fmt.Printf("tapped tempo: %.0f BPM\n", d.Tempo())
	// Output:
	// delay: 0.375 s
	// tapped tempo: 120 BPM
}

func ExampleNewDistortion() {
	d, err := effects.NewDistortion(44100,
		effects.WithDistortionKind(effects.DistortionHardClip),
		effects.WithDistortionDrive(0.5),
		effects.WithDistortionMix(1),
	)
	if err != nil {
		panic(err)
	}

	fmt.Printf("clipped: %.2f\n", d.ProcessSample(1.0))
	// Output: clipped: 0.50
}
