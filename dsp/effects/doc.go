// Package effects provides the time-based echo/delay effect kernels of this
// module, together with the waveshaping distortion unit used in feedback
// paths.
//
// Effects in this package:
//   - Delay: feedback delay with dry/wet mix and LFO read-offset modulation.
//   - TapeDelay: delay with input saturation, high-frequency damping, noise
//     floor, tape speed, and independent wow/flutter modulation.
//   - MultiTapDelay: ordered rhythmic taps, each with its own delay line,
//     level, and constant-power pan; one shared feedback path.
//   - TempoSyncDelay: delay time derived from BPM and note division, with
//     swing, humanize jitter, and tap tempo.
//   - StereoDelay: independent left/right lines with ping-pong, mid/side
//     width enhancement, and optionally distorted cross-feedback.
//   - Distortion: soft/hard clip, tube, fuzz, bit-crush, and polynomial
//     waveshaping applied per sample.
//
// All effects are designed for real-time processing with zero-allocation
// hot paths and support both single-sample and buffer-based processing.
// Parameter setters clamp out-of-range input instead of failing; NaN input
// leaves the previous value in place. None of the types are safe for
// concurrent use; route cross-thread parameter changes through
// github.com/cwbudde/algo-echo/dsp/effectchain.
package effects
