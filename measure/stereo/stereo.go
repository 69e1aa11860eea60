// Package stereo measures relationships between the two channels of a
// stereo signal: sample-domain difference and correlation, and a Welch-style
// spectral coherence. These are the tools for quantifying how much width a
// stereo effect actually produces.
package stereo

import (
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-echo/dsp/buffer"
)

// MeanAbsDifference returns the mean absolute sample difference between the
// channels. Zero means the signal is mono.
func MeanAbsDifference(left, right []float64) (float64, error) {
	if err := checkPair(left, right); err != nil {
		return 0, err
	}

	var sum float64
	for i := range left {
		sum += math.Abs(left[i] - right[i])
	}

	return sum / float64(len(left)), nil
}

// Correlation returns the zero-lag Pearson correlation of the channels in
// [-1, 1]. +1 is mono, 0 is fully decorrelated, -1 is out of phase. A silent
// channel yields 0.
func Correlation(left, right []float64) (float64, error) {
	if err := checkPair(left, right); err != nil {
		return 0, err
	}

	n := float64(len(left))

	var meanL, meanR float64
	for i := range left {
		meanL += left[i]
		meanR += right[i]
	}

	meanL /= n
	meanR /= n

	var cov, varL, varR float64

	for i := range left {
		dl := left[i] - meanL
		dr := right[i] - meanR
		cov += dl * dr
		varL += dl * dl
		varR += dr * dr
	}

	if varL == 0 || varR == 0 {
		return 0, nil
	}

	return cov / math.Sqrt(varL*varR), nil
}

const defaultFFTSize = 2048

// Config holds coherence analysis parameters.
type Config struct {
	SampleRate float64
	// FFTSize is the segment length; it must be a power of two. Segments
	// overlap by half.
	FFTSize int
}

// Analyzer computes Welch-averaged magnitude-squared coherence between the
// two channels of a stereo signal.
type Analyzer struct {
	cfg    Config
	plan   *algofft.Plan[complex128]
	window []float64
	pool   *buffer.Pool
}

// NewAnalyzer creates a coherence analyzer. A zero FFTSize falls back to the
// default; other invalid sizes are an error.
func NewAnalyzer(cfg Config) (*Analyzer, error) {
	if cfg.SampleRate <= 0 {
		return nil, fmt.Errorf("stereo: sample rate must be > 0: %f", cfg.SampleRate)
	}

	if cfg.FFTSize == 0 {
		cfg.FFTSize = defaultFFTSize
	}

	if cfg.FFTSize < 4 || cfg.FFTSize&(cfg.FFTSize-1) != 0 {
		return nil, fmt.Errorf("stereo: FFT size must be a power of two >= 4: %d", cfg.FFTSize)
	}

	plan, err := algofft.NewPlan64(cfg.FFTSize)
	if err != nil {
		return nil, fmt.Errorf("stereo: create FFT plan: %w", err)
	}

	return &Analyzer{
		cfg:    cfg,
		plan:   plan,
		window: hann(cfg.FFTSize),
		pool:   buffer.NewPool(),
	}, nil
}

// BinFrequency returns the center frequency of coherence bin k in Hz.
func (a *Analyzer) BinFrequency(k int) float64 {
	return float64(k) * a.cfg.SampleRate / float64(a.cfg.FFTSize)
}

// Coherence returns the magnitude-squared coherence per frequency bin,
// averaged over half-overlapping Hann-windowed segments. Values are in
// [0, 1]: 1 where the channels are linearly related, lower where independent
// energy (decorrelated echoes, noise) separates them. The result has
// FFTSize/2 + 1 bins. Both channels must be at least one segment long.
func (a *Analyzer) Coherence(left, right []float64) ([]float64, error) {
	if err := checkPair(left, right); err != nil {
		return nil, err
	}

	size := a.cfg.FFTSize
	if len(left) < size {
		return nil, fmt.Errorf("stereo: input of %d samples shorter than one segment of %d", len(left), size)
	}

	bins := size/2 + 1
	hop := size / 2

	sxx := make([]float64, bins)
	syy := make([]float64, bins)
	sxyRe := make([]float64, bins)
	sxyIm := make([]float64, bins)

	segL := a.pool.Get(size)
	segR := a.pool.Get(size)
	power := a.pool.Get(bins)

	defer func() {
		a.pool.Put(segL)
		a.pool.Put(segR)
		a.pool.Put(power)
	}()

	fftL := make([]complex128, size)
	fftR := make([]complex128, size)
	re := make([]float64, bins)
	im := make([]float64, bins)

	for start := 0; start+size <= len(left); start += hop {
		if err := a.segmentSpectrum(left[start:start+size], segL, fftL); err != nil {
			return nil, err
		}

		if err := a.segmentSpectrum(right[start:start+size], segR, fftR); err != nil {
			return nil, err
		}

		unpack(fftL[:bins], re, im)
		vecmath.Power(power.Samples(), re, im)
		vecmath.AddBlockInPlace(sxx, power.Samples())

		for k := 0; k < bins; k++ {
			x, y := fftL[k], fftR[k]
			sxyRe[k] += real(x)*real(y) + imag(x)*imag(y)
			sxyIm[k] += imag(x)*real(y) - real(x)*imag(y)
		}

		unpack(fftR[:bins], re, im)
		vecmath.Power(power.Samples(), re, im)
		vecmath.AddBlockInPlace(syy, power.Samples())
	}

	coh := make([]float64, bins)

	for k := range coh {
		denom := sxx[k] * syy[k]
		if denom <= 0 {
			continue
		}

		coh[k] = (sxyRe[k]*sxyRe[k] + sxyIm[k]*sxyIm[k]) / denom
		if coh[k] > 1 {
			coh[k] = 1
		}
	}

	return coh, nil
}

// MeanCoherence averages the coherence across all bins, a single-number
// summary of how mono the pair is.
func (a *Analyzer) MeanCoherence(left, right []float64) (float64, error) {
	coh, err := a.Coherence(left, right)
	if err != nil {
		return 0, err
	}

	var sum float64
	for _, v := range coh {
		sum += v
	}

	return sum / float64(len(coh)), nil
}

func (a *Analyzer) segmentSpectrum(src []float64, seg *buffer.Buffer, dst []complex128) error {
	seg.CopyFrom(src)
	vecmath.MulBlockInPlace(seg.Samples(), a.window)

	for i, v := range seg.Samples() {
		dst[i] = complex(v, 0)
	}

	return a.plan.Forward(dst, dst)
}

func checkPair(left, right []float64) error {
	if len(left) == 0 {
		return fmt.Errorf("stereo: channels must not be empty")
	}

	if len(left) != len(right) {
		return fmt.Errorf("stereo: channels must have equal length: %d != %d", len(left), len(right))
	}

	return nil
}

func hann(n int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}

	return w
}

func unpack(src []complex128, re, im []float64) {
	for i, v := range src {
		re[i] = real(v)
		im[i] = imag(v)
	}
}
