package analysis

import (
	"errors"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

var (
	ErrShortSignal = errors.New("analysis: signal too short")
	ErrNonFinite   = errors.New("analysis: signal has non-finite samples")
)

// minSamples is the shortest signal with at least one non-DC bin.
const minSamples = 4

type Spectrum struct {
	// Freqs in Hz, ascending from DC.
	Freqs []float64
	// Amps in signal units; the DC bin is the removed mean.
	Amps []float64
}

// AmplitudeSpectrum removes the mean from data sampled every dt seconds
// and returns its one-sided amplitude spectrum.
func AmplitudeSpectrum(data []float64, dt float64) (Spectrum, error) {
	n := len(data)
	if n < minSamples {
		return Spectrum{}, ErrShortSignal
	}
	for _, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Spectrum{}, ErrNonFinite
		}
	}

	mean := stat.Mean(data, nil)
	centred := make([]float64, n)
	for i, v := range data {
		centred[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centred)

	sp := Spectrum{
		Freqs: make([]float64, len(coeff)),
		Amps:  make([]float64, len(coeff)),
	}
	for i, c := range coeff {
		sp.Freqs[i] = fft.Freq(i) / dt
		amp := cmplx.Abs(c) / float64(n)
		// fold the negative frequencies back in, except DC and Nyquist
		if i != 0 && !(n%2 == 0 && i == n/2) {
			amp *= 2
		}
		sp.Amps[i] = amp
	}
	sp.Amps[0] = mean
	return sp, nil
}

// Dominant returns the strongest non-DC component. It returns zeros for
// an empty spectrum.
func (s Spectrum) Dominant() (freq, amp float64) {
	for i := 1; i < len(s.Amps); i++ {
		if s.Amps[i] > amp {
			freq, amp = s.Freqs[i], s.Amps[i]
		}
	}
	return freq, amp
}
