package filters

import (
	"errors"
	"fmt"
	"math"
	"math/cmplx"
)

// ErrInvalidBand signals band edges that violate the design preconditions:
// both cutoffs must lie strictly inside (0, Nyquist) with lowCut < highCut.
var ErrInvalidBand = errors.New("invalid bandpass edges")

// ButterworthBandpass is a digital Butterworth band-pass filter.
//
// The design pipeline matches the classic analog-prototype route: Butterworth
// low-pass poles, low-pass to band-pass transform around the warped band
// edges, then a bilinear transform into the z-domain. The result is a pair of
// transfer-function coefficient vectors b/a of length 2*order+1, applied as a
// causal IIR filter (direct form II transposed), not zero-phase.
type ButterworthBandpass struct {
	order      int
	sampleRate int
	lowCut     float64
	highCut    float64

	// Transfer function coefficients, a[0] == 1
	b []float64
	a []float64
}

// DefaultBandpassOrder is the filter order used when callers pass order <= 0.
const DefaultBandpassOrder = 5

// NewButterworthBandpass designs a band-pass filter of the given order with
// critical frequencies lowCut and highCut in Hz, normalized internally by the
// Nyquist frequency (sampleRate/2).
func NewButterworthBandpass(order int, lowCut, highCut float64, sampleRate int) (*ButterworthBandpass, error) {
	if order <= 0 {
		order = DefaultBandpassOrder
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate must be positive, got %d", ErrInvalidBand, sampleRate)
	}

	nyquist := float64(sampleRate) / 2.0
	if lowCut <= 0 || highCut >= nyquist {
		return nil, fmt.Errorf("%w: cutoffs must lie in (0, %g), got [%g, %g]",
			ErrInvalidBand, nyquist, lowCut, highCut)
	}
	if lowCut >= highCut {
		return nil, fmt.Errorf("%w: low cutoff %g must be below high cutoff %g",
			ErrInvalidBand, lowCut, highCut)
	}

	bf := &ButterworthBandpass{
		order:      order,
		sampleRate: sampleRate,
		lowCut:     lowCut,
		highCut:    highCut,
	}
	bf.design()

	return bf, nil
}

// design computes the b/a coefficient vectors.
func (bf *ButterworthBandpass) design() {
	n := bf.order
	nyquist := float64(bf.sampleRate) / 2.0

	// Pre-warp the normalized band edges for the bilinear transform
	// (internal sampling frequency fixed at 2, edges normalized to Nyquist)
	const fs = 2.0
	warpedLow := 2 * fs * math.Tan(math.Pi*(bf.lowCut/nyquist)/fs)
	warpedHigh := 2 * fs * math.Tan(math.Pi*(bf.highCut/nyquist)/fs)

	bw := warpedHigh - warpedLow
	wo := math.Sqrt(warpedLow * warpedHigh)

	// Analog Butterworth low-pass prototype: n poles on the unit circle in
	// the left half-plane, no zeros, unit gain
	prototype := make([]complex128, n)
	for i := 0; i < n; i++ {
		m := float64(-n + 1 + 2*i)
		prototype[i] = -cmplx.Exp(complex(0, math.Pi*m/float64(2*n)))
	}

	// Low-pass to band-pass: each prototype pole splits into a pair
	poles := make([]complex128, 0, 2*n)
	woSq := complex(wo*wo, 0)
	for _, p := range prototype {
		scaled := p * complex(bw/2, 0)
		shift := cmplx.Sqrt(scaled*scaled - woSq)
		poles = append(poles, scaled+shift, scaled-shift)
	}

	// n analog zeros at the origin; gain picks up bw^n
	gain := math.Pow(bw, float64(n))

	// Bilinear transform into the z-domain
	const fs2 = 2 * fs
	digitalZeros := make([]complex128, 0, 2*n)
	digitalPoles := make([]complex128, 0, 2*n)

	numProd := complex(1, 0) // prod(fs2 - analog zeros)
	denProd := complex(1, 0) // prod(fs2 - analog poles)

	for i := 0; i < n; i++ {
		// Analog zero at the origin maps to z = 1
		digitalZeros = append(digitalZeros, complex(1, 0))
		numProd *= complex(fs2, 0)
	}
	for _, p := range poles {
		digitalPoles = append(digitalPoles, (complex(fs2, 0)+p)/(complex(fs2, 0)-p))
		denProd *= complex(fs2, 0) - p
	}
	// Degree mismatch pads zeros at z = -1
	for i := 0; i < n; i++ {
		digitalZeros = append(digitalZeros, complex(-1, 0))
	}

	digitalGain := gain * real(numProd/denProd)

	bf.b = polynomialFromRoots(digitalZeros)
	for i := range bf.b {
		bf.b[i] *= digitalGain
	}
	bf.a = polynomialFromRoots(digitalPoles)
}

// polynomialFromRoots expands prod(x - r_i) and returns the real coefficient
// vector, highest order first. Complex roots must come in conjugate pairs.
func polynomialFromRoots(roots []complex128) []float64 {
	coeffs := []complex128{1}
	for _, r := range roots {
		next := make([]complex128, len(coeffs)+1)
		for i, c := range coeffs {
			next[i] += c
			next[i+1] -= c * r
		}
		coeffs = next
	}

	result := make([]float64, len(coeffs))
	for i, c := range coeffs {
		result[i] = real(c)
	}
	return result
}

// Filter applies the filter causally over the full signal and returns a new
// slice of the same length. The input is never modified.
func (bf *ButterworthBandpass) Filter(signal []float64) []float64 {
	output := make([]float64, len(signal))

	// Direct form II transposed
	state := make([]float64, len(bf.a)-1)
	for i, x := range signal {
		y := bf.b[0]*x + state[0]
		for j := 1; j < len(state); j++ {
			state[j-1] = bf.b[j]*x + state[j] - bf.a[j]*y
		}
		state[len(state)-1] = bf.b[len(bf.b)-1]*x - bf.a[len(bf.a)-1]*y
		output[i] = y
	}

	return output
}

// Coefficients returns copies of the transfer function coefficient vectors.
func (bf *ButterworthBandpass) Coefficients() (b, a []float64) {
	b = make([]float64, len(bf.b))
	a = make([]float64, len(bf.a))
	copy(b, bf.b)
	copy(a, bf.a)
	return b, a
}

// GetParameters returns the design parameters.
func (bf *ButterworthBandpass) GetParameters() (order int, lowCut, highCut float64, sampleRate int) {
	return bf.order, bf.lowCut, bf.highCut, bf.sampleRate
}
