// Package channel is the reference impairment model the test suite pushes
// synthetic frames through: a static multipath channel followed by the
// usual radio defects (carrier offset, phase noise, I/Q imbalance, timing
// offset, sample-clock drift, AWGN). It exists for test fixtures only; the
// receive chain never imports it.
package channel

import (
	"math"
	"math/cmplx"
	"math/rand"
)

// Settings selects which defects are applied and how strong they are.
// Zero values disable the corresponding defect, except noise, which only
// NoiseOff disables.
type Settings struct {
	// SampleRateHz is the rate of the samples fed to Apply.
	SampleRateHz float64

	// SNRdB sets the additive white Gaussian noise level relative to the
	// mean signal power. Ignored when NoiseOff is true.
	SNRdB    float64
	NoiseOff bool

	// FrequencyOffsetHz is the carrier offset the channel imposes (the
	// receiver estimates and removes its negative).
	FrequencyOffsetHz float64

	// MultipathTaps and DelaySpreadNs shape the static FIR channel: an
	// exponential power-delay profile with the given RMS delay spread,
	// complex Gaussian tap coefficients, unit total power.
	MultipathTaps int
	DelaySpreadNs float64

	// PhaseNoiseRMSDeg is the RMS of the oscillator phase-noise process,
	// a one-pole-filtered Gaussian walk approximating the -70..-140
	// dBc/Hz profile of a typical integrated synthesizer.
	PhaseNoiseRMSDeg float64

	// IQPhaseImbalanceDeg and IQAmplitudeImbalanceDB model quadrature
	// skew and gain mismatch between the I and Q rails.
	IQPhaseImbalanceDeg    float64
	IQAmplitudeImbalanceDB float64

	// TimingOffsetSamples delays the whole burst by an integer number of
	// samples; ClockDriftPPM resamples it at (1 + ppm*1e-6).
	TimingOffsetSamples int
	ClockDriftPPM       float64
}

// DefaultSettings is the stock defect mix of the end-to-end scenarios:
// 40-tap multipath with 150 ns RMS delay spread, 35 dB SNR, -100 kHz
// carrier offset, ~0.09 deg / -0.1 dB I/Q imbalance, 1-sample timing
// offset and -80 ppm clock drift, at 20 MS/s.
func DefaultSettings() Settings {
	return Settings{
		SampleRateHz:           20e6,
		SNRdB:                  35,
		FrequencyOffsetHz:      -100e3,
		MultipathTaps:          40,
		DelaySpreadNs:          150,
		PhaseNoiseRMSDeg:       1.0,
		IQPhaseImbalanceDeg:    0.09,
		IQAmplitudeImbalanceDB: -0.1,
		TimingOffsetSamples:    1,
		ClockDriftPPM:          -80,
	}
}

// Model applies a Settings-defined defect chain. The random source is
// explicit so concurrent callers never share state and a fixed seed
// reproduces the exact same channel realization.
type Model struct {
	set Settings
	rng *rand.Rand
}

// NewModel builds a model over the given settings and random source.
func NewModel(set Settings, rng *rand.Rand) *Model {
	return &Model{set: set, rng: rng}
}

// Apply runs x through the full defect chain and returns the impaired
// signal. The input is not modified. Defect order matches the physical
// signal path: multipath first, then timing/clock effects, then the
// oscillator and front-end defects, with receiver noise added last.
func (m *Model) Apply(x []complex128) []complex128 {
	y := m.multipath(x)
	y = m.timingOffset(y)
	y = m.clockDrift(y)
	y = m.freqOffset(y)
	y = m.phaseNoise(y)
	y = m.iqImbalance(y)
	y = m.awgn(y)
	return y
}

// multipath convolves x with a random causal FIR whose tap powers follow
// an exponential decay with the configured RMS delay spread. The first
// tap carries the direct path; total power is normalized to one so the
// channel neither amplifies nor attenuates on average.
func (m *Model) multipath(x []complex128) []complex128 {
	n := m.set.MultipathTaps
	if n <= 1 || m.set.DelaySpreadNs <= 0 {
		return append([]complex128(nil), x...)
	}

	tauSamples := m.set.DelaySpreadNs * 1e-9 * m.set.SampleRateHz
	taps := make([]complex128, n)
	var power float64
	for k := range taps {
		p := math.Exp(-float64(k) / tauSamples)
		if k == 0 {
			// Keep the direct path dominant so the channel stays
			// minimum-phase-ish and the preamble correlators lock to it.
			taps[0] = complex(math.Sqrt(p), 0)
		} else {
			sigma := math.Sqrt(p / 2)
			taps[k] = complex(m.rng.NormFloat64()*sigma, m.rng.NormFloat64()*sigma) / 2
		}
		power += real(taps[k])*real(taps[k]) + imag(taps[k])*imag(taps[k])
	}
	norm := complex(1/math.Sqrt(power), 0)
	for k := range taps {
		taps[k] *= norm
	}

	out := make([]complex128, len(x))
	for i := range x {
		var sum complex128
		kmax := n
		if i+1 < kmax {
			kmax = i + 1
		}
		for k := 0; k < kmax; k++ {
			sum += taps[k] * x[i-k]
		}
		out[i] = sum
	}
	return out
}

func (m *Model) timingOffset(x []complex128) []complex128 {
	d := m.set.TimingOffsetSamples
	if d <= 0 {
		return x
	}
	out := make([]complex128, len(x)+d)
	copy(out[d:], x)
	return out
}

// clockDrift resamples x at ratio 1 + ppm*1e-6 with linear interpolation,
// modeling the transmitter and receiver sample clocks disagreeing by ppm.
func (m *Model) clockDrift(x []complex128) []complex128 {
	ppm := m.set.ClockDriftPPM
	if ppm == 0 {
		return x
	}
	ratio := 1 + ppm*1e-6
	out := make([]complex128, len(x))
	for i := range out {
		pos := float64(i) * ratio
		lo := int(pos)
		if lo >= len(x)-1 {
			out[i] = x[len(x)-1]
			continue
		}
		frac := complex(pos-float64(lo), 0)
		out[i] = x[lo]*(1-frac) + x[lo+1]*frac
	}
	return out
}

func (m *Model) freqOffset(x []complex128) []complex128 {
	f := m.set.FrequencyOffsetHz
	if f == 0 {
		return x
	}
	out := make([]complex128, len(x))
	step := 2 * math.Pi * f / m.set.SampleRateHz
	for n := range x {
		out[n] = x[n] * cmplx.Exp(complex(0, step*float64(n)))
	}
	return out
}

// phaseNoise multiplies x by exp(j*phi[n]) where phi is a one-pole-filtered
// Gaussian process scaled to the configured RMS. The pole at ~0.999 puts
// most of the noise power close to the carrier, the shape the -70..-140
// dBc/Hz profile describes.
func (m *Model) phaseNoise(x []complex128) []complex128 {
	rmsDeg := m.set.PhaseNoiseRMSDeg
	if rmsDeg <= 0 {
		return x
	}
	const pole = 0.999
	rms := rmsDeg * math.Pi / 180
	// Stationary variance of phi = sigma_w^2 / (1 - pole^2).
	sigmaW := rms * math.Sqrt(1-pole*pole)

	out := make([]complex128, len(x))
	phi := 0.0
	for n := range x {
		phi = pole*phi + sigmaW*m.rng.NormFloat64()
		out[n] = x[n] * cmplx.Exp(complex(0, phi))
	}
	return out
}

// iqImbalance applies gain mismatch g to the Q rail and leaks
// sin(phase)*I into it, the usual direct-conversion quadrature error
// model.
func (m *Model) iqImbalance(x []complex128) []complex128 {
	phiDeg := m.set.IQPhaseImbalanceDeg
	ampDB := m.set.IQAmplitudeImbalanceDB
	if phiDeg == 0 && ampDB == 0 {
		return x
	}
	g := math.Pow(10, ampDB/20)
	phi := phiDeg * math.Pi / 180
	sinPhi, cosPhi := math.Sincos(phi)
	out := make([]complex128, len(x))
	for n, v := range x {
		i := real(v)
		q := g * (imag(v)*cosPhi + i*sinPhi)
		out[n] = complex(i, q)
	}
	return out
}

// awgn adds complex Gaussian noise at SNRdB relative to the mean power of
// the nonzero portion of x.
func (m *Model) awgn(x []complex128) []complex128 {
	if m.set.NoiseOff {
		return x
	}
	var power float64
	count := 0
	for _, v := range x {
		p := real(v)*real(v) + imag(v)*imag(v)
		if p > 0 {
			power += p
			count++
		}
	}
	if count == 0 {
		return x
	}
	power /= float64(count)
	sigma := math.Sqrt(power / (2 * math.Pow(10, m.set.SNRdB/10)))

	out := make([]complex128, len(x))
	for n, v := range x {
		out[n] = v + complex(sigma*m.rng.NormFloat64(), sigma*m.rng.NormFloat64())
	}
	return out
}
