// Package envelope provides level detectors for dynamics processing.
package envelope

import (
	"fmt"
	"math"
)

// Minimum time constant in milliseconds. Anything shorter is instantaneous.
const minTimeMs = 0.001

// Detector is a multichannel one-pole peak follower. Each channel rises
// with the attack time constant and falls with the release time constant.
type Detector struct {
	sampleRate float64

	attackMs  float64
	releaseMs float64

	attackCoef  float64
	releaseCoef float64

	state []float64
}

// NewDetector creates a detector with 1 ms attack and 100 ms release.
// Prepare must be called before Detect.
func NewDetector() *Detector {
	return &Detector{
		attackMs:  1,
		releaseMs: 100,
	}
}

// Prepare sizes per-channel state and recomputes coefficients.
func (d *Detector) Prepare(sampleRate float64, channels int) error {
	if sampleRate <= 0 || math.IsNaN(sampleRate) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("detector sample rate must be positive and finite: %f", sampleRate)
	}
	if channels <= 0 {
		return fmt.Errorf("detector channel count must be positive: %d", channels)
	}
	d.sampleRate = sampleRate
	d.state = make([]float64, channels)
	d.updateCoefficients()
	return nil
}

// Channels returns the number of prepared channels.
func (d *Detector) Channels() int {
	return len(d.state)
}

// SetAttack sets the attack time in milliseconds.
func (d *Detector) SetAttack(ms float64) {
	d.attackMs = math.Max(0, ms)
	d.updateCoefficients()
}

// SetRelease sets the release time in milliseconds.
func (d *Detector) SetRelease(ms float64) {
	d.releaseMs = math.Max(0, ms)
	d.updateCoefficients()
}

// Attack returns the attack time in milliseconds.
func (d *Detector) Attack() float64 { return d.attackMs }

// Release returns the release time in milliseconds.
func (d *Detector) Release() float64 { return d.releaseMs }

func (d *Detector) updateCoefficients() {
	d.attackCoef = d.coefficient(d.attackMs)
	d.releaseCoef = d.coefficient(d.releaseMs)
}

func (d *Detector) coefficient(ms float64) float64 {
	if ms < minTimeMs || d.sampleRate <= 0 {
		return 0
	}
	return math.Exp(-2 * math.Pi * 1000 / (ms * d.sampleRate))
}

// Detect feeds one sample of channel ch and returns the new linear envelope.
func (d *Detector) Detect(ch int, input float32) float64 {
	level := math.Abs(float64(input))

	prev := d.state[ch]
	coef := d.releaseCoef
	if level > prev {
		coef = d.attackCoef
	}
	next := level + coef*(prev-level)
	d.state[ch] = next
	return next
}

// Envelope returns the current linear envelope of channel ch.
func (d *Detector) Envelope(ch int) float64 {
	return d.state[ch]
}

// Reset clears every channel's envelope.
func (d *Detector) Reset() {
	clear(d.state)
}
