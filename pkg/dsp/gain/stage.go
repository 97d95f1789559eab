package gain

import (
	"fmt"
	"math"

	"github.com/justyntemme/dsptemp/pkg/framework/dsp"
)

// DefaultRampSeconds is the ramp length used until SetRampDurationSeconds.
const DefaultRampSeconds = 0.02

// Gain is a multichannel gain stage. Changes to the target gain ramp
// linearly over the ramp duration so automation does not click.
type Gain struct {
	sampleRate  float64
	rampSeconds float64
	rampSamples int

	target  float32
	current float32
	step    float32
	pending int // samples left in the active ramp
}

// New creates a unity gain stage with the default ramp.
func New() *Gain {
	return &Gain{
		rampSeconds: DefaultRampSeconds,
		target:      1,
		current:     1,
	}
}

// Prepare implements dsp.Stage. The current ramp is completed.
func (g *Gain) Prepare(spec dsp.ProcessSpec) error {
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("gain: %w", err)
	}
	g.sampleRate = spec.SampleRate
	g.updateRampSamples()
	g.Reset()
	return nil
}

// SetRampDurationSeconds sets how long a gain change takes to complete.
// Zero makes changes immediate.
func (g *Gain) SetRampDurationSeconds(seconds float64) error {
	if seconds < 0 || math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return fmt.Errorf("gain ramp must be finite and non-negative: %f", seconds)
	}
	g.rampSeconds = seconds
	g.updateRampSamples()
	return nil
}

// RampDurationSeconds returns the ramp duration.
func (g *Gain) RampDurationSeconds() float64 {
	return g.rampSeconds
}

// SetGainDecibels sets the target gain in dB.
func (g *Gain) SetGainDecibels(db float64) error {
	if math.IsNaN(db) || math.IsInf(db, 1) {
		return fmt.Errorf("gain must be finite: %f", db)
	}
	g.setTarget(float32(DbToLinear(db)))
	return nil
}

// SetGainLinear sets the target gain as an amplitude factor.
func (g *Gain) SetGainLinear(linear float64) error {
	if linear < 0 || math.IsNaN(linear) || math.IsInf(linear, 0) {
		return fmt.Errorf("linear gain must be finite and non-negative: %f", linear)
	}
	g.setTarget(float32(linear))
	return nil
}

// GainLinear returns the target gain factor.
func (g *Gain) GainLinear() float32 {
	return g.target
}

// GainDecibels returns the target gain in dB.
func (g *Gain) GainDecibels() float64 {
	return LinearToDb(float64(g.target))
}

// IsSmoothing reports whether a ramp is in progress.
func (g *Gain) IsSmoothing() bool {
	return g.pending > 0
}

// Process implements dsp.Stage.
func (g *Gain) Process(block [][]float32) {
	if len(block) == 0 {
		return
	}
	n := len(block[0])

	ramp := min(g.pending, n)
	if ramp > 0 {
		for _, ch := range block {
			value := g.current
			for i := 0; i < ramp && i < len(ch); i++ {
				value += g.step
				ch[i] *= value
			}
		}
		g.pending -= ramp
		if g.pending == 0 {
			g.current = g.target
		} else {
			g.current += g.step * float32(ramp)
		}
	}

	if ramp == n || g.current == 1 {
		return
	}
	for _, ch := range block {
		if len(ch) > ramp {
			ApplyBuffer(ch[ramp:], g.current)
		}
	}
}

// Reset implements dsp.Stage. Any ramp in progress jumps to its target.
func (g *Gain) Reset() {
	g.current = g.target
	g.pending = 0
	g.step = 0
}

func (g *Gain) setTarget(target float32) {
	if target == g.target {
		return
	}
	g.target = target
	if g.rampSamples <= 0 {
		g.Reset()
		return
	}
	g.pending = g.rampSamples
	g.step = (g.target - g.current) / float32(g.rampSamples)
}

func (g *Gain) updateRampSamples() {
	g.rampSamples = int(math.Round(g.rampSeconds * g.sampleRate))
}
