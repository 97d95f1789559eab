// Package dynamics provides compressor stages for the processing chain.
package dynamics

import (
	"fmt"
	"math"

	"github.com/justyntemme/dsptemp/pkg/dsp/envelope"
	"github.com/justyntemme/dsptemp/pkg/dsp/gain"
	"github.com/justyntemme/dsptemp/pkg/framework/dsp"
)

// Compressor is a feed-forward hard-knee compressor. Each channel has its
// own peak ballistics detector; above threshold the gain follows
// (env/threshold)^(1/ratio - 1).
type Compressor struct {
	thresholdDB float64
	ratio       float64
	attackMs    float64
	releaseMs   float64

	threshold    float64 // linear
	thresholdInv float64
	ratioInv     float64

	detector *envelope.Detector
	prepared bool

	// Deepest reduction seen in the last block, in dB (>= 0)
	lastGainReduction float64
}

// NewCompressor creates a compressor at 0 dB threshold, 1:1 ratio,
// 1 ms attack and 100 ms release.
func NewCompressor() *Compressor {
	c := &Compressor{
		thresholdDB: 0,
		ratio:       1,
		attackMs:    1,
		releaseMs:   100,
		detector:    envelope.NewDetector(),
	}
	c.updateThreshold()
	c.ratioInv = 1
	c.detector.SetAttack(c.attackMs)
	c.detector.SetRelease(c.releaseMs)
	return c
}

// Prepare implements dsp.Stage.
func (c *Compressor) Prepare(spec dsp.ProcessSpec) error {
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("compressor: %w", err)
	}
	if err := c.detector.Prepare(spec.SampleRate, spec.NumChannels); err != nil {
		return fmt.Errorf("compressor: %w", err)
	}
	c.prepared = true
	c.lastGainReduction = 0
	return nil
}

// SetThreshold sets the threshold in dB.
func (c *Compressor) SetThreshold(dB float64) error {
	if err := finite("threshold", dB); err != nil {
		return err
	}
	c.thresholdDB = dB
	c.updateThreshold()
	return nil
}

// SetRatio sets the compression ratio.
func (c *Compressor) SetRatio(ratio float64) error {
	r, err := clampFinite("ratio", ratio, MinRatio, MaxRatio)
	if err != nil {
		return err
	}
	c.ratio = r
	c.ratioInv = 1 / r
	return nil
}

// SetAttack sets the attack time in milliseconds.
func (c *Compressor) SetAttack(ms float64) error {
	v, err := clampFinite("attack", ms, MinAttackMs, MaxAttackMs)
	if err != nil {
		return err
	}
	c.attackMs = v
	c.detector.SetAttack(v)
	return nil
}

// SetRelease sets the release time in milliseconds.
func (c *Compressor) SetRelease(ms float64) error {
	v, err := clampFinite("release", ms, MinReleaseMs, MaxReleaseMs)
	if err != nil {
		return err
	}
	c.releaseMs = v
	c.detector.SetRelease(v)
	return nil
}

// Threshold returns the threshold in dB.
func (c *Compressor) Threshold() float64 { return c.thresholdDB }

// Ratio returns the compression ratio.
func (c *Compressor) Ratio() float64 { return c.ratio }

// Attack returns the attack time in milliseconds.
func (c *Compressor) Attack() float64 { return c.attackMs }

// Release returns the release time in milliseconds.
func (c *Compressor) Release() float64 { return c.releaseMs }

// GainReduction returns the deepest gain reduction of the last block in dB.
func (c *Compressor) GainReduction() float64 {
	return c.lastGainReduction
}

func (c *Compressor) updateThreshold() {
	c.threshold = gain.DbToLinear(c.thresholdDB)
	c.thresholdInv = 1 / c.threshold
}

// ComputeGain returns the static gain for a linear envelope level.
func (c *Compressor) ComputeGain(env float64) float64 {
	if env < c.threshold || c.ratioInv == 1 {
		return 1
	}
	return math.Pow(env*c.thresholdInv, c.ratioInv-1)
}

// ProcessSample runs one sample of channel ch.
func (c *Compressor) ProcessSample(ch int, x float32) float32 {
	env := c.detector.Detect(ch, x)
	return float32(c.ComputeGain(env)) * x
}

// Process implements dsp.Stage.
func (c *Compressor) Process(block [][]float32) {
	if !c.prepared {
		return
	}
	minGain := 1.0
	channels := min(len(block), c.detector.Channels())
	for ch := 0; ch < channels; ch++ {
		buf := block[ch]
		for i, x := range buf {
			g := c.ComputeGain(c.detector.Detect(ch, x))
			if g < minGain {
				minGain = g
			}
			buf[i] = float32(g) * x
		}
	}
	c.lastGainReduction = -gain.LinearToDb(minGain)
}

// Reset implements dsp.Stage.
func (c *Compressor) Reset() {
	c.detector.Reset()
	c.lastGainReduction = 0
}
