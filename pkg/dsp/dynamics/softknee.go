package dynamics

import (
	"fmt"

	algodyn "github.com/cwbudde/algo-dsp/dsp/effects/dynamics"
	"github.com/justyntemme/dsptemp/pkg/framework/dsp"
)

// SoftKnee runs one algo-dsp compressor per channel. Knee width and makeup
// are held at zero so the four controls mean the same as on Compressor.
type SoftKnee struct {
	thresholdDB float64
	ratio       float64
	attackMs    float64
	releaseMs   float64

	channels []*algodyn.Compressor
	scratch  []float64
}

// NewSoftKnee creates an unprepared soft-knee engine with the same defaults
// as NewCompressor.
func NewSoftKnee() *SoftKnee {
	return &SoftKnee{
		thresholdDB: 0,
		ratio:       1,
		attackMs:    1,
		releaseMs:   100,
	}
}

// Prepare implements dsp.Stage.
func (s *SoftKnee) Prepare(spec dsp.ProcessSpec) error {
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("soft-knee compressor: %w", err)
	}

	channels := make([]*algodyn.Compressor, spec.NumChannels)
	for ch := range channels {
		c, err := algodyn.NewCompressor(spec.SampleRate)
		if err != nil {
			return fmt.Errorf("soft-knee compressor channel %d: %w", ch, err)
		}
		if err := s.configure(c); err != nil {
			return fmt.Errorf("soft-knee compressor channel %d: %w", ch, err)
		}
		channels[ch] = c
	}

	s.channels = channels
	s.scratch = make([]float64, spec.MaxBlockSize)
	return nil
}

func (s *SoftKnee) configure(c *algodyn.Compressor) error {
	if err := c.SetKnee(0); err != nil {
		return err
	}
	// SetMakeupGain also switches auto makeup off
	if err := c.SetMakeupGain(0); err != nil {
		return err
	}
	if err := c.SetThreshold(s.thresholdDB); err != nil {
		return err
	}
	if err := c.SetRatio(s.ratio); err != nil {
		return err
	}
	if err := c.SetAttack(s.attackMs); err != nil {
		return err
	}
	return c.SetRelease(s.releaseMs)
}

// SetThreshold sets the threshold in dB.
func (s *SoftKnee) SetThreshold(dB float64) error {
	if err := finite("threshold", dB); err != nil {
		return err
	}
	s.thresholdDB = dB
	return s.each(func(c *algodyn.Compressor) error { return c.SetThreshold(dB) })
}

// SetRatio sets the compression ratio.
func (s *SoftKnee) SetRatio(ratio float64) error {
	r, err := clampFinite("ratio", ratio, MinRatio, MaxRatio)
	if err != nil {
		return err
	}
	s.ratio = r
	return s.each(func(c *algodyn.Compressor) error { return c.SetRatio(r) })
}

// SetAttack sets the attack time in milliseconds.
func (s *SoftKnee) SetAttack(ms float64) error {
	v, err := clampFinite("attack", ms, MinAttackMs, MaxAttackMs)
	if err != nil {
		return err
	}
	s.attackMs = v
	return s.each(func(c *algodyn.Compressor) error { return c.SetAttack(v) })
}

// SetRelease sets the release time in milliseconds.
func (s *SoftKnee) SetRelease(ms float64) error {
	v, err := clampFinite("release", ms, MinReleaseMs, MaxReleaseMs)
	if err != nil {
		return err
	}
	s.releaseMs = v
	return s.each(func(c *algodyn.Compressor) error { return c.SetRelease(v) })
}

// Threshold returns the threshold in dB.
func (s *SoftKnee) Threshold() float64 { return s.thresholdDB }

// Ratio returns the compression ratio.
func (s *SoftKnee) Ratio() float64 { return s.ratio }

// Attack returns the attack time in milliseconds.
func (s *SoftKnee) Attack() float64 { return s.attackMs }

// Release returns the release time in milliseconds.
func (s *SoftKnee) Release() float64 { return s.releaseMs }

func (s *SoftKnee) each(fn func(c *algodyn.Compressor) error) error {
	for _, c := range s.channels {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

// Process implements dsp.Stage.
func (s *SoftKnee) Process(block [][]float32) {
	channels := min(len(block), len(s.channels))
	for ch := 0; ch < channels; ch++ {
		buf := block[ch]
		for start := 0; start < len(buf); start += len(s.scratch) {
			end := min(start+len(s.scratch), len(buf))
			work := s.scratch[:end-start]
			for i := range work {
				work[i] = float64(buf[start+i])
			}
			s.channels[ch].ProcessInPlace(work)
			for i, v := range work {
				buf[start+i] = float32(v)
			}
		}
	}
}

// Reset implements dsp.Stage.
func (s *SoftKnee) Reset() {
	for _, c := range s.channels {
		c.Reset()
	}
}
