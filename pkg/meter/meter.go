// Package meter measures peak and RMS levels of audio blocks.
package meter

import (
	"fmt"
	"math"
	"strings"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// FloorDB is reported for silence.
const FloorDB = -144.0

// ToDB converts a linear magnitude to dBFS, clamped at FloorDB.
func ToDB(linear float64) float64 {
	if linear <= 0 {
		return FloorDB
	}
	return math.Max(FloorDB, 20*math.Log10(linear))
}

// Peak returns the largest absolute sample of x.
func Peak(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return vecmath.MaxAbs(x)
}

// RMS returns the root mean square of x.
func RMS(x []float64) float64 {
	if len(x) == 0 {
		return 0
	}
	return math.Sqrt(vecmath.DotProduct(x, x) / float64(len(x)))
}

// Reading is the accumulated level of one channel.
type Reading struct {
	PeakDB float64
	RMSDB  float64
}

func (r Reading) String() string {
	return fmt.Sprintf("peak %6.1f dBFS  rms %6.1f dBFS", r.PeakDB, r.RMSDB)
}

// Meter accumulates peak and RMS per channel over many blocks.
type Meter struct {
	scratch []float64
	peak    []float64
	sumSq   []float64
	samples int64
}

// New creates a meter for channels channels. Blocks longer than maxBlock
// are measured in chunks.
func New(channels, maxBlock int) (*Meter, error) {
	if channels <= 0 {
		return nil, fmt.Errorf("meter channels must be positive: %d", channels)
	}
	if maxBlock <= 0 {
		return nil, fmt.Errorf("meter block size must be positive: %d", maxBlock)
	}
	return &Meter{
		scratch: make([]float64, maxBlock),
		peak:    make([]float64, channels),
		sumSq:   make([]float64, channels),
	}, nil
}

// Channels returns the number of metered channels.
func (m *Meter) Channels() int {
	return len(m.peak)
}

// Samples returns the number of frames measured since the last reset.
func (m *Meter) Samples() int64 {
	return m.samples
}

// Measure adds a block of channel buffers. Extra channels are ignored and
// every channel is assumed to have the length of the first.
func (m *Meter) Measure(block [][]float32) {
	if len(block) == 0 {
		return
	}
	n := len(block[0])
	channels := min(len(block), len(m.peak))
	for ch := 0; ch < channels; ch++ {
		samples := block[ch]
		for start := 0; start < len(samples); start += len(m.scratch) {
			end := min(start+len(m.scratch), len(samples))
			chunk := m.scratch[:end-start]
			for i, v := range samples[start:end] {
				chunk[i] = float64(v)
			}
			m.peak[ch] = math.Max(m.peak[ch], vecmath.MaxAbs(chunk))
			m.sumSq[ch] += vecmath.DotProduct(chunk, chunk)
		}
	}
	m.samples += int64(n)
}

// Reading returns the accumulated level of channel ch.
func (m *Meter) Reading(ch int) Reading {
	if ch < 0 || ch >= len(m.peak) {
		return Reading{PeakDB: FloorDB, RMSDB: FloorDB}
	}
	rms := 0.0
	if m.samples > 0 {
		rms = math.Sqrt(m.sumSq[ch] / float64(m.samples))
	}
	return Reading{PeakDB: ToDB(m.peak[ch]), RMSDB: ToDB(rms)}
}

// Readings returns every channel's level.
func (m *Meter) Readings() []Reading {
	out := make([]Reading, len(m.peak))
	for ch := range out {
		out[ch] = m.Reading(ch)
	}
	return out
}

// Report formats the readings one channel per line.
func (m *Meter) Report(label string) string {
	var sb strings.Builder
	for ch, r := range m.Readings() {
		fmt.Fprintf(&sb, "%-8s ch%d  %s\n", label, ch, r)
	}
	return sb.String()
}

// Reset clears the accumulated levels.
func (m *Meter) Reset() {
	clear(m.peak)
	clear(m.sumSq)
	m.samples = 0
}
