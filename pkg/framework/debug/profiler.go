package debug

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

// Measurement holds timing statistics for a profiled section.
type Measurement struct {
	Count uint64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
	Last  time.Duration
}

// Average returns the mean duration per call.
func (m Measurement) Average() time.Duration {
	if m.Count == 0 {
		return 0
	}
	return m.Total / time.Duration(m.Count)
}

// Profiler accumulates timings of named sections.
type Profiler struct {
	mu           sync.Mutex
	measurements map[string]*Measurement
	order        []string
	now          func() time.Time
}

// NewProfiler creates an empty profiler.
func NewProfiler() *Profiler {
	return &Profiler{
		measurements: make(map[string]*Measurement),
		now:          time.Now,
	}
}

// Start begins timing a named section and returns the function that stops it.
func (p *Profiler) Start(name string) func() {
	start := p.now()
	return func() {
		p.Record(name, p.now().Sub(start))
	}
}

// Record adds one timing for name.
func (p *Profiler) Record(name string, elapsed time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.measurements[name]
	if !ok {
		m = &Measurement{Min: elapsed, Max: elapsed}
		p.measurements[name] = m
		p.order = append(p.order, name)
	}
	m.Count++
	m.Total += elapsed
	m.Last = elapsed
	m.Min = min(m.Min, elapsed)
	m.Max = max(m.Max, elapsed)
}

// Measurement returns a copy of the statistics for name.
func (p *Profiler) Measurement(name string) (Measurement, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	m, ok := p.measurements[name]
	if !ok {
		return Measurement{}, false
	}
	return *m, true
}

// Reset clears all measurements.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.measurements = make(map[string]*Measurement)
	p.order = nil
}

// Report formats every section in first-recorded order.
func (p *Profiler) Report() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.order) == 0 {
		return "No measurements recorded\n"
	}

	var sb strings.Builder
	for _, name := range p.order {
		m := p.measurements[name]
		fmt.Fprintf(&sb, "%s: count=%d avg=%v min=%v max=%v\n",
			name, m.Count, m.Average(), m.Min, m.Max)
	}
	return sb.String()
}

// BlockProfiler times ProcessAudio calls and relates them to the real-time
// budget of one block.
type BlockProfiler struct {
	*Profiler
	sampleRate float64
}

// ProcessSection is the section name BlockProfiler uses for audio blocks.
const ProcessSection = "ProcessAudio"

// NewBlockProfiler creates a profiler for audio running at sampleRate.
func NewBlockProfiler(sampleRate float64) *BlockProfiler {
	return &BlockProfiler{Profiler: NewProfiler(), sampleRate: sampleRate}
}

// Block times fn as one block of n samples.
func (b *BlockProfiler) Block(n int, fn func()) {
	stop := b.Start(ProcessSection)
	fn()
	stop()
	b.Record("samples", time.Duration(n))
}

// CPULoad returns processing time as a percentage of the audio duration
// processed so far.
func (b *BlockProfiler) CPULoad() float64 {
	blocks, ok := b.Measurement(ProcessSection)
	samples, _ := b.Measurement("samples")
	if !ok || samples.Total == 0 || b.sampleRate <= 0 {
		return 0
	}
	audio := time.Duration(float64(samples.Total) / b.sampleRate * float64(time.Second))
	return float64(blocks.Total) / float64(audio) * 100
}

// AudioReport formats block statistics and CPU load.
func (b *BlockProfiler) AudioReport() string {
	blocks, _ := b.Measurement(ProcessSection)
	samples, _ := b.Measurement("samples")
	return fmt.Sprintf("blocks=%d samples=%d avg=%v max=%v load=%.2f%%",
		blocks.Count, int64(samples.Total), blocks.Average(), blocks.Max, b.CPULoad())
}
