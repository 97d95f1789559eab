package main

import (
	"fmt"

	"github.com/justyntemme/dsptemp/pkg/framework/debug"
	"github.com/justyntemme/dsptemp/pkg/framework/plugin"
	"github.com/justyntemme/dsptemp/pkg/framework/process"
	"github.com/justyntemme/dsptemp/pkg/meter"
)

// renderStats collects what the report prints after a render.
type renderStats struct {
	input    *meter.Meter
	output   *meter.Meter
	profiler *debug.BlockProfiler
}

// render runs proc over in, blockSize frames at a time, and returns the
// processed audio. proc must already be initialized for in's sample rate.
func render(proc plugin.Processor, in *pcmAudio, blockSize int) (*pcmAudio, *renderStats, error) {
	if blockSize <= 0 {
		return nil, nil, fmt.Errorf("block size must be positive: %d", blockSize)
	}
	numChannels := in.numChannels()
	frames := in.numFrames()

	inMeter, err := meter.New(numChannels, blockSize)
	if err != nil {
		return nil, nil, err
	}
	outMeter, err := meter.New(numChannels, blockSize)
	if err != nil {
		return nil, nil, err
	}
	stats := &renderStats{
		input:    inMeter,
		output:   outMeter,
		profiler: debug.NewBlockProfiler(float64(in.sampleRate)),
	}

	out := &pcmAudio{
		sampleRate: in.sampleRate,
		bitDepth:   outputBitDepth,
		channels:   make([][]float32, numChannels),
	}
	for ch := range out.channels {
		out.channels[ch] = make([]float32, frames)
	}

	ctx := process.NewContext(float64(in.sampleRate), numChannels)

	for start := 0; start < frames; start += blockSize {
		end := min(start+blockSize, frames)
		for ch := 0; ch < numChannels; ch++ {
			ctx.Input[ch] = in.channels[ch][start:end]
			ctx.Output[ch] = out.channels[ch][start:end]
		}
		stats.input.Measure(ctx.Input)
		stats.profiler.Block(end-start, func() {
			proc.ProcessAudio(ctx)
		})
		stats.output.Measure(ctx.Output)
	}
	return out, stats, nil
}

func (s *renderStats) report() string {
	return s.input.Report("input") + s.output.Report("output")
}
