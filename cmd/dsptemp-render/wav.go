package main

import (
	"fmt"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

const (
	outputBitDepth = 16
	pcmFormat      = 1
)

// pcmAudio is de-interleaved audio in the range [-1, 1].
type pcmAudio struct {
	sampleRate int
	bitDepth   int
	channels   [][]float32
}

func (a *pcmAudio) numChannels() int { return len(a.channels) }

func (a *pcmAudio) numFrames() int {
	if len(a.channels) == 0 {
		return 0
	}
	return len(a.channels[0])
}

// readWAV decodes a PCM WAV file into per-channel float32 slices.
func readWAV(path string) (*pcmAudio, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	if buf == nil || buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("invalid WAV buffer: %s", path)
	}

	bitDepth := buf.SourceBitDepth
	if bitDepth == 0 {
		bitDepth = int(dec.BitDepth)
	}
	return &pcmAudio{
		sampleRate: buf.Format.SampleRate,
		bitDepth:   bitDepth,
		channels:   deinterleave(buf.Data, buf.Format.NumChannels, bitDepth),
	}, nil
}

// deinterleave splits integer PCM frames into normalized channels.
// 8-bit WAV data is unsigned and centred on 128.
func deinterleave(data []int, numChannels, bitDepth int) [][]float32 {
	frames := len(data) / numChannels
	scale := float32(1) / float32(int64(1)<<(bitDepth-1))
	offset := 0
	if bitDepth == 8 {
		offset = 128
	}

	out := make([][]float32, numChannels)
	for ch := range out {
		out[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numChannels; ch++ {
			out[ch][i] = float32(data[i*numChannels+ch]-offset) * scale
		}
	}
	return out
}

// interleave packs channels into 16-bit integer frames, clipping at full scale.
func interleave(channels [][]float32) []int {
	if len(channels) == 0 {
		return nil
	}
	frames := len(channels[0])
	data := make([]int, frames*len(channels))
	for i := 0; i < frames; i++ {
		for ch, samples := range channels {
			v := math.Round(float64(samples[i]) * 32768)
			data[i*len(channels)+ch] = int(math.Max(math.MinInt16, math.Min(math.MaxInt16, v)))
		}
	}
	return data
}

// writeWAV encodes audio as 16-bit PCM.
func writeWAV(path string, a *pcmAudio) error {
	if a.numChannels() == 0 {
		return fmt.Errorf("no channels to write")
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}

	enc := wav.NewEncoder(f, a.sampleRate, outputBitDepth, a.numChannels(), pcmFormat)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			SampleRate:  a.sampleRate,
			NumChannels: a.numChannels(),
		},
		Data:           interleave(a.channels),
		SourceBitDepth: outputBitDepth,
	}
	if err := enc.Write(buf); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := enc.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("finalize %s: %w", path, err)
	}
	return f.Close()
}
