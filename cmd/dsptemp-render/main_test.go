package main

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/dsptemp/pkg/framework/debug"
	"github.com/justyntemme/dsptemp/pkg/meter"
	"github.com/justyntemme/dsptemp/pkg/preset"
	"github.com/justyntemme/dsptemp/pkg/strip"
)

func sineAudio(channels, frames, sampleRate int, amplitude float64) *pcmAudio {
	a := &pcmAudio{sampleRate: sampleRate, bitDepth: outputBitDepth, channels: make([][]float32, channels)}
	for ch := range a.channels {
		a.channels[ch] = make([]float32, frames)
		for i := range a.channels[ch] {
			a.channels[ch][i] = float32(amplitude * math.Sin(2*math.Pi*1000*float64(i)/float64(sampleRate)))
		}
	}
	return a
}

func writeInput(t *testing.T, a *pcmAudio) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "in.wav")
	require.NoError(t, writeWAV(path, a))
	return path
}

func peak(samples []float32) float64 {
	var p float64
	for _, v := range samples {
		p = math.Max(p, math.Abs(float64(v)))
	}
	return p
}

func TestReadWAV_FileNotFound(t *testing.T) {
	_, err := readWAV("/nonexistent/file.wav")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")
}

func TestReadWAV_InvalidWAV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "invalid.wav")
	require.NoError(t, os.WriteFile(path, []byte("not a wav file"), 0o644))

	_, err := readWAV(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid WAV file")
}

func TestWAVRoundTrip(t *testing.T) {
	src := sineAudio(2, 1000, 44100, 0.5)
	src.channels[1][10] = -1

	got, err := readWAV(writeInput(t, src))
	require.NoError(t, err)
	assert.Equal(t, 44100, got.sampleRate)
	assert.Equal(t, 16, got.bitDepth)
	require.Equal(t, 2, got.numChannels())
	require.Equal(t, 1000, got.numFrames())

	for ch := range src.channels {
		for i := range src.channels[ch] {
			require.InDelta(t, src.channels[ch][i], got.channels[ch][i], 1.0/32768)
		}
	}
	assert.Equal(t, float32(-1), got.channels[1][10])
}

func TestDeinterleave(t *testing.T) {
	out := deinterleave([]int{16384, -32768, 0, 32767}, 2, 16)
	require.Len(t, out, 2)
	assert.Equal(t, []float32{0.5, 0}, out[0])
	assert.InDelta(t, -1, out[1][0], 1e-9)
	assert.InDelta(t, 32767.0/32768, out[1][1], 1e-9)

	unsigned := deinterleave([]int{128, 255, 0}, 1, 8)
	assert.InDelta(t, 0, unsigned[0][0], 1e-9)
	assert.InDelta(t, 127.0/128, unsigned[0][1], 1e-9)
	assert.InDelta(t, -1, unsigned[0][2], 1e-9)
}

func TestInterleaveClips(t *testing.T) {
	data := interleave([][]float32{{0.5, 2}, {-2, 0}})
	assert.Equal(t, []int{16384, -32768, 32767, 0}, data)
	assert.Nil(t, interleave(nil))
}

func TestRenderBypassIsIdentity(t *testing.T) {
	proc, err := strip.NewProcessor(strip.WithLogger(debug.Discard()))
	require.NoError(t, err)
	defer proc.Close()
	require.NoError(t, proc.GetParameters().SetPlain(strip.KeyInput, 12))
	require.NoError(t, proc.GetParameters().SetBool(strip.KeyBypass, true))
	require.NoError(t, proc.Initialize(48000, 64))

	in := sineAudio(2, 1000, 48000, 0.25)
	out, stats, err := render(proc, in, 64)
	require.NoError(t, err)
	assert.Equal(t, in.channels, out.channels)

	blocks, ok := stats.profiler.Measurement(debug.ProcessSection)
	require.True(t, ok)
	assert.EqualValues(t, 16, blocks.Count) // 15 full blocks and one of 40 frames
	assert.EqualValues(t, 1000, stats.input.Samples())
	assert.Equal(t, stats.input.Readings(), stats.output.Readings())
}

func TestRenderRejectsBlockSize(t *testing.T) {
	proc, err := strip.NewProcessor(strip.WithLogger(debug.Discard()))
	require.NoError(t, err)
	defer proc.Close()

	_, _, err = render(proc, sineAudio(1, 10, 48000, 0.1), 0)
	assert.Error(t, err)
}

func TestRunCompresses(t *testing.T) {
	in := sineAudio(2, 48000, 48000, 0.9)
	inPath := writeInput(t, in)
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.wav")
	presetPath := filepath.Join(dir, "final.json")

	var stdout, stderr bytes.Buffer
	err := run([]string{
		"-in", inPath, "-out", outPath,
		"-threshold", "-20", "-ratio", "4", "-attack", "1",
		"-save-preset", presetPath,
	}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	out, err := readWAV(outPath)
	require.NoError(t, err)
	require.Equal(t, in.numFrames(), out.numFrames())

	// Skip the attack phase and compare the settled second half
	settled := out.channels[0][24000:]
	assert.Less(t, meter.ToDB(peak(settled)), meter.ToDB(0.9)-6)

	assert.Contains(t, stdout.String(), "wrote "+outPath)
	assert.Contains(t, stdout.String(), "ballistics engine")
	assert.Contains(t, stdout.String(), "gain reduction")

	saved, err := preset.LoadJSON(presetPath)
	require.NoError(t, err)
	require.NotNil(t, saved.ThresholdDB)
	assert.InDelta(t, -20, *saved.ThresholdDB, 1e-6)
	assert.InDelta(t, 4, *saved.Ratio, 1e-6)
}

func TestRunPresetAndEngineFlag(t *testing.T) {
	inPath := writeInput(t, sineAudio(1, 4800, 48000, 0.5))
	dir := t.TempDir()
	presetPath := filepath.Join(dir, "p.json")
	require.NoError(t, os.WriteFile(presetPath, []byte(`{"output_db": -6.0206, "engine": "ballistics"}`), 0o644))
	outPath := filepath.Join(dir, "out.wav")

	var stdout, stderr bytes.Buffer
	err := run([]string{"-in", inPath, "-out", outPath, "-preset", presetPath, "-engine", "softknee"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	assert.Contains(t, stdout.String(), "softknee engine")

	out, err := readWAV(outPath)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, peak(out.channels[0]), 2e-3)
}

func TestRunBypassFlag(t *testing.T) {
	in := sineAudio(2, 2000, 44100, 0.5)
	inPath := writeInput(t, in)
	outPath := filepath.Join(t.TempDir(), "out.wav")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-in", inPath, "-out", outPath, "-input", "12", "-bypass"}, &stdout, &stderr))

	src, err := readWAV(inPath)
	require.NoError(t, err)
	out, err := readWAV(outPath)
	require.NoError(t, err)
	assert.Equal(t, src.channels, out.channels)
}

func TestRunErrors(t *testing.T) {
	inPath := writeInput(t, sineAudio(2, 100, 48000, 0.1))
	quad := writeInput(t, sineAudio(4, 100, 48000, 0.1))
	outPath := filepath.Join(t.TempDir(), "out.wav")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing paths", []string{}, "-in and -out are required"},
		{"bad block", []string{"-in", inPath, "-out", outPath, "-block", "0"}, "-block must be positive"},
		{"bad engine", []string{"-in", inPath, "-out", outPath, "-engine", "tube"}, "unknown compressor engine"},
		{"ratio out of range", []string{"-in", inPath, "-out", outPath, "-ratio", "50"}, "ratio must be in"},
		{"unsupported layout", []string{"-in", quad, "-out", outPath}, "unsupported bus layout"},
		{"missing preset", []string{"-in", inPath, "-out", outPath, "-preset", "/nonexistent.json"}, "nonexistent.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(tt.args, &stdout, &stderr)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestRunList(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-list"}, &stdout, &stderr))
	assert.Contains(t, stdout.String(), strip.PluginID)
	assert.Contains(t, stdout.String(), "Fx|Dynamics")
}

func TestRunVerboseLogsParameters(t *testing.T) {
	inPath := writeInput(t, sineAudio(1, 256, 48000, 0.1))
	outPath := filepath.Join(t.TempDir(), "out.wav")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-v", "-in", inPath, "-out", outPath, "-ratio", "3"}, &stdout, &stderr))
	assert.Contains(t, stderr.String(), "[dsptemp-render]")
	assert.Contains(t, stderr.String(), "Ratio")
	assert.Contains(t, stderr.String(), "profile: blocks=1")
}

func TestRunLogFile(t *testing.T) {
	inPath := writeInput(t, sineAudio(1, 256, 48000, 0.1))
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.wav")
	logPath := filepath.Join(dir, "logs", "render.log")

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-v", "-log", logPath, "-in", inPath, "-out", outPath}, &stdout, &stderr))
	assert.Empty(t, stderr.String())

	logged, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(logged), "[dsptemp-render]")
	assert.Contains(t, string(logged), "profile: blocks=1")

	// A second run appends
	require.NoError(t, run([]string{"-v", "-log", logPath, "-in", inPath, "-out", outPath}, &stdout, &stderr))
	again, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Greater(t, len(again), len(logged))
}
