// Command dsptemp-render runs a WAV file through the DSP Temp processor.
//
// Usage:
//
//	dsptemp-render -in input.wav -out output.wav
//	dsptemp-render -in vox.wav -out vox-comp.wav -threshold -24 -ratio 4 -attack 5
//	dsptemp-render -in drums.wav -out drums-comp.wav -preset drums.json -engine softknee
//	dsptemp-render -v -log render.log -in input.wav -out output.wav
//	dsptemp-render -list
//
// Flags override preset values, which override parameter defaults.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/justyntemme/dsptemp/pkg/dsp/dynamics"
	"github.com/justyntemme/dsptemp/pkg/framework/bus"
	"github.com/justyntemme/dsptemp/pkg/framework/debug"
	"github.com/justyntemme/dsptemp/pkg/framework/plugin"
	"github.com/justyntemme/dsptemp/pkg/preset"
	"github.com/justyntemme/dsptemp/pkg/strip"
)

const defaultBlockSize = 512

var (
	registerOnce sync.Once
	registerErr  error
)

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "dsptemp-render: %v\n", err)
		os.Exit(1)
	}
}

// registerPlugin adds DSP Temp to the plugin factory once per process.
func registerPlugin() error {
	registerOnce.Do(func() {
		registerErr = plugin.Register(strip.NewPlugin())
	})
	return registerErr
}

type config struct {
	in, out    string
	presetPath string
	savePreset string
	blockSize  int
	engine     string
	bypass     bool
	verbose    bool
	logPath    string
	list       bool

	// Parameter overrides; only flags given on the command line are applied
	overrides map[string]*float64
	set       map[string]bool
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	fs := flag.NewFlagSet("dsptemp-render", flag.ContinueOnError)
	fs.SetOutput(stderr)

	cfg := &config{overrides: make(map[string]*float64)}
	fs.StringVar(&cfg.in, "in", "", "Input WAV file")
	fs.StringVar(&cfg.out, "out", "", "Output WAV file (16-bit PCM)")
	fs.StringVar(&cfg.presetPath, "preset", "", "JSON preset to apply before flag overrides")
	fs.StringVar(&cfg.savePreset, "save-preset", "", "Write the final settings to this JSON preset")
	fs.IntVar(&cfg.blockSize, "block", defaultBlockSize, "Processing block size in frames")
	fs.StringVar(&cfg.engine, "engine", "", "Compressor engine: ballistics or softknee")
	fs.BoolVar(&cfg.bypass, "bypass", false, "Bypass processing")
	fs.BoolVar(&cfg.verbose, "v", false, "Verbose output")
	fs.StringVar(&cfg.logPath, "log", "", "Append log output to this file instead of stderr")
	fs.BoolVar(&cfg.list, "list", false, "List registered plugins and exit")

	cfg.overrides[strip.KeyInput] = fs.Float64("input", 0, "Input gain in dB")
	cfg.overrides[strip.KeyThreshold] = fs.Float64("threshold", 0, "Compressor threshold in dB")
	cfg.overrides[strip.KeyRatio] = fs.Float64("ratio", 1, "Compression ratio")
	cfg.overrides[strip.KeyAttack] = fs.Float64("attack", strip.AttackCentre, "Attack time in ms")
	cfg.overrides[strip.KeyRelease] = fs.Float64("release", strip.ReleaseCentre, "Release time in ms")
	cfg.overrides[strip.KeyOutput] = fs.Float64("output", 0, "Output gain in dB")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { cfg.set[f.Name] = true })

	if cfg.list {
		return cfg, nil
	}
	if cfg.in == "" || cfg.out == "" {
		fs.Usage()
		return nil, fmt.Errorf("-in and -out are required")
	}
	if cfg.blockSize <= 0 {
		return nil, fmt.Errorf("-block must be positive, got %d", cfg.blockSize)
	}
	return cfg, nil
}

// overrideFlag maps a parameter key to the flag that overrides it.
var overrideFlag = map[string]string{
	strip.KeyInput:     "input",
	strip.KeyThreshold: "threshold",
	strip.KeyRatio:     "ratio",
	strip.KeyAttack:    "attack",
	strip.KeyRelease:   "release",
	strip.KeyOutput:    "output",
}

// overridesFile turns the flags given on the command line into a preset so
// they get the same range checks as preset files.
func (c *config) overridesFile() *preset.File {
	f := &preset.File{}
	fields := map[string]**float64{
		strip.KeyInput:     &f.InputDB,
		strip.KeyThreshold: &f.ThresholdDB,
		strip.KeyRatio:     &f.Ratio,
		strip.KeyAttack:    &f.AttackMs,
		strip.KeyRelease:   &f.ReleaseMs,
		strip.KeyOutput:    &f.OutputDB,
	}
	for key, dst := range fields {
		if c.set[overrideFlag[key]] {
			*dst = c.overrides[key]
		}
	}
	if c.set["bypass"] {
		f.Bypass = &c.bypass
	}
	return f
}

func run(args []string, stdout, stderr io.Writer) error {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}

	logger := debug.New(stderr, "dsptemp-render", debug.FlagLevel|debug.FlagPrefix)
	if cfg.logPath != "" {
		fileLogger, closer, err := debug.NewFileLogger(cfg.logPath, "dsptemp-render", debug.FlagLevel|debug.FlagPrefix)
		if err != nil {
			return err
		}
		defer closer.Close()
		logger = fileLogger
	}
	logger.SetLevel(debug.LogLevelWarn)
	if cfg.verbose {
		logger.SetLevel(debug.LogLevelDebug)
	}

	if err := registerPlugin(); err != nil {
		return err
	}
	if cfg.list {
		listPlugins(stdout)
		return nil
	}

	var file *preset.File
	if cfg.presetPath != "" {
		if file, err = preset.LoadJSON(cfg.presetPath); err != nil {
			return err
		}
	}

	proc, err := newProcessor(cfg, file, logger)
	if err != nil {
		return err
	}
	defer proc.Close()
	if logger.Enabled(debug.LogLevelDebug) {
		for _, p := range proc.GetParameters().All() {
			logger.Debug("%-8s %s", p.Name, p.FormatValue(p.GetValue()))
		}
	}

	in, err := readWAV(cfg.in)
	if err != nil {
		return err
	}
	logger.Info("input: %s, %d Hz, %d channels, %d-bit, %d frames",
		cfg.in, in.sampleRate, in.numChannels(), in.bitDepth, in.numFrames())

	layout := bus.Layout{
		Input:  bus.ChannelSetFor(in.numChannels()),
		Output: bus.ChannelSetFor(in.numChannels()),
	}
	if err := proc.SetLayout(layout); err != nil {
		return err
	}
	if err := proc.Initialize(float64(in.sampleRate), int32(cfg.blockSize)); err != nil {
		return err
	}
	if err := proc.SetActive(true); err != nil {
		return err
	}

	out, stats, err := render(proc, in, cfg.blockSize)
	if err != nil {
		return err
	}
	if err := proc.SetActive(false); err != nil {
		return err
	}

	if err := writeWAV(cfg.out, out); err != nil {
		return err
	}
	if cfg.savePreset != "" {
		if err := preset.SaveJSON(cfg.savePreset, preset.Capture(proc)); err != nil {
			return err
		}
	}

	fmt.Fprintf(stdout, "wrote %s (%d frames, %s engine)\n", cfg.out, out.numFrames(), proc.Engine())
	fmt.Fprint(stdout, stats.report())
	if reduction, ok := proc.GainReduction(); ok {
		fmt.Fprintf(stdout, "gain reduction (last block): %.1f dB\n", reduction)
	}
	logger.Debug("profile: %s", stats.profiler.AudioReport())
	return nil
}

// newProcessor creates the processor through the plugin factory and applies
// the preset and flag overrides.
func newProcessor(cfg *config, file *preset.File, logger *debug.Logger) (*strip.Processor, error) {
	registered, ok := plugin.Lookup(strip.PluginID)
	if !ok {
		return nil, fmt.Errorf("plugin %s not registered", strip.PluginID)
	}
	pl, ok := registered.(*strip.Plugin)
	if !ok {
		return nil, fmt.Errorf("plugin %s has unexpected type %T", strip.PluginID, registered)
	}

	opts := []strip.Option{strip.WithLogger(logger)}
	if file != nil {
		presetOpts, err := file.Options()
		if err != nil {
			return nil, err
		}
		opts = append(opts, presetOpts...)
	}
	if cfg.engine != "" {
		kind, err := dynamics.ParseKind(cfg.engine)
		if err != nil {
			return nil, err
		}
		opts = append(opts, strip.WithEngine(kind))
	}

	proc, err := pl.NewProcessor(opts...)
	if err != nil {
		return nil, err
	}
	if err := preset.Apply(proc, file); err != nil {
		proc.Close()
		return nil, err
	}
	if err := preset.Apply(proc, cfg.overridesFile()); err != nil {
		proc.Close()
		return nil, fmt.Errorf("flags: %w", err)
	}
	return proc, nil
}

func listPlugins(w io.Writer) {
	info := plugin.GetFactoryInfo()
	fmt.Fprintf(w, "vendor: %s <%s>\n", info.Vendor, info.URL)
	for _, p := range plugin.Plugins() {
		uid := p.UID()
		fmt.Fprintf(w, "%s\t%s %s\t%s\t%x\n", p.ID, p.Name, p.Version, p.Category, uid[:])
	}
}
