// Package strip implements the DSP Temp processor: input gain, compressor
// and output gain in series, driven by a parameter registry.
package strip

import (
	"encoding/binary"
	"fmt"
	"io"
	"sync"
	"sync/atomic"

	"github.com/justyntemme/dsptemp/pkg/dsp/dynamics"
	"github.com/justyntemme/dsptemp/pkg/dsp/gain"
	"github.com/justyntemme/dsptemp/pkg/framework/bus"
	"github.com/justyntemme/dsptemp/pkg/framework/debug"
	"github.com/justyntemme/dsptemp/pkg/framework/dsp"
	"github.com/justyntemme/dsptemp/pkg/framework/param"
	"github.com/justyntemme/dsptemp/pkg/framework/plugin"
	"github.com/justyntemme/dsptemp/pkg/framework/process"
)

// Compressor engines selectable with WithEngine
const (
	EngineBallistics = dynamics.KindBallistics
	EngineSoftKnee   = dynamics.KindSoftKnee
)

// gainStage is what the processor needs from its input and output stages.
type gainStage interface {
	dsp.Stage
	SetGainDecibels(db float64) error
	SetRampDurationSeconds(seconds float64) error
}

type binding struct {
	key   string
	apply func(plain float64) error
}

// Processor is the DSP Temp audio processor.
type Processor struct {
	*plugin.BaseProcessor

	engine dynamics.Kind
	logger *debug.Logger

	input      gainStage
	compressor dynamics.Engine
	output     gainStage
	chain      *dsp.Chain

	bindings []binding
	handles  map[string]uint64
	bypass   *param.Parameter

	// Set by listeners on any goroutine, consumed by ProcessAudio
	dirty    atomic.Bool
	prepared bool

	programMu   sync.Mutex
	programName string
}

// Option configures a Processor.
type Option func(*Processor)

// WithEngine selects the compressor engine.
func WithEngine(kind dynamics.Kind) Option {
	return func(p *Processor) {
		p.engine = kind
	}
}

// WithLogger sets the logger used for setter failures and lifecycle events.
func WithLogger(l *debug.Logger) Option {
	return func(p *Processor) {
		if l != nil {
			p.logger = l
		}
	}
}

// withStages replaces the processing stages. Used by tests.
func withStages(input gainStage, compressor dynamics.Engine, output gainStage) Option {
	return func(p *Processor) {
		p.input = input
		p.compressor = compressor
		p.output = output
	}
}

// NewProcessor creates a processor with the DSP Temp parameter layout on a
// stereo bus configuration.
func NewProcessor(opts ...Option) (*Processor, error) {
	p := &Processor{
		BaseProcessor: plugin.NewBaseProcessor(bus.NewStereoConfiguration()),
		engine:        EngineBallistics,
		logger:        debug.Default(),
		handles:       make(map[string]uint64, len(listenedKeys)),
		programName:   DefaultProgramName,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.compressor == nil {
		engine, err := dynamics.New(p.engine)
		if err != nil {
			return nil, err
		}
		p.compressor = engine
	}
	if p.input == nil {
		p.input = gain.New()
	}
	if p.output == nil {
		p.output = gain.New()
	}

	chain, err := dsp.NewBuilder("dsptemp").
		WithStage("input", p.input).
		WithStage("compressor", p.compressor).
		WithStage("output", p.output).
		Build()
	if err != nil {
		return nil, err
	}
	p.chain = chain

	params := p.GetParameters()
	if err := params.Add(newParameters()...); err != nil {
		return nil, fmt.Errorf("register parameters: %w", err)
	}
	p.bypass = params.GetByKey(KeyBypass)

	p.bindings = []binding{
		{KeyInput, p.input.SetGainDecibels},
		{KeyOutput, p.output.SetGainDecibels},
		{KeyThreshold, p.compressor.SetThreshold},
		{KeyRatio, p.compressor.SetRatio},
		{KeyAttack, p.compressor.SetAttack},
		{KeyRelease, p.compressor.SetRelease},
	}

	for _, key := range listenedKeys {
		handle, err := params.AddListener(key, p.parameterChanged)
		if err != nil {
			return nil, fmt.Errorf("listen to %q: %w", key, err)
		}
		p.handles[key] = handle
	}

	p.OnReset(p.chain.Reset)
	p.State().SetCustomStateFuncs(p.saveProgram, p.loadProgram)

	return p, nil
}

// Close detaches the parameter listeners.
func (p *Processor) Close() {
	params := p.GetParameters()
	for key, handle := range p.handles {
		params.RemoveListener(key, handle)
		delete(p.handles, key)
	}
}

// Engine returns the selected compressor engine.
func (p *Processor) Engine() dynamics.Kind {
	return p.engine
}

func (p *Processor) parameterChanged(string, float64) {
	p.dirty.Store(true)
}

// updateParameters forwards every current value to its stage.
func (p *Processor) updateParameters() {
	p.chain.SetBypass(p.bypass.GetBool())
	params := p.GetParameters()
	for _, b := range p.bindings {
		value, err := params.RawValue(b.key)
		if err != nil {
			p.logger.Error("read %s: %v", b.key, err)
			continue
		}
		if err := b.apply(value); err != nil {
			p.logger.Error("apply %s=%g: %v", b.key, value, err)
		}
	}
}

// Initialize prepares the stages for the given sample rate and block size
// and applies the current parameter values.
func (p *Processor) Initialize(sampleRate float64, maxBlockSize int32) error {
	if err := p.BaseProcessor.Initialize(sampleRate, maxBlockSize); err != nil {
		return err
	}

	buses := p.GetBuses()
	channels := buses.MainChannels(bus.DirectionInput)
	if channels == 0 {
		channels = buses.MainChannels(bus.DirectionOutput)
	}
	spec := dsp.ProcessSpec{
		SampleRate:   sampleRate,
		MaxBlockSize: int(maxBlockSize),
		NumChannels:  channels,
	}

	if err := p.input.SetRampDurationSeconds(GainRampSeconds); err != nil {
		return err
	}
	if err := p.output.SetRampDurationSeconds(GainRampSeconds); err != nil {
		return err
	}
	if err := p.chain.Prepare(spec); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}

	p.dirty.Store(false)
	p.updateParameters()
	// Start from the configured gains rather than ramping up from unity
	p.chain.Reset()
	p.prepared = true

	p.logger.Debug("initialized: rate=%.0f block=%d channels=%d engine=%s",
		sampleRate, maxBlockSize, channels, p.engine)
	return nil
}

// ProcessAudio runs input gain, compressor and output gain in place on the
// output buffers. Output channels without a matching input are silenced.
func (p *Processor) ProcessAudio(ctx *process.Context) {
	if !p.prepared {
		ctx.PassThrough()
		return
	}
	if p.dirty.Swap(false) {
		p.updateParameters()
	}

	ctx.PassThrough()
	channels := ctx.GetNumChannels()
	if channels == 0 || ctx.NumSamples() == 0 {
		return
	}
	p.chain.Process(ctx.Output[:channels])
}

// Bypassed reports whether the chain was bypassed for the last block.
func (p *Processor) Bypassed() bool {
	return p.chain.IsBypassed()
}

// GainReduction reports the compressor's last block gain reduction in dB
// when the engine meters it.
func (p *Processor) GainReduction() (float64, bool) {
	type meter interface{ GainReduction() float64 }
	if m, ok := p.compressor.(meter); ok {
		return m.GainReduction(), true
	}
	return 0, false
}

// IsLayoutSupported accepts mono or stereo output with an identical input.
func (p *Processor) IsLayoutSupported(layout bus.Layout) bool {
	return bus.MatchingMonoOrStereo(layout)
}

// SetLayout switches the main buses to layout. Initialize must be called
// again before processing.
func (p *Processor) SetLayout(layout bus.Layout) error {
	if !p.IsLayoutSupported(layout) {
		return fmt.Errorf("unsupported bus layout %s", layout)
	}
	if p.IsActive() {
		return fmt.Errorf("cannot change bus layout while active")
	}
	if err := p.GetBuses().ApplyLayout(layout); err != nil {
		return err
	}
	p.prepared = false
	return nil
}

// Name returns the plugin display name.
func (p *Processor) Name() string { return PluginName }

// AcceptsMidi reports whether the processor consumes MIDI.
func (p *Processor) AcceptsMidi() bool { return false }

// ProducesMidi reports whether the processor emits MIDI.
func (p *Processor) ProducesMidi() bool { return false }

// IsMidiEffect reports whether the processor is a MIDI-only effect.
func (p *Processor) IsMidiEffect() bool { return false }

// HasEditor reports that hosts may show a generic parameter editor.
func (p *Processor) HasEditor() bool { return true }

// TailLengthSeconds returns how long output continues after input stops.
func (p *Processor) TailLengthSeconds() float64 { return 0 }

// SaveState writes the parameter state.
func (p *Processor) SaveState(w io.Writer) error {
	return p.State().Save(w)
}

// LoadState restores parameter state. Stages pick the values up on the next
// processing cycle.
func (p *Processor) LoadState(r io.Reader) error {
	return p.State().Load(r)
}

func (p *Processor) saveProgram(w io.Writer) error {
	p.programMu.Lock()
	name := []byte(p.programName)
	p.programMu.Unlock()

	if len(name) > MaxProgramNameLength {
		return fmt.Errorf("save program name: %w", ErrProgramNameTooLong)
	}
	if err := binary.Write(w, binary.LittleEndian, uint16(len(name))); err != nil {
		return err
	}
	_, err := w.Write(name)
	return err
}

func (p *Processor) loadProgram(r io.Reader) error {
	var n uint16
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return fmt.Errorf("read program name: %w", err)
	}
	name := make([]byte, n)
	if _, err := io.ReadFull(r, name); err != nil {
		return fmt.Errorf("read program name: %w", err)
	}
	p.programMu.Lock()
	p.programName = string(name)
	p.programMu.Unlock()
	return nil
}
