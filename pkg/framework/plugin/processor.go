// Package plugin defines the processor contract a host drives and a small
// registry of plugins.
package plugin

import (
	"github.com/justyntemme/dsptemp/pkg/framework/bus"
	"github.com/justyntemme/dsptemp/pkg/framework/param"
	"github.com/justyntemme/dsptemp/pkg/framework/process"
	"github.com/justyntemme/dsptemp/pkg/framework/state"
)

// Processor handles audio processing
type Processor interface {
	// Initialize is called before processing starts
	Initialize(sampleRate float64, maxBlockSize int32) error

	// ProcessAudio processes one block. It must not allocate.
	ProcessAudio(ctx *process.Context)

	GetParameters() *param.Registry
	GetBuses() *bus.Configuration

	// SetActive is called when processing starts or stops
	SetActive(active bool) error

	GetLatencySamples() int32
	GetTailSamples() int32
}

// Plugin describes a plugin and creates processor instances
type Plugin interface {
	GetInfo() Info
	CreateProcessor() Processor
}

// BaseProcessor provides common functionality for audio processors
type BaseProcessor struct {
	params     *param.Registry
	buses      *bus.Configuration
	state      *state.Manager
	sampleRate float64
	blockSize  int32
	active     bool

	// Optional callbacks for customization
	onInitialize func(sampleRate float64, maxBlockSize int32) error
	onSetActive  func(active bool) error
	onReset      func()
}

// NewBaseProcessor creates a new base processor with the given bus configuration
func NewBaseProcessor(buses *bus.Configuration) *BaseProcessor {
	if buses == nil {
		buses = bus.NewStereoConfiguration() // Default to stereo
	}

	params := param.NewRegistry()
	return &BaseProcessor{
		params: params,
		buses:  buses,
		state:  state.NewManager(params),
	}
}

// Initialize implements the Processor interface
func (b *BaseProcessor) Initialize(sampleRate float64, maxBlockSize int32) error {
	b.sampleRate = sampleRate
	b.blockSize = maxBlockSize

	if b.onInitialize != nil {
		return b.onInitialize(sampleRate, maxBlockSize)
	}

	return nil
}

// GetParameters implements the Processor interface
func (b *BaseProcessor) GetParameters() *param.Registry {
	return b.params
}

// GetBuses implements the Processor interface
func (b *BaseProcessor) GetBuses() *bus.Configuration {
	return b.buses
}

// State returns the manager used to save and restore parameter state
func (b *BaseProcessor) State() *state.Manager {
	return b.state
}

// SetActive implements the Processor interface
func (b *BaseProcessor) SetActive(active bool) error {
	if !active && b.onReset != nil {
		b.onReset()
	}
	b.active = active

	if b.onSetActive != nil {
		return b.onSetActive(active)
	}

	return nil
}

// IsActive reports whether the host has activated processing
func (b *BaseProcessor) IsActive() bool {
	return b.active
}

// GetLatencySamples implements the Processor interface - default no latency
func (b *BaseProcessor) GetLatencySamples() int32 {
	return 0
}

// GetTailSamples implements the Processor interface - default no tail
func (b *BaseProcessor) GetTailSamples() int32 {
	return 0
}

// SampleRate returns the current sample rate
func (b *BaseProcessor) SampleRate() float64 {
	return b.sampleRate
}

// MaxBlockSize returns the block size passed to Initialize
func (b *BaseProcessor) MaxBlockSize() int32 {
	return b.blockSize
}

// OnInitialize sets a callback for initialization
func (b *BaseProcessor) OnInitialize(fn func(sampleRate float64, maxBlockSize int32) error) {
	b.onInitialize = fn
}

// OnSetActive sets a callback for activation/deactivation
func (b *BaseProcessor) OnSetActive(fn func(active bool) error) {
	b.onSetActive = fn
}

// OnReset sets a callback for when the processor should reset its state
func (b *BaseProcessor) OnReset(fn func()) {
	b.onReset = fn
}
