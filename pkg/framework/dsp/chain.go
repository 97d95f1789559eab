// Package dsp provides the stage contract and chain used to build processors.
package dsp

import (
	"errors"
	"fmt"
)

// ProcessSpec describes the audio a stage will be asked to process.
type ProcessSpec struct {
	SampleRate   float64
	MaxBlockSize int
	NumChannels  int
}

// Validate checks that s describes playable audio.
func (s ProcessSpec) Validate() error {
	if s.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive: %g", s.SampleRate)
	}
	if s.MaxBlockSize <= 0 {
		return fmt.Errorf("max block size must be positive: %d", s.MaxBlockSize)
	}
	if s.NumChannels <= 0 {
		return fmt.Errorf("channel count must be positive: %d", s.NumChannels)
	}
	return nil
}

// Stage is one in-place processing step over a block of channels.
type Stage interface {
	// Prepare allocates state for spec. It is called before Process.
	Prepare(spec ProcessSpec) error

	// Process processes audio in place. Channels beyond the prepared count
	// are left untouched.
	Process(block [][]float32)

	// Reset clears internal state such as envelopes and ramps
	Reset()
}

// Chain runs stages in insertion order.
type Chain struct {
	stages []Stage
	names  []string
	name   string
	bypass bool
}

// NewChain creates a new, empty chain.
func NewChain(name string) *Chain {
	return &Chain{name: name}
}

// Name returns the chain name.
func (c *Chain) Name() string {
	return c.name
}

// Add appends a stage to the chain.
func (c *Chain) Add(name string, stage Stage) *Chain {
	c.stages = append(c.stages, stage)
	c.names = append(c.names, name)
	return c
}

// Prepare prepares every stage with spec.
func (c *Chain) Prepare(spec ProcessSpec) error {
	if err := spec.Validate(); err != nil {
		return fmt.Errorf("chain %q: %w", c.name, err)
	}
	for i, stage := range c.stages {
		if err := stage.Prepare(spec); err != nil {
			return fmt.Errorf("chain %q: prepare %s: %w", c.name, c.names[i], err)
		}
	}
	return nil
}

// Process runs the block through every stage in order.
func (c *Chain) Process(block [][]float32) {
	if c.bypass {
		return
	}
	for _, stage := range c.stages {
		stage.Process(block)
	}
}

// Reset resets all stages in the chain.
func (c *Chain) Reset() {
	for _, stage := range c.stages {
		stage.Reset()
	}
}

// SetBypass sets the bypass state of the chain.
func (c *Chain) SetBypass(bypass bool) {
	c.bypass = bypass
}

// IsBypassed reports whether Process is a no-op.
func (c *Chain) IsBypassed() bool {
	return c.bypass
}

// Count returns the number of stages in the chain.
func (c *Chain) Count() int {
	return len(c.stages)
}

// StageNames returns stage names in processing order.
func (c *Chain) StageNames() []string {
	return append([]string(nil), c.names...)
}

// Builder provides a fluent API for building chains.
type Builder struct {
	chain *Chain
	errs  []error
}

// NewBuilder creates a new chain builder.
func NewBuilder(name string) *Builder {
	return &Builder{chain: NewChain(name)}
}

// WithStage adds a stage to the chain.
func (b *Builder) WithStage(name string, stage Stage) *Builder {
	if stage == nil {
		b.errs = append(b.errs, fmt.Errorf("stage %q cannot be nil", name))
		return b
	}
	b.chain.Add(name, stage)
	return b
}

// Build returns the chain or the accumulated errors.
func (b *Builder) Build() (*Chain, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("chain build errors: %w", errors.Join(b.errs...))
	}
	if b.chain.Count() == 0 {
		return nil, fmt.Errorf("chain %q is empty", b.chain.name)
	}
	return b.chain, nil
}
