// Package process provides the per-block audio processing context.
package process

// Context carries one block of audio through a processor. Input and Output
// hold one slice per channel; the host repoints them every block.
type Context struct {
	Input      [][]float32
	Output     [][]float32
	SampleRate float64
}

// NewContext creates a context with channel slots for the given layout so
// that per-block rebinding does not allocate
func NewContext(sampleRate float64, channels int) *Context {
	return &Context{
		Input:      make([][]float32, channels),
		Output:     make([][]float32, channels),
		SampleRate: sampleRate,
	}
}

// NumSamples returns the number of samples to process
func (c *Context) NumSamples() int {
	if len(c.Input) > 0 && len(c.Input[0]) > 0 {
		return len(c.Input[0])
	}
	if len(c.Output) > 0 && len(c.Output[0]) > 0 {
		return len(c.Output[0])
	}
	return 0
}

// NumInputChannels returns the number of input channels
func (c *Context) NumInputChannels() int {
	return len(c.Input)
}

// NumOutputChannels returns the number of output channels
func (c *Context) NumOutputChannels() int {
	return len(c.Output)
}

// PassThrough copies input to output and silences outputs without a
// matching input
func (c *Context) PassThrough() {
	numChannels := c.GetNumChannels()
	for ch := 0; ch < numChannels; ch++ {
		copy(c.Output[ch], c.Input[ch])
	}
	c.ClearFrom(numChannels)
}

// ClearFrom zeros output channels starting at index first
func (c *Context) ClearFrom(first int) {
	for ch := first; ch < len(c.Output); ch++ {
		clear(c.Output[ch])
	}
}
