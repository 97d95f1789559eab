// Package bus provides audio bus configuration and layout negotiation.
package bus

import "fmt"

// Direction represents the bus direction
type Direction int32

const (
	// DirectionInput represents input bus
	DirectionInput Direction = 0
	// DirectionOutput represents output bus
	DirectionOutput Direction = 1
)

// Type represents the bus type
type Type int32

const (
	// TypeMain represents main bus
	TypeMain Type = 0
	// TypeAux represents auxiliary bus
	TypeAux Type = 1
)

// Info contains bus configuration
type Info struct {
	Direction    Direction
	ChannelCount int32
	Name         string
	BusType      Type
	IsActive     bool
}

// Configuration manages the audio buses
type Configuration struct {
	audioBuses []Info
}

// NewStereoConfiguration creates a standard stereo I/O configuration
func NewStereoConfiguration() *Configuration {
	return NewBuilder().
		WithStereoInput("Input").
		WithStereoOutput("Output").
		MustBuild()
}

// NewMonoConfiguration creates a mono I/O configuration
func NewMonoConfiguration() *Configuration {
	return NewBuilder().
		WithMonoInput("Input").
		WithMonoOutput("Output").
		MustBuild()
}

// MainChannels returns the channel count of the main audio bus in the given
// direction, or 0 when there is none or it is inactive.
func (c *Configuration) MainChannels(direction Direction) int {
	for _, b := range c.audioBuses {
		if b.Direction == direction && b.BusType == TypeMain {
			if !b.IsActive {
				return 0
			}
			return int(b.ChannelCount)
		}
	}
	return 0
}

// MainLayout returns the current main bus layout
func (c *Configuration) MainLayout() Layout {
	return Layout{
		Input:  ChannelSetFor(c.MainChannels(DirectionInput)),
		Output: ChannelSetFor(c.MainChannels(DirectionOutput)),
	}
}

// ApplyLayout rewrites the main bus channel counts. Callers check
// support first; ApplyLayout only rejects sets it cannot represent.
func (c *Configuration) ApplyLayout(l Layout) error {
	if l.Output == Disabled {
		return fmt.Errorf("main output cannot be disabled")
	}
	for i := range c.audioBuses {
		b := &c.audioBuses[i]
		if b.BusType != TypeMain {
			continue
		}
		set := l.Output
		if b.Direction == DirectionInput {
			set = l.Input
		}
		if set == Disabled {
			b.IsActive = false
			continue
		}
		b.ChannelCount = int32(set.Channels())
		b.IsActive = true
	}
	return nil
}
