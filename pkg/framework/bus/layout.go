package bus

import "fmt"

// ChannelSet names a speaker arrangement by its channel count
type ChannelSet int

const (
	Disabled   ChannelSet = 0
	Mono       ChannelSet = 1
	Stereo     ChannelSet = 2
	Quad       ChannelSet = 4
	Surround51 ChannelSet = 6
	Surround71 ChannelSet = 8
)

// ChannelSetFor maps a channel count to its set. Unnamed counts are kept
// as-is so they compare unequal to every named set.
func ChannelSetFor(channels int) ChannelSet {
	if channels < 0 {
		return Disabled
	}
	return ChannelSet(channels)
}

// Channels returns the number of channels in the set
func (s ChannelSet) Channels() int {
	return int(s)
}

func (s ChannelSet) String() string {
	switch s {
	case Disabled:
		return "disabled"
	case Mono:
		return "mono"
	case Stereo:
		return "stereo"
	case Quad:
		return "quad"
	case Surround51:
		return "5.1"
	case Surround71:
		return "7.1"
	default:
		return fmt.Sprintf("discrete(%d)", int(s))
	}
}

// Layout is the main input/output arrangement a host proposes
type Layout struct {
	Input  ChannelSet
	Output ChannelSet
}

func (l Layout) String() string {
	return fmt.Sprintf("%s -> %s", l.Input, l.Output)
}

// LayoutPredicate decides whether a proposed layout is acceptable
type LayoutPredicate func(Layout) bool

// MatchingMonoOrStereo accepts mono or stereo outputs fed by an identical input.
func MatchingMonoOrStereo(l Layout) bool {
	if l.Output != Mono && l.Output != Stereo {
		return false
	}
	return l.Input == l.Output
}
