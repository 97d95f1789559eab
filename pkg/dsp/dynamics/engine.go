package dynamics

import (
	"fmt"
	"math"
	"strings"

	"github.com/justyntemme/dsptemp/pkg/framework/dsp"
)

// Setter ranges shared by every engine. Values outside are clamped.
const (
	MinRatio     = 1.0
	MaxRatio     = 100.0
	MinAttackMs  = 0.1
	MaxAttackMs  = 1000.0
	MinReleaseMs = 1.0
	MaxReleaseMs = 5000.0
)

// Engine is a compressor stage driven by the four classic controls.
// Setters clamp to the engine range and reject non-finite input.
type Engine interface {
	dsp.Stage

	SetThreshold(dB float64) error
	SetRatio(ratio float64) error
	SetAttack(ms float64) error
	SetRelease(ms float64) error
}

// Kind selects a compressor engine implementation.
type Kind int

const (
	// KindBallistics is the in-repo peak ballistics compressor
	KindBallistics Kind = iota
	// KindSoftKnee wraps the algo-dsp log-domain compressor
	KindSoftKnee
)

// String returns the name accepted by ParseKind.
func (k Kind) String() string {
	switch k {
	case KindBallistics:
		return "ballistics"
	case KindSoftKnee:
		return "softknee"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// ParseKind maps an engine name to its Kind.
func ParseKind(name string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "ballistics":
		return KindBallistics, nil
	case "softknee", "soft-knee", "algo":
		return KindSoftKnee, nil
	}
	return KindBallistics, fmt.Errorf("unknown compressor engine %q", name)
}

// New creates an unprepared engine of the given kind.
func New(kind Kind) (Engine, error) {
	switch kind {
	case KindBallistics:
		return NewCompressor(), nil
	case KindSoftKnee:
		return NewSoftKnee(), nil
	}
	return nil, fmt.Errorf("unknown compressor engine %v", kind)
}

func clampFinite(name string, v, lo, hi float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("compressor %s must be finite: %f", name, v)
	}
	return math.Max(lo, math.Min(hi, v)), nil
}

func finite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("compressor %s must be finite: %f", name, v)
	}
	return nil
}
