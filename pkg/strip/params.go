package strip

import (
	"github.com/justyntemme/dsptemp/pkg/framework/param"
)

// Parameter IDs
const (
	ParamInput uint32 = iota
	ParamThreshold
	ParamRatio
	ParamAttack
	ParamRelease
	ParamOutput
	ParamBypass
)

// Parameter keys as seen by hosts, presets and listeners
const (
	KeyInput     = "input"
	KeyThreshold = "threh"
	KeyRatio     = "ratio"
	KeyAttack    = "attck"
	KeyRelease   = "release"
	KeyOutput    = "output"
	KeyBypass    = "bypass"
)

// Ranges and defaults of the parameter layout
const (
	GainMinDB     = -60.0
	GainMaxDB     = 24.0
	ThresholdMin  = -60.0
	ThresholdMax  = 10.0
	RatioMin      = 1.0
	RatioMax      = 20.0
	AttackMinMs   = 0.1
	AttackMaxMs   = 200.0
	AttackCentre  = 50.0
	ReleaseMinMs  = 1.0
	ReleaseMaxMs  = 1000.0
	ReleaseCentre = 160.0
)

// Ramp applied to both gain stages
const GainRampSeconds = 0.02

func newParameters() []*param.Parameter {
	return []*param.Parameter{
		param.GainParameter(ParamInput, KeyInput, "Input", GainMinDB, GainMaxDB, 0).Build(),
		param.ThresholdParameter(ParamThreshold, KeyThreshold, "Threh", ThresholdMin, ThresholdMax, 0).Build(),
		param.RatioParameter(ParamRatio, KeyRatio, "Ratio", RatioMin, RatioMax, 1).Build(),
		param.TimeParameter(ParamAttack, KeyAttack, "Attck", AttackMinMs, AttackMaxMs, AttackCentre).Build(),
		param.TimeParameter(ParamRelease, KeyRelease, "Release", ReleaseMinMs, ReleaseMaxMs, ReleaseCentre).Build(),
		param.GainParameter(ParamOutput, KeyOutput, "Output", GainMinDB, GainMaxDB, 0).Build(),
		param.BypassParameter(ParamBypass, KeyBypass, "Bypass").Build(),
	}
}

// listenedKeys are the parameters whose changes reach the chain.
var listenedKeys = []string{KeyInput, KeyThreshold, KeyRatio, KeyAttack, KeyRelease, KeyOutput, KeyBypass}
