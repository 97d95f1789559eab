package param

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"
)

// Parameter represents a plugin parameter
type Parameter struct {
	ID           uint32
	Key          string // Stable string identifier used by listeners and presets
	Name         string
	ShortName    string
	Unit         string
	Min          float64
	Max          float64
	DefaultValue float64 // Normalized
	StepCount    int32
	Flags        uint32

	// Skew exponent applied to the normalized range (1 = linear)
	Skew float64

	// Atomic value for lock-free access in audio thread
	value atomic.Uint64

	// Value formatting
	formatFunc func(float64) string
	parseFunc  func(string) (float64, error)
}

// Flags for parameters
const (
	CanAutomate uint32 = 1 << 0
	IsReadOnly  uint32 = 1 << 1
	IsList      uint32 = 1 << 3
	IsHidden    uint32 = 1 << 4
	IsBypass    uint32 = 1 << 16
)

// GetValue returns the current normalized value (0-1)
func (p *Parameter) GetValue() float64 {
	return math.Float64frombits(p.value.Load())
}

// SetValue sets the normalized value (0-1)
func (p *Parameter) SetValue(value float64) {
	if math.IsNaN(value) {
		return
	}
	if value < 0 {
		value = 0
	} else if value > 1 {
		value = 1
	}

	p.value.Store(math.Float64bits(value))
}

// GetPlainValue converts the current normalized value to the plain range
func (p *Parameter) GetPlainValue() float64 {
	return p.Denormalize(p.GetValue())
}

// SetPlainValue converts plain to normalized value
func (p *Parameter) SetPlainValue(plain float64) {
	p.SetValue(p.Normalize(plain))
}

// IsToggle reports whether the parameter is a boolean switch
func (p *Parameter) IsToggle() bool {
	return p.StepCount == 1 && p.Min == 0 && p.Max == 1
}

// GetBool returns the switch state of a toggle parameter
func (p *Parameter) GetBool() bool {
	return p.GetValue() >= 0.5
}

// SetBool sets a toggle parameter
func (p *Parameter) SetBool(on bool) {
	if on {
		p.SetValue(1)
	} else {
		p.SetValue(0)
	}
}

// SetFormatter sets custom value formatting
func (p *Parameter) SetFormatter(format func(float64) string, parse func(string) (float64, error)) {
	p.formatFunc = format
	p.parseFunc = parse
}

// FormatValue returns formatted parameter value
func (p *Parameter) FormatValue(normalized float64) string {
	plain := p.Denormalize(normalized)

	if p.formatFunc != nil {
		return p.formatFunc(plain)
	}

	if p.StepCount > 0 {
		return fmt.Sprintf("%.0f", plain)
	}
	return fmt.Sprintf("%.2f", plain)
}

// ParseValue parses string to normalized value
func (p *Parameter) ParseValue(str string) (float64, error) {
	if p.parseFunc != nil {
		plain, err := p.parseFunc(str)
		if err != nil {
			return 0, err
		}
		return p.Normalize(plain), nil
	}
	plain, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return 0, err
	}
	return p.Normalize(plain), nil
}

// Normalize converts plain value to normalized (0-1), applying the skew
func (p *Parameter) Normalize(plain float64) float64 {
	if p.Max <= p.Min {
		return 0
	}
	proportion := (plain - p.Min) / (p.Max - p.Min)
	if proportion <= 0 {
		return 0
	}
	if proportion >= 1 {
		return 1
	}
	if p.StepCount > 0 {
		steps := float64(p.StepCount)
		proportion = math.Round(proportion*steps) / steps
	}
	if p.Skew == 0 || p.Skew == 1 {
		return proportion
	}
	return math.Pow(proportion, p.Skew)
}

// Denormalize converts normalized (0-1) to plain value, undoing the skew
func (p *Parameter) Denormalize(normalized float64) float64 {
	if normalized < 0 {
		normalized = 0
	} else if normalized > 1 {
		normalized = 1
	}
	if p.Skew != 0 && p.Skew != 1 && normalized > 0 {
		normalized = math.Exp(math.Log(normalized) / p.Skew)
	}
	plain := p.Min + normalized*(p.Max-p.Min)
	if p.StepCount > 0 {
		step := (p.Max - p.Min) / float64(p.StepCount)
		plain = p.Min + math.Round((plain-p.Min)/step)*step
	}
	return plain
}

// SkewForCentre returns the skew exponent that maps the normalized midpoint
// to centre within [min, max].
func SkewForCentre(min, max, centre float64) (float64, error) {
	if max <= min {
		return 0, fmt.Errorf("invalid range [%g, %g]", min, max)
	}
	if centre <= min || centre >= max {
		return 0, fmt.Errorf("skew centre %g outside range (%g, %g)", centre, min, max)
	}
	return math.Log(0.5) / math.Log((centre-min)/(max-min)), nil
}
