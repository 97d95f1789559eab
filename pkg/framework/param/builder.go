package param

import (
	"fmt"
	"math"
)

// Builder provides a fluent API for creating parameters
type Builder struct {
	param        *Parameter
	plainDefault float64
	hasDefault   bool
	skewCentre   float64
	hasCentre    bool
	errs         []error
}

// New creates a new parameter builder
func New(id uint32, name string) *Builder {
	return &Builder{
		param: &Parameter{
			ID:        id,
			Name:      name,
			ShortName: name,
			Min:       0,
			Max:       1,
			Skew:      1,
			Flags:     CanAutomate,
		},
	}
}

// Key sets the string identifier. Defaults to the name.
func (b *Builder) Key(key string) *Builder {
	b.param.Key = key
	return b
}

// ShortName sets the short name
func (b *Builder) ShortName(name string) *Builder {
	b.param.ShortName = name
	return b
}

// Range sets the min and max values
func (b *Builder) Range(min, max float64) *Builder {
	if max <= min {
		b.errs = append(b.errs, fmt.Errorf("invalid range [%g, %g]", min, max))
	}
	b.param.Min = min
	b.param.Max = max
	return b
}

// Default sets the default value (in plain range, not normalized)
func (b *Builder) Default(value float64) *Builder {
	b.plainDefault = value
	b.hasDefault = true
	return b
}

// Skew sets the skew exponent directly. Values below 1 give more resolution
// at the bottom of the range.
func (b *Builder) Skew(skew float64) *Builder {
	if skew <= 0 || math.IsNaN(skew) || math.IsInf(skew, 0) {
		b.errs = append(b.errs, fmt.Errorf("skew must be positive and finite: %g", skew))
		return b
	}
	b.param.Skew = skew
	b.hasCentre = false
	return b
}

// SkewForCentre picks the skew so the middle of the control lands on centre.
// Resolved at build time, so it may be called before Range.
func (b *Builder) SkewForCentre(centre float64) *Builder {
	b.skewCentre = centre
	b.hasCentre = true
	return b
}

// Unit sets the unit string
func (b *Builder) Unit(unit string) *Builder {
	b.param.Unit = unit
	return b
}

// Steps sets the number of discrete steps
func (b *Builder) Steps(count int32) *Builder {
	b.param.StepCount = count
	return b
}

// Flags sets parameter flags
func (b *Builder) Flags(flags uint32) *Builder {
	b.param.Flags = flags
	return b
}

// Toggle creates a boolean parameter
func (b *Builder) Toggle() *Builder {
	b.param.Min = 0
	b.param.Max = 1
	b.param.StepCount = 1
	b.param.Skew = 1
	b.hasCentre = false
	if b.param.formatFunc == nil {
		b.param.formatFunc = OnOffFormatter
		b.param.parseFunc = OnOffParser
	}
	return b
}

// ReadOnly marks the parameter as read-only
func (b *Builder) ReadOnly() *Builder {
	b.param.Flags |= IsReadOnly
	b.param.Flags &^= CanAutomate
	return b
}

// Hidden marks the parameter as hidden
func (b *Builder) Hidden() *Builder {
	b.param.Flags |= IsHidden
	return b
}

// Bypass marks this as the bypass parameter
func (b *Builder) Bypass() *Builder {
	b.param.Flags |= IsBypass
	return b
}

// Formatter sets custom value formatting and parsing
func (b *Builder) Formatter(format func(float64) string, parse func(string) (float64, error)) *Builder {
	b.param.formatFunc = format
	b.param.parseFunc = parse
	return b
}

// BuildE returns the configured parameter or the first configuration error
func (b *Builder) BuildE() (*Parameter, error) {
	if len(b.errs) > 0 {
		return nil, fmt.Errorf("parameter %q: %w", b.param.Name, b.errs[0])
	}
	p := b.param
	if p.Key == "" {
		p.Key = p.Name
	}
	if b.hasCentre {
		skew, err := SkewForCentre(p.Min, p.Max, b.skewCentre)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", p.Name, err)
		}
		p.Skew = skew
	}
	if !b.hasDefault {
		b.plainDefault = p.Min
	}
	if b.plainDefault < p.Min || b.plainDefault > p.Max {
		return nil, fmt.Errorf("parameter %q: default %g outside range [%g, %g]",
			p.Name, b.plainDefault, p.Min, p.Max)
	}
	p.DefaultValue = p.Normalize(b.plainDefault)
	p.SetValue(p.DefaultValue)
	return p, nil
}

// Build returns the configured parameter. It panics on an invalid
// configuration; use BuildE where the layout is not fixed at compile time.
func (b *Builder) Build() *Parameter {
	p, err := b.BuildE()
	if err != nil {
		panic(err)
	}
	return p
}
