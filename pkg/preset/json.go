// Package preset reads and writes DSP Temp settings as JSON.
package preset

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/justyntemme/dsptemp/pkg/dsp/dynamics"
	"github.com/justyntemme/dsptemp/pkg/strip"
)

// File is the JSON schema for strip presets. Absent fields leave the
// corresponding parameter untouched.
type File struct {
	InputDB     *float64 `json:"input_db,omitempty"`
	ThresholdDB *float64 `json:"threshold_db,omitempty"`
	Ratio       *float64 `json:"ratio,omitempty"`
	AttackMs    *float64 `json:"attack_ms,omitempty"`
	ReleaseMs   *float64 `json:"release_ms,omitempty"`
	OutputDB    *float64 `json:"output_db,omitempty"`
	Bypass      *bool    `json:"bypass,omitempty"`
	Engine      string   `json:"engine,omitempty"`
}

type field struct {
	name     string
	key      string
	value    *float64
	min, max float64
}

func (f *File) fields() []field {
	return []field{
		{"input_db", strip.KeyInput, f.InputDB, strip.GainMinDB, strip.GainMaxDB},
		{"threshold_db", strip.KeyThreshold, f.ThresholdDB, strip.ThresholdMin, strip.ThresholdMax},
		{"ratio", strip.KeyRatio, f.Ratio, strip.RatioMin, strip.RatioMax},
		{"attack_ms", strip.KeyAttack, f.AttackMs, strip.AttackMinMs, strip.AttackMaxMs},
		{"release_ms", strip.KeyRelease, f.ReleaseMs, strip.ReleaseMinMs, strip.ReleaseMaxMs},
		{"output_db", strip.KeyOutput, f.OutputDB, strip.GainMinDB, strip.GainMaxDB},
	}
}

// LoadJSON reads and validates a preset file.
func LoadJSON(path string) (*File, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse preset %s: %w", path, err)
	}
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("preset %s: %w", path, err)
	}
	return &f, nil
}

// SaveJSON writes f to path, indented.
func SaveJSON(path string, f *File) error {
	if f == nil {
		return fmt.Errorf("nil preset")
	}
	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// Validate checks every present value against its parameter range.
func (f *File) Validate() error {
	for _, fd := range f.fields() {
		if fd.value == nil {
			continue
		}
		v := *fd.value
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%s must be finite", fd.name)
		}
		if v < fd.min || v > fd.max {
			return fmt.Errorf("%s must be in [%g, %g], got %g", fd.name, fd.min, fd.max, v)
		}
	}
	if _, err := f.EngineKind(); err != nil {
		return err
	}
	return nil
}

// EngineKind returns the compressor engine named by the preset.
// An empty name selects the default engine.
func (f *File) EngineKind() (dynamics.Kind, error) {
	kind, err := dynamics.ParseKind(strings.TrimSpace(f.Engine))
	if err != nil {
		return 0, fmt.Errorf("engine: %w", err)
	}
	return kind, nil
}

// Options returns the processor options implied by the preset.
func (f *File) Options() ([]strip.Option, error) {
	if f == nil || strings.TrimSpace(f.Engine) == "" {
		return nil, nil
	}
	kind, err := f.EngineKind()
	if err != nil {
		return nil, err
	}
	return []strip.Option{strip.WithEngine(kind)}, nil
}

// Apply validates f and writes its values into the processor's parameters.
// Nothing is changed when validation fails.
func Apply(dst *strip.Processor, f *File) error {
	if dst == nil {
		return fmt.Errorf("nil destination processor")
	}
	if f == nil {
		return nil
	}
	if err := f.Validate(); err != nil {
		return err
	}

	params := dst.GetParameters()
	for _, fd := range f.fields() {
		if fd.value == nil {
			continue
		}
		if err := params.SetPlain(fd.key, *fd.value); err != nil {
			return fmt.Errorf("%s: %w", fd.name, err)
		}
	}
	if f.Bypass != nil {
		if err := params.SetBool(strip.KeyBypass, *f.Bypass); err != nil {
			return fmt.Errorf("bypass: %w", err)
		}
	}
	return nil
}

// Capture snapshots the processor's current settings into a preset.
func Capture(src *strip.Processor) *File {
	params := src.GetParameters()
	plain := func(key string) *float64 {
		v, err := params.RawValue(key)
		if err != nil {
			return nil
		}
		return &v
	}

	f := &File{
		InputDB:     plain(strip.KeyInput),
		ThresholdDB: plain(strip.KeyThreshold),
		Ratio:       plain(strip.KeyRatio),
		AttackMs:    plain(strip.KeyAttack),
		ReleaseMs:   plain(strip.KeyRelease),
		OutputDB:    plain(strip.KeyOutput),
		Engine:      src.Engine().String(),
	}
	if p := params.GetByKey(strip.KeyBypass); p != nil {
		on := p.GetBool()
		f.Bypass = &on
	}
	return f
}
