// Package state saves and restores plugin parameter state.
package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/justyntemme/dsptemp/pkg/framework/param"
)

// ErrInvalidState is returned when a state blob cannot be decoded
var ErrInvalidState = errors.New("invalid state format")

const magic = "DSPTMP"

// Manager handles plugin state saving and loading
type Manager struct {
	version    uint32
	registry   *param.Registry
	customSave CustomStateFunc
	customLoad CustomLoadFunc
}

type savedValue struct {
	id    uint32
	value float64
}

// CustomStateFunc allows plugins to save additional state beyond parameters
type CustomStateFunc func(w io.Writer) error

// CustomLoadFunc reads back what the matching CustomStateFunc wrote
type CustomLoadFunc func(r io.Reader) error

// NewManager creates a new state manager
func NewManager(registry *param.Registry) *Manager {
	return &Manager{
		version:  1,
		registry: registry,
	}
}

// SetCustomStateFuncs sets functions for saving and loading custom state
func (m *Manager) SetCustomStateFuncs(save CustomStateFunc, load CustomLoadFunc) {
	m.customSave = save
	m.customLoad = load
}

// Save writes the plugin state to a writer
func (m *Manager) Save(w io.Writer) error {
	if _, err := w.Write([]byte(magic)); err != nil {
		return err
	}

	if err := binary.Write(w, binary.LittleEndian, m.version); err != nil {
		return err
	}

	params := m.registry.All()
	if err := binary.Write(w, binary.LittleEndian, int32(len(params))); err != nil {
		return err
	}

	for _, p := range params {
		if err := binary.Write(w, binary.LittleEndian, p.ID); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, p.GetValue()); err != nil {
			return err
		}
	}

	if m.customSave == nil {
		return binary.Write(w, binary.LittleEndian, uint32(0))
	}

	// Mark that custom data follows
	if err := binary.Write(w, binary.LittleEndian, uint32(1)); err != nil {
		return err
	}
	return m.customSave(w)
}

// Load reads the plugin state from a reader. Values go through the registry
// so parameter listeners observe the restored values.
func (m *Manager) Load(r io.Reader) error {
	header := make([]byte, len(magic))
	if _, err := io.ReadFull(r, header); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if string(header) != magic {
		return fmt.Errorf("%w: bad header %q", ErrInvalidState, header)
	}

	var version uint32
	if err := binary.Read(r, binary.LittleEndian, &version); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if version > m.version {
		return fmt.Errorf("%w: state version %d is newer than supported version %d",
			ErrInvalidState, version, m.version)
	}

	var paramCount int32
	if err := binary.Read(r, binary.LittleEndian, &paramCount); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if paramCount < 0 {
		return fmt.Errorf("%w: negative parameter count %d", ErrInvalidState, paramCount)
	}

	// Decode everything before touching the registry so a truncated blob
	// leaves the current values in place
	values := make([]savedValue, 0, min(int(paramCount), int(m.registry.Count())))
	for i := int32(0); i < paramCount; i++ {
		var v savedValue
		if err := binary.Read(r, binary.LittleEndian, &v.id); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		if err := binary.Read(r, binary.LittleEndian, &v.value); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidState, err)
		}
		values = append(values, v)
	}

	var hasCustom uint32
	if err := binary.Read(r, binary.LittleEndian, &hasCustom); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidState, err)
	}
	if hasCustom != 0 && m.customLoad == nil {
		return fmt.Errorf("%w: custom data present but no loader set", ErrInvalidState)
	}

	for _, v := range values {
		// Unknown parameters are skipped for forward compatibility
		if err := m.registry.SetValue(v.id, v.value); err != nil && !errors.Is(err, param.ErrUnknownParameter) {
			return err
		}
	}

	if hasCustom != 0 {
		return m.customLoad(r)
	}

	return nil
}
