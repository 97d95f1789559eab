package param

import (
	"errors"
	"fmt"
	"sync"
)

// ErrUnknownParameter is returned when a lookup by ID or key fails.
var ErrUnknownParameter = errors.New("unknown parameter")

// Listener is called after a parameter value changed through the registry.
// It runs on the goroutine that made the change and must not block.
type Listener func(key string, plain float64)

type listenerEntry struct {
	id uint64
	fn Listener
}

// Registry manages plugin parameters
type Registry struct {
	params map[uint32]*Parameter
	keys   map[string]uint32
	order  []uint32 // Maintain order for indexed access
	mu     sync.RWMutex

	listeners      map[string][]listenerEntry
	nextListenerID uint64
	lmu            sync.RWMutex
}

// NewRegistry creates a new parameter registry
func NewRegistry() *Registry {
	return &Registry{
		params:    make(map[uint32]*Parameter),
		keys:      make(map[string]uint32),
		order:     make([]uint32, 0),
		listeners: make(map[string][]listenerEntry),
	}
}

// Add registers new parameters. IDs and keys must be unique.
func (r *Registry) Add(params ...*Parameter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range params {
		if p == nil {
			return fmt.Errorf("nil parameter")
		}
		if existing, exists := r.params[p.ID]; exists {
			return fmt.Errorf("parameter ID %d already used by %q", p.ID, existing.Name)
		}
		key := p.Key
		if key == "" {
			key = p.Name
			p.Key = key
		}
		if _, exists := r.keys[key]; exists {
			return fmt.Errorf("parameter key %q already registered", key)
		}
		r.params[p.ID] = p
		r.keys[key] = p.ID
		r.order = append(r.order, p.ID)
	}

	return nil
}

// Get retrieves a parameter by ID
func (r *Registry) Get(id uint32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.params[id]
}

// GetByKey retrieves a parameter by its string key
func (r *Registry) GetByKey(key string) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	id, ok := r.keys[key]
	if !ok {
		return nil
	}
	return r.params[id]
}

// GetByIndex retrieves a parameter by index
func (r *Registry) GetByIndex(index int32) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if index < 0 || index >= int32(len(r.order)) {
		return nil
	}

	id := r.order[index]
	return r.params[id]
}

// Count returns the number of parameters
func (r *Registry) Count() int32 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return int32(len(r.order))
}

// All returns all parameters in order
func (r *Registry) All() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*Parameter, len(r.order))
	for i, id := range r.order {
		result[i] = r.params[id]
	}

	return result
}

// RawValue returns the current plain value for key. It is safe to call from
// the audio thread.
func (r *Registry) RawValue(key string) (float64, error) {
	p := r.GetByKey(key)
	if p == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, key)
	}
	return p.GetPlainValue(), nil
}

// SetValue sets a normalized value by ID and notifies listeners
func (r *Registry) SetValue(id uint32, normalized float64) error {
	p := r.Get(id)
	if p == nil {
		return fmt.Errorf("%w: id %d", ErrUnknownParameter, id)
	}
	p.SetValue(normalized)
	r.notify(p)
	return nil
}

// SetPlain sets a plain value by key and notifies listeners
func (r *Registry) SetPlain(key string, plain float64) error {
	p := r.GetByKey(key)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, key)
	}
	p.SetPlainValue(plain)
	r.notify(p)
	return nil
}

// SetBool sets a toggle parameter by key and notifies listeners
func (r *Registry) SetBool(key string, on bool) error {
	p := r.GetByKey(key)
	if p == nil {
		return fmt.Errorf("%w: %q", ErrUnknownParameter, key)
	}
	p.SetBool(on)
	r.notify(p)
	return nil
}

// ResetToDefaults restores every parameter's default and notifies listeners
func (r *Registry) ResetToDefaults() {
	for _, p := range r.All() {
		p.SetValue(p.DefaultValue)
		r.notify(p)
	}
}

// AddListener subscribes fn to changes of the parameter with the given key.
// The returned handle is passed to RemoveListener.
func (r *Registry) AddListener(key string, fn Listener) (uint64, error) {
	if fn == nil {
		return 0, fmt.Errorf("nil listener for %q", key)
	}
	if r.GetByKey(key) == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnknownParameter, key)
	}

	r.lmu.Lock()
	defer r.lmu.Unlock()

	r.nextListenerID++
	id := r.nextListenerID
	r.listeners[key] = append(r.listeners[key], listenerEntry{id: id, fn: fn})
	return id, nil
}

// RemoveListener unsubscribes a listener. Unknown handles are ignored.
func (r *Registry) RemoveListener(key string, handle uint64) {
	r.lmu.Lock()
	defer r.lmu.Unlock()

	entries := r.listeners[key]
	for i, e := range entries {
		if e.id == handle {
			r.listeners[key] = append(entries[:i:i], entries[i+1:]...)
			break
		}
	}
	if len(r.listeners[key]) == 0 {
		delete(r.listeners, key)
	}
}

// ListenerCount returns how many listeners are attached to key
func (r *Registry) ListenerCount(key string) int {
	r.lmu.RLock()
	defer r.lmu.RUnlock()
	return len(r.listeners[key])
}

func (r *Registry) notify(p *Parameter) {
	r.lmu.RLock()
	entries := r.listeners[p.Key]
	r.lmu.RUnlock()

	if len(entries) == 0 {
		return
	}
	plain := p.GetPlainValue()
	for _, e := range entries {
		e.fn(p.Key, plain)
	}
}
