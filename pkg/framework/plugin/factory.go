package plugin

import (
	"fmt"
	"sort"
	"sync"
)

// FactoryInfo holds vendor information reported alongside registered plugins
type FactoryInfo struct {
	Vendor string
	URL    string
	Email  string
}

var (
	factoryMu   sync.RWMutex
	factoryInfo = FactoryInfo{
		Vendor: "DSP Temp",
		URL:    "https://github.com/justyntemme/dsptemp",
		Email:  "",
	}
	plugins = make(map[string]Plugin)
)

// Register adds a plugin to the factory. Registering the same ID twice is an error.
func Register(p Plugin) error {
	if p == nil {
		return fmt.Errorf("nil plugin")
	}
	info := p.GetInfo()
	if err := info.ValidateUID(); err != nil {
		return fmt.Errorf("register plugin: %w", err)
	}

	factoryMu.Lock()
	defer factoryMu.Unlock()

	if _, exists := plugins[info.ID]; exists {
		return fmt.Errorf("plugin %q already registered", info.ID)
	}
	plugins[info.ID] = p
	return nil
}

// Lookup returns the registered plugin with the given ID
func Lookup(id string) (Plugin, bool) {
	factoryMu.RLock()
	defer factoryMu.RUnlock()

	p, ok := plugins[id]
	return p, ok
}

// Plugins returns the info of every registered plugin, sorted by ID
func Plugins() []Info {
	factoryMu.RLock()
	defer factoryMu.RUnlock()

	infos := make([]Info, 0, len(plugins))
	for _, p := range plugins {
		infos = append(infos, p.GetInfo())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos
}

// SetFactoryInfo sets the factory vendor information
func SetFactoryInfo(info FactoryInfo) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	factoryInfo = info
}

// GetFactoryInfo returns the factory vendor information
func GetFactoryInfo() FactoryInfo {
	factoryMu.RLock()
	defer factoryMu.RUnlock()
	return factoryInfo
}

func unregister(id string) {
	factoryMu.Lock()
	defer factoryMu.Unlock()
	delete(plugins, id)
}
