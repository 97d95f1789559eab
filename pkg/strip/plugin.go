package strip

import (
	"github.com/justyntemme/dsptemp/pkg/framework/debug"
	"github.com/justyntemme/dsptemp/pkg/framework/plugin"
)

// Plugin metadata
const (
	PluginID       = "com.justyntemme.dsptemp"
	PluginName     = "DSP Temp"
	PluginVersion  = "1.0.0"
	PluginVendor   = "DSP Temp"
	PluginCategory = "Fx|Dynamics"
)

// Plugin describes DSP Temp and creates processors with fixed options.
type Plugin struct {
	opts []Option
}

// NewPlugin returns a plugin whose processors are built with opts.
func NewPlugin(opts ...Option) *Plugin {
	return &Plugin{opts: opts}
}

// GetInfo implements plugin.Plugin.
func (p *Plugin) GetInfo() plugin.Info {
	return plugin.Info{
		ID:       PluginID,
		Name:     PluginName,
		Version:  PluginVersion,
		Vendor:   PluginVendor,
		Category: PluginCategory,
	}
}

// CreateProcessor implements plugin.Plugin. It returns nil if the options
// cannot produce a processor.
func (p *Plugin) CreateProcessor() plugin.Processor {
	proc, err := p.NewProcessor()
	if err != nil {
		debug.Error("create %s processor: %v", PluginName, err)
		return nil
	}
	return proc
}

// NewProcessor creates a processor with the plugin's options followed by
// extra, so extra options take precedence.
func (p *Plugin) NewProcessor(extra ...Option) (*Processor, error) {
	opts := make([]Option, 0, len(p.opts)+len(extra))
	opts = append(opts, p.opts...)
	opts = append(opts, extra...)
	return NewProcessor(opts...)
}
