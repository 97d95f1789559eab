package bus

import (
	"testing"
)

func TestNewStereoConfiguration(t *testing.T) {
	config := NewStereoConfiguration()

	if got := config.MainChannels(DirectionInput); got != 2 {
		t.Errorf("Expected 2 input channels, got %d", got)
	}
	if got := config.MainChannels(DirectionOutput); got != 2 {
		t.Errorf("Expected 2 output channels, got %d", got)
	}

	if got := config.MainLayout(); got != (Layout{Input: Stereo, Output: Stereo}) {
		t.Errorf("MainLayout = %v, want stereo -> stereo", got)
	}
}

func TestNewMonoConfiguration(t *testing.T) {
	config := NewMonoConfiguration()

	if config.MainChannels(DirectionInput) != 1 {
		t.Errorf("Expected 1 input channel, got %d", config.MainChannels(DirectionInput))
	}
	if config.MainChannels(DirectionOutput) != 1 {
		t.Errorf("Expected 1 output channel, got %d", config.MainChannels(DirectionOutput))
	}
}

func TestApplyLayout(t *testing.T) {
	config := NewStereoConfiguration()

	if err := config.ApplyLayout(Layout{Input: Mono, Output: Mono}); err != nil {
		t.Fatalf("ApplyLayout: %v", err)
	}
	if got := config.MainLayout(); got != (Layout{Input: Mono, Output: Mono}) {
		t.Errorf("MainLayout = %v, want mono -> mono", got)
	}

	if err := config.ApplyLayout(Layout{Input: Disabled, Output: Stereo}); err != nil {
		t.Fatalf("ApplyLayout: %v", err)
	}
	if config.MainChannels(DirectionInput) != 0 {
		t.Error("Inactive input bus should report no channels")
	}

	if err := config.ApplyLayout(Layout{Input: Stereo, Output: Disabled}); err == nil {
		t.Error("Expected error when disabling the main output")
	}
}
