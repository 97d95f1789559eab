package bus

import (
	"testing"
)

func TestBuilder(t *testing.T) {
	t.Run("BasicStereo", func(t *testing.T) {
		config, err := NewBuilder().
			WithStereoInput("In").
			WithStereoOutput("Out").
			Build()

		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}

		if config.MainChannels(DirectionInput) != 2 {
			t.Error("Expected stereo input bus")
		}
		if config.MainChannels(DirectionOutput) != 2 {
			t.Error("Expected stereo output bus")
		}
	})

	t.Run("ValidationNoOutput", func(t *testing.T) {
		_, err := NewBuilder().
			WithStereoInput("In").
			Build()

		if err == nil {
			t.Error("Expected validation error for missing output")
		}
	})

	t.Run("ValidationChannelCount", func(t *testing.T) {
		_, err := NewBuilder().
			WithAudioInput("In", 0).
			WithStereoOutput("Out").
			Build()

		if err == nil {
			t.Error("Expected validation error for zero channels")
		}
	})

	t.Run("TooManyChannels", func(t *testing.T) {
		_, err := NewBuilder().
			WithStereoInput("In").
			WithAudioOutput("Out", 33).
			Build()

		if err == nil {
			t.Error("Expected validation error for 33 channels")
		}
	})

	t.Run("MustBuildPanic", func(t *testing.T) {
		defer func() {
			if r := recover(); r == nil {
				t.Error("Expected panic from MustBuild with invalid config")
			}
		}()

		NewBuilder().
			WithStereoInput("In").
			MustBuild()
	})
}
