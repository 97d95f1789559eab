package param

import (
	"math"
	"testing"
)

func TestSkewForCentre(t *testing.T) {
	tests := []struct {
		min, max, centre float64
	}{
		{0.1, 200, 50},
		{1, 1000, 160},
		{0, 1, 0.25},
	}

	for _, tt := range tests {
		skew, err := SkewForCentre(tt.min, tt.max, tt.centre)
		if err != nil {
			t.Fatalf("SkewForCentre(%g, %g, %g) error: %v", tt.min, tt.max, tt.centre, err)
		}

		p := New(1, "Time").Range(tt.min, tt.max).Default(tt.centre).Skew(skew).Build()
		if got := p.Denormalize(0.5); math.Abs(got-tt.centre) > 1e-6 {
			t.Errorf("Denormalize(0.5) = %f, want %f", got, tt.centre)
		}
	}

	if _, err := SkewForCentre(0, 1, 1); err == nil {
		t.Error("centre on the range edge should be rejected")
	}
}

func TestNormalizeRoundTrip(t *testing.T) {
	p := New(1, "Release").Range(1, 1000).Default(160).SkewForCentre(160).Build()

	for _, plain := range []float64{1, 2, 10, 160, 500, 999, 1000} {
		got := p.Denormalize(p.Normalize(plain))
		if math.Abs(got-plain) > 1e-6*plain {
			t.Errorf("round trip %f -> %f", plain, got)
		}
	}

	// Skewed ranges must stay monotonic
	prev := -1.0
	for i := 0; i <= 100; i++ {
		v := p.Denormalize(float64(i) / 100)
		if v <= prev {
			t.Fatalf("Denormalize not increasing at %d: %f <= %f", i, v, prev)
		}
		prev = v
	}
}

func TestSetValueClamps(t *testing.T) {
	p := New(1, "Gain").Range(-60, 24).Default(0).Build()

	p.SetValue(2)
	if p.GetValue() != 1 {
		t.Errorf("SetValue(2) = %f, want 1", p.GetValue())
	}

	p.SetValue(-1)
	if p.GetValue() != 0 {
		t.Errorf("SetValue(-1) = %f, want 0", p.GetValue())
	}

	p.SetValue(math.NaN())
	if p.GetValue() != 0 {
		t.Errorf("NaN must be ignored, got %f", p.GetValue())
	}

	p.SetPlainValue(100)
	if p.GetPlainValue() != 24 {
		t.Errorf("SetPlainValue(100) = %f, want 24", p.GetPlainValue())
	}
}
