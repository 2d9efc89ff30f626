package units

import (
	"strings"
	"testing"
)

func TestUnitsFor(t *testing.T) {
	tests := []struct {
		name      string
		dimension string
		want      string
	}{
		{"time", "TIME", "s"},
		{"velocity", "VELOCITY", "µm/s"},
		{"lowercase velocity", "velocity", "µm/s"},
		{"length", "LENGTH", "µm"},
		{"none", "NONE", ""},
		{"unknown", "INTENSITY", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UnitsFor(tt.dimension, Micron, Second); got != tt.want {
				t.Errorf("UnitsFor(%q) = %q, want %q", tt.dimension, got, tt.want)
			}
		})
	}
}

func TestIsValid(t *testing.T) {
	tests := []struct {
		name     string
		unit     string
		space    bool
		expected bool
	}{
		{"micron", Micron, true, true},
		{"ascii micron", "um", true, true},
		{"pixel", Pixel, true, true},
		{"meters not allowed", "m", true, false},
		{"seconds", Second, false, true},
		{"frames", Frame, false, true},
		{"hours not allowed", "h", false, false},
		{"empty", "", false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got bool
			if tt.space {
				got = IsValidSpace(tt.unit)
			} else {
				got = IsValidTime(tt.unit)
			}
			if got != tt.expected {
				t.Errorf("valid(%q) = %v, want %v", tt.unit, got, tt.expected)
			}
		})
	}
}

func TestValidUnitsStrings(t *testing.T) {
	space := GetValidSpaceUnitsString()
	for _, u := range ValidSpaceUnits {
		if !strings.Contains(space, u) {
			t.Errorf("GetValidSpaceUnitsString() = %q, missing %q", space, u)
		}
	}
	if got := GetValidTimeUnitsString(); got != "ms, s, min, frame" {
		t.Errorf("GetValidTimeUnitsString() = %q", got)
	}
}

func TestHeader(t *testing.T) {
	if got := Header("Pause duration", "s"); got != "Pause duration (s)" {
		t.Errorf("Header = %q", got)
	}
	if got := Header("N pauses", ""); got != "N pauses" {
		t.Errorf("Header = %q", got)
	}
}
