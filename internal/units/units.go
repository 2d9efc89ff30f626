// Package units provides the physical units features are reported in.
package units

import "strings"

// Space unit constants
const (
	Nanometer   = "nm"
	Micron      = "µm"
	MicronASCII = "um"
	Millimeter  = "mm"
	Pixel       = "pixel"
)

// Time unit constants
const (
	Millisecond = "ms"
	Second      = "s"
	Minute      = "min"
	Frame       = "frame"
)

// ValidSpaceUnits contains all valid space unit values
var ValidSpaceUnits = []string{Nanometer, Micron, MicronASCII, Millimeter, Pixel}

// ValidTimeUnits contains all valid time unit values
var ValidTimeUnits = []string{Millisecond, Second, Minute, Frame}

// IsValidSpace checks if the given unit is a known space unit
func IsValidSpace(unit string) bool {
	return contains(ValidSpaceUnits, unit)
}

// IsValidTime checks if the given unit is a known time unit
func IsValidTime(unit string) bool {
	return contains(ValidTimeUnits, unit)
}

// GetValidSpaceUnitsString returns a comma-separated string of valid space units for error messages
func GetValidSpaceUnitsString() string {
	return strings.Join(ValidSpaceUnits, ", ")
}

// GetValidTimeUnitsString returns a comma-separated string of valid time units for error messages
func GetValidTimeUnitsString() string {
	return strings.Join(ValidTimeUnits, ", ")
}

// UnitsFor returns the unit label of a feature dimension ("NONE", "TIME",
// "VELOCITY", "LENGTH"). Dimensionless and unknown dimensions have no label.
func UnitsFor(dimension, space, time string) string {
	switch strings.ToUpper(dimension) {
	case "TIME":
		return time
	case "VELOCITY":
		return space + "/" + time
	case "LENGTH", "POSITION":
		return space
	default:
		return ""
	}
}

// Header formats a column title with its unit, e.g. "Pause duration (s)".
func Header(title, unit string) string {
	if unit == "" {
		return title
	}
	return title + " (" + unit + ")"
}

func contains(list []string, unit string) bool {
	for _, u := range list {
		if unit == u {
			return true
		}
	}
	return false
}
