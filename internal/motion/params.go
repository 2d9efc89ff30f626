package motion

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Default parameter values, matching what the acquisition GUI used to offer.
const (
	DefaultVelocityThreshold    = 1e-2
	DefaultMinConsecutiveFrames = 5
	DefaultSmoothingWindow      = 20
)

var (
	ErrInvalidVelocityThreshold    = errors.New("velocity threshold is negative or null")
	ErrInvalidMinConsecutiveFrames = errors.New("min consecutive frame is negative or null")
	ErrInvalidSmoothingWindow      = errors.New("smoothing window is negative")
	ErrUnknownVelocityFormula      = errors.New("unknown velocity formula")
)

// VelocityFormula selects how per-edge speed is derived from smoothed
// displacement components.
type VelocityFormula int

const (
	// Euclidean is sqrt(dx² + dy² + dz²) / dt.
	Euclidean VelocityFormula = iota
	// LegacyDzDx is sqrt(dx² + dy² + dz·dx) / dt, as produced by the first
	// generation of the pausing analysis. Kept so old results can be
	// reproduced.
	LegacyDzDx
)

func (f VelocityFormula) String() string {
	switch f {
	case Euclidean:
		return "euclidean"
	case LegacyDzDx:
		return "legacy-dzdx"
	default:
		return fmt.Sprintf("VelocityFormula(%d)", int(f))
	}
}

// ParseVelocityFormula accepts the names returned by String. The empty
// string selects Euclidean.
func ParseVelocityFormula(s string) (VelocityFormula, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "euclidean":
		return Euclidean, nil
	case "legacy-dzdx", "legacy":
		return LegacyDzDx, nil
	default:
		return Euclidean, fmt.Errorf("%w: %q", ErrUnknownVelocityFormula, s)
	}
}

// Params is the full parameter set of one analysis invocation.
type Params struct {
	// VelocityThreshold separates PAUSE (v < threshold) from RUN edges.
	VelocityThreshold float64
	// MinConsecutiveFrames is the minimum length, in edges, a stretch must
	// exceed to stand as its own segment.
	MinConsecutiveFrames int
	// SmoothingWindow is the Gaussian window in frames. 0 disables smoothing.
	SmoothingWindow int
	Formula         VelocityFormula
}

// DefaultParams returns the stock parameter set.
func DefaultParams() Params {
	return Params{
		VelocityThreshold:    DefaultVelocityThreshold,
		MinConsecutiveFrames: DefaultMinConsecutiveFrames,
		SmoothingWindow:      DefaultSmoothingWindow,
		Formula:              Euclidean,
	}
}

// Validate checks the parameters once, before any track is processed.
func (p Params) Validate() error {
	if !(p.VelocityThreshold > 0) || math.IsInf(p.VelocityThreshold, 0) {
		return fmt.Errorf("[TrackVelocityThresholder] %w: %v", ErrInvalidVelocityThreshold, p.VelocityThreshold)
	}
	if p.MinConsecutiveFrames <= 0 {
		return fmt.Errorf("[TrackVelocityThresholder] %w: %d", ErrInvalidMinConsecutiveFrames, p.MinConsecutiveFrames)
	}
	if p.SmoothingWindow < 0 {
		return fmt.Errorf("[GaussianSmoother] %w: %d", ErrInvalidSmoothingWindow, p.SmoothingWindow)
	}
	if p.Formula != Euclidean && p.Formula != LegacyDzDx {
		return fmt.Errorf("[TrackVelocityThresholder] %w: %d", ErrUnknownVelocityFormula, int(p.Formula))
	}
	return nil
}
