package motion

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Params)
		wantErr error
	}{
		{"defaults", func(*Params) {}, nil},
		{"zero threshold", func(p *Params) { p.VelocityThreshold = 0 }, ErrInvalidVelocityThreshold},
		{"negative threshold", func(p *Params) { p.VelocityThreshold = -1 }, ErrInvalidVelocityThreshold},
		{"NaN threshold", func(p *Params) { p.VelocityThreshold = math.NaN() }, ErrInvalidVelocityThreshold},
		{"infinite threshold", func(p *Params) { p.VelocityThreshold = math.Inf(1) }, ErrInvalidVelocityThreshold},
		{"zero min frames", func(p *Params) { p.MinConsecutiveFrames = 0 }, ErrInvalidMinConsecutiveFrames},
		{"negative min frames", func(p *Params) { p.MinConsecutiveFrames = -2 }, ErrInvalidMinConsecutiveFrames},
		{"zero window allowed", func(p *Params) { p.SmoothingWindow = 0 }, nil},
		{"negative window", func(p *Params) { p.SmoothingWindow = -1 }, ErrInvalidSmoothingWindow},
		{"unknown formula", func(p *Params) { p.Formula = VelocityFormula(9) }, ErrUnknownVelocityFormula},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			p := DefaultParams()
			tt.mutate(&p)
			err := p.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestParamsValidate_Message(t *testing.T) {
	t.Parallel()

	p := DefaultParams()
	p.VelocityThreshold = 0
	assert.EqualError(t, p.Validate(), "[TrackVelocityThresholder] velocity threshold is negative or null: 0")
}

func TestDefaultParams(t *testing.T) {
	t.Parallel()

	p := DefaultParams()
	assert.Equal(t, 1e-2, p.VelocityThreshold)
	assert.Equal(t, 5, p.MinConsecutiveFrames)
	assert.Equal(t, 20, p.SmoothingWindow)
	assert.Equal(t, Euclidean, p.Formula)
}

func TestParseVelocityFormula(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]VelocityFormula{
		"":            Euclidean,
		"euclidean":   Euclidean,
		" Euclidean ": Euclidean,
		"legacy-dzdx": LegacyDzDx,
		"legacy":      LegacyDzDx,
	} {
		got, err := ParseVelocityFormula(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseVelocityFormula("manhattan")
	assert.ErrorIs(t, err, ErrUnknownVelocityFormula)

	for _, f := range []VelocityFormula{Euclidean, LegacyDzDx} {
		got, err := ParseVelocityFormula(f.String())
		require.NoError(t, err)
		assert.Equal(t, f, got)
	}
}
