// Package profile draws the smoothed velocity of one track over time, one
// series per RUN or PAUSE segment, against the pausing threshold.
package profile

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/optofluidics/trackpause/internal/motion"
	"github.com/optofluidics/trackpause/internal/security"
)

// ErrEmptyProfile is returned when there is nothing to draw.
var ErrEmptyProfile = errors.New("profile has no finite points")

// Point is one edge of the profile.
type Point struct {
	T float64 // edge time location
	V float64 // smoothed velocity
}

// Series is the contiguous run of points of one segment.
type Series struct {
	Name   string
	Type   motion.MotionType
	Points []Point
}

// Profile is everything needed to draw a track's velocity profile.
type Profile struct {
	Title     string
	Threshold float64
	Series    []Series
	TMin      float64
	TMax      float64
}

// Build splits the edge labels of r along its segments. Points with a
// non-finite velocity are dropped.
func Build(r *motion.TrackResult, threshold float64) Profile {
	p := Profile{
		Title:     fmt.Sprintf("%s - smoothed velocity", r.TrackName),
		Threshold: threshold,
		TMin:      math.Inf(1),
		TMax:      math.Inf(-1),
	}

	counts := map[motion.MotionType]int{}
	next := 0
	for _, seg := range r.Segments {
		counts[seg.Type]++
		s := Series{
			Name: fmt.Sprintf("%s %d", seg.Type, counts[seg.Type]),
			Type: seg.Type,
		}
		end := min(next+seg.Len(), len(r.Edges))
		for _, l := range r.Edges[next:end] {
			if math.IsNaN(l.SmoothedVelocity) || math.IsInf(l.SmoothedVelocity, 0) {
				continue
			}
			s.Points = append(s.Points, Point{T: l.TimeLocation, V: l.SmoothedVelocity})
			p.TMin = math.Min(p.TMin, l.TimeLocation)
			p.TMax = math.Max(p.TMax, l.TimeLocation)
		}
		next = end
		if len(s.Points) > 0 {
			p.Series = append(p.Series, s)
		}
	}
	return p
}

// Empty reports whether the profile has no points.
func (p Profile) Empty() bool { return len(p.Series) == 0 }

// FileName returns a default output file name for a track.
func FileName(trackName, ext string) string {
	return security.SanitizeFilename(trackName) + "_profile" + ext
}

// Write renders p to path, choosing the renderer from the extension:
// .html goes through RenderHTML, .png, .svg and .pdf through RenderPNG.
func Write(p Profile, path string) error {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".html", ".htm":
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", path, err)
		}
		if err := RenderHTML(p, f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	case ".png", ".svg", ".pdf":
		return RenderPNG(p, path)
	default:
		return fmt.Errorf("unsupported profile format %q", ext)
	}
}
