package trackgraph

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat/distuv"
)

// PatternSpots lays out a linear track described by a motion pattern such
// as "R5 P4 R2": each R step moves speed along x, each P step stays put.
// Spots sit one time unit and one frame apart and are numbered from firstID.
func PatternSpots(firstID int64, pattern string, speed float64) ([]Spot, error) {
	spots := []Spot{{ID: firstID}}
	x := 0.0
	for _, tok := range strings.Fields(pattern) {
		if len(tok) < 2 {
			return nil, fmt.Errorf("bad pattern token %q", tok)
		}
		n, err := strconv.Atoi(tok[1:])
		if err != nil || n < 0 {
			return nil, fmt.Errorf("bad pattern token %q", tok)
		}
		var step float64
		switch tok[0] {
		case 'R', 'r':
			step = speed
		case 'P', 'p':
		default:
			return nil, fmt.Errorf("bad pattern token %q", tok)
		}
		for k := 0; k < n; k++ {
			x += step
			f := len(spots)
			spots = append(spots, Spot{ID: firstID + int64(f), X: x, T: float64(f), Frame: f})
		}
	}
	return spots, nil
}

// Jitter adds Gaussian noise with standard deviation sigma to the x and y
// coordinates of spots, in place.
func Jitter(spots []Spot, sigma float64, src rand.Source) {
	if sigma <= 0 {
		return
	}
	noise := distuv.Normal{Mu: 0, Sigma: sigma, Src: src}
	for i := range spots {
		spots[i].X += noise.Rand()
		spots[i].Y += noise.Rand()
	}
}
