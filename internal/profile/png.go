package profile

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/optofluidics/trackpause/internal/motion"
)

var (
	runColor       = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	pauseColor     = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	thresholdColor = color.RGBA{R: 90, G: 90, B: 90, A: 255}
)

// RenderPNG draws p with gonum/plot and saves it to path. The image format
// follows the extension.
func RenderPNG(p Profile, path string) error {
	if p.Empty() {
		return ErrEmptyProfile
	}

	plt := plot.New()
	plt.Title.Text = p.Title
	plt.X.Label.Text = "T"
	plt.Y.Label.Text = "V"

	legend := map[motion.MotionType]bool{}
	for _, s := range p.Series {
		pts := make(plotter.XYs, len(s.Points))
		for i, pt := range s.Points {
			pts[i] = plotter.XY{X: pt.T, Y: pt.V}
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return fmt.Errorf("failed to build line for %s: %w", s.Name, err)
		}
		line.Width = vg.Points(1)
		line.Color = runColor
		if s.Type == motion.Pausing {
			line.Color = pauseColor
		}
		plt.Add(line)
		if !legend[s.Type] {
			plt.Legend.Add(s.Type.String(), line)
			legend[s.Type] = true
		}
	}

	threshold, err := plotter.NewLine(plotter.XYs{
		{X: p.TMin, Y: p.Threshold},
		{X: p.TMax, Y: p.Threshold},
	})
	if err != nil {
		return fmt.Errorf("failed to build threshold line: %w", err)
	}
	threshold.Width = vg.Points(1)
	threshold.Color = thresholdColor
	threshold.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	plt.Add(threshold)
	plt.Legend.Add("threshold", threshold)

	plt.Legend.Top = true
	plt.Legend.Left = false
	plt.Legend.XOffs = -10
	plt.Legend.YOffs = -10

	if err := plt.Save(14*vg.Inch, 6*vg.Inch, path); err != nil {
		return fmt.Errorf("failed to save profile to %s: %w", path, err)
	}
	return nil
}
