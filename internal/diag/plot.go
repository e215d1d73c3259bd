package diag

import (
	"fmt"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/Faultbox/depthmesh/internal/pipeline"
	"github.com/Faultbox/depthmesh/pkg/worldmesh"
)

// GrowthPlot collects the world mesh size after every step and saves a line
// plot of it on Close.
type GrowthPlot struct {
	path      string
	triangles plotter.XYs
	points    plotter.XYs
}

// NewGrowthPlot creates a plot saved to path. The format follows the file
// extension (png, svg, pdf).
func NewGrowthPlot(path string) *GrowthPlot {
	return &GrowthPlot{path: path}
}

// Record adds the world mesh size after the step.
func (g *GrowthPlot) Record(res *pipeline.StepResult, world worldmesh.Snapshot) error {
	x := float64(res.Index)
	g.triangles = append(g.triangles, plotter.XY{X: x, Y: float64(len(world.Triangles))})
	g.points = append(g.points, plotter.XY{X: x, Y: float64(len(world.Points))})
	return nil
}

// Samples returns the recorded triangle counts.
func (g *GrowthPlot) Samples() plotter.XYs {
	return g.triangles
}

// Close renders the plot. Nothing is written when no step was recorded.
func (g *GrowthPlot) Close() error {
	if len(g.triangles) == 0 {
		return nil
	}

	p := plot.New()
	p.Title.Text = "World mesh growth"
	p.X.Label.Text = "Iteration"
	p.Y.Label.Text = "Count"

	for i, series := range []struct {
		name string
		xys  plotter.XYs
	}{
		{"triangles", g.triangles},
		{"points", g.points},
	} {
		line, scatter, err := plotter.NewLinePoints(series.xys)
		if err != nil {
			return fmt.Errorf("growth plot %s: %w", series.name, err)
		}
		c := worldmesh.ColorForStep(i)
		line.Color = c
		scatter.Color = c
		p.Add(line, scatter)
		p.Legend.Add(series.name, line, scatter)
	}

	if dir := filepath.Dir(g.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating output dir: %w", err)
		}
	}
	if err := p.Save(6*vg.Inch, 4*vg.Inch, g.path); err != nil {
		return fmt.Errorf("saving growth plot: %w", err)
	}
	return nil
}
