package planlog

import (
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// PlotSize is the edge length of rendered images.
const PlotSize = 8 * vg.Inch

var (
	obstacleColor = color.RGBA{R: 90, G: 90, B: 90, A: 255}
	startColor    = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	goalColor     = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	pathColor     = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

// Title summarizes the run's outcome.
func (r *Run) Title() string {
	if r.Response.OK && len(r.Response.X) > 0 && len(r.Response.Y) > 0 {
		return fmt.Sprintf("Path ok=true, n=%d, cost=%g", len(r.Response.X), r.Response.Cost)
	}
	return fmt.Sprintf("Path ok=%t, error=%s", r.Response.OK, r.Response.Error)
}

// Plot draws the run in planner coordinates: obstacle points, the start
// and goal markers and, when planning succeeded, the path.
func Plot(run *Run) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = run.Title()
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.Add(plotter.NewGrid())

	req, resp := run.Request, run.Response
	var all plotter.XYs

	if n := min(len(req.OX), len(req.OY)); n > 0 {
		pts := make(plotter.XYs, n)
		for i := range pts {
			pts[i] = plotter.XY{X: req.OX[i], Y: req.OY[i]}
		}
		s, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, fmt.Errorf("obstacle scatter: %w", err)
		}
		s.GlyphStyle.Shape = draw.CircleGlyph{}
		s.GlyphStyle.Radius = vg.Points(1)
		s.GlyphStyle.Color = obstacleColor
		p.Add(s)
		p.Legend.Add("obstacles", s)
		all = append(all, pts...)
	}

	if resp.OK {
		if n := min(len(resp.X), len(resp.Y)); n > 0 {
			pts := make(plotter.XYs, n)
			for i := range pts {
				pts[i] = plotter.XY{X: resp.X[i], Y: resp.Y[i]}
			}
			line, err := plotter.NewLine(pts)
			if err != nil {
				return nil, fmt.Errorf("path line: %w", err)
			}
			line.Color = pathColor
			line.Width = vg.Points(1.5)
			p.Add(line)
			p.Legend.Add("path", line)
			all = append(all, pts...)
		}
	}

	for _, m := range []struct {
		name  string
		at    plotter.XY
		shape draw.GlyphDrawer
		color color.Color
	}{
		{"start", plotter.XY{X: req.SX, Y: req.SY}, draw.CircleGlyph{}, startColor},
		{"goal", plotter.XY{X: req.GX, Y: req.GY}, draw.CrossGlyph{}, goalColor},
	} {
		s, err := plotter.NewScatter(plotter.XYs{m.at})
		if err != nil {
			return nil, fmt.Errorf("%s marker: %w", m.name, err)
		}
		s.GlyphStyle.Shape = m.shape
		s.GlyphStyle.Radius = vg.Points(5)
		s.GlyphStyle.Color = m.color
		p.Add(s)
		p.Legend.Add(m.name, s)
		all = append(all, m.at)
	}

	p.Legend.Top = true
	equalAxes(p, all)
	return p, nil
}

// equalAxes gives both axes the same span so distances read true.
func equalAxes(p *plot.Plot, pts plotter.XYs) {
	minX, maxX := math.Inf(1), math.Inf(-1)
	minY, maxY := math.Inf(1), math.Inf(-1)
	for _, pt := range pts {
		minX, maxX = math.Min(minX, pt.X), math.Max(maxX, pt.X)
		minY, maxY = math.Min(minY, pt.Y), math.Max(maxY, pt.Y)
	}
	span := math.Max(maxX-minX, maxY-minY)
	if span <= 0 || math.IsInf(span, 0) || math.IsNaN(span) {
		span = 1
	}
	half := span * 0.55
	cx, cy := (minX+maxX)/2, (minY+maxY)/2
	p.X.Min, p.X.Max = cx-half, cx+half
	p.Y.Min, p.Y.Max = cy-half, cy+half
}

// Render draws run and saves it to out. The format follows the file
// extension; png, svg and pdf are supported.
func Render(run *Run, out string) error {
	p, err := Plot(run)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(out); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
	}
	if err := p.Save(PlotSize, PlotSize, out); err != nil {
		return fmt.Errorf("saving plot %s: %w", out, err)
	}
	return nil
}
