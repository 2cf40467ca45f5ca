// Package viz renders the decision surface of a two-feature SVC with gonum/plot.
package viz

import (
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/YuminosukeSato/gosvm/pkg/errors"
	"github.com/YuminosukeSato/gosvm/sklearn/svm"
)

// Options controls the rendered figure.
type Options struct {
	Title string
	// Resolution is the number of grid cells per axis.
	Resolution int
	// Padding extends the data range on every side, as a fraction of the range.
	Padding float64
}

// DefaultOptions returns a 60×60 grid with 10% padding.
func DefaultOptions() Options {
	return Options{Title: "SVM decision function", Resolution: 60, Padding: 0.1}
}

// marginGrid implements plotter.GridXYZ over the model margin.
type marginGrid struct {
	xs, ys []float64
	z      []float64 // row-major, len(ys) × len(xs)
}

func (g *marginGrid) Dims() (c, r int)   { return len(g.xs), len(g.ys) }
func (g *marginGrid) Z(c, r int) float64 { return g.z[r*len(g.xs)+c] }
func (g *marginGrid) X(c int) float64    { return g.xs[c] }
func (g *marginGrid) Y(r int) float64    { return g.ys[r] }

// DecisionPlot draws the margin of clf as a heat map with its zero contour,
// overlaid with the samples of X coloured by y. y may be nil.
func DecisionPlot(clf *svm.SVC, X, y mat.Matrix, opts Options) (*plot.Plot, error) {
	n, d := X.Dims()
	if d != 2 {
		return nil, errors.NewValueError("viz.DecisionPlot", fmt.Sprintf("need exactly 2 features, got %d", d))
	}
	if n == 0 {
		return nil, errors.NewModelError("viz.DecisionPlot", "empty data", errors.ErrEmptyData)
	}
	if opts.Resolution < 2 {
		opts.Resolution = DefaultOptions().Resolution
	}

	xs, ys := axis(mat.Col(nil, 0, X), opts), axis(mat.Col(nil, 1, X), opts)
	points := mat.NewDense(len(xs)*len(ys), 2, nil)
	for r, yv := range ys {
		for c, xv := range xs {
			points.SetRow(r*len(xs)+c, []float64{xv, yv})
		}
	}
	z, err := clf.Margin(points)
	if err != nil {
		return nil, err
	}
	grid := &marginGrid{xs: xs, ys: ys, z: z}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "x1"
	p.Y.Label.Text = "x2"

	pal := moreland.SmoothBlueRed()
	limit := math.Max(math.Abs(floats.Min(z)), math.Abs(floats.Max(z)))
	if limit == 0 {
		limit = 1
	}
	pal.SetMin(-limit)
	pal.SetMax(limit)
	heat := plotter.NewHeatMap(grid, pal.Palette(255))
	heat.Min, heat.Max = -limit, limit
	p.Add(heat)

	if floats.Min(z) < 0 && floats.Max(z) > 0 {
		contour := plotter.NewContour(grid, []float64{0}, nil)
		contour.LineStyles = []draw.LineStyle{{Color: color.Black, Width: vg.Points(1.5)}}
		p.Add(contour)
	}

	var pos, neg, other plotter.XYs
	for i := 0; i < n; i++ {
		pt := plotter.XY{X: X.At(i, 0), Y: X.At(i, 1)}
		switch {
		case y == nil:
			other = append(other, pt)
		case y.At(i, 0) == 1:
			pos = append(pos, pt)
		case y.At(i, 0) == -1:
			neg = append(neg, pt)
		default:
			other = append(other, pt)
		}
	}
	for _, s := range []struct {
		name  string
		pts   plotter.XYs
		shape draw.GlyphDrawer
	}{
		{"+1", pos, draw.CrossGlyph{}},
		{"-1", neg, draw.CircleGlyph{}},
		{"sample", other, draw.RingGlyph{}},
	} {
		if len(s.pts) == 0 {
			continue
		}
		sc, err := plotter.NewScatter(s.pts)
		if err != nil {
			return nil, errors.Wrap(err, "failed to build scatter")
		}
		sc.GlyphStyle.Shape = s.shape
		sc.GlyphStyle.Color = color.Black
		sc.GlyphStyle.Radius = vg.Points(3)
		p.Add(sc)
		p.Legend.Add(s.name, sc)
	}
	return p, nil
}

// axis returns Resolution evenly spaced values over the padded range of v.
func axis(v []float64, opts Options) []float64 {
	lo, hi := floats.Min(v), floats.Max(v)
	span := hi - lo
	if span == 0 {
		// 定数列は値を中心に幅1の範囲で描く
		lo, hi, span = lo-0.5, hi+0.5, 1
	}
	lo -= span * opts.Padding
	hi += span * opts.Padding
	return floats.Span(make([]float64, opts.Resolution), lo, hi)
}

// Save renders p to path; the extension picks the format (png, svg, pdf, ...).
func Save(p *plot.Plot, path string) error {
	if err := p.Save(6*vg.Inch, 6*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "failed to save plot to %s", path)
	}
	return nil
}
