package plot

import (
	"bytes"
	"fmt"
	"image/color"

	"gokinet/domain/kinetics"
	"gokinet/internal/errors"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

var (
	experimentalColor = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	psoDataColor      = color.RGBA{R: 44, G: 160, B: 44, A: 255}
	fitColor          = color.RGBA{R: 214, G: 39, B: 40, A: 255}
)

// Renderer draws the two-panel linearized model figure as a PNG
type Renderer struct{}

// NewRenderer creates a new figure renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// Figure renders the PFO and PSO panels side by side: experimental
// linearized data over the full series, fitted dashed line over the
// selected range.
func (r *Renderer) Figure(analysis *kinetics.Analysis) ([]byte, error) {
	if analysis == nil || analysis.Series == nil || analysis.Series.Len() == 0 {
		return nil, errors.InvalidInput("nothing to plot")
	}

	pfoPanel, err := r.pfoPanel(analysis)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build PFO panel")
	}
	psoPanel, err := r.psoPanel(analysis)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build PSO panel")
	}

	img := vgimg.New(12*vg.Inch, 5*vg.Inch)
	dc := draw.New(img)
	tiles := draw.Tiles{
		Rows:      1,
		Cols:      2,
		PadX:      vg.Millimeter * 4,
		PadLeft:   vg.Millimeter * 2,
		PadRight:  vg.Millimeter * 2,
		PadTop:    vg.Millimeter * 2,
		PadBottom: vg.Millimeter * 2,
	}

	plots := [][]*plot.Plot{{pfoPanel, psoPanel}}
	canvases := plot.Align(plots, tiles, dc)
	pfoPanel.Draw(canvases[0][0])
	psoPanel.Draw(canvases[0][1])

	var buf bytes.Buffer
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(&buf); err != nil {
		return nil, errors.Wrap(err, "failed to encode figure")
	}
	return buf.Bytes(), nil
}

func (r *Renderer) pfoPanel(analysis *kinetics.Analysis) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Pseudo-first-order model"
	p.X.Label.Text = "Time, min"
	p.Y.Label.Text = "ln(A/A0)"
	p.Add(plotter.NewGrid())

	experimental := make(plotter.XYs, analysis.Series.Len())
	for i, pt := range analysis.Series.Points {
		experimental[i].X = pt.Time
		experimental[i].Y = pt.LnRatio
	}

	fitted := make(plotter.XYs, len(analysis.PFO.Predictions))
	for i, pred := range analysis.PFO.Predictions {
		fitted[i].X = pred.Time
		fitted[i].Y = pred.Linearized
	}

	if err := addSeries(p, experimental, experimentalColor, "Experimental ln(A/A0)"); err != nil {
		return nil, err
	}
	if err := addFitLine(p, fitted, fmt.Sprintf("PFO fit (k1=%.5f)", analysis.PFO.RateMagnitude())); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *Renderer) psoPanel(analysis *kinetics.Analysis) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Pseudo-second-order model"
	p.X.Label.Text = "Time, min"
	p.Y.Label.Text = "1/A"
	p.Add(plotter.NewGrid())

	experimental := make(plotter.XYs, analysis.Series.Len())
	for i, pt := range analysis.Series.Points {
		experimental[i].X = pt.Time
		experimental[i].Y = pt.InvConc
	}

	fitted := make(plotter.XYs, len(analysis.PSO.Predictions))
	for i, pred := range analysis.PSO.Predictions {
		fitted[i].X = pred.Time
		fitted[i].Y = pred.Linearized
	}

	if err := addSeries(p, experimental, psoDataColor, "Experimental 1/A"); err != nil {
		return nil, err
	}
	if err := addFitLine(p, fitted, fmt.Sprintf("PSO fit (k2=%.5f)", analysis.PSO.RateConstant)); err != nil {
		return nil, err
	}
	return p, nil
}

// addSeries draws experimental data as connected markers
func addSeries(p *plot.Plot, xys plotter.XYs, c color.Color, label string) error {
	line, scatter, err := plotter.NewLinePoints(xys)
	if err != nil {
		return err
	}
	line.Color = c
	scatter.Color = c
	scatter.Radius = vg.Points(2.5)
	p.Add(line, scatter)
	p.Legend.Add(label, line, scatter)
	return nil
}

// addFitLine draws the fitted model as a dashed line
func addFitLine(p *plot.Plot, xys plotter.XYs, label string) error {
	line, err := plotter.NewLine(xys)
	if err != nil {
		return err
	}
	line.Color = fitColor
	line.Width = vg.Points(1.5)
	line.Dashes = []vg.Length{vg.Points(6), vg.Points(3)}
	p.Add(line)
	p.Legend.Add(label, line)
	return nil
}
