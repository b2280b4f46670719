package training

import (
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/YuminosukeSato/sleepq/neural"
	"github.com/YuminosukeSato/sleepq/pkg/errors"
)

const (
	plotWidth  = 6 * vg.Inch
	plotHeight = 4 * vg.Inch
)

func historyPlot(h *neural.History) (*plot.Plot, error) {
	if h == nil || len(h.Loss) == 0 {
		return nil, errors.NewValueError("training.PlotLoss", "empty history")
	}
	loss := make(plotter.XYs, len(h.Loss))
	for i, v := range h.Loss {
		loss[i].X = float64(i + 1)
		loss[i].Y = v
	}
	acc := make(plotter.XYs, len(h.Accuracy))
	for i, v := range h.Accuracy {
		acc[i].X = float64(i + 1)
		acc[i].Y = v
	}

	p := plot.New()
	p.Title.Text = "Training history"
	p.X.Label.Text = "Epoch"
	p.Y.Label.Text = "Value"
	if err := plotutil.AddLinePoints(p, "loss", loss, "accuracy", acc); err != nil {
		return nil, errors.Wrap(err, "add history lines")
	}
	return p, nil
}

// PlotLoss saves the loss and accuracy curves to path. The image format
// follows the file extension (png, svg, pdf).
func PlotLoss(h *neural.History, path string) error {
	p, err := historyPlot(h)
	if err != nil {
		return err
	}
	if err := p.Save(plotWidth, plotHeight, path); err != nil {
		return errors.Wrapf(err, "save plot %s", path)
	}
	return nil
}

// WritePlot renders the curves to w in the given format.
func WritePlot(h *neural.History, w io.Writer, format string) error {
	p, err := historyPlot(h)
	if err != nil {
		return err
	}
	wt, err := p.WriterTo(plotWidth, plotHeight, format)
	if err != nil {
		return errors.Wrapf(err, "render %s plot", format)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return errors.Wrap(err, "write plot")
	}
	return nil
}
