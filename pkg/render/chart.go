package render

import (
	"fmt"
	"io"
	"math"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

const (
	defaultWidth  = 1024
	defaultHeight = 768
	margin        = 24
	labelPadding  = 8
	fontSize      = 10.0
	titleFontSize = 14.0
)

var (
	barColor        = drawing.Color{R: 76, G: 114, B: 176, A: 255}
	backgroundColor = drawing.ColorWhite
	textColor       = drawing.ColorBlack
)

// ChartSurface draws each request as a PNG image written to Out.
type ChartSurface struct {
	Out    io.Writer
	Width  int
	Height int
}

func NewChartSurface(out io.Writer) *ChartSurface {
	return &ChartSurface{Out: out, Width: defaultWidth, Height: defaultHeight}
}

func (s *ChartSurface) Render(request Request) error {
	if err := request.Validate(); err != nil {
		return err
	}
	switch request.Kind {
	case Bar:
		return s.renderBars(request)
	case HorizontalBar:
		return s.draw(request, drawHorizontalBars)
	default:
		return s.draw(request, drawMatrix)
	}
}

func (s *ChartSurface) renderBars(request Request) error {
	if len(request.Values) == 0 {
		return fmt.Errorf("bar request %q has no values", request.Title)
	}
	bars := make([]chart.Value, len(request.Values))
	top := 1.0
	for i, v := range request.Values {
		bars[i] = chart.Value{
			Label: request.Labels[i],
			Value: v,
			Style: chart.Style{FillColor: barColor, StrokeColor: barColor},
		}
		top = math.Max(top, v)
	}

	graph := chart.BarChart{
		Title:    request.Title,
		Width:    s.Width,
		Height:   s.Height,
		BarWidth: (s.Width - 2*margin) / (2 * len(bars)),
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: top * 1.05},
		},
		Bars: bars,
	}
	return graph.Render(chart.PNG, s.Out)
}

type drawFunc func(r chart.Renderer, request Request, area chart.Box)

func (s *ChartSurface) draw(request Request, fn drawFunc) error {
	r, err := chart.PNG(s.Width, s.Height)
	if err != nil {
		return fmt.Errorf("error creating canvas: %w", err)
	}
	font, err := chart.GetDefaultFont()
	if err != nil {
		return fmt.Errorf("error loading font: %w", err)
	}
	r.SetFont(font)
	fillRect(r, chart.Box{Top: 0, Left: 0, Right: s.Width, Bottom: s.Height}, backgroundColor)

	area := chart.Box{Top: margin, Left: margin, Right: s.Width - margin, Bottom: s.Height - margin}
	if request.Title != "" {
		r.SetFontColor(textColor)
		r.SetFontSize(titleFontSize)
		box := r.MeasureText(request.Title)
		r.Text(request.Title, (s.Width-box.Width())/2, margin+box.Height())
		area.Top += box.Height() + 2*labelPadding
	}
	r.SetFontSize(fontSize)
	r.SetFontColor(textColor)

	fn(r, request, area)
	return r.Save(s.Out)
}

func drawHorizontalBars(r chart.Renderer, request Request, area chart.Box) {
	if len(request.Values) == 0 {
		return
	}
	labelWidth := 0
	for _, label := range request.Labels {
		if w := r.MeasureText(label).Width(); w > labelWidth {
			labelWidth = w
		}
	}
	valueWidth := r.MeasureText("-0000.000").Width()
	plot := chart.Box{
		Top:    area.Top,
		Left:   area.Left + labelWidth + labelPadding,
		Right:  area.Right - valueWidth - labelPadding,
		Bottom: area.Bottom,
	}

	lo, hi := 0.0, 0.0
	for _, v := range request.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	xFor := func(v float64) int {
		switch {
		case math.IsInf(v, 1):
			v = hi
		case math.IsInf(v, -1):
			v = lo
		}
		return plot.Left + int(normalize(v, lo, hi)*float64(plot.Width()))
	}

	rowHeight := float64(plot.Height()) / float64(len(request.Values))
	for i, v := range request.Values {
		top := plot.Top + int(float64(i)*rowHeight)
		bottom := plot.Top + int(float64(i+1)*rowHeight)
		middle := (top + bottom) / 2
		inset := int(rowHeight * 0.1)

		label := request.Labels[i]
		box := r.MeasureText(label)
		r.Text(label, plot.Left-labelPadding-box.Width(), middle+box.Height()/2)

		if !math.IsNaN(v) {
			x0, x1 := xFor(0), xFor(v)
			if x1 < x0 {
				x0, x1 = x1, x0
			}
			fillRect(r, chart.Box{Top: top + inset, Left: x0, Right: x1, Bottom: bottom - inset}, barColor)
		}
		r.Text(formatValue(v), plot.Right+labelPadding, middle+box.Height()/2)
	}
}

func drawMatrix(r chart.Renderer, request Request, area chart.Box) {
	n := len(request.Labels)
	if n == 0 {
		return
	}
	labelWidth := 0
	for _, label := range request.Labels {
		if w := r.MeasureText(label).Width(); w > labelWidth {
			labelWidth = w
		}
	}
	side := math.Min(float64(area.Width()-labelWidth-labelPadding), float64(area.Height()-labelWidth-labelPadding))
	cell := side / float64(n)
	left := area.Left + labelWidth + labelPadding
	top := area.Top

	colorMap := request.ColorMap
	if colorMap == "" {
		colorMap = Coolwarm
	}
	lo, hi := valueRange(request)

	for i := 0; i < n; i++ {
		y0 := top + int(float64(i)*cell)
		y1 := top + int(float64(i+1)*cell)

		box := r.MeasureText(request.Labels[i])
		r.SetFontColor(textColor)
		r.Text(request.Labels[i], left-labelPadding-box.Width(), (y0+y1)/2+box.Height()/2)

		for j := 0; j < n; j++ {
			if request.Masked(i, j) {
				continue
			}
			x0 := left + int(float64(j)*cell)
			x1 := left + int(float64(j+1)*cell)
			v := request.Matrix.At(i, j)
			fillRect(r, chart.Box{Top: y0, Left: x0, Right: x1, Bottom: y1}, colorMap.Color(normalize(v, lo, hi)))

			if request.Annotate {
				text := formatValue(v)
				tb := r.MeasureText(text)
				r.SetFontColor(annotationColor(colorMap.Color(normalize(v, lo, hi))))
				r.Text(text, (x0+x1)/2-tb.Width()/2, (y0+y1)/2+tb.Height()/2)
			}
		}
	}

	r.SetFontColor(textColor)
	r.SetTextRotation(-math.Pi / 2)
	bottom := top + int(side)
	for j, label := range request.Labels {
		box := r.MeasureText(label)
		x := left + int((float64(j)+0.5)*cell) + box.Height()/2
		r.Text(label, x, bottom+labelPadding+box.Width())
	}
	r.ClearTextRotation()
}

func fillRect(r chart.Renderer, box chart.Box, color drawing.Color) {
	r.SetFillColor(color)
	r.SetStrokeColor(color)
	r.SetStrokeWidth(0)
	r.MoveTo(box.Left, box.Top)
	r.LineTo(box.Right, box.Top)
	r.LineTo(box.Right, box.Bottom)
	r.LineTo(box.Left, box.Bottom)
	r.Close()
	r.Fill()
}

// annotationColor keeps annotations readable on dark cells.
func annotationColor(background drawing.Color) drawing.Color {
	luminance := 0.299*float64(background.R) + 0.587*float64(background.G) + 0.114*float64(background.B)
	if luminance < 128 {
		return drawing.ColorWhite
	}
	return drawing.ColorBlack
}

func formatValue(v float64) string {
	switch {
	case math.IsNaN(v):
		return "nan"
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case v == math.Trunc(v) && math.Abs(v) < 1e6:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
