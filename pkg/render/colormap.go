package render

import (
	"fmt"
	"math"

	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Anchor colors sampled from the seaborn palettes of the same names.
var colorMapAnchors = map[ColorMap][]drawing.Color{
	Coolwarm: {
		{R: 59, G: 76, B: 192, A: 255},
		{R: 221, G: 221, B: 221, A: 255},
		{R: 180, G: 4, B: 38, A: 255},
	},
	Rocket: {
		{R: 3, G: 5, B: 26, A: 255},
		{R: 113, G: 31, B: 87, A: 255},
		{R: 225, G: 51, B: 66, A: 255},
		{R: 250, G: 235, B: 221, A: 255},
	},
	Icefire: {
		{R: 189, G: 230, B: 219, A: 255},
		{R: 50, G: 100, B: 178, A: 255},
		{R: 30, G: 30, B: 30, A: 255},
		{R: 196, G: 54, B: 39, A: 255},
		{R: 255, G: 225, B: 145, A: 255},
	},
	Crest: {
		{R: 165, G: 205, B: 144, A: 255},
		{R: 44, G: 133, B: 138, A: 255},
		{R: 37, G: 52, B: 148, A: 255},
	},
	Blues: {
		{R: 247, G: 251, B: 255, A: 255},
		{R: 107, G: 174, B: 214, A: 255},
		{R: 8, G: 48, B: 107, A: 255},
	},
}

var missingColor = drawing.Color{R: 200, G: 200, B: 200, A: 255}

// Color interpolates the color map at t in [0, 1]. NaN maps to gray.
func (c ColorMap) Color(t float64) drawing.Color {
	if math.IsNaN(t) {
		return missingColor
	}
	anchors, ok := colorMapAnchors[c]
	if !ok {
		anchors = colorMapAnchors[Coolwarm]
	}
	t = math.Max(0, math.Min(1, t))

	pos := t * float64(len(anchors)-1)
	i := int(math.Floor(pos))
	if i >= len(anchors)-1 {
		return anchors[len(anchors)-1]
	}
	frac := pos - float64(i)
	from, to := anchors[i], anchors[i+1]
	return drawing.Color{
		R: lerp(from.R, to.R, frac),
		G: lerp(from.G, to.G, frac),
		B: lerp(from.B, to.B, frac),
		A: 255,
	}
}

// Hex returns the color at t as #RRGGBB.
func (c ColorMap) Hex(t float64) string {
	color := c.Color(t)
	return fmt.Sprintf("#%02X%02X%02X", color.R, color.G, color.B)
}

func lerp(a, b uint8, t float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*t))
}

// valueRange returns the color scale bounds of the visible matrix cells:
// [-1, 1] when every finite value fits, the observed extent otherwise.
func valueRange(request Request) (float64, float64) {
	lo, hi := math.Inf(1), math.Inf(-1)
	rows, cols := request.Matrix.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			v := request.Matrix.At(i, j)
			if request.Masked(i, j) || math.IsNaN(v) || math.IsInf(v, 0) {
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	if lo > hi || (lo >= -1 && hi <= 1) {
		return -1, 1
	}
	if lo == hi {
		return lo - 1, hi + 1
	}
	return lo, hi
}

func normalize(value, lo, hi float64) float64 {
	return (value - lo) / (hi - lo)
}
