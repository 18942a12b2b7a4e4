// Package render describes what an analysis wants drawn and provides the
// surfaces that draw it.
package render

import (
	"fmt"
	"strings"

	"gonum.org/v1/gonum/mat"
)

type Kind int

const (
	// Bar draws vertical bars, one per label
	Bar Kind = iota
	// HorizontalBar draws horizontal bars, one per label
	HorizontalBar
	// Matrix draws an annotated heatmap of a square matrix
	Matrix
)

func (k Kind) String() string {
	switch k {
	case Bar:
		return "bar"
	case HorizontalBar:
		return "horizontal bar"
	case Matrix:
		return "matrix"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

type ColorMap string

const (
	Coolwarm ColorMap = "coolwarm"
	Rocket   ColorMap = "rocket"
	Icefire  ColorMap = "icefire"
	Crest    ColorMap = "crest"
	Blues    ColorMap = "Blues"
)

var ColorMaps = []ColorMap{Coolwarm, Rocket, Icefire, Crest, Blues}

// ParseColorMap matches a color map name case-insensitively.
func ParseColorMap(name string) (ColorMap, error) {
	for _, c := range ColorMaps {
		if strings.EqualFold(string(c), name) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown color map %q", name)
}

// Request is a single drawing instruction.
type Request struct {
	Kind  Kind
	Title string

	// Labels name the bars, or the rows and columns of the matrix
	Labels []string

	// Values holds the bar heights
	Values []float64

	// Matrix holds the cells of a Matrix request
	Matrix mat.Matrix

	// ColorMap is optional, surfaces pick a default when empty
	ColorMap ColorMap

	// Mask hides matrix cells that are true, nil hides nothing
	Mask [][]bool

	// Annotate writes each matrix value inside its cell
	Annotate bool
}

func (r Request) Validate() error {
	switch r.Kind {
	case Bar, HorizontalBar:
		if len(r.Labels) != len(r.Values) {
			return fmt.Errorf("%s request has %d labels for %d values", r.Kind, len(r.Labels), len(r.Values))
		}
	case Matrix:
		if r.Matrix == nil {
			return fmt.Errorf("matrix request without matrix")
		}
		rows, cols := r.Matrix.Dims()
		if rows != cols || rows != len(r.Labels) {
			return fmt.Errorf("matrix request has a %dx%d matrix for %d labels", rows, cols, len(r.Labels))
		}
		if r.Mask != nil {
			if len(r.Mask) != rows {
				return fmt.Errorf("mask has %d rows, matrix has %d", len(r.Mask), rows)
			}
			for i := range r.Mask {
				if len(r.Mask[i]) != cols {
					return fmt.Errorf("mask row %d has %d cells, matrix has %d", i, len(r.Mask[i]), cols)
				}
			}
		}
	default:
		return fmt.Errorf("unknown plot kind %s", r.Kind)
	}
	if r.ColorMap != "" {
		if _, err := ParseColorMap(string(r.ColorMap)); err != nil {
			return err
		}
	}
	return nil
}

// Masked reports whether cell (i, j) is hidden.
func (r Request) Masked(i, j int) bool {
	return r.Mask != nil && r.Mask[i][j]
}

// Surface is a drawing target supplied by the caller.
type Surface interface {
	Render(request Request) error
}
