package render

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/xuri/excelize/v2"
)

const maxSheetName = 31

// WorkbookSurface writes every request to its own worksheet: bar requests as
// a two-column table with a native chart, matrix requests as a colored grid.
type WorkbookSurface struct {
	file   *excelize.File
	sheets []string
	styles map[string]int
}

func NewWorkbookSurface() *WorkbookSurface {
	return &WorkbookSurface{
		file:   excelize.NewFile(),
		styles: map[string]int{},
	}
}

// Sheets returns the worksheet names in render order.
func (s *WorkbookSurface) Sheets() []string {
	return s.sheets
}

func (s *WorkbookSurface) File() *excelize.File {
	return s.file
}

func (s *WorkbookSurface) Render(request Request) error {
	if err := request.Validate(); err != nil {
		return err
	}
	sheet, err := s.addSheet(request.Title)
	if err != nil {
		return err
	}
	switch request.Kind {
	case Matrix:
		return s.writeMatrix(sheet, request)
	default:
		return s.writeBars(sheet, request)
	}
}

func (s *WorkbookSurface) Write(w io.Writer) error {
	return s.file.Write(w)
}

func (s *WorkbookSurface) SaveAs(name string) error {
	return s.file.SaveAs(name)
}

func (s *WorkbookSurface) Close() error {
	return s.file.Close()
}

func (s *WorkbookSurface) addSheet(title string) (string, error) {
	name := s.uniqueName(sheetName(title))
	if len(s.sheets) == 0 {
		if err := s.file.SetSheetName(s.file.GetSheetName(0), name); err != nil {
			return "", fmt.Errorf("error naming sheet %s: %w", name, err)
		}
	} else if _, err := s.file.NewSheet(name); err != nil {
		return "", fmt.Errorf("error creating sheet %s: %w", name, err)
	}
	s.sheets = append(s.sheets, name)
	return name, nil
}

func (s *WorkbookSurface) uniqueName(name string) string {
	candidate := name
	for n := 2; s.hasSheet(candidate); n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		base := name
		if len(base)+len(suffix) > maxSheetName {
			base = base[:maxSheetName-len(suffix)]
		}
		candidate = base + suffix
	}
	return candidate
}

func (s *WorkbookSurface) hasSheet(name string) bool {
	for _, sheet := range s.sheets {
		if strings.EqualFold(sheet, name) {
			return true
		}
	}
	return false
}

func sheetName(title string) string {
	name := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\', '\'':
			return ' '
		}
		return r
	}, title)
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Plot"
	}
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}

func (s *WorkbookSurface) writeBars(sheet string, request Request) error {
	if err := s.file.SetCellValue(sheet, "A1", "Label"); err != nil {
		return err
	}
	if err := s.file.SetCellValue(sheet, "B1", "Value"); err != nil {
		return err
	}
	for i, label := range request.Labels {
		if err := s.setCell(sheet, 1, i+2, label); err != nil {
			return err
		}
		if err := s.setCell(sheet, 2, i+2, cellValue(request.Values[i])); err != nil {
			return err
		}
	}
	if len(request.Labels) == 0 {
		return nil
	}

	chartType := excelize.Col
	if request.Kind == HorizontalBar {
		chartType = excelize.Bar
	}
	last := len(request.Labels) + 1
	return s.file.AddChart(sheet, "D2", &excelize.Chart{
		Type: chartType,
		Series: []excelize.ChartSeries{{
			Name:       fmt.Sprintf("'%s'!$B$1", sheet),
			Categories: fmt.Sprintf("'%s'!$A$2:$A$%d", sheet, last),
			Values:     fmt.Sprintf("'%s'!$B$2:$B$%d", sheet, last),
		}},
		Title:  []excelize.RichTextRun{{Text: request.Title}},
		Legend: excelize.ChartLegend{Position: "none"},
	})
}

func (s *WorkbookSurface) writeMatrix(sheet string, request Request) error {
	for i, label := range request.Labels {
		if err := s.setCell(sheet, i+2, 1, label); err != nil {
			return err
		}
		if err := s.setCell(sheet, 1, i+2, label); err != nil {
			return err
		}
	}

	colorMap := request.ColorMap
	if colorMap == "" {
		colorMap = Coolwarm
	}
	lo, hi := valueRange(request)
	n := len(request.Labels)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if request.Masked(i, j) {
				continue
			}
			v := request.Matrix.At(i, j)
			cell, err := excelize.CoordinatesToCellName(j+2, i+2)
			if err != nil {
				return err
			}
			if err := s.file.SetCellValue(sheet, cell, cellValue(v)); err != nil {
				return err
			}
			style, err := s.fillStyle(colorMap.Hex(normalize(v, lo, hi)))
			if err != nil {
				return err
			}
			if err := s.file.SetCellStyle(sheet, cell, cell, style); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *WorkbookSurface) setCell(sheet string, col, row int, value interface{}) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return s.file.SetCellValue(sheet, cell, value)
}

func (s *WorkbookSurface) fillStyle(hex string) (int, error) {
	if style, ok := s.styles[hex]; ok {
		return style, nil
	}
	style, err := s.file.NewStyle(&excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Color: []string{hex}, Pattern: 1},
		NumFmt: 2,
	})
	if err != nil {
		return 0, fmt.Errorf("error creating cell style: %w", err)
	}
	s.styles[hex] = style
	return style, nil
}

// cellValue keeps non-finite numbers readable, spreadsheets cannot store them.
func cellValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return formatValue(v)
	}
	return v
}
