// Package export renders reports as xlsx workbooks.
package export

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// sheet is one tab of a workbook: a header row followed by data rows.
type sheet struct {
	name   string
	header []string
	widths []float64
	rows   [][]any
}

type workbook struct {
	f           *excelize.File
	headerStyle int
	sheets      int
}

func newWorkbook() (*workbook, error) {
	f := excelize.NewFile()
	style, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}
	return &workbook{f: f, headerStyle: style}, nil
}

func (w *workbook) add(s sheet) error {
	if w.sheets == 0 {
		// Rename the default sheet instead of leaving an empty Sheet1 behind.
		if err := w.f.SetSheetName("Sheet1", s.name); err != nil {
			return fmt.Errorf("failed to name sheet %s: %w", s.name, err)
		}
	} else if _, err := w.f.NewSheet(s.name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
	}
	w.sheets++

	header := make([]any, len(s.header))
	for i, h := range s.header {
		header[i] = h
	}
	if err := w.f.SetSheetRow(s.name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", s.name, err)
	}
	last, err := excelize.CoordinatesToCellName(len(s.header), 1)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(s.name, "A1", last, w.headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}

	for i, width := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := w.f.SetColWidth(s.name, col, col, width); err != nil {
			return fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := w.f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+2, s.name, err)
		}
	}

	return w.f.SetPanes(s.name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func (w *workbook) bytes() ([]byte, error) {
	defer w.f.Close()
	w.f.SetActiveSheet(0)
	var buf bytes.Buffer
	if _, err := w.f.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func build(sheets ...sheet) ([]byte, error) {
	w, err := newWorkbook()
	if err != nil {
		return nil, err
	}
	for _, s := range sheets {
		if err := w.add(s); err != nil {
			w.f.Close()
			return nil, err
		}
	}
	return w.bytes()
}
