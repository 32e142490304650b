package export

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// XLSXRenderer renders report tables into a single-sheet workbook.
type XLSXRenderer struct{}

// NewXLSXRenderer builds an XLSX renderer.
func NewXLSXRenderer() *XLSXRenderer {
	return &XLSXRenderer{}
}

// Render produces workbook bytes with a header row followed by data rows.
func (r *XLSXRenderer) Render(table Table, sheet string) ([]byte, error) {
	if len(table.Headers) == 0 {
		return nil, fmt.Errorf("xlsx requires at least one header")
	}
	if sheet == "" {
		sheet = "Reporte"
	}

	f := excelize.NewFile()
	defer f.Close() //nolint:errcheck

	index, err := f.NewSheet(sheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("drop default sheet: %w", err)
	}

	for col, header := range table.Headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("header coordinates: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, header); err != nil {
			return nil, fmt.Errorf("write header: %w", err)
		}
	}

	for rowIdx, row := range table.Rows {
		for col, c := range row {
			cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
			if err != nil {
				return nil, fmt.Errorf("row coordinates: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, c.Value); err != nil {
				return nil, fmt.Errorf("write cell: %w", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("render xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
