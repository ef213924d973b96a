package report

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

// WriteWorkbook exports every dataset to an xlsx file, one sheet per chart.
// The first column holds the labels, then one column per series.
func WriteWorkbook(path string, datasets []*Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, d := range datasets {
		sheet := sheetName(d.Name)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("failed to name sheet %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("failed to add sheet %s: %w", sheet, err)
		}

		header := []interface{}{d.XLabel}
		for _, s := range d.Series {
			header = append(header, s.Name)
		}
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			return fmt.Errorf("failed to write header of %s: %w", sheet, err)
		}
		endCell, _ := excelize.CoordinatesToCellName(len(header), 1)
		f.SetCellStyle(sheet, "A1", endCell, headerStyle)

		for row, label := range d.Labels {
			values := []interface{}{label}
			for _, s := range d.Series {
				if math.IsNaN(s.Values[row]) {
					values = append(values, nil)
				} else {
					values = append(values, s.Values[row])
				}
			}
			cell, _ := excelize.CoordinatesToCellName(1, row+2)
			if err := f.SetSheetRow(sheet, cell, &values); err != nil {
				return fmt.Errorf("failed to write %s: %w", sheet, err)
			}
		}

		for col := range header {
			colName, _ := excelize.ColumnNumberToName(col + 1)
			f.SetColWidth(sheet, colName, colName, 24)
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create workbook directory: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// sheetName fits a dataset name into the 31 character sheet name limit
func sheetName(name string) string {
	if len(name) > 31 {
		return name[:31]
	}
	return name
}
