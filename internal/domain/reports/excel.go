package reports

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"uren/internal/domain/commission"
)

var entrySheetHeaders = []string{
	"Entry", "Profile", "Hours", "Cost", "Billed", "Gross margin",
	"Hourly deductions", "Margin deductions", "Net margin",
}

// EntriesWorkbook renders every entry's financials into an xlsx workbook with
// a styled header row and a totals row at the bottom.
func EntriesWorkbook(result commission.Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Entries"
	f.SetSheetName("Sheet1", sheet)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:   &excelize.Font{Bold: true},
		Fill:   excelize.Fill{Type: "pattern", Color: []string{"E0E0E0"}, Pattern: 1},
		Border: []excelize.Border{{Type: "bottom", Color: "000000", Style: 2}},
	})
	if err != nil {
		return nil, err
	}

	for i, name := range entrySheetHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, err
		}
	}
	lastCol, _ := excelize.CoordinatesToCellName(len(entrySheetHeaders), 1)
	if err := f.SetCellStyle(sheet, "A1", lastCol, headerStyle); err != nil {
		return nil, err
	}

	for i, fin := range result.PerEntry {
		row := i + 2
		values := []any{
			fin.Name, fin.ProfileID, fin.Hours, fin.Cost, fin.Billed,
			fin.GrossMargin, fin.HourlyDeductions, fin.MarginDeductions, fin.NetMargin,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	totalsRow := len(result.PerEntry) + 2
	if err := f.SetCellValue(sheet, cellName(1, totalsRow), "Totals"); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, cellName(5, totalsRow), result.Totals.ClientInvoiceTotal); err != nil {
		return nil, err
	}
	if err := f.SetCellValue(sheet, cellName(7, totalsRow), result.Totals.TotalDeductions); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	cell, _ := excelize.CoordinatesToCellName(col, row)
	return cell
}
