package tabular

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

func readXLSX(path string) (*Table, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("read table %s: workbook has no sheets", path)
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("read table %s: empty sheet", path)
	}

	header := cleanHeader(rows[0])
	t := &Table{Header: header}
	for _, record := range rows[1:] {
		if blankRecord(record) {
			continue
		}
		t.Rows = append(t.Rows, rowFromRecord(header, record))
	}
	return t, nil
}

func writeXLSX(path string, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, h := range t.Header {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}
	for r, row := range t.Rows {
		for c, v := range recordFromRow(t.Header, row) {
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := f.SetCellStr(sheet, cell, v); err != nil {
				return fmt.Errorf("write row %d: %w", r+1, err)
			}
		}
	}
	for i := 1; i <= len(t.Header); i++ {
		col, _ := excelize.ColumnNumberToName(i)
		_ = f.SetColWidth(sheet, col, col, 28)
	}
	return f.SaveAs(path)
}
