package core

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

// BIFF8 sheets have at most 256 columns.
const xlsMaxColumns = 256

// xlsFormulaText is what the reader returns for formula cells; their cached
// results are not decoded.
const xlsFormulaText = "FormulaCol"

// readLegacyWorkbook returns the name and cell values of the first sheet of a
// legacy .xls workbook. The reader exposes cells as text only, so every value
// is a TextValue; numbers come back in plain decimal notation.
func readLegacyWorkbook(data []byte) (name string, records [][]Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: unreadable xls workbook: %v", ErrUnsupportedFormat, r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	if wb == nil {
		return "", nil, fmt.Errorf("%w: no workbook stream", ErrUnsupportedFormat)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return "", nil, ErrEmptyFile
	}

	// Columns past the last header are dropped by ParseFile anyway.
	width := 0
	if header := xlsRow(sheet, 0); header != nil {
		for c := 0; c < xlsMaxColumns; c++ {
			if xlsCell(header, c) != "" {
				width = c + 1
			}
		}
	}

	records = make([][]Value, 0, int(sheet.MaxRow)+1)
	for r := 0; r <= int(sheet.MaxRow); r++ {
		values := make([]Value, width)
		if row := xlsRow(sheet, r); row != nil {
			for c := range values {
				if text := xlsCell(row, c); text != "" {
					values[c] = TextValue(text)
				}
			}
		}
		records = append(records, values)
	}
	return sheet.Name, records, nil
}

// xlsRow returns nil for rows the sheet never stored; WorkSheet.Row panics
// on those.
func xlsRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

func xlsCell(row *xls.Row, col int) string {
	text := CleanCell(row.Col(col))
	if text == xlsFormulaText {
		return ""
	}
	return text
}
