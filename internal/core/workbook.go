package core

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

// readWorkbook returns the name and cell values of the first sheet.
// Rows keep the formatted text Excel would display; numeric cells carry the
// stored number.
func readWorkbook(data []byte) (string, [][]Value, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", nil, ErrEmptyFile
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet)
	if err != nil {
		return "", nil, fmt.Errorf("%w: read sheet %q: %v", ErrUnsupportedFormat, sheet, err)
	}

	records := make([][]Value, len(rows))
	for r, row := range rows {
		values := make([]Value, len(row))
		for c, text := range row {
			values[c] = workbookValue(f, sheet, c+1, r+1, text)
		}
		records[r] = values
	}
	return sheet, records, nil
}

func workbookValue(f *excelize.File, sheet string, col, row int, text string) Value {
	text = strings.TrimSpace(text)
	if text == "" {
		return Value{}
	}

	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return TextValue(text)
	}
	typ, err := f.GetCellType(sheet, cell)
	if err != nil {
		return TextValue(text)
	}

	switch typ {
	case excelize.CellTypeNumber, excelize.CellTypeUnset:
		// A display text that is not a plain number (dates, currency,
		// grouped thousands) stays text.
		shown, ok := numberCell(text)
		if !ok {
			return TextValue(text)
		}
		raw, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
		if err != nil {
			return shown
		}
		if v, ok := storedNumber(raw, shown); ok {
			return v
		}
		return shown
	}
	return TextValue(text)
}

// storedNumber parses the stored cell value. The General format rounds to 15
// significant digits, so when the display text disagrees with the stored
// number the stored text is kept as well.
func storedNumber(raw string, shown Value) (Value, bool) {
	raw = strings.TrimSpace(raw)
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return Value{}, false
	}
	if n == shown.Num {
		return shown, true
	}
	if strings.ContainsAny(raw, "eE") {
		raw = strconv.FormatFloat(n, 'f', -1, 64)
	}
	return NumberValue(n, raw), true
}
