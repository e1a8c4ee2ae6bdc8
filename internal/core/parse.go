package core

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
)

// Format is the container format of an uploaded file.
type Format string

const (
	FormatWorkbook       Format = "workbook"
	FormatLegacyWorkbook Format = "xls"
	FormatDelimited      Format = "delimited"
)

var extensionFormats = map[string]Format{
	".xlsx": FormatWorkbook,
	".xlsm": FormatWorkbook,
	".xls":  FormatLegacyWorkbook,
	".csv":  FormatDelimited,
	".tsv":  FormatDelimited,
	".txt":  FormatDelimited,
}

var mimeFormats = map[string]Format{
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": FormatWorkbook,
	"application/vnd.ms-excel.sheet.macroenabled.12":                    FormatWorkbook,
	"application/vnd.ms-excel":  FormatLegacyWorkbook,
	"text/csv":                  FormatDelimited,
	"application/csv":           FormatDelimited,
	"text/tab-separated-values": FormatDelimited,
	"text/plain":                FormatDelimited,
}

// ParsedFile is the header row and data rows of an uploaded file.
type ParsedFile struct {
	FileName string   `json:"fileName"`
	Format   Format   `json:"format"`
	Encoding string   `json:"encoding,omitempty"`
	Sheet    string   `json:"sheet,omitempty"`
	Headers  []string `json:"headers"`
	Rows     []RawRow `json:"-"`
}

// DetectFormat resolves the file format from its name, falling back to the
// declared content type only when the extension is missing or not allow-listed.
func DetectFormat(fileName, contentType string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	if f, ok := extensionFormats[ext]; ok {
		return f, nil
	}

	if contentType != "" {
		mediaType, _, err := mime.ParseMediaType(contentType)
		if err == nil {
			if f, ok := mimeFormats[strings.ToLower(mediaType)]; ok {
				return f, nil
			}
		}
	}

	if ext == "" {
		ext = contentType
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
}

// ParseFile reads headers and data rows from a workbook (first sheet, xlsx or
// legacy xls) or delimited text file. Completely blank rows are skipped; a file without data
// rows fails with ErrEmptyFile.
func ParseFile(data []byte, fileName, contentType string) (*ParsedFile, error) {
	format, err := DetectFormat(fileName, contentType)
	if err != nil {
		return nil, err
	}

	parsed := &ParsedFile{FileName: fileName, Format: format}

	var records [][]Value
	switch format {
	case FormatWorkbook:
		parsed.Sheet, records, err = readWorkbook(data)
	case FormatLegacyWorkbook:
		parsed.Sheet, records, err = readLegacyWorkbook(data)
	default:
		parsed.Encoding, records, err = readDelimited(data, fileName)
	}
	if err != nil {
		return nil, err
	}

	if len(records) == 0 {
		return nil, ErrEmptyFile
	}

	headers, columns := headerColumns(records[0])
	parsed.Headers = headers

	for _, record := range records[1:] {
		row := RawRow{Cells: make([]Cell, len(columns))}
		for i, col := range columns {
			var v Value
			if col < len(record) {
				v = record[col]
			}
			row.Cells[i] = Cell{Header: headers[i], Value: v}
		}
		if row.IsBlank() {
			continue
		}
		parsed.Rows = append(parsed.Rows, row)
	}

	if len(parsed.Rows) == 0 {
		return nil, ErrEmptyFile
	}

	return parsed, nil
}

// headerColumns returns the non-empty headers and their column indices.
func headerColumns(first []Value) ([]string, []int) {
	headers := make([]string, 0, len(first))
	columns := make([]int, 0, len(first))
	for i, v := range first {
		h := CleanHeader(v.Text)
		if h == "" {
			continue
		}
		headers = append(headers, h)
		columns = append(columns, i)
	}
	return headers, columns
}

func readDelimited(data []byte, fileName string) (string, [][]Value, error) {
	text, enc, err := DecodeText(data)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	delim := sniffDelimiter(text)
	if strings.EqualFold(filepath.Ext(fileName), ".tsv") {
		delim = '\t'
	}

	r := csv.NewReader(bytes.NewReader(text))
	r.Comma = delim
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	raw, err := r.ReadAll()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrUnsupportedFormat, err)
	}

	records := make([][]Value, len(raw))
	for i, rec := range raw {
		values := make([]Value, len(rec))
		for j, cell := range rec {
			values[j] = TextValue(CleanCell(cell))
		}
		records[i] = values
	}
	return enc, records, nil
}

// sniffDelimiter picks the most frequent of comma, semicolon and tab on the
// header line, ignoring quoted text. Comma wins ties.
func sniffDelimiter(text []byte) rune {
	line := text
	if i := bytes.IndexByte(text, '\n'); i >= 0 {
		line = text[:i]
	}

	counts := map[rune]int{}
	inQuote := false
	for _, r := range string(line) {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == ',' || r == ';' || r == '\t':
			counts[r]++
		}
	}

	best := ','
	for _, r := range []rune{';', '\t'} {
		if counts[r] > counts[best] {
			best = r
		}
	}
	return best
}
