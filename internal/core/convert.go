package core

// convert.go cleans raw cell text and folds header strings for matching.
//
// Spreadsheets exported from Dapodik, Excel and Google Sheets carry a mix of
// artifacts: formula prefixes (="0812..."), stray quotes, BOMs on the first
// header, and accented letters typed on foreign keyboards. Header matching
// compares only the folded form; the literal header is kept everywhere else.

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// NormalizeHeader folds a header or alias for comparison: NFD decomposition,
// combining marks dropped, lower-cased, and every non alphanumeric rune removed.
// "Nama Lengkap (Siswa)" and "nama_lengkap_siswa" both fold to "namalengkapsiswa".
func NormalizeHeader(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))

	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}

	return b.String()
}

// CleanCell removes common spreadsheet artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	}

	s = strings.Trim(s, `"'`)

	return strings.TrimSpace(s)
}

// CleanHeader trims a header cell and drops a leading BOM left by the encoder.
func CleanHeader(s string) string {
	s = strings.TrimPrefix(s, "\uFEFF")
	return strings.TrimSpace(s)
}

// numberCell converts formatted workbook text to a number value when it
// parses as one.
func numberCell(text string) (Value, bool) {
	t := strings.TrimSpace(text)
	if t == "" {
		return Value{}, false
	}
	n, err := strconv.ParseFloat(t, 64)
	if err != nil {
		return Value{}, false
	}
	return NumberValue(n, t), true
}
