package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/unicode"
)

func buildWorkbook(t *testing.T, fill func(f *excelize.File, sheet string)) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	fill(f, "Sheet1")

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	return buf.Bytes()
}

func TestDetectFormat(t *testing.T) {
	tests := []struct {
		name        string
		fileName    string
		contentType string
		want        Format
		wantErr     bool
	}{
		{name: "xlsx", fileName: "siswa.xlsx", want: FormatWorkbook},
		{name: "xlsm upper case", fileName: "SISWA.XLSM", want: FormatWorkbook},
		{name: "csv", fileName: "siswa.csv", want: FormatDelimited},
		{name: "tsv", fileName: "siswa.tsv", want: FormatDelimited},
		{name: "extension wins over mime", fileName: "siswa.csv", contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", want: FormatDelimited},
		{name: "mime when extension missing", fileName: "upload", contentType: "text/csv; charset=utf-8", want: FormatDelimited},
		{name: "mime workbook", fileName: "blob", contentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", want: FormatWorkbook},
		{name: "pdf rejected", fileName: "siswa.pdf", contentType: "application/pdf", wantErr: true},
		{name: "legacy xls", fileName: "siswa.xls", want: FormatLegacyWorkbook},
		{name: "mime legacy workbook", fileName: "blob", contentType: "application/vnd.ms-excel", want: FormatLegacyWorkbook},
		{name: "nothing declared", fileName: "upload", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DetectFormat(tt.fileName, tt.contentType)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedFormat) {
					t.Errorf("DetectFormat() error = %v, want ErrUnsupportedFormat", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DetectFormat() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DetectFormat() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseFile_CSV(t *testing.T) {
	data := []byte("Nama Siswa,NISN,Kelas\nAhmad,0012345678,7A\n,,\nBudi,0098765432,\n")

	parsed, err := ParseFile(data, "siswa.csv", "text/csv")
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	wantHeaders := []string{"Nama Siswa", "NISN", "Kelas"}
	if len(parsed.Headers) != len(wantHeaders) {
		t.Fatalf("Headers = %v, want %v", parsed.Headers, wantHeaders)
	}
	for i, h := range wantHeaders {
		if parsed.Headers[i] != h {
			t.Errorf("Headers[%d] = %q, want %q", i, parsed.Headers[i], h)
		}
	}

	if len(parsed.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2 (blank row skipped)", len(parsed.Rows))
	}

	first := parsed.Rows[0]
	if got := first.Get("NISN"); got.Kind != ValueText || got.Text != "0012345678" {
		t.Errorf("NISN = %+v, want text 0012345678", got)
	}
	if got := parsed.Rows[1].Get("Kelas"); !got.IsEmpty() {
		t.Errorf("Kelas = %+v, want empty", got)
	}
	if parsed.Encoding != EncodingUTF8 {
		t.Errorf("Encoding = %q, want %q", parsed.Encoding, EncodingUTF8)
	}
}

func TestParseFile_Delimiters(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		data     string
	}{
		{name: "semicolon", fileName: "siswa.csv", data: "Nama;NISN\nAhmad;123\n"},
		{name: "tab", fileName: "siswa.txt", data: "Nama\tNISN\nAhmad\t123\n"},
		{name: "tsv extension", fileName: "siswa.tsv", data: "Nama\tNISN\nAhmad\t123\n"},
		{name: "quoted comma", fileName: "siswa.csv", data: "\"Nama, Lengkap\";NISN\nAhmad;123\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseFile([]byte(tt.data), tt.fileName, "")
			if err != nil {
				t.Fatalf("ParseFile() error = %v", err)
			}
			if len(parsed.Headers) != 2 {
				t.Fatalf("Headers = %v, want 2 headers", parsed.Headers)
			}
			if got := parsed.Rows[0].Get(parsed.Headers[1]).Text; got != "123" {
				t.Errorf("second column = %q, want %q", got, "123")
			}
		})
	}
}

func TestParseFile_Encodings(t *testing.T) {
	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String("Nama,Kota\nAhmad,Bekasi\n")
	if err != nil {
		t.Fatalf("encode UTF-16: %v", err)
	}

	tests := []struct {
		name         string
		data         []byte
		wantEncoding string
		wantHeader   string
		wantCity     string
	}{
		{
			name:         "utf-8 bom",
			data:         append([]byte{0xEF, 0xBB, 0xBF}, []byte("Nama,Kota\nAhmad,Bekasi\n")...),
			wantEncoding: EncodingUTF8BOM,
			wantHeader:   "Nama",
			wantCity:     "Bekasi",
		},
		{
			name:         "utf-16 le",
			data:         []byte(utf16),
			wantEncoding: EncodingUTF16LE,
			wantHeader:   "Nama",
			wantCity:     "Bekasi",
		},
		{
			name:         "windows-1252 fallback",
			data:         []byte("Nama,Kota\nJos\xe9,S\xe3o Paulo\n"),
			wantEncoding: EncodingWindows1252,
			wantHeader:   "Nama",
			wantCity:     "São Paulo",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseFile(tt.data, "data.csv", "")
			if err != nil {
				t.Fatalf("ParseFile() error = %v", err)
			}
			if parsed.Encoding != tt.wantEncoding {
				t.Errorf("Encoding = %q, want %q", parsed.Encoding, tt.wantEncoding)
			}
			if parsed.Headers[0] != tt.wantHeader {
				t.Errorf("Headers[0] = %q, want %q", parsed.Headers[0], tt.wantHeader)
			}
			if got := parsed.Rows[0].Get("Kota").Text; got != tt.wantCity {
				t.Errorf("Kota = %q, want %q", got, tt.wantCity)
			}
		})
	}
}

func TestParseFile_Workbook(t *testing.T) {
	data := buildWorkbook(t, func(f *excelize.File, sheet string) {
		f.SetCellStr(sheet, "A1", "Nama Siswa")
		f.SetCellStr(sheet, "B1", "NISN")
		f.SetCellStr(sheet, "C1", "Tahun Ajaran Masuk")
		f.SetCellStr(sheet, "A2", "Ahmad")
		f.SetCellStr(sheet, "B2", "0012345678")
		f.SetCellInt(sheet, "C2", 2024)
		f.SetCellStr(sheet, "A4", "Budi")
		f.NewSheet("Lainnya")
		f.SetCellStr("Lainnya", "A1", "ignored")
	})

	parsed, err := ParseFile(data, "siswa.xlsx", "")
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}

	if parsed.Sheet != "Sheet1" {
		t.Errorf("Sheet = %q, want first sheet", parsed.Sheet)
	}
	if len(parsed.Rows) != 2 {
		t.Fatalf("len(Rows) = %d, want 2", len(parsed.Rows))
	}

	year := parsed.Rows[0].Get("Tahun Ajaran Masuk")
	if year.Kind != ValueNumber || year.Num != 2024 {
		t.Errorf("Tahun Ajaran Masuk = %+v, want number 2024", year)
	}
	nisn := parsed.Rows[0].Get("NISN")
	if nisn.Kind != ValueText || nisn.Text != "0012345678" {
		t.Errorf("NISN = %+v, want text 0012345678", nisn)
	}
	if got := parsed.Rows[1].Get("NISN"); !got.IsEmpty() {
		t.Errorf("short row NISN = %+v, want empty", got)
	}
}

func TestParseFile_WorkbookLargeNumbers(t *testing.T) {
	data := buildWorkbook(t, func(f *excelize.File, sheet string) {
		f.SetCellStr(sheet, "A1", "NIK")
		f.SetCellStr(sheet, "B1", "No HP")
		f.SetCellStr(sheet, "C1", "Nilai")
		f.SetCellValue(sheet, "A2", int64(3201234567890123))
		f.SetCellValue(sheet, "B2", int64(6281234567891))
		f.SetCellValue(sheet, "C2", 87.5)
	})

	parsed, err := ParseFile(data, "siswa.xlsx", "")
	if err != nil {
		t.Fatalf("ParseFile() error = %v", err)
	}
	row := parsed.Rows[0]

	tests := []struct {
		header   string
		wantNum  float64
		wantText string
		wantJSON string
	}{
		{header: "NIK", wantNum: 3201234567890123, wantText: "3201234567890123", wantJSON: "3201234567890123"},
		{header: "No HP", wantNum: 6281234567891, wantText: "6281234567891", wantJSON: "6281234567891"},
		{header: "Nilai", wantNum: 87.5, wantText: "87.5", wantJSON: "87.5"},
	}

	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got := row.Get(tt.header)
			if got.Kind != ValueNumber {
				t.Fatalf("Kind = %v, want ValueNumber", got.Kind)
			}
			if got.Num != tt.wantNum {
				t.Errorf("Num = %v, want %v", got.Num, tt.wantNum)
			}
			if got.Text != tt.wantText {
				t.Errorf("Text = %q, want %q", got.Text, tt.wantText)
			}
			b, err := json.Marshal(got)
			if err != nil {
				t.Fatalf("Marshal() error = %v", err)
			}
			if string(b) != tt.wantJSON {
				t.Errorf("JSON = %s, want %s", b, tt.wantJSON)
			}
		})
	}
}

func TestParseFile_Errors(t *testing.T) {
	headerOnly := buildWorkbook(t, func(f *excelize.File, sheet string) {
		f.SetCellStr(sheet, "A1", "Nama Siswa")
	})

	tests := []struct {
		name     string
		data     []byte
		fileName string
		wantErr  error
	}{
		{name: "header only csv", data: []byte("Nama,NISN\n"), fileName: "a.csv", wantErr: ErrEmptyFile},
		{name: "blank rows only", data: []byte("Nama,NISN\n,\n , \n"), fileName: "a.csv", wantErr: ErrEmptyFile},
		{name: "zero bytes", data: nil, fileName: "a.csv", wantErr: ErrEmptyFile},
		{name: "header only workbook", data: headerOnly, fileName: "a.xlsx", wantErr: ErrEmptyFile},
		{name: "corrupt workbook", data: []byte("definitely not a zip"), fileName: "a.xlsx", wantErr: ErrUnsupportedFormat},
		{name: "corrupt legacy workbook", data: []byte("definitely not ole2"), fileName: "a.xls", wantErr: ErrUnsupportedFormat},
		{name: "unsupported extension", data: []byte("x"), fileName: "a.docx", wantErr: ErrUnsupportedFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseFile(tt.data, tt.fileName, "")
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParseFile() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
