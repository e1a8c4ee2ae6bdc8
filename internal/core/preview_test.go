package core

import (
	"reflect"
	"testing"
)

func TestPreviewRows(t *testing.T) {
	rows := []RawRow{
		row("Nama", "Ahmad"),
		row("Nama", "Budi"),
		row("Nama", "Citra"),
	}

	tests := []struct {
		name  string
		limit int
		want  int
	}{
		{name: "limit below length", limit: 2, want: 2},
		{name: "limit equals length", limit: 3, want: 3},
		{name: "limit above length", limit: 10, want: 3},
		{name: "zero", limit: 0, want: 0},
		{name: "negative", limit: -1, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PreviewRows(rows, tt.limit)
			if len(got) != tt.want {
				t.Fatalf("len(PreviewRows) = %d, want %d", len(got), tt.want)
			}
			for i := range got {
				if !reflect.DeepEqual(got[i], rows[i]) {
					t.Errorf("row %d = %+v, want %+v", i, got[i], rows[i])
				}
			}
		})
	}
}

func TestPreviewRows_DoesNotAliasCapacity(t *testing.T) {
	rows := []RawRow{row("Nama", "Ahmad"), row("Nama", "Budi")}

	got := PreviewRows(rows, 1)
	got = append(got, row("Nama", "Sisipan"))

	if rows[1].Get("Nama").Text != "Budi" {
		t.Error("appending to preview overwrote source rows")
	}
}

func TestBuildPreview(t *testing.T) {
	headers := []string{"No", "Nama Siswa", "Catatan", "NISN"}
	rows := []RawRow{row("No", "1", "Nama Siswa", "Ahmad", "Catatan", "-", "NISN", "123")}
	mapping := ColumnMapping{"student_nisn": "NISN", "student_nama": "Nama Siswa"}

	preview := BuildPreview(headers, rows, mapping, DefaultPreviewRows)

	if want := []string{"Nama Siswa", "NISN"}; !reflect.DeepEqual(preview.MappedHeaders, want) {
		t.Errorf("MappedHeaders = %v, want %v", preview.MappedHeaders, want)
	}
	if want := []string{"No", "Catatan"}; !reflect.DeepEqual(preview.Unmapped, want) {
		t.Errorf("Unmapped = %v, want %v", preview.Unmapped, want)
	}
	if preview.TotalRows != 1 || len(preview.Rows) != 1 {
		t.Errorf("TotalRows = %d, len(Rows) = %d, want 1 and 1", preview.TotalRows, len(preview.Rows))
	}
}
