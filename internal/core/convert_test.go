package core

import "testing"

func TestNormalizeHeader(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "spaces and case", input: "Nama Lengkap Siswa", want: "namalengkapsiswa"},
		{name: "punctuation", input: "No. HP (Orang Tua)", want: "nohporangtua"},
		{name: "underscores", input: "tanggal_lahir", want: "tanggallahir"},
		{name: "slash", input: "L/P", want: "lp"},
		{name: "diacritics folded", input: "Nāma Sīswa", want: "namasiswa"},
		{name: "digits kept", input: "Kelas 7A", want: "kelas7a"},
		{name: "only punctuation", input: " - / ", want: ""},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeHeader(tt.input); got != tt.want {
				t.Errorf("NormalizeHeader(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanCell(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "simple string unchanged", input: "Ahmad", want: "Ahmad"},
		{name: "empty string", input: "", want: ""},
		{name: "surrounded by whitespace", input: "  Ahmad  ", want: "Ahmad"},
		{name: "Excel formula number as text", input: `="0081234567"`, want: "0081234567"},
		{name: "surrounding quotes", input: `"Bandung"`, want: "Bandung"},
		{name: "single quotes", input: "'0812'", want: "0812"},
		{name: "inner quotes kept", input: `Jl. "Melati" 5`, want: `Jl. "Melati" 5`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanCell(tt.input); got != tt.want {
				t.Errorf("CleanCell(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCleanHeader(t *testing.T) {
	if got := CleanHeader("\uFEFFNama Siswa "); got != "Nama Siswa" {
		t.Errorf("CleanHeader = %q, want %q", got, "Nama Siswa")
	}
}
