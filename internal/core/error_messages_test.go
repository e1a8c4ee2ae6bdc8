package core

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{
			name:        "nil error returns empty",
			err:         nil,
			wantCode:    "",
			wantMessage: "",
		},
		{
			name:        "wrapped empty file",
			err:         fmt.Errorf("parse siswa.xlsx: %w", ErrEmptyFile),
			wantCode:    "FILE005",
			wantMessage: "File tidak berisi data",
		},
		{
			name:        "unsupported format",
			err:         fmt.Errorf("%w: \".pdf\"", ErrUnsupportedFormat),
			wantCode:    "FILE002",
			wantMessage: "Format file tidak didukung",
		},
		{
			name:        "rejected batch keeps server message",
			err:         NewRequestError(400, "Data tidak valid", nil),
			wantCode:    "IMP001",
			wantMessage: "Data tidak valid",
		},
		{
			name:        "rejected batch without message",
			err:         NewRequestError(500, "", nil),
			wantCode:    "IMP001",
			wantMessage: GenericImportFailure,
		},
		{
			name:        "unreachable portal",
			err:         NewRequestError(0, "", errors.New("dial tcp 10.0.0.1:443: connect: connection refused")),
			wantCode:    "NET001",
			wantMessage: "Server portal tidak dapat dihubungi",
		},
		{
			name:        "invalid state",
			err:         &StateError{Op: "submit", State: StateIdle},
			wantCode:    "SES002",
			wantMessage: "Langkah ini tidak tersedia pada tahap import saat ini",
		},
		{
			name:        "nothing to export",
			err:         ErrNothingToExport,
			wantCode:    "IMP004",
			wantMessage: "Tidak ada akun baru untuk diekspor",
		},
		{
			name:        "limiter busy",
			err:         ErrTooManyImports,
			wantCode:    "IMP003",
			wantMessage: "Sistem sedang memproses import lain",
		},
		{
			name:        "deadline",
			err:         context.DeadlineExceeded,
			wantCode:    "NET002",
			wantMessage: "Server portal terlalu lama merespons",
		},
		{
			name:        "case insensitive matching",
			err:         errors.New("HTTP: REQUEST BODY TOO LARGE"),
			wantCode:    "FILE001",
			wantMessage: "Ukuran file melebihi batas",
		},
		{
			name:        "unknown error returns default",
			err:         errors.New("some random internal error"),
			wantCode:    "ERR000",
			wantMessage: "Terjadi kesalahan yang tidak terduga",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if got.Message != tt.wantMessage {
				t.Errorf("MapError() message = %q, want %q", got.Message, tt.wantMessage)
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	result := FormatUserError(ErrSessionNotFound)

	expected := "Sesi import tidak ditemukan (Kode: SES001). Sesi mungkin kedaluwarsa. Unggah file kembali"
	if result != expected {
		t.Errorf("FormatUserError() = %q, want %q", result, expected)
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil error is not user facing", err: nil, want: false},
		{name: "sentinel is user facing", err: ErrEmptyFile, want: true},
		{name: "unknown error is not user facing", err: errors.New("random internal error xyz"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsUserFacing(tt.err); got != tt.want {
				t.Errorf("IsUserFacing() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewUserError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		if got := NewUserError(nil); got != nil {
			t.Errorf("NewUserError(nil) = %v, want nil", got)
		}
	})

	t.Run("wraps technical error with user message", func(t *testing.T) {
		techErr := fmt.Errorf("load: %w", ErrEmptyFile)
		userErr := NewUserError(techErr)

		if userErr.Error() != "File tidak berisi data" {
			t.Errorf("Error() = %q, want user message", userErr.Error())
		}
		if !errors.Is(userErr, ErrEmptyFile) {
			t.Error("Unwrap() should expose the sentinel")
		}
	})
}

func TestRequestErrorIs(t *testing.T) {
	err := fmt.Errorf("submit: %w", NewRequestError(502, "", nil))

	if !errors.Is(err, ErrImportRequestFailed) {
		t.Error("errors.Is(RequestError, ErrImportRequestFailed) = false, want true")
	}

	var reqErr *RequestError
	if !errors.As(err, &reqErr) {
		t.Fatal("errors.As failed")
	}
	if reqErr.Message != GenericImportFailure {
		t.Errorf("Message = %q, want %q", reqErr.Message, GenericImportFailure)
	}
}
