// Package core provides the business logic for spreadsheet import operations.
//
// # Error Codes Reference
//
// This file defines the operator-facing error messages with codes for support
// reference. Messages are in Indonesian because they are shown to school
// staff; the codes are what support asks for.
//
// # File Errors (FILE001-FILE099)
//
//	FILE001 - File too large
//	FILE002 - Unsupported format (ErrUnsupportedFormat)
//	FILE003 - Encoding error
//	FILE004 - No file selected
//	FILE005 - No data rows (ErrEmptyFile)
//
// # Mapping Errors (MAP001-MAP099)
//
//	MAP001 - Invalid column mapping (ErrInvalidMapping)
//	MAP002 - Unknown import kind (ErrUnknownKind)
//
// # Import Errors (IMP001-IMP099)
//
//	IMP001 - Portal rejected the batch (ErrImportRequestFailed)
//	IMP002 - Batch already being submitted (ErrSubmitInProgress)
//	IMP003 - Too many imports in flight (ErrTooManyImports)
//	IMP004 - No new accounts to export (ErrNothingToExport)
//
// # Session Errors (SES001-SES099)
//
//	SES001 - Session expired or unknown (ErrSessionNotFound)
//	SES002 - Step not allowed right now (ErrInvalidState)
//
// # Network Errors (NET001-NET099)
//
//	NET001 - Portal unreachable ("connection refused", "no such host")
//	NET002 - Portal timed out ("timeout", "deadline exceeded")
//	NET003 - Request cancelled ("context canceled")
//
// # Rate Limiting (RATE001)
//
//	RATE001 - Too many requests
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Check the service logs for the original error.
//
// # Matching
//
// Sentinel errors are matched first with errors.Is, then the error text is
// matched case-insensitively with strings.Contains. The first match wins.
package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides operator-facing error information with actionable guidance.
type UserMessage struct {
	Message string // What happened
	Action  string // What to do about it
	Code    string // Error code for support reference
}

type sentinelMessage struct {
	err error
	msg UserMessage
}

var importFailedMessage = UserMessage{
	Message: GenericImportFailure,
	Action:  "Periksa data pada pratinjau lalu coba kirim ulang",
	Code:    "IMP001",
}

var sentinelMessages = []sentinelMessage{
	{ErrUnsupportedFormat, UserMessage{
		Message: "Format file tidak didukung",
		Action:  "Gunakan file Excel (.xlsx, .xls) atau CSV",
		Code:    "FILE002",
	}},
	{ErrEmptyFile, UserMessage{
		Message: "File tidak berisi data",
		Action:  "Pastikan baris pertama berisi judul kolom dan ada minimal satu baris data",
		Code:    "FILE005",
	}},
	{ErrInvalidMapping, UserMessage{
		Message: "Pemetaan kolom tidak valid",
		Action:  "Pilih kolom yang ada di file untuk setiap field",
		Code:    "MAP001",
	}},
	{ErrUnknownKind, UserMessage{
		Message: "Jenis import tidak dikenal",
		Action:  "Pilih import siswa atau guru",
		Code:    "MAP002",
	}},
	{ErrImportRequestFailed, importFailedMessage},
	{ErrSubmitInProgress, UserMessage{
		Message: "Import sedang diproses",
		Action:  "Tunggu hingga proses selesai",
		Code:    "IMP002",
	}},
	{ErrTooManyImports, UserMessage{
		Message: "Sistem sedang memproses import lain",
		Action:  "Tunggu sebentar lalu coba lagi",
		Code:    "IMP003",
	}},
	{ErrNothingToExport, UserMessage{
		Message: "Tidak ada akun baru untuk diekspor",
		Action:  "Aktifkan pembuatan akun otomatis saat import",
		Code:    "IMP004",
	}},
	{ErrSessionNotFound, UserMessage{
		Message: "Sesi import tidak ditemukan",
		Action:  "Sesi mungkin kedaluwarsa. Unggah file kembali",
		Code:    "SES001",
	}},
	{ErrInvalidState, UserMessage{
		Message: "Langkah ini tidak tersedia pada tahap import saat ini",
		Action:  "Muat ulang halaman untuk melihat tahap terbaru",
		Code:    "SES002",
	}},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error text (case-insensitive) to user messages.
// More specific patterns come before general ones.
var errorPatterns = []errorPattern{
	{
		pattern: "file too large",
		msg: UserMessage{
			Message: "Ukuran file melebihi batas",
			Action:  "Pecah file menjadi beberapa bagian",
			Code:    "FILE001",
		},
	},
	{
		pattern: "request body too large",
		msg: UserMessage{
			Message: "Ukuran file melebihi batas",
			Action:  "Pecah file menjadi beberapa bagian",
			Code:    "FILE001",
		},
	},
	{
		pattern: "encoding error",
		msg: UserMessage{
			Message: "File berisi karakter yang tidak valid",
			Action:  "Simpan file dengan encoding UTF-8",
			Code:    "FILE003",
		},
	},
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "Belum ada file yang dipilih",
			Action:  "Pilih file Excel atau CSV untuk diunggah",
			Code:    "FILE004",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Server portal tidak dapat dihubungi",
			Action:  "Coba lagi beberapa saat lagi",
			Code:    "NET001",
		},
	},
	{
		pattern: "no such host",
		msg: UserMessage{
			Message: "Server portal tidak dapat dihubungi",
			Action:  "Periksa konfigurasi alamat portal",
			Code:    "NET001",
		},
	},
	{
		pattern: "context canceled",
		msg: UserMessage{
			Message: "Permintaan dibatalkan",
			Action:  "Silakan coba lagi",
			Code:    "NET003",
		},
	},
	{
		pattern: "deadline exceeded",
		msg: UserMessage{
			Message: "Server portal terlalu lama merespons",
			Action:  "Coba kirim ulang atau pecah file menjadi lebih kecil",
			Code:    "NET002",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Server portal terlalu lama merespons",
			Action:  "Coba kirim ulang atau pecah file menjadi lebih kecil",
			Code:    "NET002",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "Terlalu banyak permintaan",
			Action:  "Tunggu sebentar sebelum mencoba lagi",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when nothing matches (ERR000).
var defaultMessage = UserMessage{
	Message: "Terjadi kesalahan yang tidak terduga",
	Action:  "Silakan coba lagi atau hubungi admin",
	Code:    "ERR000",
}

// MapError converts a technical error to an operator-facing message.
// A rejected batch keeps the portal's own message so operators see exactly
// what the server said.
//
// Example:
//
//	msg := MapError(fmt.Errorf("parse: %w", ErrEmptyFile))
//	// msg.Code == "FILE005"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		if reqErr.Status == 0 && reqErr.Err != nil {
			if transport := matchPattern(reqErr.Err); transport != nil {
				return *transport
			}
		}
		msg := importFailedMessage
		msg.Message = reqErr.Message
		return msg
	}

	for _, sm := range sentinelMessages {
		if errors.Is(err, sm.err) {
			return sm.msg
		}
	}

	if msg := matchPattern(err); msg != nil {
		return *msg
	}

	return defaultMessage
}

func matchPattern(err error) *UserMessage {
	errStr := strings.ToLower(err.Error())
	for i := range errorPatterns {
		if strings.Contains(errStr, errorPatterns[i].pattern) {
			return &errorPatterns[i].msg
		}
	}
	return nil
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Kode: XXX). Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Kode: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than ERR000.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError pairs a technical error with its operator-facing message.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // Message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
