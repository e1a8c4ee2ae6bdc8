package core

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

// CredentialSheet is the sheet name of an exported credential workbook.
const CredentialSheet = "Akun Baru"

var credentialHeader = []any{"Nama", "Role", "Login", "Password", "Keterangan"}

// CredentialFileName returns the download name for a credential export made at t.
func CredentialFileName(t time.Time) string {
	return fmt.Sprintf("Akun_Baru_%s.xlsx", t.Format("2006-01-02"))
}

// ExportCredentials writes one row per account to a single-sheet workbook.
// An empty list fails with ErrNothingToExport and produces no file.
func ExportCredentials(accounts []Account) ([]byte, error) {
	if len(accounts) == 0 {
		return nil, ErrNothingToExport
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", CredentialSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(CredentialSheet, "A1", &credentialHeader); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetCellStyle(CredentialSheet, "A1", "E1", style)
	}

	for i, a := range accounts {
		note := a.Note
		if note == "" {
			note = "-"
		}
		row := []any{a.Name, a.Role, a.Login(), a.Password, note}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(CredentialSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	_ = f.SetColWidth(CredentialSheet, "A", "A", 30)
	_ = f.SetColWidth(CredentialSheet, "B", "B", 12)
	_ = f.SetColWidth(CredentialSheet, "C", "C", 30)
	_ = f.SetColWidth(CredentialSheet, "D", "D", 16)
	_ = f.SetColWidth(CredentialSheet, "E", "E", 30)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
