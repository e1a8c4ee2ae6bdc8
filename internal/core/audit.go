package core

import (
	"context"
	"time"
)

// Audit outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// AuditRecorder persists one entry per submitted batch.
// Generated passwords never reach the recorder.
type AuditRecorder interface {
	RecordImport(ctx context.Context, entry ImportAuditEntry) error
	ListImports(ctx context.Context, limit int) ([]ImportAuditEntry, error)
}

// NopRecorder is used when no database is configured.
type NopRecorder struct{}

func (NopRecorder) RecordImport(context.Context, ImportAuditEntry) error { return nil }

func (NopRecorder) ListImports(context.Context, int) ([]ImportAuditEntry, error) {
	return []ImportAuditEntry{}, nil
}

// newAuditEntry builds the entry for a finished submit.
func newAuditEntry(ctx context.Context, id string, sess *Session, rows int, result *ImportResult, err error, elapsed time.Duration) ImportAuditEntry {
	entry := ImportAuditEntry{
		ID:            id,
		SessionID:     sess.ID,
		Kind:          sess.Kind.Key,
		FileName:      sess.fileName(),
		RowsSubmitted: rows,
		Outcome:       OutcomeSuccess,
		IPAddress:     GetIPAddressFromContext(ctx),
		UserAgent:     GetUserAgentFromContext(ctx),
		DurationMs:    elapsed.Milliseconds(),
		CreatedAt:     time.Now().UTC(),
	}
	if err != nil {
		entry.Outcome = OutcomeFailed
		entry.Error = err.Error()
		return entry
	}
	entry.SuccessCount = result.SuccessCount
	entry.FailedCount = result.FailedCount
	entry.DuplicateCount = result.DuplicateCount
	entry.NewAccounts = len(result.NewAccounts)
	return entry
}
