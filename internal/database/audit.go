// Package database persists the import audit trail in PostgreSQL.
package database

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/tahfidz-import/internal/core"
)

// DefaultHistoryLimit applies when ListImports is called with limit <= 0.
const DefaultHistoryLimit = 50

// MaxHistoryLimit caps a single history page.
const MaxHistoryLimit = 500

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schema = `
CREATE TABLE IF NOT EXISTS import_audit (
	id              UUID PRIMARY KEY,
	session_id      TEXT NOT NULL,
	kind            TEXT NOT NULL,
	file_name       TEXT NOT NULL,
	rows_submitted  INTEGER NOT NULL,
	success_count   INTEGER NOT NULL DEFAULT 0,
	failed_count    INTEGER NOT NULL DEFAULT 0,
	duplicate_count INTEGER NOT NULL DEFAULT 0,
	new_accounts    INTEGER NOT NULL DEFAULT 0,
	outcome         TEXT NOT NULL,
	error           TEXT,
	ip_address      TEXT,
	user_agent      TEXT,
	duration_ms     BIGINT NOT NULL,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS import_audit_created_at_idx ON import_audit (created_at DESC);
`

var auditColumns = []string{
	"id", "session_id", "kind", "file_name", "rows_submitted",
	"success_count", "failed_count", "duplicate_count", "new_accounts",
	"outcome", "error", "ip_address", "user_agent", "duration_ms", "created_at",
}

// AuditStore implements core.AuditRecorder.
type AuditStore struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

var _ core.AuditRecorder = (*AuditStore)(nil)

// NewAuditStore wraps db.
func NewAuditStore(db DBTX) *AuditStore {
	return &AuditStore{
		db: db,
		sb: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// EnsureSchema creates the audit table and index if they are missing.
func (s *AuditStore) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure import_audit schema: %w", err)
	}
	return nil
}

// RecordImport inserts one audit row.
func (s *AuditStore) RecordImport(ctx context.Context, e core.ImportAuditEntry) error {
	id, err := uuid.Parse(e.ID)
	if err != nil {
		return fmt.Errorf("audit entry id %q: %w", e.ID, err)
	}

	sql, args, err := s.sb.Insert("import_audit").
		Columns(auditColumns...).
		Values(
			pgtype.UUID{Bytes: id, Valid: true},
			e.SessionID,
			e.Kind,
			e.FileName,
			e.RowsSubmitted,
			e.SuccessCount,
			e.FailedCount,
			e.DuplicateCount,
			e.NewAccounts,
			e.Outcome,
			optionalText(e.Error),
			optionalText(e.IPAddress),
			optionalText(e.UserAgent),
			e.DurationMs,
			pgtype.Timestamptz{Time: e.CreatedAt.UTC(), Valid: !e.CreatedAt.IsZero()},
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert audit query: %w", err)
	}

	if _, err := s.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// ListImports returns the newest entries first.
func (s *AuditStore) ListImports(ctx context.Context, limit int) ([]core.ImportAuditEntry, error) {
	sql, args, err := s.sb.Select(auditColumns...).
		From("import_audit").
		OrderBy("created_at DESC").
		Limit(uint64(clampLimit(limit))).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list audit query: %w", err)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}
	defer rows.Close()

	entries := []core.ImportAuditEntry{}
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate audit entries: %w", err)
	}
	return entries, nil
}

// CountImports returns the number of recorded batches.
func (s *AuditStore) CountImports(ctx context.Context) (int64, error) {
	sql, args, err := s.sb.Select("count(*)").From("import_audit").ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count audit query: %w", err)
	}

	var n int64
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count audit entries: %w", err)
	}
	return n, nil
}

func scanEntry(row pgx.Row) (core.ImportAuditEntry, error) {
	var (
		e         core.ImportAuditEntry
		id        pgtype.UUID
		errText   pgtype.Text
		ipAddress pgtype.Text
		userAgent pgtype.Text
		createdAt pgtype.Timestamptz
	)

	err := row.Scan(
		&id,
		&e.SessionID,
		&e.Kind,
		&e.FileName,
		&e.RowsSubmitted,
		&e.SuccessCount,
		&e.FailedCount,
		&e.DuplicateCount,
		&e.NewAccounts,
		&e.Outcome,
		&errText,
		&ipAddress,
		&userAgent,
		&e.DurationMs,
		&createdAt,
	)
	if err != nil {
		return core.ImportAuditEntry{}, fmt.Errorf("scan audit entry: %w", err)
	}

	if id.Valid {
		e.ID = uuid.UUID(id.Bytes).String()
	}
	e.Error = errText.String
	e.IPAddress = ipAddress.String
	e.UserAgent = userAgent.String
	e.CreatedAt = createdAt.Time
	return e, nil
}

func optionalText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: s != ""}
}

func clampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}
