package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/JonMunkholm/tahfidz-import/internal/logging"
	"github.com/google/uuid"
)

// Submitter sends one batch to the bulk-create endpoint of a kind.
type Submitter interface {
	SubmitImport(ctx context.Context, kind ImportKind, batch Batch) (*ImportResult, error)
}

// DefaultSessionTTL is how long an untouched session is kept.
const DefaultSessionTTL = 30 * time.Minute

// Options tunes a Service. Zero values select defaults.
type Options struct {
	PreviewRows       int
	SessionTTL        time.Duration
	AutoCreateAccount bool
	MaxConcurrent     int
	MaxWait           time.Duration
}

// Service owns the import sessions and drives them through the flow.
type Service struct {
	submitter Submitter
	audit     AuditRecorder
	limiter   *SubmitLimiter
	opts      Options
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewService creates a Service. A nil recorder disables auditing.
func NewService(submitter Submitter, audit AuditRecorder, opts Options) *Service {
	if audit == nil {
		audit = NopRecorder{}
	}
	if opts.PreviewRows <= 0 {
		opts.PreviewRows = DefaultPreviewRows
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}

	return &Service{
		submitter: submitter,
		audit:     audit,
		limiter:   NewSubmitLimiter(opts.MaxConcurrent, opts.MaxWait),
		opts:      opts,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// PreviewRows returns the configured default preview size.
func (s *Service) PreviewRows() int {
	return s.opts.PreviewRows
}

// Kinds lists the registered import kinds.
func (s *Service) Kinds() []ImportKind {
	return All()
}

// Detect runs column detection for a kind without creating a session.
func (s *Service) Detect(kindKey string, headers []string) (ColumnMapping, error) {
	kind, err := Lookup(kindKey)
	if err != nil {
		return nil, err
	}
	return DetectKind(headers, kind), nil
}

// CreateSession registers a new idle session.
func (s *Service) CreateSession(kindKey string) (*Session, error) {
	kind, err := Lookup(kindKey)
	if err != nil {
		return nil, err
	}

	sess := NewSession(uuid.New().String(), kind)

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	sessionsActive.Inc()

	return sess, nil
}

// StartSession creates a session, loads the file into it and moves it to
// Previewing. The session is discarded if the file cannot be loaded.
func (s *Service) StartSession(ctx context.Context, kindKey, fileName, contentType string, data []byte) (SessionSnapshot, Preview, error) {
	sess, err := s.CreateSession(kindKey)
	if err != nil {
		return SessionSnapshot{}, Preview{}, err
	}

	if _, err := s.LoadFile(ctx, sess.ID, fileName, contentType, data); err != nil {
		s.remove(sess.ID)
		return SessionSnapshot{}, Preview{}, err
	}

	preview, err := sess.Preview(s.opts.PreviewRows)
	if err != nil {
		return SessionSnapshot{}, Preview{}, err
	}
	return sess.Snapshot(), preview, nil
}

// Session returns a session by id.
func (s *Service) Session(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess, nil
}

// LoadFile parses data and attaches it to an idle session.
// A parse failure leaves the session Idle.
func (s *Service) LoadFile(ctx context.Context, id, fileName, contentType string, data []byte) (SessionSnapshot, error) {
	sess, err := s.Session(id)
	if err != nil {
		return SessionSnapshot{}, err
	}
	if st := sess.State(); st != StateIdle {
		return SessionSnapshot{}, &StateError{Op: "load file", State: st}
	}

	logger := logging.WithFields(ctx, "session_id", id, "kind", sess.Kind.Key, "file", fileName)

	parsed, err := ParseFile(data, fileName, contentType)
	if err != nil {
		format, _ := DetectFormat(fileName, contentType)
		filesParsed.WithLabelValues(sess.Kind.Key, string(format), OutcomeFailed).Inc()
		logger.Warn("file rejected", "error", err)
		return SessionSnapshot{}, err
	}
	filesParsed.WithLabelValues(sess.Kind.Key, string(parsed.Format), OutcomeSuccess).Inc()

	mapping, err := sess.Load(parsed)
	if err != nil {
		return SessionSnapshot{}, err
	}

	logger.Info("file loaded",
		"format", parsed.Format,
		"encoding", parsed.Encoding,
		"rows", len(parsed.Rows),
		"headers", len(parsed.Headers),
		"mapped_fields", len(mapping),
	)
	return sess.Snapshot(), nil
}

// Preview returns the first limit rows of a session's file.
func (s *Service) Preview(id string, limit int) (Preview, error) {
	sess, err := s.Session(id)
	if err != nil {
		return Preview{}, err
	}
	return sess.Preview(limit)
}

// Remap replaces the session's column mapping.
func (s *Service) Remap(ctx context.Context, id string, mapping ColumnMapping) (SessionSnapshot, error) {
	sess, err := s.Session(id)
	if err != nil {
		return SessionSnapshot{}, err
	}
	if err := sess.Remap(mapping); err != nil {
		return SessionSnapshot{}, err
	}
	logging.WithFields(ctx, "session_id", id).Info("mapping changed", "mapped_fields", len(mapping))
	return sess.Snapshot(), nil
}

// Submit normalizes the session's rows and sends them as one batch.
// autoCreate overrides the configured default when non-nil.
//
// The outbound call is detached from ctx cancellation: once started, the
// batch completes or fails as a unit. Context values (forwarded credentials,
// audit IP and user agent) are kept.
func (s *Service) Submit(ctx context.Context, id string, autoCreate *bool) (*ImportResult, error) {
	sess, err := s.Session(id)
	if err != nil {
		return nil, err
	}

	records, err := sess.BeginSubmit()
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	kind := sess.Kind
	logger := logging.WithFields(ctx, "session_id", id, "kind", kind.Key)

	batch := Batch{
		Data:              records,
		AutoCreateAccount: s.opts.AutoCreateAccount,
	}
	if autoCreate != nil {
		batch.AutoCreateAccount = *autoCreate
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		sess.FinishSubmit(nil, err)
		logger.Warn("submit rejected", "error", err)
		return nil, err
	}

	start := time.Now()
	result, err := s.submitter.SubmitImport(ctx, kind, batch)
	elapsed := time.Since(start)
	s.limiter.Release()
	if err == nil && result == nil {
		result = &ImportResult{}
	}

	submitDuration.WithLabelValues(kind.Key).Observe(elapsed.Seconds())
	sess.FinishSubmit(result, err)

	if auditErr := s.audit.RecordImport(ctx, newAuditEntry(ctx, uuid.New().String(), sess, len(records), result, err, elapsed)); auditErr != nil {
		logger.Error("audit record failed", "error", auditErr)
	}

	if err != nil {
		batchesSubmitted.WithLabelValues(kind.Key, OutcomeFailed).Inc()
		logger.Warn("import failed",
			"rows", len(records),
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return nil, fmt.Errorf("submit %s batch: %w", kind.Key, err)
	}

	batchesSubmitted.WithLabelValues(kind.Key, OutcomeSuccess).Inc()
	observeResult(kind.Key, result)
	logger.Info("import completed",
		"rows", len(records),
		"success", result.SuccessCount,
		"failed", result.FailedCount,
		"duplicate", result.DuplicateCount,
		"new_accounts", len(result.NewAccounts),
		"duration_ms", elapsed.Milliseconds(),
	)
	return result, nil
}

// ExportCredentials renders the session's new accounts as a workbook and
// returns it with its download name.
func (s *Service) ExportCredentials(id string) ([]byte, string, error) {
	sess, err := s.Session(id)
	if err != nil {
		return nil, "", err
	}

	accounts, err := sess.Credentials()
	if err != nil {
		return nil, "", err
	}

	data, err := ExportCredentials(accounts)
	if err != nil {
		return nil, "", err
	}
	return data, CredentialFileName(s.now()), nil
}

// Reset returns a session to Idle.
func (s *Service) Reset(id string) (SessionSnapshot, error) {
	sess, err := s.Session(id)
	if err != nil {
		return SessionSnapshot{}, err
	}
	if err := sess.Reset(); err != nil {
		return SessionSnapshot{}, err
	}
	return sess.Snapshot(), nil
}

// Close drops a session. Not allowed while it is submitting.
func (s *Service) Close(id string) error {
	sess, err := s.Session(id)
	if err != nil {
		return err
	}
	if st := sess.State(); st == StateSubmitting {
		return &StateError{Op: "close", State: st}
	}
	s.remove(id)
	return nil
}

// History returns the most recent audit entries.
func (s *Service) History(ctx context.Context, limit int) ([]ImportAuditEntry, error) {
	return s.audit.ListImports(ctx, limit)
}

// LimiterStatus reports submit slot usage.
func (s *Service) LimiterStatus() SubmitLimiterStatus {
	return s.limiter.Status()
}

// SessionCount returns the number of live sessions.
func (s *Service) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Drain waits for in-flight batches to finish.
func (s *Service) Drain(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}

func (s *Service) remove(id string) {
	s.mu.Lock()
	_, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if ok {
		sessionsActive.Dec()
	}
}
