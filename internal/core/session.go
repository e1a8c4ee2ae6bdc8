package core

import (
	"sync"
	"time"
)

// State is the step an import session is at.
type State int

const (
	StateIdle State = iota
	StateFileLoaded
	StatePreviewing
	StateSubmitting
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFileLoaded:
		return "file_loaded"
	case StatePreviewing:
		return "previewing"
	case StateSubmitting:
		return "submitting"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Session is one operator's walk through the import flow. It owns its file,
// mapping and result; all access goes through its mutex, which is never held
// across the outbound submit.
type Session struct {
	ID        string
	Kind      ImportKind
	CreatedAt time.Time

	mu        sync.Mutex
	state     State
	file      *ParsedFile
	mapping   ColumnMapping
	result    *ImportResult
	lastError string
	touchedAt time.Time
}

// NewSession returns an idle session for kind.
func NewSession(id string, kind ImportKind) *Session {
	now := time.Now()
	return &Session{
		ID:        id,
		Kind:      kind,
		CreatedAt: now,
		touchedAt: now,
	}
}

// SessionSnapshot is a read-only copy of a session for display.
type SessionSnapshot struct {
	ID        string        `json:"id"`
	Kind      string        `json:"kind"`
	State     State         `json:"state"`
	File      *ParsedFile   `json:"file,omitempty"`
	RowCount  int           `json:"rowCount"`
	Mapping   ColumnMapping `json:"mapping,omitempty"`
	Result    *ImportResult `json:"result,omitempty"`
	LastError string        `json:"lastError,omitempty"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// State returns the current state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Snapshot copies the session for display.
func (s *Session) Snapshot() SessionSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := SessionSnapshot{
		ID:        s.ID,
		Kind:      s.Kind.Key,
		State:     s.state,
		File:      s.file,
		Result:    s.result,
		LastError: s.lastError,
		CreatedAt: s.CreatedAt,
		UpdatedAt: s.touchedAt,
	}
	if s.file != nil {
		snap.RowCount = len(s.file.Rows)
	}
	if s.mapping != nil {
		snap.Mapping = make(ColumnMapping, len(s.mapping))
		for k, v := range s.mapping {
			snap.Mapping[k] = v
		}
	}
	return snap
}

// Load attaches a parsed file and detects its column mapping.
// Only legal from Idle.
func (s *Session) Load(file *ParsedFile) (ColumnMapping, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return nil, &StateError{Op: "load file", State: s.state}
	}

	s.file = file
	s.mapping = DetectKind(file.Headers, s.Kind)
	s.result = nil
	s.lastError = ""
	s.state = StateFileLoaded
	s.touch()
	return s.mapping, nil
}

// Preview moves the session to Previewing and returns the first limit rows.
func (s *Session) Preview(limit int) (Preview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateFileLoaded && s.state != StatePreviewing {
		return Preview{}, &StateError{Op: "preview", State: s.state}
	}

	s.state = StatePreviewing
	s.touch()
	return BuildPreview(s.file.Headers, s.file.Rows, s.mapping, limit), nil
}

// Remap replaces the detected mapping with an operator override.
func (s *Session) Remap(mapping ColumnMapping) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateFileLoaded && s.state != StatePreviewing {
		return &StateError{Op: "change mapping", State: s.state}
	}
	if err := ValidateMapping(mapping, s.Kind, s.file.Headers); err != nil {
		return err
	}

	s.mapping = make(ColumnMapping, len(mapping))
	for k, v := range mapping {
		s.mapping[k] = v
	}
	s.touch()
	return nil
}

// BeginSubmit moves Previewing to Submitting and returns the batch to send.
// A second call while the first is outstanding fails with ErrSubmitInProgress.
func (s *Session) BeginSubmit() ([]NormalizedRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case StatePreviewing:
	case StateSubmitting:
		return nil, ErrSubmitInProgress
	default:
		return nil, &StateError{Op: "submit", State: s.state}
	}

	s.state = StateSubmitting
	s.lastError = ""
	s.touch()
	return Normalize(s.file.Rows, s.mapping, s.Kind), nil
}

// FinishSubmit records the outcome of the outstanding submit. Success moves
// to Completed; failure returns to Previewing so the batch can be retried.
func (s *Session) FinishSubmit(result *ImportResult, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateSubmitting {
		return
	}

	if err != nil {
		s.state = StatePreviewing
		s.lastError = err.Error()
	} else {
		s.state = StateCompleted
		s.result = result
	}
	s.touch()
}

// Result returns the import result once Completed.
func (s *Session) Result() (*ImportResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCompleted {
		return nil, &StateError{Op: "read result", State: s.state}
	}
	return s.result, nil
}

// Credentials returns the generated accounts for export.
func (s *Session) Credentials() ([]Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateCompleted {
		return nil, &StateError{Op: "export credentials", State: s.state}
	}
	s.touch()
	if s.result == nil || len(s.result.NewAccounts) == 0 {
		return nil, ErrNothingToExport
	}
	accounts := make([]Account, len(s.result.NewAccounts))
	copy(accounts, s.result.NewAccounts)
	return accounts, nil
}

// Reset discards the file, mapping and result and returns to Idle.
// Not allowed while a submit is outstanding.
func (s *Session) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateSubmitting {
		return &StateError{Op: "reset", State: s.state}
	}

	s.state = StateIdle
	s.file = nil
	s.mapping = nil
	s.result = nil
	s.lastError = ""
	s.touch()
	return nil
}

// expired reports whether the session was last used before cutoff.
// Submitting sessions never expire.
func (s *Session) expired(cutoff time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != StateSubmitting && s.touchedAt.Before(cutoff)
}

func (s *Session) fileName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return ""
	}
	return s.file.FileName
}

func (s *Session) touch() {
	s.touchedAt = time.Now()
}
