package core

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// Entity identifies which record a canonical field belongs to.
type Entity string

const (
	EntityStudent  Entity = "student"
	EntityGuardian Entity = "guardian"
	EntityTeacher  Entity = "teacher"
)

// ValueKind describes what a spreadsheet cell held.
type ValueKind int

const (
	ValueEmpty ValueKind = iota
	ValueText
	ValueNumber
)

// Value is a single cell value as read from the source file.
type Value struct {
	Kind ValueKind
	Text string  // Display text; set for both text and number cells
	Num  float64 // Numeric value when Kind is ValueNumber
}

// TextValue returns a text value, or an empty value for blank input.
func TextValue(s string) Value {
	if strings.TrimSpace(s) == "" {
		return Value{}
	}
	return Value{Kind: ValueText, Text: s}
}

// NumberValue returns a number value that keeps its display text.
func NumberValue(n float64, text string) Value {
	if text == "" {
		text = strconv.FormatFloat(n, 'f', -1, 64)
	}
	return Value{Kind: ValueNumber, Text: text, Num: n}
}

// IsEmpty reports whether the cell was blank.
func (v Value) IsEmpty() bool {
	return v.Kind == ValueEmpty
}

// String returns the display text of the value.
func (v Value) String() string {
	return v.Text
}

// MarshalJSON encodes empty cells as null, numbers as JSON numbers and text as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case ValueNumber:
		return []byte(strconv.FormatFloat(v.Num, 'f', -1, 64)), nil
	case ValueText:
		return json.Marshal(v.Text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON accepts null, strings and numbers.
func (v *Value) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		*v = Value{}
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*v = TextValue(text)
		return nil
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*v = NumberValue(n, s)
	return nil
}

// Cell pairs a literal header with the value found under it.
type Cell struct {
	Header string `json:"header"`
	Value  Value  `json:"value"`
}

// RawRow is one data row, ordered as in the source file.
type RawRow struct {
	Cells []Cell `json:"cells"`
}

// Get returns the value under the first cell carrying header.
// Missing headers yield an empty value.
func (r RawRow) Get(header string) Value {
	for _, c := range r.Cells {
		if c.Header == header {
			return c.Value
		}
	}
	return Value{}
}

// IsBlank reports whether every cell in the row is empty.
func (r RawRow) IsBlank() bool {
	for _, c := range r.Cells {
		if !c.Value.IsEmpty() {
			return false
		}
	}
	return true
}

// MarshalJSON renders the row as a header -> value object, keeping file order.
func (r RawRow) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('{')
	seen := make(map[string]bool, len(r.Cells))
	first := true
	for _, c := range r.Cells {
		if seen[c.Header] {
			continue
		}
		seen[c.Header] = true
		if !first {
			b.WriteByte(',')
		}
		first = false
		key, err := json.Marshal(c.Header)
		if err != nil {
			return nil, err
		}
		val, err := c.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(val)
	}
	b.WriteByte('}')
	return []byte(b.String()), nil
}

// ColumnMapping maps "<entity>_<field>" keys to the literal header bound to them.
type ColumnMapping map[string]string

// MappingKey builds the mapping key for an entity field.
func MappingKey(entity Entity, field string) string {
	return string(entity) + "_" + field
}

// SplitMappingKey splits a mapping key into entity and field.
func SplitMappingKey(key string) (Entity, string, bool) {
	entity, field, ok := strings.Cut(key, "_")
	if !ok || entity == "" || field == "" {
		return "", "", false
	}
	return Entity(entity), field, true
}

// Fields holds canonical field values for one entity.
type Fields map[string]Value

// NormalizedRecord holds the per-entity fields produced from one row.
type NormalizedRecord map[Entity]Fields

// Account is a credential generated by the portal for a newly created user.
type Account struct {
	Name     string `json:"nama"`
	Role     string `json:"role"`
	Email    string `json:"email,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password"`
	Note     string `json:"keterangan,omitempty"`
}

// Login returns the identifier the user signs in with.
func (a Account) Login() string {
	if a.Email != "" {
		return a.Email
	}
	return a.Username
}

// ImportResult is the aggregate outcome of a submitted batch.
type ImportResult struct {
	SuccessCount   int       `json:"successCount"`
	FailedCount    int       `json:"failedCount"`
	DuplicateCount int       `json:"duplicateCount"`
	Total          int       `json:"total"`
	Message        string    `json:"message,omitempty"`
	Errors         []string  `json:"errors"`
	SuccessDetails []string  `json:"successDetails,omitempty"`
	NewAccounts    []Account `json:"newAccounts"`
}

// Batch is the request body sent to the bulk-create endpoint.
type Batch struct {
	Data              []NormalizedRecord `json:"data"`
	AutoCreateAccount bool               `json:"autoCreateAccount"`
}

// ImportAuditEntry records one submitted batch.
type ImportAuditEntry struct {
	ID             string    `json:"id"`
	SessionID      string    `json:"sessionId"`
	Kind           string    `json:"kind"`
	FileName       string    `json:"fileName"`
	RowsSubmitted  int       `json:"rowsSubmitted"`
	SuccessCount   int       `json:"successCount"`
	FailedCount    int       `json:"failedCount"`
	DuplicateCount int       `json:"duplicateCount"`
	NewAccounts    int       `json:"newAccounts"`
	Outcome        string    `json:"outcome"`
	Error          string    `json:"error,omitempty"`
	IPAddress      string    `json:"ipAddress,omitempty"`
	UserAgent      string    `json:"userAgent,omitempty"`
	DurationMs     int64     `json:"durationMs"`
	CreatedAt      time.Time `json:"createdAt"`
}
