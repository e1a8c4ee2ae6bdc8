package core

import (
	"fmt"
	"sort"
	"sync"
)

// ImportKind describes one import flavour: which entity tables its sheets
// carry and which bulk-create endpoint receives the batch.
type ImportKind struct {
	Key    string         `json:"key"`
	Label  string         `json:"label"`
	Path   string         `json:"path"`
	Tables []PatternTable `json:"-"`
}

// Entities returns the entity names of the kind in table order.
func (k ImportKind) Entities() []Entity {
	entities := make([]Entity, len(k.Tables))
	for i, t := range k.Tables {
		entities[i] = t.Entity
	}
	return entities
}

// HasField reports whether the kind declares entity.field.
func (k ImportKind) HasField(entity Entity, field string) bool {
	for _, t := range k.Tables {
		if t.Entity != entity {
			continue
		}
		for _, f := range t.Fields {
			if f.Name == field {
				return true
			}
		}
	}
	return false
}

var (
	registry   = make(map[string]ImportKind)
	registryMu sync.RWMutex
)

// Register adds an import kind to the registry.
// Panics if a kind with the same key is already registered.
func Register(kind ImportKind) {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[kind.Key]; exists {
		panic(fmt.Sprintf("import kind already registered: %s", kind.Key))
	}
	if len(kind.Tables) == 0 {
		panic(fmt.Sprintf("import kind %s has no pattern tables", kind.Key))
	}

	registry[kind.Key] = kind
}

// Get returns an import kind by key.
// Returns false if not found.
func Get(key string) (ImportKind, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()

	kind, ok := registry[key]
	return kind, ok
}

// Lookup is Get with ErrUnknownKind for missing keys.
func Lookup(key string) (ImportKind, error) {
	kind, ok := Get(key)
	if !ok {
		return ImportKind{}, fmt.Errorf("%w: %s", ErrUnknownKind, key)
	}
	return kind, nil
}

// All returns all registered kinds sorted by key.
func All() []ImportKind {
	registryMu.RLock()
	defer registryMu.RUnlock()

	result := make([]ImportKind, 0, len(registry))
	for _, kind := range registry {
		result = append(result, kind)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})

	return result
}

// Clear removes all registered kinds.
// Primarily useful for testing.
func Clear() {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry = make(map[string]ImportKind)
}

// Built-in kinds.
const (
	KindStudents = "siswa"
	KindTeachers = "guru"
)

func init() {
	Register(ImportKind{
		Key:    KindStudents,
		Label:  "Siswa & Orang Tua",
		Path:   "/api/admin/siswa/smart-import",
		Tables: []PatternTable{StudentPatterns, GuardianPatterns},
	})
	Register(ImportKind{
		Key:    KindTeachers,
		Label:  "Guru",
		Path:   "/api/admin/guru/smart-import",
		Tables: []PatternTable{TeacherPatterns},
	})
}
