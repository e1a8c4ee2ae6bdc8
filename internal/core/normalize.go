package core

import "fmt"

// Normalize converts rows into records, one per row in the same order.
// Each record has a sub-object for every entity of the kind; only mapped
// fields appear, valued from the row at the mapped header. Mapping keys whose
// entity the kind does not carry are ignored.
func Normalize(rows []RawRow, mapping ColumnMapping, kind ImportKind) []NormalizedRecord {
	entities := kind.Entities()
	known := make(map[Entity]bool, len(entities))
	for _, e := range entities {
		known[e] = true
	}

	type binding struct {
		entity Entity
		field  string
		header string
	}
	bindings := make([]binding, 0, len(mapping))
	for key, header := range mapping {
		entity, field, ok := SplitMappingKey(key)
		if !ok || !known[entity] {
			continue
		}
		bindings = append(bindings, binding{entity: entity, field: field, header: header})
	}

	records := make([]NormalizedRecord, len(rows))
	for i, row := range rows {
		rec := make(NormalizedRecord, len(entities))
		for _, e := range entities {
			rec[e] = Fields{}
		}
		for _, b := range bindings {
			rec[b.entity][b.field] = row.Get(b.header)
		}
		records[i] = rec
	}
	return records
}

// ValidateMapping checks an operator supplied mapping against the kind and
// the file headers.
func ValidateMapping(mapping ColumnMapping, kind ImportKind, headers []string) error {
	present := make(map[string]bool, len(headers))
	for _, h := range headers {
		present[h] = true
	}

	for key, header := range mapping {
		entity, field, ok := SplitMappingKey(key)
		if !ok || !kind.HasField(entity, field) {
			return fmt.Errorf("%w: unknown field %q for %s", ErrInvalidMapping, key, kind.Key)
		}
		if !present[header] {
			return fmt.Errorf("%w: header %q not found in file", ErrInvalidMapping, header)
		}
	}
	return nil
}
