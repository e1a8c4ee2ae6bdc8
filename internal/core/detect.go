package core

import "strings"

// DetectColumns binds headers to the canonical fields of the given pattern
// tables. Tables are walked in order, then fields in declared order; each
// field takes the first header in file order whose folded form contains, or
// is contained in, the folded form of any of its aliases. A bound field is
// closed. Headers are not reserved, so one header may satisfy several fields.
//
// Headers that fold to the empty string never match.
func DetectColumns(headers []string, tables []PatternTable) ColumnMapping {
	mapping := make(ColumnMapping)
	if len(headers) == 0 {
		return mapping
	}

	folded := make([]string, len(headers))
	for i, h := range headers {
		folded[i] = NormalizeHeader(h)
	}

	for _, table := range tables {
		for _, field := range table.Fields {
			key := MappingKey(table.Entity, field.Name)
			if _, closed := mapping[key]; closed {
				continue
			}
			if i := firstMatch(folded, field.Aliases); i >= 0 {
				mapping[key] = headers[i]
			}
		}
	}

	return mapping
}

// DetectKind runs DetectColumns with the tables of kind.
func DetectKind(headers []string, kind ImportKind) ColumnMapping {
	return DetectColumns(headers, kind.Tables)
}

func firstMatch(folded []string, aliases []string) int {
	normAliases := make([]string, 0, len(aliases))
	for _, a := range aliases {
		if n := NormalizeHeader(a); n != "" {
			normAliases = append(normAliases, n)
		}
	}

	for i, h := range folded {
		if h == "" {
			continue
		}
		for _, a := range normAliases {
			if strings.Contains(h, a) || strings.Contains(a, h) {
				return i
			}
		}
	}
	return -1
}
