package core

// DefaultPreviewRows is how many rows the operator reviews before submitting.
const DefaultPreviewRows = 5

// Preview is the review step shown before a batch is submitted.
type Preview struct {
	Rows          []RawRow      `json:"rows"`
	TotalRows     int           `json:"totalRows"`
	MappedHeaders []string      `json:"mappedHeaders"`
	Mapping       ColumnMapping `json:"mapping"`
	Unmapped      []string      `json:"unmappedHeaders"`
}

// PreviewRows returns the first min(limit, len(rows)) rows unchanged.
// A negative limit yields no rows.
func PreviewRows(rows []RawRow, limit int) []RawRow {
	if limit < 0 {
		limit = 0
	}
	if limit > len(rows) {
		limit = len(rows)
	}
	return rows[:limit:limit]
}

// BuildPreview assembles the preview for a parsed file and its mapping.
// MappedHeaders and Unmapped follow file order.
func BuildPreview(headers []string, rows []RawRow, mapping ColumnMapping, limit int) Preview {
	bound := make(map[string]bool, len(mapping))
	for _, h := range mapping {
		bound[h] = true
	}

	mapped := make([]string, 0, len(bound))
	unmapped := make([]string, 0, len(headers))
	for _, h := range headers {
		if bound[h] {
			mapped = append(mapped, h)
		} else {
			unmapped = append(unmapped, h)
		}
	}

	return Preview{
		Rows:          PreviewRows(rows, limit),
		TotalRows:     len(rows),
		MappedHeaders: mapped,
		Mapping:       mapping,
		Unmapped:      unmapped,
	}
}
