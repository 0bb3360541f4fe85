package driver

import (
	"sort"

	"github.com/rowgate/rowgate/filter"
	"github.com/rowgate/rowgate/record"
)

// OrderAndPage applies ordering, offset and limit to a matched row set.
// Without an OrderBy column the storage-native order is kept.
func OrderAndPage(rows []map[string]any, opts SelectOpts) []map[string]any {
	if opts.OrderBy != "" {
		rows = append([]map[string]any(nil), rows...)
		sort.SliceStable(rows, func(i, j int) bool {
			a, b := rows[i][opts.OrderBy], rows[j][opts.OrderBy]
			if opts.Descending {
				a, b = b, a
			}
			return filter.Less(a, b)
		})
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(rows) {
			return nil
		}
		rows = rows[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(rows) {
		rows = rows[:opts.Limit]
	}
	return rows
}

// InferFields derives field metadata from a row set: the sorted union of
// attribute names, typed by the first non-nil value seen.
func InferFields(rows []map[string]any) []record.Field {
	names := make(map[string]bool)
	for _, row := range rows {
		for name := range row {
			names[name] = true
		}
	}

	sorted := make([]string, 0, len(names))
	for name := range names {
		sorted = append(sorted, name)
	}
	sort.Strings(sorted)

	fields := make([]record.Field, 0, len(sorted))
	for _, name := range sorted {
		fields = append(fields, record.Field{Name: name, Type: inferType(rows, name)})
	}
	return fields
}

func inferType(rows []map[string]any, name string) string {
	for _, row := range rows {
		switch row[name].(type) {
		case nil:
			continue
		case string:
			return "TEXT"
		case []byte:
			return "BLOB"
		case float32, float64:
			return "REAL"
		case bool:
			return "BOOL"
		default:
			return "INTEGER"
		}
	}
	return "TEXT"
}
