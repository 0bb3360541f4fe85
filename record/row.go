package record

import (
	"github.com/mitchellh/copystructure"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// Row is the default Object implementation: an immutable attribute snapshot
// of one persisted row.
type Row struct {
	cols  []string
	attrs map[string]any
}

// NewRow creates a row from a raw attribute map. If field metadata is given,
// it defines the column order; attributes without metadata are appended in
// sorted order.
func NewRow(attrs map[string]any, fields []Field) *Row {
	cols := make([]string, 0, len(attrs))
	seen := make(map[string]bool, len(attrs))
	for _, f := range fields {
		if _, ok := attrs[f.Name]; ok && !seen[f.Name] {
			cols = append(cols, f.Name)
			seen[f.Name] = true
		}
	}

	rest := make([]string, 0, len(attrs))
	for name := range attrs {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	slices.Sort(rest)
	cols = append(cols, rest...)

	return &Row{
		cols:  cols,
		attrs: CloneAttrs(attrs),
	}
}

// Attr returns the value of one attribute.
func (r *Row) Attr(name string) (any, bool) {
	v, ok := r.attrs[name]
	return v, ok
}

// Attrs returns a copy of the full attribute map.
func (r *Row) Attrs() map[string]any {
	return CloneAttrs(r.attrs)
}

// Columns returns the attribute names in storage column order.
func (r *Row) Columns() []string {
	return slices.Clone(r.cols)
}

// Merge returns a new row with the patch applied on top of this snapshot.
// The receiver is left untouched.
func (r *Row) Merge(patch map[string]any) *Row {
	attrs := CloneAttrs(r.attrs)
	maps.Copy(attrs, CloneAttrs(patch))
	return NewRow(attrs, fieldsOf(r.cols))
}

func fieldsOf(cols []string) []Field {
	fields := make([]Field, 0, len(cols))
	for _, name := range cols {
		fields = append(fields, Field{Name: name})
	}
	return fields
}

// CloneAttrs deep-copies an attribute map, so that shared slices or nested
// maps cannot leak mutations into a cached snapshot.
func CloneAttrs(attrs map[string]any) map[string]any {
	if attrs == nil {
		return nil
	}
	dup, err := copystructure.Copy(attrs)
	if err != nil {
		// Only unsupported reflect kinds (chan, func) fail to copy. Fall back
		// to a shallow clone for those.
		return maps.Clone(attrs)
	}
	return dup.(map[string]any)
}
