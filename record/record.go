// Package record defines the row objects a gateway hands out and the factory
// that builds them from raw attribute maps.
package record

// Field describes one column of a tabular result.
type Field struct {
	Name string
	Type string
}

// Object is the interface of all row objects handled by a gateway. A row
// object is an immutable snapshot of one persisted row. It is never mutated
// in place; updating a row produces a new object.
type Object interface {
	// Attr returns the value of one attribute.
	Attr(name string) (any, bool)

	// Attrs returns a copy of the full attribute map.
	Attrs() map[string]any

	// Columns returns the attribute names in storage column order.
	Columns() []string
}

// Factory constructs a row object from a raw attribute map and optional
// field metadata. One factory serves one concrete table type and is supplied
// at gateway construction.
type Factory func(attrs map[string]any, fields []Field) (Object, error)

// DefaultFactory builds plain *Row objects.
func DefaultFactory(attrs map[string]any, fields []Field) (Object, error) {
	return NewRow(attrs, fields), nil
}
