package header

import (
	"fmt"
	"strings"
)

// Field is a single name/value pair in a Map.
type Field struct {
	Name  Name
	Value Value
}

// Map is an ordered multi-map of validated header fields. Insertion order
// is preserved, and adding a name that is already present accumulates a
// further value rather than overwriting. Because fields can only be built
// from Name and Value, a Map never contains an invalid entry.
//
// Map is not safe for concurrent use.
type Map struct {
	fields []Field
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{}
}

// Add appends a field, keeping any existing values for the same name.
func (m *Map) Add(name Name, value Value) {
	m.fields = append(m.fields, Field{Name: name, Value: value})
}

// Set replaces all values for name with the single given value. The field
// keeps the position of the first existing occurrence, or is appended if
// the name was not present.
func (m *Map) Set(name Name, value Value) {
	replaced := false
	out := m.fields[:0]
	for _, f := range m.fields {
		if f.Name == name {
			if !replaced {
				out = append(out, Field{Name: name, Value: value})
				replaced = true
			}
			continue
		}
		out = append(out, f)
	}
	if !replaced {
		out = append(out, Field{Name: name, Value: value})
	}
	m.fields = out
}

// Get returns the first value for name and whether the name is present.
func (m *Map) Get(name Name) (Value, bool) {
	for _, f := range m.fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return Value{}, false
}

// Values returns all values for name in insertion order.
func (m *Map) Values(name Name) []string {
	var vals []string
	for _, f := range m.fields {
		if f.Name == name {
			vals = append(vals, f.Value.String())
		}
	}
	return vals
}

// Del removes every occurrence of name.
func (m *Map) Del(name Name) {
	out := m.fields[:0]
	for _, f := range m.fields {
		if f.Name != name {
			out = append(out, f)
		}
	}
	m.fields = out
}

// Len returns the total number of fields, counting repeated names once
// per value.
func (m *Map) Len() int {
	return len(m.fields)
}

// Fields returns a snapshot of all fields in insertion order.
func (m *Map) Fields() []Field {
	out := make([]Field, len(m.fields))
	copy(out, m.fields)
	return out
}

// Clone returns a deep copy of the Map.
func (m *Map) Clone() *Map {
	if m == nil {
		return nil
	}
	return &Map{fields: m.Fields()}
}

// String renders the map as a single-line {"Name": "value", ...} snapshot
// for debug output.
func (m *Map) String() string {
	b := &strings.Builder{}
	b.WriteByte('{')
	for i, f := range m.fields {
		if i > 0 {
			b.WriteString(", ")
		}
		fmt.Fprintf(b, "%q: %q", f.Name.String(), f.Value.String())
	}
	b.WriteByte('}')
	return b.String()
}
