package header

import (
	"strings"
	"testing"
)

// ---------------------------------------------------------------------------
// Name validation
// ---------------------------------------------------------------------------

func TestNewNameValid(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Content-Type", "Content-Type"},
		{"content-type", "Content-Type"},
		{"X-Custom-Header", "X-Custom-Header"},
		{"x-a", "X-A"},
		{"ETag", "Etag"},
		{"x_underscore", "X_underscore"},
	}
	for _, tt := range tests {
		n, err := NewName(tt.in)
		if err != nil {
			t.Errorf("NewName(%q): unexpected error: %v", tt.in, err)
			continue
		}
		if n.String() != tt.want {
			t.Errorf("NewName(%q) = %q, want %q", tt.in, n.String(), tt.want)
		}
	}
}

func TestNewNameInvalid(t *testing.T) {
	tests := []string{
		"",
		"Bad\nName",
		"Bad Name",
		"Bad:Name",
		"Bad/Name",
		"Bad\x00Name",
		"Bäd",
	}
	for _, in := range tests {
		if _, err := NewName(in); err == nil {
			t.Errorf("NewName(%q): expected error, got nil", in)
		}
	}
}

// ---------------------------------------------------------------------------
// Value validation
// ---------------------------------------------------------------------------

func TestNewValueValid(t *testing.T) {
	tests := []string{
		"",
		"text/html",
		"a b\tc",
		"quoted \"value\"",
		strings.Repeat("x", 1024),
	}
	for _, in := range tests {
		v, err := NewValue(in)
		if err != nil {
			t.Errorf("NewValue(%q): unexpected error: %v", in, err)
			continue
		}
		if v.String() != in {
			t.Errorf("NewValue(%q) round-trip = %q", in, v.String())
		}
	}
}

func TestNewValueInvalid(t *testing.T) {
	tests := []string{
		"line\nbreak",
		"carriage\rreturn",
		"nul\x00byte",
		"bell\x07",
	}
	for _, in := range tests {
		if _, err := NewValue(in); err == nil {
			t.Errorf("NewValue(%q): expected error, got nil", in)
		}
	}
}

// ---------------------------------------------------------------------------
// Map semantics
// ---------------------------------------------------------------------------

func mustName(t *testing.T, s string) Name {
	t.Helper()
	n, err := NewName(s)
	if err != nil {
		t.Fatalf("NewName(%q): %v", s, err)
	}
	return n
}

func mustValue(t *testing.T, s string) Value {
	t.Helper()
	v, err := NewValue(s)
	if err != nil {
		t.Fatalf("NewValue(%q): %v", s, err)
	}
	return v
}

func TestMapAddAccumulates(t *testing.T) {
	m := NewMap()
	m.Add(mustName(t, "X-A"), mustValue(t, "1"))
	m.Add(mustName(t, "X-A"), mustValue(t, "2"))

	got := m.Values(mustName(t, "X-A"))
	if len(got) != 2 || got[0] != "1" || got[1] != "2" {
		t.Errorf("Values(X-A) = %v, want [1 2]", got)
	}
	if m.Len() != 2 {
		t.Errorf("Len() = %d, want 2", m.Len())
	}
}

func TestMapInsertionOrder(t *testing.T) {
	m := NewMap()
	names := []string{"X-C", "X-A", "X-B"}
	for i, n := range names {
		m.Add(mustName(t, n), mustValue(t, string(rune('0'+i))))
	}

	fields := m.Fields()
	if len(fields) != 3 {
		t.Fatalf("Fields() returned %d fields, want 3", len(fields))
	}
	for i, n := range names {
		if fields[i].Name.String() != n {
			t.Errorf("fields[%d].Name = %q, want %q", i, fields[i].Name.String(), n)
		}
	}
}

func TestMapSetReplaces(t *testing.T) {
	m := NewMap()
	m.Add(mustName(t, "X-A"), mustValue(t, "1"))
	m.Add(mustName(t, "X-B"), mustValue(t, "b"))
	m.Add(mustName(t, "X-A"), mustValue(t, "2"))

	m.Set(mustName(t, "X-A"), mustValue(t, "3"))

	if got := m.Values(mustName(t, "X-A")); len(got) != 1 || got[0] != "3" {
		t.Errorf("Values(X-A) after Set = %v, want [3]", got)
	}
	// Set keeps the position of the first occurrence.
	if fields := m.Fields(); fields[0].Name.String() != "X-A" {
		t.Errorf("fields[0].Name = %q, want X-A", fields[0].Name.String())
	}
}

func TestMapGetAndDel(t *testing.T) {
	m := NewMap()
	if _, ok := m.Get(mustName(t, "X-A")); ok {
		t.Error("Get on empty map reported present")
	}

	m.Add(mustName(t, "X-A"), mustValue(t, "1"))
	m.Add(mustName(t, "X-A"), mustValue(t, "2"))
	if v, ok := m.Get(mustName(t, "X-A")); !ok || v.String() != "1" {
		t.Errorf("Get(X-A) = %q, %v; want first value 1", v.String(), ok)
	}

	m.Del(mustName(t, "X-A"))
	if m.Len() != 0 {
		t.Errorf("Len() after Del = %d, want 0", m.Len())
	}
}

func TestMapCanonicalNamesMatch(t *testing.T) {
	m := NewMap()
	m.Add(mustName(t, "content-type"), mustValue(t, "text/html"))

	if v, ok := m.Get(mustName(t, "Content-Type")); !ok || v.String() != "text/html" {
		t.Errorf("Get(Content-Type) = %q, %v; want text/html via canonical match", v.String(), ok)
	}
}

func TestMapClone(t *testing.T) {
	m := NewMap()
	m.Add(mustName(t, "X-A"), mustValue(t, "1"))

	c := m.Clone()
	c.Add(mustName(t, "X-B"), mustValue(t, "2"))

	if m.Len() != 1 {
		t.Errorf("original Len() = %d after mutating clone, want 1", m.Len())
	}
	if c.Len() != 2 {
		t.Errorf("clone Len() = %d, want 2", c.Len())
	}
}

func TestMapString(t *testing.T) {
	m := NewMap()
	m.Add(mustName(t, "X-A"), mustValue(t, "1"))
	m.Add(mustName(t, "X-A"), mustValue(t, "2"))

	want := `{"X-A": "1", "X-A": "2"}`
	if got := m.String(); got != want {
		t.Errorf("String() = %s, want %s", got, want)
	}
}
