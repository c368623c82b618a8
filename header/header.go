// Package header provides validated HTTP header names and values and an
// ordered multi-map that can only ever contain validated entries.
package header

import (
	"fmt"
	"net/textproto"
)

// Name is a validated, canonicalized HTTP header name.
// The zero value is not valid; construct with NewName.
type Name struct {
	s string
}

// Value is a validated HTTP header value.
// The zero value is the valid empty value.
type Value struct {
	s string
}

// isTokenByte reports whether b is an RFC 7230 token character, the only
// bytes allowed in a header field name.
func isTokenByte(b byte) bool {
	switch {
	case b >= 'a' && b <= 'z':
		return true
	case b >= 'A' && b <= 'Z':
		return true
	case b >= '0' && b <= '9':
		return true
	}
	switch b {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// isValueByte reports whether b may appear in a header field value.
// Visible ASCII, space, horizontal tab and obs-text are allowed; CR, LF,
// NUL and all other control bytes are not.
func isValueByte(b byte) bool {
	if b == ' ' || b == '\t' {
		return true
	}
	if b >= 0x21 && b != 0x7f {
		// Covers visible ASCII and obs-text (0x80-0xff).
		return true
	}
	return false
}

// NewName validates s as an HTTP header field name and returns it in
// canonical form (e.g. "content-type" becomes "Content-Type").
func NewName(s string) (Name, error) {
	if s == "" {
		return Name{}, fmt.Errorf("header: empty header name")
	}
	for i := 0; i < len(s); i++ {
		if !isTokenByte(s[i]) {
			return Name{}, fmt.Errorf("header: invalid byte %q in header name %q", s[i], s)
		}
	}
	return Name{s: textproto.CanonicalMIMEHeaderKey(s)}, nil
}

// NewValue validates s as an HTTP header field value.
func NewValue(s string) (Value, error) {
	for i := 0; i < len(s); i++ {
		if !isValueByte(s[i]) {
			return Value{}, fmt.Errorf("header: invalid byte %q in header value %q", s[i], s)
		}
	}
	return Value{s: s}, nil
}

// String returns the canonical name.
func (n Name) String() string { return n.s }

// String returns the raw value.
func (v Value) String() string { return v.s }
