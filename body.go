package reqwest

import (
	"fmt"
	"io"
	"net/url"
)

// Body is an opaque request payload: raw bytes plus an optional
// content-type hint applied when no Content-Type header was set explicitly.
type Body struct {
	data        []byte
	contentType string
}

// BodyBytes builds a Body from raw bytes.
func BodyBytes(b []byte) *Body {
	data := make([]byte, len(b))
	copy(data, b)
	return &Body{data: data}
}

// BodyText builds a Body from a string with a text/plain hint.
func BodyText(s string) *Body {
	return &Body{data: []byte(s), contentType: "text/plain; charset=utf-8"}
}

// BodyForm builds a URL-encoded Body from form values.
func BodyForm(form url.Values) *Body {
	return &Body{
		data:        []byte(form.Encode()),
		contentType: "application/x-www-form-urlencoded",
	}
}

// BodyReader builds a Body by draining r. Unlike the conversions applied
// by RequestBuilder.Body, a read failure is reported to the caller.
func BodyReader(r io.Reader) (*Body, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("body: reading payload: %w", err)
	}
	return &Body{data: data}, nil
}

// Bytes returns the raw payload.
func (b *Body) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// ContentType returns the content-type hint, or "" if the payload carries
// none.
func (b *Body) ContentType() string {
	if b == nil {
		return ""
	}
	return b.contentType
}

// Len returns the payload length in bytes.
func (b *Body) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// clone returns a deep copy of the Body.
func (b *Body) clone() *Body {
	if b == nil {
		return nil
	}
	data := make([]byte, len(b.data))
	copy(data, b.data)
	return &Body{data: data, contentType: b.contentType}
}

// bodyFrom converts any supported value into a Body. The conversion is
// total: unsupported types fall back to their fmt.Sprint rendering, and a
// reader that fails mid-read yields the bytes read so far. Callers that
// need read errors reported should use RequestBuilder.BodyJSON or read the
// payload themselves.
func bodyFrom(v any) *Body {
	switch b := v.(type) {
	case nil:
		return nil
	case *Body:
		return b
	case []byte:
		return BodyBytes(b)
	case string:
		return BodyText(b)
	case url.Values:
		return BodyForm(b)
	case io.Reader:
		data, _ := io.ReadAll(b)
		return &Body{data: data}
	case fmt.Stringer:
		return BodyText(b.String())
	default:
		return BodyText(fmt.Sprint(v))
	}
}
