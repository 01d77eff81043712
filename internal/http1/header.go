package http1

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Field is a single header field as it appeared on the wire.
type Field struct {
	Name  string
	Value string
}

// Header is an ordered list of header fields. Lookups are case-insensitive,
// but the stored names keep the casing the peer sent.
type Header struct {
	fields []Field
}

// Add appends a field, keeping name verbatim.
func (h *Header) Add(name, value string) {
	h.fields = append(h.fields, Field{Name: name, Value: value})
}

// Get returns the value of the first field matching name, or "".
func (h *Header) Get(name string) string {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return ""
}

// Values returns the values of every field matching name, in order.
func (h *Header) Values(name string) []string {
	var out []string
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			out = append(out, f.Value)
		}
	}
	return out
}

// Has reports whether at least one field matches name.
func (h *Header) Has(name string) bool {
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			return true
		}
	}
	return false
}

// Set replaces the value of the first field matching name without touching
// its position or as-received casing, and removes any later duplicates. When
// no field matches, the field is appended with the given name.
func (h *Header) Set(name, value string) {
	replaced := false
	out := h.fields[:0]
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			if replaced {
				continue
			}
			f.Value = value
			replaced = true
		}
		out = append(out, f)
	}
	h.fields = out
	if !replaced {
		h.Add(name, value)
	}
}

// Del removes every field matching name.
func (h *Header) Del(name string) {
	out := h.fields[:0]
	for _, f := range h.fields {
		if strings.EqualFold(f.Name, name) {
			continue
		}
		out = append(out, f)
	}
	h.fields = out
}

// Len returns the number of fields.
func (h *Header) Len() int {
	return len(h.fields)
}

// Fields returns the underlying field list for iteration. Callers must not
// hold the slice across mutations.
func (h *Header) Fields() []Field {
	return h.fields
}

// WriteTo serializes the fields in order as "Name: value" lines. It does not
// write the blank line terminating the head.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	var total int64
	for _, f := range h.fields {
		n, err := fmt.Fprintf(w, "%s: %s\r\n", f.Name, f.Value)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// readFields parses header fields up to and including the blank line ending
// the head. Lines starting with whitespace (obsolete folding) are rejected.
func readFields(br *bufio.Reader) (Header, error) {
	var h Header
	for {
		line, err := readLine(br)
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return Header{}, err
		}
		if len(line) == 0 {
			return h, nil
		}
		if h.Len() >= maxFields {
			return Header{}, ErrTooManyFields
		}
		if line[0] == ' ' || line[0] == '\t' {
			return Header{}, ErrMalformedField
		}
		name, value, ok := cutColon(line)
		if !ok || !isToken(name) {
			return Header{}, ErrMalformedField
		}
		h.Add(name, value)
	}
}

// cutColon splits a header line at the first colon and trims optional
// whitespace around the value only.
func cutColon(line []byte) (name, value string, ok bool) {
	for i := 0; i < len(line); i++ {
		if line[i] == ':' {
			return string(line[:i]), strings.Trim(string(line[i+1:]), " \t"), true
		}
	}
	return "", "", false
}
