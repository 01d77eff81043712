package http1

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// RequestHead is a parsed request line plus headers, before any body bytes.
type RequestHead struct {
	Method string
	Target string
	Proto  string
	Header Header
}

// ReadRequestHead parses one request head from br. A connection closed
// cleanly before the first byte returns io.EOF; anything truncated later
// returns io.ErrUnexpectedEOF.
func ReadRequestHead(br *bufio.Reader) (*RequestHead, error) {
	line, err := readLine(br)
	if err != nil {
		return nil, err
	}
	method, rest, ok := strings.Cut(string(line), " ")
	if !ok {
		return nil, ErrMalformedLine
	}
	target, proto, ok := strings.Cut(rest, " ")
	if !ok {
		return nil, ErrMalformedLine
	}
	if !isToken(method) || target == "" || !validProto(proto) {
		return nil, ErrMalformedLine
	}
	header, err := readFields(br)
	if err != nil {
		return nil, err
	}
	return &RequestHead{Method: method, Target: target, Proto: proto, Header: header}, nil
}

// WriteTo serializes the head, terminating blank line included. Body bytes
// are the caller's business.
func (rh *RequestHead) WriteTo(w io.Writer) (int64, error) {
	var total int64
	n, err := fmt.Fprintf(w, "%s %s %s\r\n", rh.Method, rh.Target, rh.Proto)
	total += int64(n)
	if err != nil {
		return total, err
	}
	hn, err := rh.Header.WriteTo(w)
	total += hn
	if err != nil {
		return total, err
	}
	n, err = io.WriteString(w, "\r\n")
	total += int64(n)
	return total, err
}

func validProto(proto string) bool {
	return proto == "HTTP/1.1" || proto == "HTTP/1.0"
}
