// Package http1 reads and writes HTTP/1.1 messages on raw connections while
// preserving the exact bytes of the head: header field order and name casing
// survive a round trip untouched. net/http cannot be used for this because it
// canonicalizes field names and reorders them into a map.
package http1

import (
	"bufio"
	"errors"
	"io"
)

const (
	// maxLineBytes bounds a single start line or header field line.
	maxLineBytes = 64 << 10
	// maxFields bounds the number of header fields in one message head.
	maxFields = 256
)

var (
	ErrLineTooLong         = errors.New("http1: header line exceeds limit")
	ErrTooManyFields       = errors.New("http1: too many header fields")
	ErrMalformedLine       = errors.New("http1: malformed start line")
	ErrMalformedField      = errors.New("http1: malformed header field")
	ErrBadContentLength    = errors.New("http1: invalid Content-Length")
	ErrBadTransferEncoding = errors.New("http1: unsupported Transfer-Encoding")
)

// readLine reads one line up to LF, accepting both CRLF and bare LF endings.
// The returned slice excludes the terminator.
func readLine(br *bufio.Reader) ([]byte, error) {
	var line []byte
	for {
		chunk, err := br.ReadSlice('\n')
		line = append(line, chunk...)
		if err == nil {
			break
		}
		if err == bufio.ErrBufferFull {
			if len(line) > maxLineBytes {
				return nil, ErrLineTooLong
			}
			continue
		}
		if err == io.EOF && len(line) > 0 {
			return nil, io.ErrUnexpectedEOF
		}
		return nil, err
	}
	if len(line) > maxLineBytes {
		return nil, ErrLineTooLong
	}
	line = line[:len(line)-1]
	if n := len(line); n > 0 && line[n-1] == '\r' {
		line = line[:n-1]
	}
	return line, nil
}

// isToken reports whether s is a valid RFC 7230 token.
func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTokenByte(s[i]) {
			return false
		}
	}
	return true
}

func isTokenByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}
