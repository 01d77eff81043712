package http1

import (
	"bufio"
	"fmt"
	"io"
	"net/http/httputil"
	"strings"
)

// Framing describes how a message body is delimited on the wire.
type Framing int

const (
	// FramingNone means the message has no body.
	FramingNone Framing = iota
	// FramingLength means exactly Content-Length bytes follow the head.
	FramingLength
	// FramingChunked means the body uses chunked transfer coding.
	FramingChunked
	// FramingUntilClose means the body runs until the peer closes.
	FramingUntilClose
)

func (f Framing) String() string {
	switch f {
	case FramingNone:
		return "none"
	case FramingLength:
		return "length"
	case FramingChunked:
		return "chunked"
	case FramingUntilClose:
		return "until-close"
	default:
		return fmt.Sprintf("framing(%d)", int(f))
	}
}

// RequestFraming determines the body framing of a request per RFC 7230
// section 3.3.3. Requests cannot be delimited by connection close, so a
// Transfer-Encoding whose final coding is not chunked is an error, as is a
// malformed or conflicting Content-Length.
func RequestFraming(h *Header) (Framing, int64, error) {
	if h.Has("Transfer-Encoding") {
		if !chunkedIsFinal(h.Values("Transfer-Encoding")) {
			return FramingNone, 0, ErrBadTransferEncoding
		}
		return FramingChunked, 0, nil
	}
	if vals := h.Values("Content-Length"); len(vals) > 0 {
		n, err := contentLength(vals)
		if err != nil {
			return FramingNone, 0, err
		}
		return FramingLength, n, nil
	}
	return FramingNone, 0, nil
}

// ResponseFraming determines the body framing of a response to the given
// request method. HEAD responses and 1xx/204/304 statuses never carry a body
// regardless of their headers.
func ResponseFraming(method string, status int, h *Header) (Framing, int64, error) {
	if method == "HEAD" || status/100 == 1 || status == 204 || status == 304 {
		return FramingNone, 0, nil
	}
	if h.Has("Transfer-Encoding") {
		if chunkedIsFinal(h.Values("Transfer-Encoding")) {
			return FramingChunked, 0, nil
		}
		// Not self-delimiting; the connection close marks the end.
		return FramingUntilClose, 0, nil
	}
	if vals := h.Values("Content-Length"); len(vals) > 0 {
		n, err := contentLength(vals)
		if err != nil {
			return FramingNone, 0, err
		}
		return FramingLength, n, nil
	}
	return FramingUntilClose, 0, nil
}

// RelayBody copies one message body from src to dst according to the given
// framing, flushing dst as data arrives so streamed bodies are not held back
// by buffering. Chunked bodies are re-coded chunk by chunk and trailer fields
// pass through verbatim; the returned count is decoded body bytes.
func RelayBody(dst *bufio.Writer, src *bufio.Reader, f Framing, length int64) (int64, error) {
	switch f {
	case FramingNone:
		return 0, nil
	case FramingLength:
		n, err := flushCopy(dst, io.LimitReader(src, length), dst)
		if err == nil && n < length {
			err = io.ErrUnexpectedEOF
		}
		return n, err
	case FramingChunked:
		return relayChunked(dst, src)
	case FramingUntilClose:
		return flushCopy(dst, src, dst)
	default:
		return 0, fmt.Errorf("http1: unknown framing %v", f)
	}
}

// flushCopy copies src to dst, flushing fl after every successful write so
// each read's worth of data reaches the peer promptly.
func flushCopy(dst io.Writer, src io.Reader, fl *bufio.Writer) (int64, error) {
	buf := make([]byte, 32<<10)
	var total int64
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			wn, werr := dst.Write(buf[:n])
			total += int64(wn)
			if werr != nil {
				return total, werr
			}
			if err := fl.Flush(); err != nil {
				return total, err
			}
		}
		if rerr == io.EOF {
			return total, nil
		}
		if rerr != nil {
			return total, rerr
		}
	}
}

func relayChunked(dst *bufio.Writer, src *bufio.Reader) (int64, error) {
	cw := httputil.NewChunkedWriter(dst)
	n, err := flushCopy(cw, httputil.NewChunkedReader(src), dst)
	if err != nil {
		return n, err
	}
	// Close writes the terminal zero-length chunk. The trailer section and
	// the final CRLF are relayed by hand because NewChunkedReader leaves
	// them unread.
	if err := cw.Close(); err != nil {
		return n, err
	}
	for {
		line, err := readLine(src)
		if err != nil {
			if err == io.EOF {
				err = io.ErrUnexpectedEOF
			}
			return n, err
		}
		if len(line) == 0 {
			break
		}
		if _, err := dst.Write(line); err != nil {
			return n, err
		}
		if _, err := dst.WriteString("\r\n"); err != nil {
			return n, err
		}
	}
	if _, err := dst.WriteString("\r\n"); err != nil {
		return n, err
	}
	return n, dst.Flush()
}

// chunkedIsFinal reports whether the last Transfer-Encoding coding across
// all field values is chunked.
func chunkedIsFinal(values []string) bool {
	last := ""
	for _, v := range values {
		for _, tok := range strings.Split(v, ",") {
			if tok = strings.TrimSpace(tok); tok != "" {
				last = tok
			}
		}
	}
	return strings.EqualFold(last, "chunked")
}

// contentLength parses a Content-Length value. Multiple fields are accepted
// only when byte-identical; the value itself must be plain digits.
func contentLength(vals []string) (int64, error) {
	first := strings.TrimSpace(vals[0])
	for _, v := range vals[1:] {
		if strings.TrimSpace(v) != first {
			return 0, ErrBadContentLength
		}
	}
	if first == "" {
		return 0, ErrBadContentLength
	}
	var n int64
	for i := 0; i < len(first); i++ {
		c := first[i]
		if c < '0' || c > '9' {
			return 0, ErrBadContentLength
		}
		d := int64(c - '0')
		if n > (1<<63-1-d)/10 {
			return 0, ErrBadContentLength
		}
		n = n*10 + d
	}
	return n, nil
}
