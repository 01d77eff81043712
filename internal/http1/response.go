package http1

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ResponseHead is a parsed status line plus headers.
type ResponseHead struct {
	Proto      string
	StatusCode int
	Reason     string
	Header     Header
}

// ReadResponseHead parses one response head from br.
func ReadResponseHead(br *bufio.Reader) (*ResponseHead, error) {
	line, err := readLine(br)
	if err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, err
	}
	proto, rest, ok := strings.Cut(string(line), " ")
	if !ok || !validProto(proto) {
		return nil, ErrMalformedLine
	}
	// The reason phrase is free text and may be empty or contain spaces.
	codeStr, reason, _ := strings.Cut(rest, " ")
	code, ok := parseStatusCode(codeStr)
	if !ok {
		return nil, ErrMalformedLine
	}
	header, err := readFields(br)
	if err != nil {
		return nil, err
	}
	return &ResponseHead{Proto: proto, StatusCode: code, Reason: reason, Header: header}, nil
}

// WriteTo serializes the head, terminating blank line included.
func (sh *ResponseHead) WriteTo(w io.Writer) (int64, error) {
	var total int64
	var n int
	var err error
	if sh.Reason == "" {
		n, err = fmt.Fprintf(w, "%s %03d\r\n", sh.Proto, sh.StatusCode)
	} else {
		n, err = fmt.Fprintf(w, "%s %03d %s\r\n", sh.Proto, sh.StatusCode, sh.Reason)
	}
	total += int64(n)
	if err != nil {
		return total, err
	}
	hn, err := sh.Header.WriteTo(w)
	total += hn
	if err != nil {
		return total, err
	}
	n, err = io.WriteString(w, "\r\n")
	total += int64(n)
	return total, err
}

func parseStatusCode(s string) (int, bool) {
	if len(s) != 3 {
		return 0, false
	}
	code := 0
	for i := 0; i < 3; i++ {
		if s[i] < '0' || s[i] > '9' {
			return 0, false
		}
		code = code*10 + int(s[i]-'0')
	}
	if code < 100 {
		return 0, false
	}
	return code, true
}
