package http1

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestReadRequestHeadRoundTripsVerbatim(t *testing.T) {
	wire := "GET /widgets?page=2 HTTP/1.1\r\n" +
		"hOsT: foo.1.2.3.4.nip.io\r\n" +
		"X-CuStOm-ToKeN: abc123\r\n" +
		"accept: */*\r\n" +
		"X-CuStOm-ToKeN: def456\r\n" +
		"\r\n"

	head, err := ReadRequestHead(bufio.NewReader(strings.NewReader(wire)))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if head.Method != "GET" || head.Target != "/widgets?page=2" || head.Proto != "HTTP/1.1" {
		t.Fatalf("unexpected request line: %s %s %s", head.Method, head.Target, head.Proto)
	}

	var sb strings.Builder
	if _, err := head.WriteTo(&sb); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sb.String() != wire {
		t.Fatalf("round trip changed the head:\nin:  %q\nout: %q", wire, sb.String())
	}
}

func TestReadRequestHeadAcceptsBareLF(t *testing.T) {
	wire := "POST /submit HTTP/1.1\nHost: a.1.2.3.4.nip.io\nContent-Length: 0\n\n"
	head, err := ReadRequestHead(bufio.NewReader(strings.NewReader(wire)))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if head.Method != "POST" || head.Header.Get("Content-Length") != "0" {
		t.Fatalf("unexpected parse: %+v", head)
	}
}

func TestReadRequestHeadRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name string
		wire string
		want error
	}{
		{name: "missing proto", wire: "GET /\r\n\r\n", want: ErrMalformedLine},
		{name: "empty request line", wire: "\r\n\r\n", want: ErrMalformedLine},
		{name: "method not a token", wire: "GE T / HTTP/1.1\r\n\r\n", want: ErrMalformedLine},
		{name: "http2 proto", wire: "GET / HTTP/2.0\r\n\r\n", want: ErrMalformedLine},
		{name: "field without colon", wire: "GET / HTTP/1.1\r\nHost example.com\r\n\r\n", want: ErrMalformedField},
		{name: "field name with space", wire: "GET / HTTP/1.1\r\nBad Name: x\r\n\r\n", want: ErrMalformedField},
		{name: "obsolete line folding", wire: "GET / HTTP/1.1\r\nHost: a\r\n b\r\n\r\n", want: ErrMalformedField},
		{name: "empty field name", wire: "GET / HTTP/1.1\r\n: x\r\n\r\n", want: ErrMalformedField},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ReadRequestHead(bufio.NewReader(strings.NewReader(tc.wire)))
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestReadRequestHeadEnforcesLimits(t *testing.T) {
	t.Run("line too long", func(t *testing.T) {
		wire := "GET /" + strings.Repeat("a", maxLineBytes+10) + " HTTP/1.1\r\n\r\n"
		_, err := ReadRequestHead(bufio.NewReader(strings.NewReader(wire)))
		if !errors.Is(err, ErrLineTooLong) {
			t.Fatalf("expected ErrLineTooLong, got %v", err)
		}
	})

	t.Run("too many fields", func(t *testing.T) {
		var sb strings.Builder
		sb.WriteString("GET / HTTP/1.1\r\n")
		for i := 0; i <= maxFields; i++ {
			sb.WriteString("X-Filler: v\r\n")
		}
		sb.WriteString("\r\n")
		_, err := ReadRequestHead(bufio.NewReader(strings.NewReader(sb.String())))
		if !errors.Is(err, ErrTooManyFields) {
			t.Fatalf("expected ErrTooManyFields, got %v", err)
		}
	})
}

func TestReadRequestHeadEOFSemantics(t *testing.T) {
	// A connection closed before any bytes is a clean EOF.
	_, err := ReadRequestHead(bufio.NewReader(strings.NewReader("")))
	if !errors.Is(err, io.EOF) {
		t.Fatalf("expected io.EOF, got %v", err)
	}

	// Anything truncated mid-head is not.
	for _, wire := range []string{"GET / HT", "GET / HTTP/1.1\r\nHost: a"} {
		_, err := ReadRequestHead(bufio.NewReader(strings.NewReader(wire)))
		if !errors.Is(err, io.ErrUnexpectedEOF) {
			t.Fatalf("wire %q: expected io.ErrUnexpectedEOF, got %v", wire, err)
		}
	}
}

func TestReadRequestHeadTrimsValueWhitespaceOnly(t *testing.T) {
	wire := "GET / HTTP/1.1\r\nX-Padded:    spaced out   \r\n\r\n"
	head, err := ReadRequestHead(bufio.NewReader(strings.NewReader(wire)))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if got := head.Header.Get("X-Padded"); got != "spaced out" {
		t.Fatalf("expected inner spaces kept and outer trimmed, got %q", got)
	}
}
