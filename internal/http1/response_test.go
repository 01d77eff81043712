package http1

import (
	"bufio"
	"errors"
	"strings"
	"testing"
)

func TestReadResponseHead(t *testing.T) {
	tests := []struct {
		name       string
		wire       string
		wantCode   int
		wantReason string
	}{
		{name: "simple", wire: "HTTP/1.1 200 OK\r\n\r\n", wantCode: 200, wantReason: "OK"},
		{name: "reason with spaces", wire: "HTTP/1.1 502 Bad Gateway\r\n\r\n", wantCode: 502, wantReason: "Bad Gateway"},
		{name: "no reason", wire: "HTTP/1.1 200\r\n\r\n", wantCode: 200, wantReason: ""},
		{name: "switching protocols", wire: "HTTP/1.1 101 Switching Protocols\r\nUpgrade: websocket\r\n\r\n", wantCode: 101, wantReason: "Switching Protocols"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			head, err := ReadResponseHead(bufio.NewReader(strings.NewReader(tc.wire)))
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if head.StatusCode != tc.wantCode {
				t.Fatalf("expected status %d, got %d", tc.wantCode, head.StatusCode)
			}
			if head.Reason != tc.wantReason {
				t.Fatalf("expected reason %q, got %q", tc.wantReason, head.Reason)
			}
		})
	}
}

func TestReadResponseHeadRejectsMalformedStatusLine(t *testing.T) {
	for _, wire := range []string{
		"HTTP/1.1 20 OK\r\n\r\n",
		"HTTP/1.1 2000 OK\r\n\r\n",
		"HTTP/1.1 abc OK\r\n\r\n",
		"HTTP/2 200 OK\r\n\r\n",
		"garbage\r\n\r\n",
		"HTTP/1.1 099 Low\r\n\r\n",
	} {
		_, err := ReadResponseHead(bufio.NewReader(strings.NewReader(wire)))
		if !errors.Is(err, ErrMalformedLine) {
			t.Fatalf("wire %q: expected ErrMalformedLine, got %v", wire, err)
		}
	}
}

func TestResponseHeadWriteTo(t *testing.T) {
	head := &ResponseHead{Proto: "HTTP/1.1", StatusCode: 200, Reason: "OK"}
	head.Header.Add("Content-Length", "0")

	var sb strings.Builder
	if _, err := head.WriteTo(&sb); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := "HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n"
	if sb.String() != want {
		t.Fatalf("expected %q, got %q", want, sb.String())
	}
}

func TestResponseHeadWriteToWithoutReason(t *testing.T) {
	head := &ResponseHead{Proto: "HTTP/1.1", StatusCode: 204}
	var sb strings.Builder
	if _, err := head.WriteTo(&sb); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if sb.String() != "HTTP/1.1 204\r\n\r\n" {
		t.Fatalf("expected bare status line, got %q", sb.String())
	}
}
