package http1

import (
	"strings"
	"testing"
)

func TestHeaderPreservesOrderAndCasing(t *testing.T) {
	var h Header
	h.Add("X-First", "1")
	h.Add("conTENT-tyPe", "text/plain")
	h.Add("X-Last", "3")

	var sb strings.Builder
	if _, err := h.WriteTo(&sb); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	want := "X-First: 1\r\nconTENT-tyPe: text/plain\r\nX-Last: 3\r\n"
	if sb.String() != want {
		t.Fatalf("expected %q, got %q", want, sb.String())
	}
}

func TestHeaderGetIsCaseInsensitive(t *testing.T) {
	var h Header
	h.Add("hOsT", "example.com")
	if got := h.Get("Host"); got != "example.com" {
		t.Fatalf("expected example.com, got %q", got)
	}
	if got := h.Get("HOST"); got != "example.com" {
		t.Fatalf("expected example.com, got %q", got)
	}
	if !h.Has("host") {
		t.Fatal("expected Has(host) to be true")
	}
	if h.Has("X-Missing") {
		t.Fatal("expected Has(X-Missing) to be false")
	}
}

func TestHeaderSetReplacesFirstInPlace(t *testing.T) {
	var h Header
	h.Add("Accept", "*/*")
	h.Add("hOsT", "a.example")
	h.Add("X-Other", "x")
	h.Add("HOST", "b.example")

	h.Set("Host", "rewritten.internal")

	fields := h.Fields()
	if len(fields) != 3 {
		t.Fatalf("expected 3 fields after set, got %d", len(fields))
	}
	// The surviving field keeps its position and as-received casing.
	if fields[1].Name != "hOsT" {
		t.Fatalf("expected name hOsT kept, got %q", fields[1].Name)
	}
	if fields[1].Value != "rewritten.internal" {
		t.Fatalf("expected rewritten value, got %q", fields[1].Value)
	}
	if got := len(h.Values("host")); got != 1 {
		t.Fatalf("expected exactly one host field, got %d", got)
	}
}

func TestHeaderSetAppendsWhenMissing(t *testing.T) {
	var h Header
	h.Add("Accept", "*/*")
	h.Set("Connection", "close")
	fields := h.Fields()
	if len(fields) != 2 || fields[1].Name != "Connection" || fields[1].Value != "close" {
		t.Fatalf("expected Connection appended, got %+v", fields)
	}
}

func TestHeaderDelRemovesAllMatches(t *testing.T) {
	var h Header
	h.Add("Set-Cookie", "a=1")
	h.Add("X-Keep", "y")
	h.Add("set-cookie", "b=2")
	h.Del("Set-Cookie")
	fields := h.Fields()
	if len(fields) != 1 || fields[0].Name != "X-Keep" {
		t.Fatalf("expected only X-Keep to remain, got %+v", fields)
	}
}

func TestHeaderValuesReturnsAllInOrder(t *testing.T) {
	var h Header
	h.Add("Via", "1.1 a")
	h.Add("VIA", "1.1 b")
	got := h.Values("via")
	if len(got) != 2 || got[0] != "1.1 a" || got[1] != "1.1 b" {
		t.Fatalf("unexpected values: %v", got)
	}
}
