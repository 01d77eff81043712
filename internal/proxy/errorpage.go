package proxy

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"tenantgate/internal/http1"
)

type errorPageView struct {
	Title        string
	Category     string
	Host         string
	Error        string
	DiagnosticID string
	Timestamp    string
	Hints        []string
}

var diagnosticIDCounter atomic.Uint64

func nextDiagnosticID() string {
	ts := uint64(time.Now().UnixNano())
	seq := diagnosticIDCounter.Add(1)
	return fmt.Sprintf("%x-%x", ts, seq)
}

// respondError writes a terminal error response straight onto the client
// connection. These responses always carry Connection: close because the
// request body was never consumed and the stream is no longer aligned.
func respondError(bw *bufio.Writer, status int, view errorPageView) error {
	view.DiagnosticID = nextDiagnosticID()
	view.Timestamp = time.Now().UTC().Format(time.RFC3339)

	var body bytes.Buffer
	if err := errorPageTemplate.Execute(&body, view); err != nil {
		return err
	}

	head := &http1.ResponseHead{Proto: "HTTP/1.1", StatusCode: status, Reason: http.StatusText(status)}
	head.Header.Add("Content-Type", "text/html; charset=utf-8")
	head.Header.Add("Content-Length", strconv.Itoa(body.Len()))
	head.Header.Add("Connection", "close")
	if _, err := head.WriteTo(bw); err != nil {
		return err
	}
	if _, err := bw.Write(body.Bytes()); err != nil {
		return err
	}
	return bw.Flush()
}

// respondPlain writes a minimal text response for situations where the
// request itself could not be parsed.
func respondPlain(bw *bufio.Writer, status int, message string) error {
	body := message + "\n"
	head := &http1.ResponseHead{Proto: "HTTP/1.1", StatusCode: status, Reason: http.StatusText(status)}
	head.Header.Add("Content-Type", "text/plain; charset=utf-8")
	head.Header.Add("Content-Length", strconv.Itoa(len(body)))
	head.Header.Add("Connection", "close")
	if _, err := head.WriteTo(bw); err != nil {
		return err
	}
	if _, err := bw.WriteString(body); err != nil {
		return err
	}
	return bw.Flush()
}

//go:embed errorpage.html
var errorPageHTML string

var errorPageTemplate = template.Must(template.New("errorpage").Parse(errorPageHTML))
