package proxy

import (
	"context"
	"fmt"
	"net"
	"time"
)

// upstream dials the one fixed backend. Every request gets a fresh
// connection; nothing here is pooled or reused.
type upstream struct {
	addr        string
	dialTimeout time.Duration
}

func (u upstream) dial(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: u.dialTimeout}
	conn, err := d.DialContext(ctx, "tcp", u.addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errBackendUnreachable, err)
	}
	return conn, nil
}
