package proxy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"tenantgate/internal/http1"
	"tenantgate/internal/metrics"
)

const (
	readBufferSize  = 8 << 10
	writeBufferSize = 8 << 10
)

// Policy decides whether a tenant may be routed. Implementations must be
// safe for concurrent use.
type Policy interface {
	Blocked(tenant string) bool
}

// Config carries the settings for a proxy Server.
type Config struct {
	Listen       string
	Backend      string
	HostSuffix   string
	DialTimeout  time.Duration
	DrainTimeout time.Duration
	Policy       Policy
	Logger       *slog.Logger
}

// Server accepts raw TCP connections and relays HTTP/1.1 requests to one
// fixed backend, rewriting the Host header from the wildcard zone to the
// configured suffix. Each client connection is served sequentially; each
// request gets a fresh backend connection.
type Server struct {
	suffix   string
	listen   string
	upstream upstream
	policy   Policy
	logger   *slog.Logger
	drain    time.Duration
	stats    stats
}

func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	dialTimeout := cfg.DialTimeout
	if dialTimeout <= 0 {
		dialTimeout = 10 * time.Second
	}
	drain := cfg.DrainTimeout
	if drain <= 0 {
		drain = 5 * time.Second
	}
	s := &Server{
		suffix:   cfg.HostSuffix,
		listen:   cfg.Listen,
		upstream: upstream{addr: cfg.Backend, dialTimeout: dialTimeout},
		policy:   cfg.Policy,
		logger:   logger.With("component", "proxy"),
		drain:    drain,
	}
	s.stats.startedAt = time.Now()
	return s
}

// Run listens on the configured address and serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	lc := net.ListenConfig{Control: reuseAddrControl}
	ln, err := lc.Listen(ctx, "tcp", s.listen)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.listen, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections from ln until ctx is cancelled, then waits up to
// the drain timeout for in-flight connections. Long-lived tunnels may outlive
// the window; they are abandoned rather than waited on forever.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("listening",
		"addr", ln.Addr().String(),
		"backend", s.upstream.addr,
		"suffix", s.suffix,
	)

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var conns sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			var ne net.Error
			if errors.As(err, &ne) && ne.Timeout() {
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		conns.Add(1)
		go func() {
			defer conns.Done()
			s.serveConn(ctx, conn)
		}()
	}

	done := make(chan struct{})
	go func() {
		conns.Wait()
		close(done)
	}()
	select {
	case <-done:
		s.logger.Info("drained")
	case <-time.After(s.drain):
		s.logger.Warn("drain timeout expired", "open_connections", s.stats.openConnections.Load())
	}
	return nil
}

// Stats returns a snapshot of the in-process counters.
func (s *Server) Stats() Snapshot {
	return s.stats.snapshot()
}

// serveConn runs the sequential request loop for one client connection.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	s.stats.openConnections.Add(1)
	s.stats.totalConnections.Add(1)
	metrics.OpenConnections.Inc()
	defer func() {
		conn.Close()
		s.stats.openConnections.Add(-1)
		metrics.OpenConnections.Dec()
	}()

	log := s.logger.With("remote", conn.RemoteAddr().String())
	br := bufio.NewReaderSize(conn, readBufferSize)
	bw := bufio.NewWriterSize(conn, writeBufferSize)

	for {
		head, err := http1.ReadRequestHead(br)
		if err != nil {
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF), errors.Is(err, net.ErrClosed):
				// Client went away; nothing to answer.
			case isParseError(err):
				s.record(outcomeBadRequest)
				log.Warn("rejecting unparseable request", "error", err)
				_ = respondPlain(bw, http.StatusBadRequest, "malformed HTTP request")
			default:
				log.Debug("client read failed", "error", err)
			}
			return
		}
		if !s.handleRequest(ctx, conn, br, bw, head, log) {
			return
		}
	}
}

func isParseError(err error) bool {
	return errors.Is(err, http1.ErrMalformedLine) ||
		errors.Is(err, http1.ErrMalformedField) ||
		errors.Is(err, http1.ErrLineTooLong) ||
		errors.Is(err, http1.ErrTooManyFields)
}

// record bumps the Prometheus outcome counter and the matching in-process
// counter.
func (s *Server) record(outcome string) {
	metrics.RequestsTotal.WithLabelValues(outcome).Inc()
	switch outcome {
	case outcomeProxied, outcomeUpgraded:
		s.stats.proxied.Add(1)
	case outcomeRejectedHost:
		s.stats.rejectedHosts.Add(1)
	case outcomeBlockedTenant:
		s.stats.blockedTenants.Add(1)
	case outcomeBackendUnreachable, outcomeBackendError:
		s.stats.backendFailures.Add(1)
	case outcomeUpgradeMismatch:
		s.stats.upgradeMismatches.Add(1)
	}
}
