package proxy

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"tenantgate/internal/http1"
	"tenantgate/internal/metrics"
)

// writerGrace is how long a finished response waits for the request writer
// before giving up on connection reuse.
const writerGrace = 100 * time.Millisecond

// handleRequest relays one request to the backend and its response back to
// the client. The return value says whether the connection may carry another
// request; false means the caller must close it.
//
// The request is written from its own goroutine so a backend that responds
// before draining the body cannot deadlock the relay.
func (s *Server) handleRequest(ctx context.Context, clientConn net.Conn, br *bufio.Reader, bw *bufio.Writer, head *http1.RequestHead, log *slog.Logger) bool {
	start := time.Now()
	s.stats.requests.Add(1)

	reqFraming, reqLen, err := http1.RequestFraming(&head.Header)
	if err != nil {
		s.record(outcomeBadRequest)
		log.Warn("rejecting request with unusable body framing", "error", err)
		_ = respondPlain(bw, http.StatusBadRequest, "unsupported message framing")
		return false
	}

	host := head.Header.Get("Host")
	prefix, ok := TenantPrefix(host)
	if !ok {
		s.record(outcomeRejectedHost)
		log.Warn("host does not match the wildcard zone",
			"host", host,
			"method", head.Method,
			"target", head.Target,
		)
		_ = respondError(bw, http.StatusBadRequest, errorPageView{
			Title:    "This host cannot be routed",
			Category: "unrecognized host",
			Host:     host,
			Hints: []string{
				"the Host header must look like tenant.<a>.<b>.<c>.<d>.nip.io",
				"check that the wildcard DNS name embeds the proxy's IPv4 address",
			},
		})
		return false
	}

	tenant := TenantName(prefix)
	if s.policy != nil && s.policy.Blocked(tenant) {
		s.record(outcomeBlockedTenant)
		log.Warn("tenant blocked by policy", "tenant", tenant, "host", host)
		_ = respondError(bw, http.StatusForbidden, errorPageView{
			Title:    "This tenant is blocked",
			Category: "policy",
			Host:     host,
			Hints: []string{
				"remove the tenant from blocked_tenants in the policy file to restore access",
			},
		})
		return false
	}

	// The offer is captured before the rewrite mutates the head.
	offer := upgradeOfferFrom(head)
	head.Header.Set("Host", RewriteHost(prefix, s.suffix))
	if reqFraming == http1.FramingChunked && head.Header.Has("Content-Length") {
		// A chunked message must not also carry Content-Length. The
		// chunked framing wins; forwarding both would hand the backend
		// the smuggling vector.
		head.Header.Del("Content-Length")
	}

	dialStart := time.Now()
	upstreamConn, err := s.upstream.dial(ctx)
	metrics.BackendDialSeconds.Observe(time.Since(dialStart).Seconds())
	if err != nil {
		s.record(outcomeBackendUnreachable)
		log.Error("backend dial failed", "backend", s.upstream.addr, "error", err)
		_ = respondError(bw, http.StatusBadGateway, errorPageView{
			Title:    "The backend is unreachable",
			Category: "backend",
			Host:     host,
			Error:    err.Error(),
			Hints: []string{
				fmt.Sprintf("check that the backend is accepting connections on %s", s.upstream.addr),
			},
		})
		return false
	}

	ubr := bufio.NewReaderSize(upstreamConn, readBufferSize)
	ubw := bufio.NewWriterSize(upstreamConn, writeBufferSize)

	writeDone := make(chan error, 1)
	go func() {
		writeDone <- writeRequest(ubw, head, br, reqFraming, reqLen)
	}()

	// Informational responses are relayed as-is; the final response follows
	// on the same backend connection.
	sentInterim := false
	resp, err := http1.ReadResponseHead(ubr)
	for err == nil && resp.StatusCode/100 == 1 && resp.StatusCode != http.StatusSwitchingProtocols {
		if _, werr := resp.WriteTo(bw); werr == nil {
			werr = bw.Flush()
			if werr != nil {
				err = werr
			}
		} else {
			err = werr
		}
		if err != nil {
			upstreamConn.Close()
			s.reapWriter(writeDone, log)
			return false
		}
		sentInterim = true
		resp, err = http1.ReadResponseHead(ubr)
	}
	if err != nil {
		upstreamConn.Close()
		s.record(outcomeBackendError)
		log.Error("backend response failed", "backend", s.upstream.addr, "error", err)
		if !sentInterim {
			_ = respondError(bw, http.StatusBadGateway, errorPageView{
				Title:    "The backend failed to answer",
				Category: "backend",
				Host:     host,
				Error:    fmt.Errorf("%w: %w", errBackendRequest, err).Error(),
			})
		}
		s.reapWriter(writeDone, log)
		return false
	}

	if resp.StatusCode == http.StatusSwitchingProtocols {
		s.finishUpgrade(clientConn, br, bw, upstreamConn, ubr, resp, offer, writeDone, tenant, log)
		return false
	}

	respFraming, respLen, err := http1.ResponseFraming(head.Method, resp.StatusCode, &resp.Header)
	if err != nil {
		upstreamConn.Close()
		s.record(outcomeBackendError)
		log.Error("backend response has unusable framing", "error", err)
		if !sentInterim {
			_ = respondError(bw, http.StatusBadGateway, errorPageView{
				Title:    "The backend answer could not be relayed",
				Category: "backend",
				Host:     host,
				Error:    fmt.Errorf("%w: %w", errBackendRequest, err).Error(),
			})
		}
		s.reapWriter(writeDone, log)
		return false
	}
	if respFraming == http1.FramingChunked && resp.Header.Has("Content-Length") {
		// A chunked message must not also carry Content-Length. The
		// chunked framing wins; forwarding both would propagate the
		// smuggling vector.
		resp.Header.Del("Content-Length")
	}

	if _, err := resp.WriteTo(bw); err != nil {
		upstreamConn.Close()
		s.reapWriter(writeDone, log)
		return false
	}
	if _, err := http1.RelayBody(bw, ubr, respFraming, respLen); err != nil {
		// Part of the response is already on the wire, so there is
		// nothing left to salvage for this client.
		upstreamConn.Close()
		s.record(outcomeBackendError)
		log.Error("relaying backend response failed", "error", err)
		s.reapWriter(writeDone, log)
		return false
	}
	if err := bw.Flush(); err != nil {
		upstreamConn.Close()
		s.reapWriter(writeDone, log)
		return false
	}

	// One backend connection per request. Closing it also unblocks the
	// writer when the backend answered without draining the body.
	upstreamConn.Close()

	var writeErr error
	select {
	case writeErr = <-writeDone:
	case <-time.After(writerGrace):
		// The response finished while the request body was still being
		// relayed. Give up on reuse and unstick the writer.
		clientConn.Close()
		writeErr = <-writeDone
	}

	s.record(outcomeProxied)
	metrics.RequestSeconds.Observe(time.Since(start).Seconds())
	log.Info("proxied",
		"method", head.Method,
		"target", head.Target,
		"host", host,
		"tenant", tenant,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if writeErr != nil {
		log.Debug("request body was not fully relayed, dropping connection", "error", writeErr)
		return false
	}
	if respFraming == http1.FramingUntilClose {
		return false
	}
	if wantsClose(head.Proto, &head.Header) || wantsClose(resp.Proto, &resp.Header) {
		return false
	}
	return true
}

// writeRequest sends the rewritten head and relays the request body from the
// client's buffered reader. The head is flushed on its own so the backend
// sees the request even when the body trickles in.
func writeRequest(ubw *bufio.Writer, head *http1.RequestHead, br *bufio.Reader, f http1.Framing, length int64) error {
	if _, err := head.WriteTo(ubw); err != nil {
		return err
	}
	if err := ubw.Flush(); err != nil {
		return err
	}
	if _, err := http1.RelayBody(ubw, br, f, length); err != nil {
		return err
	}
	return ubw.Flush()
}

// finishUpgrade completes a 101 exchange. When the backend switched to the
// protocol the client offered, the response head is forwarded and both
// connections are spliced into a raw tunnel. Any other answer is forwarded
// best-effort and both sides are dropped; bridging a protocol the client
// never offered would leave both peers wedged.
func (s *Server) finishUpgrade(clientConn net.Conn, br *bufio.Reader, bw *bufio.Writer, upstreamConn net.Conn, ubr *bufio.Reader, resp *http1.ResponseHead, offer upgradeOffer, writeDone <-chan error, tenant string, log *slog.Logger) {
	answered := resp.Header.Get("Upgrade")
	if !offer.agrees(answered) {
		s.record(outcomeUpgradeMismatch)
		log.Warn("refusing to bridge mismatched upgrade",
			"offered", offer.protocol,
			"answered", answered,
			"error", errUpgradeMismatch,
		)
		_, _ = resp.WriteTo(bw)
		_ = bw.Flush()
		// Both sides must be down before waiting, or a writer blocked
		// on the client's body would never return.
		upstreamConn.Close()
		clientConn.Close()
		<-writeDone
		return
	}

	// The full request must be with the backend before raw bytes flow in
	// either direction.
	if err := <-writeDone; err != nil {
		log.Warn("upgrade aborted, request was not fully delivered", "error", err)
		upstreamConn.Close()
		return
	}
	if _, err := resp.WriteTo(bw); err != nil {
		upstreamConn.Close()
		return
	}
	if err := bw.Flush(); err != nil {
		upstreamConn.Close()
		return
	}

	s.record(outcomeUpgraded)
	s.stats.totalTunnels.Add(1)
	s.stats.activeTunnels.Add(1)
	metrics.ActiveTunnels.Inc()
	log.Info("bridging upgraded connection", "tenant", tenant, "protocol", offer.protocol)

	clientBytes, backendBytes := bridge(clientConn, br, upstreamConn, ubr)

	s.stats.activeTunnels.Add(-1)
	metrics.ActiveTunnels.Dec()
	s.stats.tunnelClientBytes.Add(uint64(clientBytes))
	s.stats.tunnelBackendBytes.Add(uint64(backendBytes))
	metrics.TunnelBytes.WithLabelValues("client_to_backend").Add(float64(clientBytes))
	metrics.TunnelBytes.WithLabelValues("backend_to_client").Add(float64(backendBytes))
	log.Info("tunnel closed",
		"tenant", tenant,
		"client_bytes", clientBytes,
		"backend_bytes", backendBytes,
	)
}

// reapWriter collects the request writer's result without blocking the
// caller. Once both connections are closed the writer always returns.
func (s *Server) reapWriter(writeDone <-chan error, log *slog.Logger) {
	select {
	case err := <-writeDone:
		if err != nil {
			log.Debug("request relay aborted", "error", err)
		}
	default:
		go func() {
			if err := <-writeDone; err != nil {
				log.Debug("request relay aborted", "error", err)
			}
		}()
	}
}
