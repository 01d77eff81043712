package proxy

import (
	"sync/atomic"
	"time"
)

// stats tracks coarse in-process counters alongside the Prometheus
// collectors. The admin API serves these directly so `tenantgate status`
// works without a Prometheus scrape pipeline.
type stats struct {
	startedAt time.Time

	openConnections    atomic.Int64
	totalConnections   atomic.Uint64
	requests           atomic.Uint64
	proxied            atomic.Uint64
	rejectedHosts      atomic.Uint64
	blockedTenants     atomic.Uint64
	backendFailures    atomic.Uint64
	upgradeMismatches  atomic.Uint64
	activeTunnels      atomic.Int64
	totalTunnels       atomic.Uint64
	tunnelClientBytes  atomic.Uint64
	tunnelBackendBytes atomic.Uint64
}

// Snapshot is a point-in-time view of the proxy counters.
type Snapshot struct {
	UptimeSeconds      int64  `json:"uptime_seconds"`
	OpenConnections    int64  `json:"open_connections"`
	TotalConnections   uint64 `json:"total_connections"`
	Requests           uint64 `json:"requests"`
	Proxied            uint64 `json:"proxied"`
	RejectedHosts      uint64 `json:"rejected_hosts"`
	BlockedTenants     uint64 `json:"blocked_tenants"`
	BackendFailures    uint64 `json:"backend_failures"`
	UpgradeMismatches  uint64 `json:"upgrade_mismatches"`
	ActiveTunnels      int64  `json:"active_tunnels"`
	TotalTunnels       uint64 `json:"total_tunnels"`
	TunnelClientBytes  uint64 `json:"tunnel_client_bytes"`
	TunnelBackendBytes uint64 `json:"tunnel_backend_bytes"`
}

func (s *stats) snapshot() Snapshot {
	return Snapshot{
		UptimeSeconds:      int64(time.Since(s.startedAt).Seconds()),
		OpenConnections:    s.openConnections.Load(),
		TotalConnections:   s.totalConnections.Load(),
		Requests:           s.requests.Load(),
		Proxied:            s.proxied.Load(),
		RejectedHosts:      s.rejectedHosts.Load(),
		BlockedTenants:     s.blockedTenants.Load(),
		BackendFailures:    s.backendFailures.Load(),
		UpgradeMismatches:  s.upgradeMismatches.Load(),
		ActiveTunnels:      s.activeTunnels.Load(),
		TotalTunnels:       s.totalTunnels.Load(),
		TunnelClientBytes:  s.tunnelClientBytes.Load(),
		TunnelBackendBytes: s.tunnelBackendBytes.Load(),
	}
}
