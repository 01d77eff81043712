package proxy

import "errors"

var (
	errBackendUnreachable = errors.New("backend is unreachable")
	errBackendRequest     = errors.New("backend request failed")
	errUpgradeMismatch    = errors.New("upgrade protocol mismatch")
)

// Outcome labels used for both the in-process counters and the Prometheus
// requests_total metric.
const (
	outcomeProxied            = "proxied"
	outcomeUpgraded           = "upgraded"
	outcomeRejectedHost       = "rejected_host"
	outcomeBlockedTenant      = "blocked_tenant"
	outcomeBadRequest         = "bad_request"
	outcomeBackendUnreachable = "backend_unreachable"
	outcomeBackendError       = "backend_error"
	outcomeUpgradeMismatch    = "upgrade_mismatch"
)
