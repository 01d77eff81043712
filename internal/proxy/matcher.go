package proxy

import (
	"regexp"
	"strings"
)

// Wildcard DNS services resolve any name of the form <labels>.<a>.<b>.<c>.<d>.nip.io
// to the embedded IPv4 address, so every tenant subdomain lands on this proxy
// without per-name DNS records. hostPattern captures the tenant labels that
// precede the embedded address; an optional port is tolerated because clients
// send it as part of the Host header.
var hostPattern = regexp.MustCompile(`^(?P<domain>([a-zA-Z0-9][a-zA-Z0-9-]*[a-zA-Z0-9]*\.)+)([0-9]{1,3}\.){4}nip\.io(:[0-9]+)?$`)

// TenantPrefix returns the dot-terminated subdomain labels ahead of the
// wildcard zone, e.g. "foo.bar." for "foo.bar.1.2.3.4.nip.io". The second
// return is false when host does not belong to the wildcard zone; that is an
// ordinary outcome, not an error.
func TenantPrefix(host string) (string, bool) {
	m := hostPattern.FindStringSubmatch(host)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// RewriteHost joins an extracted tenant prefix with the configured backend
// suffix: "foo.bar." + "internal" gives "foo.bar.internal".
func RewriteHost(prefix, suffix string) string {
	return prefix + suffix
}

// TenantName strips the trailing dot from a tenant prefix for policy checks
// and log fields.
func TenantName(prefix string) string {
	return strings.TrimSuffix(prefix, ".")
}
