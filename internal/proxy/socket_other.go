//go:build !linux

package proxy

import "syscall"

// reuseAddrControl is a no-op where the portable listener defaults are
// already good enough.
func reuseAddrControl(network, address string, c syscall.RawConn) error {
	return nil
}
