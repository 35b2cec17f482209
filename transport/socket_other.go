//go:build !windows

package transport

import "net"

// tuneSocket is a no-op on platforms that don't surface ICMP
// port-unreachable as a receive error on connectionless UDP sockets.
func tuneSocket(conn *net.UDPConn) error {
	return nil
}
