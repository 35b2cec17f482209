//go:build windows

package transport

import (
	"fmt"
	"net"
	"unsafe"

	"golang.org/x/sys/windows"
)

// sioUDPConnReset is SIO_UDP_CONNRESET, IOC_IN|IOC_VENDOR|12.
const sioUDPConnReset = 0x9800000C

// tuneSocket disables SIO_UDP_CONNRESET on the socket. Without this, a
// connectionless UDP socket on Windows surfaces a prior ICMP
// port-unreachable from some now-gone remote as a receive error on every
// subsequent read, which would otherwise choke the receive loop with
// errors not attributable to any specific client.
//
// See https://github.com/mas-bandwidth/yojimbo/blob/b881662d72f21a171639fc6079052ce776cc9b2c/netcode/netcode.c#L519
func tuneSocket(conn *net.UDPConn) error {
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return fmt.Errorf("get raw conn: %w", err)
	}

	var ioctlErr error
	err = rawConn.Control(func(fd uintptr) {
		var enable uint32 // false: disable connection-reset reporting
		var bytesReturned uint32
		ioctlErr = windows.WSAIoctl(
			windows.Handle(fd),
			sioUDPConnReset,
			(*byte)(unsafe.Pointer(&enable)),
			uint32(unsafe.Sizeof(enable)),
			nil,
			0,
			&bytesReturned,
			nil,
			0,
		)
	})
	if err != nil {
		return fmt.Errorf("control raw conn: %w", err)
	}
	if ioctlErr != nil {
		return fmt.Errorf("WSAIoctl SIO_UDP_CONNRESET: %w", ioctlErr)
	}
	return nil
}
