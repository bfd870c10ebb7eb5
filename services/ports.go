package services

import (
	"net"
	"strconv"
)

// portFree reports whether port can be bound on the loopback interface right now.
func portFree(port int) bool {
	ln, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(port)))
	if err != nil {
		return false
	}
	_ = ln.Close()
	return true
}
