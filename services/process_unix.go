//go:build unix

package services

import (
	"errors"

	"golang.org/x/sys/unix"
)

// processAlive signals pid with 0. Unknown owners (pid 0) count as alive.
func processAlive(pid int) bool {
	if pid <= 0 {
		return true
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}
