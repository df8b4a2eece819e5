//go:build linux || darwin

package log

import "golang.org/x/sys/unix"

// IsTerminal reports whether fd refers to a terminal. Colors are only
// worth writing when it does.
func IsTerminal(fd uintptr) bool {
	_, err := unix.IoctlGetTermios(int(fd), ioctlGetTermios)
	return err == nil
}
