//go:build !linux && !darwin

package log

// IsTerminal always reports false where termios is unavailable.
func IsTerminal(fd uintptr) bool {
	return false
}
