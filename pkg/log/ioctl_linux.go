//go:build linux

package log

import "golang.org/x/sys/unix"

// Platform-specific ioctl constant for Linux
const ioctlGetTermios = unix.TCGETS
