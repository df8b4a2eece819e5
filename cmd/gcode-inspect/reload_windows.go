//go:build windows

package main

import (
	"context"

	"gcode-inspect/pkg/config"
	"gcode-inspect/pkg/log"
)

// reloadOnHangup is a no-op: there is no SIGHUP on Windows.
func reloadOnHangup(ctx context.Context, rm *config.ReloadManager, l *log.Logger) {
	<-ctx.Done()
}
