//go:build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gcode-inspect/pkg/config"
	"gcode-inspect/pkg/log"
)

// reloadOnHangup re-reads the settings file each time the process gets
// SIGHUP, until ctx is done.
func reloadOnHangup(ctx context.Context, rm *config.ReloadManager, l *log.Logger) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			if _, err := rm.ReloadFromFile(); err != nil {
				l.WithError(err).Error("config reload failed, keeping previous settings")
			}
		}
	}
}
