//go:build !windows

// Package shutdown registers the termination signals that make sense
// per platform; SIGTERM is never delivered on Windows.
package shutdown

import (
	"os"
	"os/signal"
	"syscall"
)

func Notify(ch chan os.Signal) {
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
}
