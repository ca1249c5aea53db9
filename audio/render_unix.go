//go:build !windows

package audio

import (
	"os/exec"
	"syscall"
	"time"
)

const killGrace = 500 * time.Millisecond

// terminate asks the player to exit and escalates to SIGKILL if it
// ignores the request.
func terminate(cmd *exec.Cmd, done <-chan struct{}) {
	if cmd.Process == nil {
		return
	}
	cmd.Process.Signal(syscall.SIGTERM)
	go func() {
		select {
		case <-done:
		case <-time.After(killGrace):
			cmd.Process.Kill()
		}
	}()
}
