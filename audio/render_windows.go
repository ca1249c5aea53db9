//go:build windows

package audio

import "os/exec"

// Windows has no polite termination signal for console processes we
// did not create a console for, so go straight to Kill.
func terminate(cmd *exec.Cmd, _ <-chan struct{}) {
	if cmd.Process == nil {
		return
	}
	cmd.Process.Kill()
}
