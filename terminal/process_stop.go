package terminal

import (
	"os/exec"
	"time"

	"github.com/apex/log"
)

// stopTimeout bounds the wait for a killed process to be reaped before a
// second hard kill is sent. A direct child is expected to exit well
// inside this window.
const stopTimeout = time.Second * 10

// stopProcess kills the terminal and waits for it to be reaped. The exit
// channel is consumed here, so the caller must not read it afterwards.
func stopProcess(cmd *exec.Cmd, exit <-chan error) {
	log := log.WithField("action", "stopProcess")

	if err := cmd.Process.Kill(); err != nil {
		log.WithError(err).Debug("kill failed")
	}

	timer := time.NewTimer(stopTimeout)
	defer timer.Stop()

	select {
	case err := <-exit:
		if err != nil {
			log.WithError(err).Debug("terminal exited with error")
		}
	case <-timer.C:
		log.Warn("terminal did not exit in time. force quit.")
		cmd.Process.Kill()
	}
}
