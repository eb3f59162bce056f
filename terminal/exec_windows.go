//go:build windows

package terminal

import (
	"os/exec"
	"syscall"
)

// javaw keeps the JVM from opening a console window.
const javaCommand = "javaw"

const createNoWindow = 0x08000000

func hideWindow(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: createNoWindow,
	}
}
